// Package seed provides deterministic seed derivation and a reproducible
// pseudo-random stream for procedural rendering.
//
// The same (prompt, engine, resolution) triple always derives the same seed,
// and the same seed always yields the same stream of values, so re-rendering
// identical inputs reproduces identical element placement.
package seed

import "fmt"

// Derive folds a prompt, engine tag and resolution into a 32-bit seed.
//
// The hash is an FNV-like fold: XOR each character code into the accumulator,
// then mix with shifted copies of itself. Not cryptographic; collisions are
// acceptable since the seed only buys visual variety.
func Derive(prompt, engine string, width, height int) uint32 {
	return hash(prompt + engine + fmt.Sprintf("%dx%d", width, height))
}

func hash(s string) uint32 {
	var h uint32
	for _, r := range s {
		h ^= uint32(r)
		h += (h << 1) + (h << 4) + (h << 7) + (h << 8) + (h << 24)
	}
	return h
}
