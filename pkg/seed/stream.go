package seed

// Stream is a Mulberry32 pseudo-random stream. Given the same seed, the Nth
// value is bit-identical across runs. A Stream is owned by a single render
// and is not safe for concurrent use.
type Stream struct {
	seed  uint32
	state uint32
}

// NewStream returns a stream positioned at the start of the sequence for seed.
func NewStream(seed uint32) *Stream {
	return &Stream{seed: seed, state: seed}
}

// Float64 returns the next value in [0,1).
func (s *Stream) Float64() float64 {
	s.state += 0x6D2B79F5
	t := s.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// Reset rewinds the stream to its initial state so the sequence can be
// replayed from the first value.
func (s *Stream) Reset() {
	s.state = s.seed
}

// Seed reports the seed the stream was created with.
func (s *Stream) Seed() uint32 {
	return s.seed
}
