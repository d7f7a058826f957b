// fonts.go - Caption font management with custom TTF support and embedded
// fallback. Uses golang.org/x/image/font for OpenType rendering and defaults
// to Go Regular when no custom font is given or loading fails.
package style

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontManager parses a typeface once and caches faces by pixel size.
type FontManager struct {
	parsed *opentype.Font

	mu    sync.Mutex
	faces map[int]font.Face
}

// NewFontManager creates a font manager for the given TTF path. If customPath
// is empty or unreadable, the embedded Go font is used.
func NewFontManager(customPath string) (*FontManager, error) {
	data := goregular.TTF
	if customPath != "" {
		if b, err := os.ReadFile(customPath); err == nil {
			data = b
		}
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	return &FontManager{parsed: parsed, faces: make(map[int]font.Face)}, nil
}

// Face returns a font.Face at the given pixel size, cached per size.
func (fm *FontManager) Face(px float64) (font.Face, error) {
	key := int(px)

	fm.mu.Lock()
	defer fm.mu.Unlock()

	if f, ok := fm.faces[key]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(fm.parsed, &opentype.FaceOptions{
		Size:    float64(key),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	fm.faces[key] = f
	return f, nil
}

var defaultFonts = sync.OnceValue(func() *FontManager {
	fm, err := NewFontManager("")
	if err != nil {
		// goregular is embedded; parsing it cannot fail at runtime.
		panic(err)
	}
	return fm
})

// captionFace returns a face for caption text, or nil if the face cannot be
// built (captions are then skipped rather than failing the frame).
func captionFace(px float64) font.Face {
	f, err := defaultFonts().Face(px)
	if err != nil {
		return nil
	}
	return f
}
