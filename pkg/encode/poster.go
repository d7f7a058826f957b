// poster.go - Single-frame poster export as PNG or 24-bit uncompressed BMP.
// The BMP writer constructs BITMAPFILEHEADER + BITMAPINFOHEADER by hand and
// handles BGR ordering with bottom-up rows as the format requires.
package encode

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SavePoster writes a single frame to path, choosing the format from the
// extension (".png" or ".bmp").
func SavePoster(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		if err := png.Encode(f, img); err != nil {
			return fmt.Errorf("encode PNG: %w", err)
		}
	case ".bmp":
		if err := WriteBMP(f, img); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported poster format %q: use .png or .bmp", ext)
	}
	return nil
}

// WriteBMP encodes img as a 24-bit uncompressed BMP.
func WriteBMP(w io.Writer, img image.Image) error {
	b := img.Bounds()
	width := b.Dx()
	height := b.Dy()

	rowSize := ((width*3 + 3) / 4) * 4 // rows padded to 4 bytes
	pixelDataSize := rowSize * height
	fileSize := 54 + pixelDataSize

	fileHeader := make([]byte, 14)
	fileHeader[0] = 'B'
	fileHeader[1] = 'M'
	binary.LittleEndian.PutUint32(fileHeader[2:6], uint32(fileSize))
	binary.LittleEndian.PutUint32(fileHeader[10:14], 54) // pixel data offset
	if _, err := w.Write(fileHeader); err != nil {
		return fmt.Errorf("write BMP header: %w", err)
	}

	dibHeader := make([]byte, 40)
	binary.LittleEndian.PutUint32(dibHeader[0:4], 40)
	binary.LittleEndian.PutUint32(dibHeader[4:8], uint32(width))
	binary.LittleEndian.PutUint32(dibHeader[8:12], uint32(height))
	binary.LittleEndian.PutUint16(dibHeader[12:14], 1)  // planes
	binary.LittleEndian.PutUint16(dibHeader[14:16], 24) // bits per pixel
	binary.LittleEndian.PutUint32(dibHeader[20:24], uint32(pixelDataSize))
	if _, err := w.Write(dibHeader); err != nil {
		return fmt.Errorf("write BMP header: %w", err)
	}

	// Rows are stored bottom-up, pixels as BGR.
	row := make([]byte, rowSize)
	for y := height - 1; y >= 0; y-- {
		i := 0
		for x := 0; x < width; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			row[i] = uint8(bl >> 8)
			row[i+1] = uint8(g >> 8)
			row[i+2] = uint8(r >> 8)
			i += 3
		}
		for ; i < rowSize; i++ {
			row[i] = 0
		}
		if _, err := w.Write(row); err != nil {
			return fmt.Errorf("write BMP row: %w", err)
		}
	}
	return nil
}
