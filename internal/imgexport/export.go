// Package imgexport writes the bits of one bit-array element as a
// black-and-white image, mainly for debugging kernels that fill per-pixel
// masks. It only reads through a View and never modifies the array.
package imgexport

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/xupit3r/bitgrid/internal/bitarray"
	"github.com/xupit3r/bitgrid/internal/logging"
)

// ErrInvalidGeometry is returned when width*height bits do not fit in one
// element or a dimension is not positive.
var ErrInvalidGeometry = errors.New("imgexport: invalid image geometry")

// Render builds a grayscale image from the first width*height bits of
// element elem. Bit i is the pixel at (i%width, i/width), or at
// (i/height, i%height) when transpose is set. Set bits are white.
func Render(v bitarray.View, elem, width, height int, transpose bool) (*image.Gray, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, width, height)
	}
	if width > v.BitsPerElement()/height {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d bits per element",
			ErrInvalidGeometry, width, height, v.BitsPerElement())
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		set, err := v.GetBitChecked(i, elem)
		if err != nil {
			return nil, err
		}
		if !set {
			continue
		}
		x, y := i%width, i/width
		if transpose {
			x, y = i/height, i%height
		}
		img.SetGray(x, y, color.Gray{Y: 0xFF})
	}
	return img, nil
}

// ExportElement renders element elem and writes it to path. A ".pbm"
// extension selects binary Netpbm (P4); anything else is written as PNG.
func ExportElement(path string, v bitarray.View, elem, width, height int, transpose bool) error {
	img, err := Render(v, elem, width, height, transpose)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating image file: %w", err)
	}

	w := bufio.NewWriter(f)
	if strings.EqualFold(filepath.Ext(path), ".pbm") {
		err = writePBM(w, img)
	} else {
		err = png.Encode(w, img)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	logging.WithComponent("imgexport").Debugf("wrote element %d as %dx%d image to %s", elem, width, height, path)
	return nil
}

// writePBM writes img as a P4 bitmap. In PBM a 1 bit is black, so white
// (set) pixels are written as 0. Rows are padded to whole bytes.
func writePBM(w *bufio.Writer, img *image.Gray) error {
	b := img.Bounds()
	if _, err := fmt.Fprintf(w, "P4\n%d %d\n", b.Dx(), b.Dy()); err != nil {
		return err
	}

	row := make([]byte, (b.Dx()+7)/8)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		clear(row)
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.GrayAt(x, y).Y == 0 {
				i := x - b.Min.X
				row[i/8] |= 0x80 >> uint(i%8)
			}
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
