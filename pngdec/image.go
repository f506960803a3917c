package pngdec

import (
	"image"
	"image/color"

	"github.com/svanichkin/pngview/oops"
)

// Image is a fully decoded PNG. It implements image.Image with non-premultiplied
// colors and is safe for concurrent reads.
type Image struct {
	header  Header
	palette []PaletteEntry
	model   colorModel
	// pix holds the reconstructed samples, scanline-major, stride bytes per row.
	pix    []byte
	stride int
	bpp    int
}

func (m *Image) Width() uint32  { return m.header.Width }
func (m *Image) Height() uint32 { return m.header.Height }
func (m *Image) Header() Header { return m.header }

// Palette returns the PLTE entries, if the file had any. Truecolor images may
// carry a suggested palette; it does not affect pixel values.
func (m *Image) Palette() []PaletteEntry {
	return append([]PaletteEntry(nil), m.palette...)
}

// Pixel returns the RGBA value at (x, y).
func (m *Image) Pixel(x, y uint32) (color.NRGBA, error) {
	if x >= m.header.Width || y >= m.header.Height {
		return color.NRGBA{}, oops.New(ErrOutOfBounds, "(%d, %d) outside %dx%d", x, y, m.header.Width, m.header.Height)
	}
	if m.model == nil {
		return color.NRGBA{}, oops.New(ErrUnsupportedColorType, "no color model for %v", m.header.ColorType)
	}
	return m.model.resolve(m.samples(int(x), int(y))), nil
}

func (m *Image) samples(x, y int) []byte {
	off := y*m.stride + x*m.bpp
	return m.pix[off : off+m.bpp]
}

func (m *Image) ColorModel() color.Model { return color.NRGBAModel }

func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(m.header.Width), int(m.header.Height))
}

func (m *Image) At(x, y int) color.Color {
	return m.NRGBAAt(x, y)
}

// NRGBAAt is At without the interface conversion. Points outside the image
// are transparent black.
func (m *Image) NRGBAAt(x, y int) color.NRGBA {
	if !(image.Point{x, y}.In(m.Bounds())) || m.model == nil {
		return color.NRGBA{}
	}
	return m.model.resolve(m.samples(x, y))
}

// NRGBA resolves every pixel into a new *image.NRGBA.
func (m *Image) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(m.Bounds())
	if m.model == nil {
		return dst
	}
	w, h := int(m.header.Width), int(m.header.Height)
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+4*w]
		for x := 0; x < w; x++ {
			c := m.model.resolve(m.samples(x, y))
			row[4*x+0] = c.R
			row[4*x+1] = c.G
			row[4*x+2] = c.B
			row[4*x+3] = c.A
		}
	}
	return dst
}
