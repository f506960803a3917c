package pngdec

import (
	"image/color"

	"github.com/svanichkin/pngview/oops"
)

const maxPaletteEntries = 256

type PaletteEntry struct {
	R, G, B uint8
}

func parsePalette(data []byte) ([]PaletteEntry, error) {
	if len(data) == 0 || len(data)%3 != 0 || len(data) > 3*maxPaletteEntries {
		return nil, oops.New(ErrMalformedContainer, "PLTE has length %d", len(data))
	}
	palette := make([]PaletteEntry, len(data)/3)
	for i := range palette {
		palette[i] = PaletteEntry{R: data[3*i], G: data[3*i+1], B: data[3*i+2]}
	}
	return palette, nil
}

// colorModel turns the raw samples of one pixel into RGBA. There is one
// implementation per color type, each holding only the metadata that type
// can use.
type colorModel interface {
	colorType() ColorType
	// setTransparency applies a tRNS payload.
	setTransparency(data []byte) error
	resolve(px []byte) color.NRGBA
}

func newColorModel(ct ColorType) (colorModel, error) {
	switch ct {
	case Grayscale:
		return &grayModel{}, nil
	case TrueColor:
		return &trueColorModel{}, nil
	case Indexed:
		return &indexedModel{}, nil
	case GrayscaleAlpha:
		return grayAlphaModel{}, nil
	case TrueColorAlpha:
		return trueColorAlphaModel{}, nil
	}
	return nil, oops.New(ErrUnsupportedColorType, "color type %d", uint8(ct))
}

type grayModel struct {
	hasKey bool
	key    uint8
}

func (m *grayModel) colorType() ColorType { return Grayscale }

func (m *grayModel) setTransparency(data []byte) error {
	if len(data) != 2 {
		return oops.New(ErrMalformedContainer, "grayscale tRNS has length %d, want 2", len(data))
	}
	// 16-bit sample; at depth 8 only the low byte can match.
	m.hasKey, m.key = true, data[1]
	return nil
}

func (m *grayModel) resolve(px []byte) color.NRGBA {
	gray := px[0]
	alpha := uint8(255)
	if m.hasKey && m.key == gray {
		alpha = 0
	}
	return color.NRGBA{R: gray, G: gray, B: gray, A: alpha}
}

type trueColorModel struct {
	hasKey bool
	key    [3]uint8
}

func (m *trueColorModel) colorType() ColorType { return TrueColor }

func (m *trueColorModel) setTransparency(data []byte) error {
	if len(data) != 6 {
		return oops.New(ErrMalformedContainer, "truecolor tRNS has length %d, want 6", len(data))
	}
	m.hasKey, m.key = true, [3]uint8{data[1], data[3], data[5]}
	return nil
}

func (m *trueColorModel) resolve(px []byte) color.NRGBA {
	c := color.NRGBA{R: px[0], G: px[1], B: px[2], A: 255}
	if m.hasKey && m.key == [3]uint8{c.R, c.G, c.B} {
		c.A = 0
	}
	return c
}

type indexedModel struct {
	palette []PaletteEntry
	alpha   []uint8
}

func (m *indexedModel) colorType() ColorType { return Indexed }

func (m *indexedModel) setTransparency(data []byte) error {
	if len(data) > maxPaletteEntries {
		return oops.New(ErrMalformedContainer, "indexed tRNS has %d entries", len(data))
	}
	m.alpha = data
	return nil
}

// resolve maps an index past the end of the palette to opaque black instead
// of failing.
func (m *indexedModel) resolve(px []byte) color.NRGBA {
	i := int(px[0])
	var c color.NRGBA
	if i < len(m.palette) {
		e := m.palette[i]
		c.R, c.G, c.B = e.R, e.G, e.B
	}
	c.A = 255
	if i < len(m.alpha) {
		c.A = m.alpha[i]
	}
	return c
}

type grayAlphaModel struct{}

func (grayAlphaModel) colorType() ColorType { return GrayscaleAlpha }

// tRNS is not allowed alongside an alpha channel; it is ignored.
func (grayAlphaModel) setTransparency([]byte) error { return nil }

func (grayAlphaModel) resolve(px []byte) color.NRGBA {
	return color.NRGBA{R: px[0], G: px[0], B: px[0], A: px[1]}
}

type trueColorAlphaModel struct{}

func (trueColorAlphaModel) colorType() ColorType { return TrueColorAlpha }

func (trueColorAlphaModel) setTransparency([]byte) error { return nil }

func (trueColorAlphaModel) resolve(px []byte) color.NRGBA {
	return color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]}
}
