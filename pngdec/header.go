package pngdec

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/svanichkin/pngview/oops"
)

type ColorType uint8

const (
	Grayscale      ColorType = 0
	TrueColor      ColorType = 2
	Indexed        ColorType = 3
	GrayscaleAlpha ColorType = 4
	TrueColorAlpha ColorType = 6
)

func (ct ColorType) String() string {
	switch ct {
	case Grayscale:
		return "grayscale"
	case TrueColor:
		return "truecolor"
	case Indexed:
		return "indexed"
	case GrayscaleAlpha:
		return "grayscale+alpha"
	case TrueColorAlpha:
		return "truecolor+alpha"
	}
	return fmt.Sprintf("ColorType(%d)", uint8(ct))
}

// BytesPerPixel is the size of one pixel's samples at 8 bits per sample.
func (ct ColorType) BytesPerPixel() (int, error) {
	switch ct {
	case Grayscale, Indexed:
		return 1, nil
	case GrayscaleAlpha:
		return 2, nil
	case TrueColor:
		return 3, nil
	case TrueColorAlpha:
		return 4, nil
	}
	return 0, oops.New(ErrUnsupportedColorType, "color type %d", uint8(ct))
}

const headerLength = 13

// Header is the content of the IHDR chunk. Field order matches the wire layout.
type Header struct {
	Width             uint32
	Height            uint32
	BitDepth          uint8
	ColorType         ColorType
	CompressionMethod uint8
	FilterMethod      uint8
	InterlaceMethod   uint8
}

// bytesPerPixel is only meaningful on a header that passed parseHeader.
func (h Header) bytesPerPixel() int {
	bpp, _ := h.ColorType.BytesPerPixel()
	return bpp
}

// Stride is the length of one reconstructed scanline, without the filter byte.
func (h Header) Stride() int {
	return int(h.Width) * h.bytesPerPixel()
}

const maxInt = int(^uint(0) >> 1)

// filteredSize is the exact length the inflated image stream must have: one
// filter byte in front of every scanline. ok is false when that length does
// not fit in an int.
func (h Header) filteredSize() (size int, ok bool) {
	if h.Height == 0 {
		return 0, true
	}
	row := 1 + uint64(h.Width)*uint64(h.bytesPerPixel())
	if row > uint64(maxInt)/uint64(h.Height) {
		return 0, false
	}
	return int(row * uint64(h.Height)), true
}

func parseHeader(data []byte) (Header, error) {
	var h Header
	if len(data) != headerLength {
		return h, oops.New(ErrMalformedContainer, "IHDR has length %d, want %d", len(data), headerLength)
	}
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &h); err != nil {
		return h, oops.New(ErrMalformedContainer, "reading IHDR")
	}

	const maxDimension = 1<<31 - 1
	if h.Width == 0 || h.Height == 0 {
		return h, oops.New(ErrMalformedContainer, "zero image dimension %dx%d", h.Width, h.Height)
	}
	if h.Width > maxDimension || h.Height > maxDimension {
		return h, oops.New(ErrMalformedContainer, "image dimension %dx%d too large", h.Width, h.Height)
	}
	if h.BitDepth != 8 {
		return h, oops.New(ErrUnsupportedFeature, "bit depth %d", h.BitDepth)
	}
	if _, err := h.ColorType.BytesPerPixel(); err != nil {
		return h, err
	}
	if h.CompressionMethod != 0 {
		return h, oops.New(ErrUnsupportedFeature, "compression method %d", h.CompressionMethod)
	}
	if h.FilterMethod != 0 {
		return h, oops.New(ErrUnsupportedFeature, "filter method %d", h.FilterMethod)
	}
	if h.InterlaceMethod != 0 {
		return h, oops.New(ErrUnsupportedFeature, "interlace method %d", h.InterlaceMethod)
	}
	return h, nil
}
