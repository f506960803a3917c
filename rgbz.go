package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/svanichkin/pngview/pngdec"
)

// RGBZ is a raw dump of decoded pixels: a small header followed by a zstd
// frame holding non-premultiplied RGBA bytes, row by row.

const (
	magicRGBZ = "RGBZ"
)

// EncodeRGBZ packs img as an RGBZ stream.
func EncodeRGBZ(img image.Image) ([]byte, error) {
	nrgba := toNRGBA(img)
	b := &bytes.Buffer{}

	// Header: magic(4) + width(uint32) + height(uint32)
	if _, err := b.Write([]byte(magicRGBZ)); err != nil {
		return nil, err
	}
	w := uint32(nrgba.Bounds().Dx())
	h := uint32(nrgba.Bounds().Dy())
	if err := binary.Write(b, binary.BigEndian, w); err != nil {
		return nil, err
	}
	if err := binary.Write(b, binary.BigEndian, h); err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(b)
	if err != nil {
		return nil, err
	}
	if _, err := enc.Write(nrgba.Pix); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// DecodeRGBZ decodes data produced by EncodeRGBZ.
func DecodeRGBZ(data []byte) (*image.NRGBA, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, len(magicRGBZ))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, ErrInvalidMagic
	}
	if string(magic) != magicRGBZ {
		return nil, ErrInvalidMagic
	}

	var w, h uint32
	if err := binary.Read(r, binary.BigEndian, &w); err != nil {
		return nil, fmt.Errorf("rgbz: reading width: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, fmt.Errorf("rgbz: reading height: %w", err)
	}
	want := uint64(w) * uint64(h) * 4
	if want > uint64(maxRGBZBytes) {
		return nil, fmt.Errorf("rgbz: %dx%d image too large", w, h)
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	// One extra byte to notice trailing data.
	plain, err := io.ReadAll(io.LimitReader(dec, int64(want)+1))
	if err != nil {
		return nil, fmt.Errorf("rgbz: %w", err)
	}
	if uint64(len(plain)) != want {
		return nil, fmt.Errorf("rgbz: payload is %d bytes, want %d", len(plain), want)
	}

	return &image.NRGBA{
		Pix:    plain,
		Stride: int(w) * 4,
		Rect:   image.Rect(0, 0, int(w), int(h)),
	}, nil
}

const maxRGBZBytes = 1 << 30

// toNRGBA returns src as a tightly packed *image.NRGBA with bounds starting
// at (0,0), copying only when needed.
func toNRGBA(src image.Image) *image.NRGBA {
	switch m := src.(type) {
	case *image.NRGBA:
		b := m.Bounds()
		if b.Min == (image.Point{}) && m.Stride == 4*b.Dx() && len(m.Pix) == 4*b.Dx()*b.Dy() {
			return m
		}
		// Copy rows directly so samples stay exact.
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			i := m.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], m.Pix[i:i+4*b.Dx()])
		}
		return dst
	case *pngdec.Image:
		return m.NRGBA()
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

var ErrInvalidMagic = errors.New("rgbz: invalid magic")
