package config

import (
	"image/color"

	"github.com/rs/zerolog"
)

type PngviewConfig struct {
	LogLevel zerolog.Level
	Decode   DecodeConfig
	Checker  CheckerConfig
}

type DecodeConfig struct {
	// MaxDecodedBytes caps the size of the inflated image stream. Zero means
	// no limit.
	MaxDecodedBytes int64
}

// CheckerConfig describes the checkerboard that transparent pixels are
// flattened onto.
type CheckerConfig struct {
	CellSize int
	Even     color.RGBA
	Odd      color.RGBA
}

func (c CheckerConfig) At(x, y int) color.RGBA {
	cell := c.CellSize
	if cell <= 0 {
		cell = 1
	}
	if (x/cell+y/cell)%2 == 0 {
		return c.Even
	}
	return c.Odd
}
