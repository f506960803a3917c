package config

import (
	"image/color"

	"github.com/rs/zerolog"
)

var Config = PngviewConfig{
	LogLevel: zerolog.InfoLevel,
	Decode: DecodeConfig{
		MaxDecodedBytes: 256 * 1024 * 1024,
	},
	Checker: CheckerConfig{
		CellSize: 10,
		Even:     color.RGBA{R: 200, G: 200, B: 200, A: 255},
		Odd:      color.RGBA{R: 255, G: 255, B: 255, A: 255},
	},
}
