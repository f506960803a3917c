package main

import (
	"image"

	"github.com/svanichkin/pngview/config"
)

// flatten blends src over a checkerboard so that transparency stays visible
// in formats or viewers that drop alpha. The result is opaque.
func flatten(src *image.NRGBA, checker config.CheckerConfig) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			fg := src.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			bg := checker.At(x, y)

			alpha := float32(fg.A) / 255
			i := dst.PixOffset(x, y)
			dst.Pix[i+0] = uint8(float32(fg.R)*alpha + float32(bg.R)*(1-alpha))
			dst.Pix[i+1] = uint8(float32(fg.G)*alpha + float32(bg.G)*(1-alpha))
			dst.Pix[i+2] = uint8(float32(fg.B)*alpha + float32(bg.B)*(1-alpha))
			dst.Pix[i+3] = 255
		}
	}
	return dst
}
