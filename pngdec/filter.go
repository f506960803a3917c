package pngdec

import (
	"fmt"

	"github.com/svanichkin/pngview/oops"
)

// FilterType is the per-scanline predictor selected by the encoder.
type FilterType uint8

const (
	FilterNone FilterType = iota
	FilterSub
	FilterUp
	FilterAverage
	FilterPaeth
)

func (f FilterType) String() string {
	switch f {
	case FilterNone:
		return "none"
	case FilterSub:
		return "sub"
	case FilterUp:
		return "up"
	case FilterAverage:
		return "average"
	case FilterPaeth:
		return "paeth"
	}
	return fmt.Sprintf("FilterType(%d)", uint8(f))
}

// Unfilter reverses scanline filtering. filtered holds height rows, each a
// filter type byte followed by stride bytes. The result holds the same rows
// without the filter bytes.
func Unfilter(filtered []byte, stride, height, bpp int) ([]byte, error) {
	if bpp <= 0 || stride < 0 || height < 0 {
		return nil, oops.New(ErrUnsupportedFeature, "bad scanline geometry stride=%d height=%d bpp=%d", stride, height, bpp)
	}
	if len(filtered) != height*(stride+1) {
		return nil, oops.New(ErrCorruptCompressedData, "have %d filtered bytes, want %d", len(filtered), height*(stride+1))
	}

	pix := make([]byte, height*stride)
	// Row 0 is predicted from an all-zero row.
	prev := make([]byte, stride)
	for y := 0; y < height; y++ {
		src := filtered[y*(stride+1) : (y+1)*(stride+1)]
		cur := pix[y*stride : (y+1)*stride]
		if err := unfilterRow(FilterType(src[0]), src[1:], prev, cur, bpp); err != nil {
			return nil, oops.New(err, "scanline %d", y)
		}
		prev = cur
	}
	return pix, nil
}

// unfilterRow reconstructs one scanline into dst. prev is the reconstructed
// row above and is only read.
func unfilterRow(ft FilterType, src, prev, dst []byte, bpp int) error {
	switch ft {
	case FilterNone:
		copy(dst, src)
	case FilterSub:
		for i := range src {
			var a byte
			if i >= bpp {
				a = dst[i-bpp]
			}
			dst[i] = src[i] + a
		}
	case FilterUp:
		for i := range src {
			dst[i] = src[i] + prev[i]
		}
	case FilterAverage:
		for i := range src {
			var a byte
			if i >= bpp {
				a = dst[i-bpp]
			}
			dst[i] = src[i] + byte((int(a)+int(prev[i]))/2)
		}
	case FilterPaeth:
		for i := range src {
			var a, c byte
			if i >= bpp {
				a = dst[i-bpp]
				c = prev[i-bpp]
			}
			dst[i] = src[i] + paeth(a, prev[i], c)
		}
	default:
		return oops.New(ErrUnknownFilterType, "filter type %d", uint8(ft))
	}
	return nil
}

// paeth picks whichever of left (a), above (b) and upper-left (c) is closest
// to a+b-c, preferring a, then b.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))

	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
