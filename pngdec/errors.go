package pngdec

import (
	"errors"
	"fmt"
)

// Every decode failure wraps exactly one of these. Match with errors.Is.
var (
	ErrMalformedContainer    = errors.New("png: malformed container")
	ErrTruncatedStream       = errors.New("png: truncated stream")
	ErrMissingRequiredChunk  = errors.New("png: missing required chunk")
	ErrUnsupportedFeature    = errors.New("png: unsupported feature")
	ErrCorruptCompressedData = errors.New("png: corrupt compressed data")
	ErrUnknownFilterType     = errors.New("png: unknown filter type")
	ErrOutOfOrderChunk       = errors.New("png: out of order chunk")

	ErrUnsupportedColorType = fmt.Errorf("%w: color type", ErrUnsupportedFeature)

	// ErrOutOfBounds is returned by Image.Pixel for coordinates outside the image.
	ErrOutOfBounds = errors.New("png: pixel out of bounds")
)
