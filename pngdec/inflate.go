package pngdec

import (
	"bytes"
	"errors"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/svanichkin/pngview/oops"
)

// Inflater opens a decompressing reader over a zlib (RFC 1950) stream.
type Inflater func(r io.Reader) (io.ReadCloser, error)

// DefaultInflater is the klauspost zlib reader.
var DefaultInflater Inflater = zlib.NewReader

const inflateChunkSize = 32 * 1024

// inflate decompresses the whole of compressed and requires exactly want
// bytes of output.
func inflate(open Inflater, compressed []byte, want int) ([]byte, error) {
	if open == nil {
		open = DefaultInflater
	}
	zr, err := open(bytes.NewReader(compressed))
	if err != nil {
		return nil, oops.New(ErrCorruptCompressedData, "opening zlib stream: %v", err)
	}
	defer zr.Close()

	// The header's size is not trusted for allocation; out grows only as
	// the stream actually produces data.
	out := make([]byte, 0, min(want, inflateChunkSize))
	buf := make([]byte, inflateChunkSize)
	for {
		n, err := zr.Read(buf)
		if len(out)+n > want {
			return nil, oops.New(ErrCorruptCompressedData, "image data inflates past %d bytes", want)
		}
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, oops.New(ErrCorruptCompressedData, "inflating after %d bytes: %v", len(out), err)
		}
	}
	if len(out) != want {
		return nil, oops.New(ErrCorruptCompressedData, "image data inflates to %d bytes, want %d", len(out), want)
	}
	return out, nil
}
