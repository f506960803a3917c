package pngdec

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/svanichkin/pngview/oops"
)

const pngSignature = "\x89PNG\r\n\x1a\n"

// Chunk types the decoder acts on. Everything else is skipped.
const (
	chunkIHDR = "IHDR"
	chunkPLTE = "PLTE"
	chunkTRNS = "tRNS"
	chunkIDAT = "IDAT"
	chunkIEND = "IEND"
)

const maxChunkLength = 1<<31 - 1

type Chunk struct {
	Type   string
	Length uint32
	// Data is nil when the chunk was skipped.
	Data []byte
	// CRC is read from the stream but never checked.
	CRC uint32
}

// Critical reports whether decoders are required to understand the chunk.
func (c Chunk) Critical() bool {
	return len(c.Type) == 4 && c.Type[0] >= 'A' && c.Type[0] <= 'Z'
}

// ChunkReader splits a PNG stream into chunks.
type ChunkReader struct {
	// Skip reports chunk types whose payload should be discarded unread.
	Skip func(typ string) bool

	r        io.Reader
	tmp      [8]byte
	index    int
	finished bool
}

// NewChunkReader consumes and checks the PNG signature.
func NewChunkReader(r io.Reader) (*ChunkReader, error) {
	cr := &ChunkReader{r: r}
	if _, err := io.ReadFull(r, cr.tmp[:len(pngSignature)]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, oops.New(ErrMalformedContainer, "stream too short for signature")
		}
		return nil, oops.New(err, "reading signature")
	}
	if string(cr.tmp[:len(pngSignature)]) != pngSignature {
		return nil, oops.New(ErrMalformedContainer, "not a PNG signature")
	}
	return cr, nil
}

// Next returns the next chunk. After the IEND chunk has been returned, Next
// returns io.EOF.
func (cr *ChunkReader) Next() (Chunk, error) {
	if cr.finished {
		return Chunk{}, io.EOF
	}

	if _, err := io.ReadFull(cr.r, cr.tmp[:8]); err != nil {
		return Chunk{}, cr.readError(err, "chunk header")
	}
	length := binary.BigEndian.Uint32(cr.tmp[:4])
	typ := string(cr.tmp[4:8])
	if length > maxChunkLength {
		return Chunk{}, oops.New(ErrMalformedContainer, "chunk %d (%q) has length %d", cr.index, typ, length)
	}
	if !validChunkType(cr.tmp[4:8]) {
		return Chunk{}, oops.New(ErrMalformedContainer, "chunk %d has invalid type %q", cr.index, typ)
	}

	c := Chunk{Type: typ, Length: length}
	if cr.Skip != nil && cr.Skip(typ) {
		n, err := io.CopyN(io.Discard, cr.r, int64(length))
		if err != nil && !errors.Is(err, io.EOF) {
			return Chunk{}, oops.New(err, "skipping chunk %q", typ)
		}
		if n != int64(length) {
			return Chunk{}, oops.New(ErrTruncatedStream, "chunk %q payload", typ)
		}
	} else {
		// Read through a limit so a forged length cannot force a large
		// allocation on a short stream.
		data, err := io.ReadAll(io.LimitReader(cr.r, int64(length)))
		if err != nil {
			return Chunk{}, oops.New(err, "reading chunk %q", typ)
		}
		if len(data) != int(length) {
			return Chunk{}, oops.New(ErrTruncatedStream, "chunk %q payload", typ)
		}
		c.Data = data
	}

	if _, err := io.ReadFull(cr.r, cr.tmp[:4]); err != nil {
		return Chunk{}, cr.readError(err, "chunk "+typ+" CRC")
	}
	c.CRC = binary.BigEndian.Uint32(cr.tmp[:4])

	cr.index++
	if typ == chunkIEND {
		cr.finished = true
	}
	return c, nil
}

func (cr *ChunkReader) readError(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return oops.New(ErrTruncatedStream, "stream ended in %s before IEND", what)
	}
	return oops.New(err, "reading %s", what)
}

func validChunkType(typ []byte) bool {
	for _, b := range typ {
		if !(b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z') {
			return false
		}
	}
	return true
}
