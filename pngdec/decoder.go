package pngdec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/svanichkin/pngview/oops"
)

// Options tunes a decode. The zero value is usable.
type Options struct {
	// Inflater decompresses the image data. Nil means DefaultInflater.
	Inflater Inflater
	// MaxDecodedBytes rejects images whose inflated data would exceed it.
	// Zero means no limit.
	MaxDecodedBytes int64
	// Logger receives per-chunk debug events. Nil means no logging.
	Logger *zerolog.Logger
}

// Decoding stage. Chunks move the decoder forward; a chunk that arrives in
// a stage that does not accept it fails the decode.
type stage int

const (
	stageStart stage = iota
	stageHeaderParsed
	stagePaletteParsed
	stageTransparencyParsed
	stageDataAccumulated
	stageDecompressed
	stageReconstructed
	stageReady
)

func (s stage) String() string {
	switch s {
	case stageStart:
		return "start"
	case stageHeaderParsed:
		return "header parsed"
	case stagePaletteParsed:
		return "palette parsed"
	case stageTransparencyParsed:
		return "transparency parsed"
	case stageDataAccumulated:
		return "data accumulated"
	case stageDecompressed:
		return "decompressed"
	case stageReconstructed:
		return "reconstructed"
	case stageReady:
		return "ready"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

type decoder struct {
	opts   Options
	log    zerolog.Logger
	stage  stage
	header Header
	model  colorModel

	palette    []PaletteEntry
	compressed bytes.Buffer
	filtered   []byte
	pix        []byte
}

// Decode reads a PNG stream with default options.
func Decode(r io.Reader) (*Image, error) {
	return DecodeWithOptions(r, Options{})
}

// DecodeFile opens and decodes the PNG at path.
func DecodeFile(path string, opts Options) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeWithOptions(bufio.NewReader(f), opts)
}

// DecodeWithOptions reads a PNG stream up to and including IEND. Any error
// aborts the decode; no partial image is returned.
func DecodeWithOptions(r io.Reader, opts Options) (*Image, error) {
	d := &decoder{opts: opts, log: zerolog.Nop()}
	if opts.Logger != nil {
		d.log = *opts.Logger
	}

	cr, err := NewChunkReader(r)
	if err != nil {
		return nil, err
	}
	cr.Skip = func(typ string) bool {
		switch typ {
		case chunkIHDR, chunkPLTE, chunkTRNS, chunkIDAT, chunkIEND:
			return false
		}
		return true
	}

	for {
		c, err := cr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := d.dispatch(c); err != nil {
			return nil, err
		}
	}

	if err := d.decompress(); err != nil {
		return nil, err
	}
	if err := d.reconstruct(); err != nil {
		return nil, err
	}
	img := d.image()

	d.log.Info().
		Uint32("width", d.header.Width).
		Uint32("height", d.header.Height).
		Stringer("colorType", d.header.ColorType).
		Msg("decoded png")
	return img, nil
}

func (d *decoder) dispatch(c Chunk) error {
	d.log.Debug().
		Str("chunk", c.Type).
		Uint32("length", c.Length).
		Stringer("stage", d.stage).
		Msg("png chunk")

	switch c.Type {
	case chunkIHDR:
		return d.parseIHDR(c.Data)
	case chunkPLTE:
		return d.parsePLTE(c.Data)
	case chunkTRNS:
		return d.parseTRNS(c.Data)
	case chunkIDAT:
		return d.parseIDAT(c.Data)
	case chunkIEND:
		return d.parseIEND()
	}
	return nil
}

func (d *decoder) parseIHDR(data []byte) error {
	if d.stage != stageStart {
		return oops.New(ErrOutOfOrderChunk, "IHDR in stage %v", d.stage)
	}
	h, err := parseHeader(data)
	if err != nil {
		return err
	}
	model, err := newColorModel(h.ColorType)
	if err != nil {
		return err
	}

	size, ok := h.filteredSize()
	if !ok {
		return oops.New(ErrUnsupportedFeature, "image %dx%d too large", h.Width, h.Height)
	}
	if d.opts.MaxDecodedBytes > 0 && int64(size) > d.opts.MaxDecodedBytes {
		return oops.New(ErrUnsupportedFeature, "image %dx%d needs %d bytes, limit is %d", h.Width, h.Height, size, d.opts.MaxDecodedBytes)
	}

	d.header, d.model = h, model
	d.stage = stageHeaderParsed
	return nil
}

func (d *decoder) parsePLTE(data []byte) error {
	if d.stage != stageHeaderParsed {
		return oops.New(ErrOutOfOrderChunk, "PLTE in stage %v", d.stage)
	}
	palette, err := parsePalette(data)
	if err != nil {
		return err
	}
	d.palette = palette
	if m, ok := d.model.(*indexedModel); ok {
		m.palette = palette
	}
	d.stage = stagePaletteParsed
	return nil
}

func (d *decoder) parseTRNS(data []byte) error {
	switch d.stage {
	case stageHeaderParsed:
		if d.header.ColorType == Indexed {
			return oops.New(ErrOutOfOrderChunk, "tRNS before PLTE")
		}
	case stagePaletteParsed:
	default:
		return oops.New(ErrOutOfOrderChunk, "tRNS in stage %v", d.stage)
	}
	if err := d.model.setTransparency(data); err != nil {
		return err
	}
	d.stage = stageTransparencyParsed
	return nil
}

func (d *decoder) parseIDAT(data []byte) error {
	if d.stage == stageStart {
		return oops.New(ErrOutOfOrderChunk, "IDAT before IHDR")
	}
	if d.header.ColorType == Indexed && d.palette == nil {
		return oops.New(ErrMissingRequiredChunk, "indexed image has no PLTE before IDAT")
	}
	d.compressed.Write(data)
	d.stage = stageDataAccumulated
	return nil
}

func (d *decoder) parseIEND() error {
	switch d.stage {
	case stageStart:
		return oops.New(ErrMissingRequiredChunk, "no IHDR before IEND")
	case stageDataAccumulated:
		return nil
	}
	return oops.New(ErrMissingRequiredChunk, "no IDAT before IEND")
}

func (d *decoder) decompress() error {
	size, _ := d.header.filteredSize()
	filtered, err := inflate(d.opts.Inflater, d.compressed.Bytes(), size)
	if err != nil {
		return err
	}
	d.filtered = filtered
	d.compressed = bytes.Buffer{}
	d.stage = stageDecompressed
	return nil
}

func (d *decoder) reconstruct() error {
	bpp := d.header.bytesPerPixel()
	pix, err := Unfilter(d.filtered, d.header.Stride(), int(d.header.Height), bpp)
	if err != nil {
		return err
	}
	d.pix = pix
	d.filtered = nil
	d.stage = stageReconstructed
	return nil
}

func (d *decoder) image() *Image {
	d.stage = stageReady
	return &Image{
		header:  d.header,
		palette: d.palette,
		model:   d.model,
		pix:     d.pix,
		stride:  d.header.Stride(),
		bpp:     d.header.bytesPerPixel(),
	}
}

// ReadHeader reads a PNG stream only as far as its IHDR chunk.
func ReadHeader(r io.Reader) (Header, error) {
	cr, err := NewChunkReader(r)
	if err != nil {
		return Header{}, err
	}
	cr.Skip = func(typ string) bool { return typ != chunkIHDR }
	for {
		c, err := cr.Next()
		if errors.Is(err, io.EOF) {
			return Header{}, oops.New(ErrMissingRequiredChunk, "no IHDR")
		}
		if err != nil {
			return Header{}, err
		}
		switch c.Type {
		case chunkIHDR:
			return parseHeader(c.Data)
		case chunkPLTE, chunkTRNS, chunkIDAT:
			return Header{}, oops.New(ErrOutOfOrderChunk, "%s before IHDR", c.Type)
		case chunkIEND:
			return Header{}, oops.New(ErrMissingRequiredChunk, "no IHDR before IEND")
		}
	}
}

// DecodeConfig returns the dimensions and color model without decoding pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}
