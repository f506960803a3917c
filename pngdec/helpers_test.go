package pngdec

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

type testChunk struct {
	typ  string
	data []byte
}

// buildPNG frames chunks behind the PNG signature with correct CRCs.
func buildPNG(chunks ...testChunk) []byte {
	var b bytes.Buffer
	b.WriteString(pngSignature)
	for _, c := range chunks {
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], uint32(len(c.data)))
		b.Write(tmp[:])
		crc := crc32.NewIEEE()
		crc.Write([]byte(c.typ))
		crc.Write(c.data)
		b.WriteString(c.typ)
		b.Write(c.data)
		binary.BigEndian.PutUint32(tmp[:], crc.Sum32())
		b.Write(tmp[:])
	}
	return b.Bytes()
}

func ihdr(w, h uint32, depth uint8, ct ColorType, interlace uint8) testChunk {
	data := make([]byte, 13)
	binary.BigEndian.PutUint32(data[0:], w)
	binary.BigEndian.PutUint32(data[4:], h)
	data[8] = depth
	data[9] = uint8(ct)
	data[12] = interlace
	return testChunk{typ: "IHDR", data: data}
}

func iend() testChunk {
	return testChunk{typ: "IEND"}
}

func compress(t *testing.T, raw []byte) []byte {
	t.Helper()
	var b bytes.Buffer
	zw := zlib.NewWriter(&b)
	_, err := zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return b.Bytes()
}

// idat compresses raw and splits the result into IDAT chunks of at most
// size bytes.
func idat(t *testing.T, raw []byte, size int) []testChunk {
	t.Helper()
	z := compress(t, raw)
	var chunks []testChunk
	for len(z) > 0 {
		n := size
		if n > len(z) {
			n = len(z)
		}
		chunks = append(chunks, testChunk{typ: "IDAT", data: z[:n]})
		z = z[n:]
	}
	return chunks
}

// filterRow filters one scanline the way an encoder would, given the row
// above, and prefixes it with its filter byte.
func filterRow(ft FilterType, cur, prev []byte, bpp int) []byte {
	out := make([]byte, 0, len(cur)+1)
	out = append(out, byte(ft))
	for i := range cur {
		var a, c byte
		if i >= bpp {
			a = cur[i-bpp]
			c = prev[i-bpp]
		}
		b := prev[i]
		var pred byte
		switch ft {
		case FilterSub:
			pred = a
		case FilterUp:
			pred = b
		case FilterAverage:
			pred = byte((int(a) + int(b)) / 2)
		case FilterPaeth:
			pred = paeth(a, b, c)
		}
		out = append(out, cur[i]-pred)
	}
	return out
}

// filterRows applies ft to every row of pix.
func filterRows(ft FilterType, pix []byte, stride, height, bpp int) []byte {
	out := make([]byte, 0, height*(stride+1))
	prev := make([]byte, stride)
	for y := 0; y < height; y++ {
		cur := pix[y*stride : (y+1)*stride]
		out = append(out, filterRow(ft, cur, prev, bpp)...)
		prev = cur
	}
	return out
}

// simplePNG wraps unfiltered samples in a minimal valid file.
func simplePNG(t *testing.T, w, h uint32, ct ColorType, pix []byte, extra ...testChunk) []byte {
	t.Helper()
	bpp, err := ct.BytesPerPixel()
	require.NoError(t, err)
	filtered := filterRows(FilterNone, pix, int(w)*bpp, int(h), bpp)

	chunks := []testChunk{ihdr(w, h, 8, ct, 0)}
	chunks = append(chunks, extra...)
	chunks = append(chunks, idat(t, filtered, 1<<20)...)
	chunks = append(chunks, iend())
	return buildPNG(chunks...)
}
