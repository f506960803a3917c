package main

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/svanichkin/pngview/config"
	"github.com/svanichkin/pngview/logging"
	"github.com/svanichkin/pngview/pngdec"
	"github.com/xfmoulet/qoi"
	"golang.org/x/image/bmp"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input> [output]",
	Short: "Decode a PNG or RGBZ file and write it as QOI, BMP or RGBZ",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().Bool("checker", false, "Flatten transparency onto a checkerboard before writing")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	inPath := args[0]
	outPath := strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".qoi"
	if len(args) == 2 {
		outPath = args[1]
	}
	checker, _ := cmd.Flags().GetBool("checker")

	return convertImage(cmd.OutOrStdout(), inPath, outPath, decodeOptions(), checker)
}

func convertImage(w io.Writer, inPath, outPath string, opts pngdec.Options, checker bool) error {
	info, err := os.Stat(inPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	inSize := info.Size()

	start := time.Now()
	img, err := loadImage(inPath, opts)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", inPath, err)
	}

	var out image.Image = img
	if checker {
		out = flatten(toNRGBA(img), config.Config.Checker)
	}

	enc, err := encodeImage(out, filepath.Ext(outPath))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", outPath, err)
	}
	finish := time.Since(start)

	if err := os.WriteFile(outPath, enc, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	outSize := int64(len(enc))
	ratio := float64(outSize) / float64(inSize)

	logging.Debug().
		Str("in", inPath).
		Str("out", outPath).
		Dur("took", finish).
		Msg("converted image")

	fmt.Fprintf(w, "%s (%s) → %s (%s)\n",
		inPath,
		formatSize(inSize),
		outPath,
		formatSize(outSize),
	)
	fmt.Fprintf(w, "ratio=%.3f, time=%s\n",
		ratio,
		finish,
	)

	return nil
}

// loadImage picks the reader by extension. Anything that is not .rgbz goes
// through the PNG decoder.
func loadImage(path string, opts pngdec.Options) (image.Image, error) {
	if strings.ToLower(filepath.Ext(path)) == ".rgbz" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return DecodeRGBZ(data)
	}
	return pngdec.DecodeFile(path, opts)
}

func encodeImage(img image.Image, ext string) ([]byte, error) {
	nrgba := toNRGBA(img)
	switch strings.ToLower(ext) {
	case ".qoi":
		var buf bytes.Buffer
		if err := qoi.Encode(&buf, nrgba); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case ".bmp":
		var buf bytes.Buffer
		if err := bmp.Encode(&buf, nrgba); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case ".rgbz":
		return EncodeRGBZ(nrgba)
	default:
		return nil, fmt.Errorf("unsupported output format %q", ext)
	}
}
