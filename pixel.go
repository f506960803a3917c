package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/svanichkin/pngview/logging"
	"github.com/svanichkin/pngview/pngdec"
)

var pixelCmd = &cobra.Command{
	Use:   "pixel <input> <x> <y>",
	Short: "Print the RGBA value of one pixel",
	Args:  cobra.ExactArgs(3),
	RunE:  runPixel,
}

func init() {
	rootCmd.AddCommand(pixelCmd)
}

func runPixel(cmd *cobra.Command, args []string) error {
	path := args[0]
	x, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid x %q: %w", args[1], err)
	}
	y, err := strconv.ParseUint(args[2], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid y %q: %w", args[2], err)
	}

	img, err := pngdec.DecodeFile(path, decodeOptions())
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	c, err := img.Pixel(uint32(x), uint32(y))
	if err != nil {
		return err
	}

	logging.Info().
		Str("file", path).
		Uint64("x", x).
		Uint64("y", y).
		Msg("sampled pixel")
	fmt.Fprintf(cmd.OutOrStdout(), "(%d, %d): R=%d G=%d B=%d A=%d\n", x, y, c.R, c.G, c.B, c.A)
	return nil
}
