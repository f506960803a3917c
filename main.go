package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/svanichkin/pngview/config"
	"github.com/svanichkin/pngview/logging"
	"github.com/svanichkin/pngview/pngdec"
)

var rootCmd = &cobra.Command{
	Use:           "pngview",
	Short:         "Decode PNG images, inspect their chunks and export the pixels",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		if err := logging.SetLevel(level); err != nil {
			return err
		}
		maxBytes, _ := cmd.Flags().GetInt64("max-bytes")
		if maxBytes < 0 {
			return fmt.Errorf("--max-bytes must not be negative")
		}
		if maxBytes == 0 {
			logging.Warn().Msg("decode size limit disabled")
		}
		config.Config.Decode.MaxDecodedBytes = maxBytes
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", config.Config.LogLevel.String(), "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Int64("max-bytes", config.Config.Decode.MaxDecodedBytes, "Largest inflated image stream to accept, 0 for no limit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.Error().Err(err).Msg("pngview failed")
		os.Exit(1)
	}
}

func decodeOptions() pngdec.Options {
	return pngdec.Options{
		MaxDecodedBytes: config.Config.Decode.MaxDecodedBytes,
		Logger:          logging.GlobalLogger(),
	}
}

func formatSize(size int64) string {
	if size < 1024*1024 {
		return fmt.Sprintf("%.2f KB", float64(size)/1024)
	}
	return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
}
