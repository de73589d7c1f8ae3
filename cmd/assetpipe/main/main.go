package main

import (
	"os"

	"github.com/arthur-debert/assetpipe/cmd/assetpipe"
	"github.com/arthur-debert/assetpipe/pkg/ui"
)

func main() {
	rootCmd := assetpipe.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		format := ui.FormatAuto
		if f, ferr := rootCmd.PersistentFlags().GetString("format"); ferr == nil {
			if parsed, perr := ui.ParseFormat(f); perr == nil {
				format = parsed
			}
		}
		if r, rerr := ui.NewRenderer(format, os.Stderr); rerr == nil {
			_ = r.Error(err)
		}
		os.Exit(1)
	}
}
