package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "piq",
	Short: "Perceptual image optimizer",
	Long: `piq compresses an image to JPEG, WebP or quantized PNG while holding
perceived quality constant. Instead of hand-picking an encoder quality,
you pick a perceptual quality level; piq searches each candidate format
for the parameter that lands on the matching dissimilarity target and
keeps the smallest acceptable output.`,
	Version: version,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (per-trial search trace)")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"piq %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}
