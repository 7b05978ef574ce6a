package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/piq-cli/internal/codec"
	"github.com/AnyUserName/piq-cli/internal/metric"
	"github.com/AnyUserName/piq-cli/internal/profile"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported output formats, metrics and profiles",
	Args:  cobra.NoArgs,
	Run:   runFormats,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

func runFormats(_ *cobra.Command, _ []string) {
	registry := codec.NewRegistry()

	fmt.Println("formats:")
	for _, name := range registry.Available() {
		c := registry.Get(name)
		lo, hi := c.NativeRange()
		alpha := "opaque only"
		if c.SupportsAlpha() {
			alpha = "alpha"
		}
		fmt.Printf("  %-5s .%s  param %d-%d  %s\n", c.Name(), c.Extension(), lo, hi, alpha)
	}

	fmt.Printf("metrics: %s\n", strings.Join(metric.Names(), ", "))

	fmt.Println("profiles:")
	for _, name := range profile.Names() {
		p := profile.Get(name)
		fmt.Printf("  %-10s quality=%d spread=%d metric=%s formats=%s\n",
			p.Name, p.Quality, p.Spread, p.Metric, strings.Join(p.Formats, ","))
	}
}
