package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/piq-cli/internal/codec"
	"github.com/AnyUserName/piq-cli/internal/metric"
	"github.com/AnyUserName/piq-cli/internal/preprocess"
	"github.com/AnyUserName/piq-cli/internal/search"
)

var (
	sweepFormats []string
	sweepMetric  string
	sweepStep    int
	sweepMin     int
	sweepMax     int
	sweepWorkers int
	sweepOutput  string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep <input>",
	Short: "Measure dissimilarity and size across a parameter range",
	Long: `Encodes the input at every step of each format's native parameter range
and reports one CSV row per trial: format, param, score, bytes. Useful for
inspecting how a particular image responds to an encoder before tuning an
optimize run.`,
	Args: cobra.ExactArgs(1),
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().StringSliceVarP(&sweepFormats, "formats", "f", nil, "formats to sweep (default: all available)")
	sweepCmd.Flags().StringVarP(&sweepMetric, "metric", "m", "", "perceptual metric: dssim (default), butteraugli")
	sweepCmd.Flags().IntVar(&sweepStep, "step", 5, "parameter increment between trials")
	sweepCmd.Flags().IntVar(&sweepMin, "min", -1, "lowest parameter to sweep (default: format minimum)")
	sweepCmd.Flags().IntVar(&sweepMax, "max", -1, "highest parameter to sweep (default: format maximum)")
	sweepCmd.Flags().IntVarP(&sweepWorkers, "workers", "w", 0, "parallel trial workers (0 = NumCPU)")
	sweepCmd.Flags().StringVarP(&sweepOutput, "out", "o", "", "write CSV to this file instead of stdout")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(_ *cobra.Command, args []string) error {
	if sweepStep < 1 {
		return fmt.Errorf("--step must be at least 1, got %d", sweepStep)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	src, err := preprocess.Load(data)
	if err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}

	registry := codec.NewRegistry()
	names := sweepFormats
	if names == nil {
		names = registry.Available()
	}
	candidates := registry.Resolve(names, src.Picture.HasAlpha())
	if len(candidates) == 0 {
		return fmt.Errorf("no usable format among %v", names)
	}

	eval, err := metric.New(sweepMetric, src.Picture)
	if err != nil {
		return err
	}

	var reqs []search.Request
	for _, c := range candidates {
		lo, hi := c.NativeRange()
		if sweepMin >= 0 && sweepMin > lo {
			lo = sweepMin
		}
		if sweepMax >= 0 && sweepMax < hi {
			hi = sweepMax
		}
		for p := lo; p <= hi; p += sweepStep {
			reqs = append(reqs, search.Request{Codec: c, Param: p})
		}
	}
	if len(reqs) == 0 {
		return fmt.Errorf("empty sweep range [%d, %d]", sweepMin, sweepMax)
	}

	sched := search.NewScheduler(src.Picture, eval, sweepWorkers)
	outcomes := sched.Run(context.Background(), reqs)

	out := os.Stdout
	if sweepOutput != "" {
		f, err := os.Create(sweepOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", sweepOutput, err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	if err := w.Write([]string{"format", "param", "score", "bytes"}); err != nil {
		return err
	}
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(os.Stderr, "skip %s param=%d: %v\n", o.Request.Codec.Name(), o.Request.Param, o.Err)
			continue
		}
		row := []string{
			o.Trial.Format,
			strconv.Itoa(o.Trial.Param),
			strconv.FormatFloat(o.Trial.Score, 'f', 6, 64),
			strconv.Itoa(len(o.Trial.Data)),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
