package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/piq-cli/internal/codec"
	"github.com/AnyUserName/piq-cli/internal/hasher"
	"github.com/AnyUserName/piq-cli/internal/metric"
	"github.com/AnyUserName/piq-cli/internal/preprocess"
	"github.com/AnyUserName/piq-cli/internal/profile"
	"github.com/AnyUserName/piq-cli/internal/report"
	"github.com/AnyUserName/piq-cli/internal/search"
	"github.com/AnyUserName/piq-cli/internal/target"
)

var (
	optOutput      string
	optProfile     string
	optQuality     int
	optSpread      int
	optTarget      float64
	optMinParam    int
	optMaxParam    int
	optFormats     []string
	optMetric      string
	optWorkers     int
	optMaxTrials   int
	optBackground  string
	optTimeout     time.Duration
	optJSONPath    string
	optForce       bool
	optContentAddr bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize <input>",
	Short: "Compress an image to the smallest output that keeps perceived quality",
	Long: `Decodes the input (jpeg, png, webp, gif, bmp, tiff), corrects EXIF
orientation, then searches every candidate output format for the encoder
parameter whose perceptual dissimilarity matches the quality target.
The smallest tolerance-satisfying output wins.

If the optimized output would be larger than the input, the input bytes
are copied through unchanged (disable with --force).`,
	Args: cobra.ExactArgs(1),
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&optOutput, "out", "o", "", "output file (default: <input>.<ext> beside input)")
	optimizeCmd.Flags().StringVarP(&optProfile, "profile", "p", "default", "search profile: "+strings.Join(profile.Names(), ", "))
	optimizeCmd.Flags().IntVarP(&optQuality, "quality", "q", -1, "perceptual quality 0-100 (overrides profile)")
	optimizeCmd.Flags().IntVar(&optSpread, "spread", -1, "search band half-width in quality points (overrides profile)")
	optimizeCmd.Flags().Float64Var(&optTarget, "target", 0, "explicit dissimilarity target (overrides quality table)")
	optimizeCmd.Flags().IntVar(&optMinParam, "min", -1, "explicit minimum native parameter (with --max, overrides band)")
	optimizeCmd.Flags().IntVar(&optMaxParam, "max", -1, "explicit maximum native parameter (with --min, overrides band)")
	optimizeCmd.Flags().StringSliceVarP(&optFormats, "formats", "f", nil, "candidate output formats (overrides profile)")
	optimizeCmd.Flags().StringVarP(&optMetric, "metric", "m", "", "perceptual metric: "+strings.Join(metric.Names(), ", "))
	optimizeCmd.Flags().IntVarP(&optWorkers, "workers", "w", 0, "parallel trial workers (0 = NumCPU)")
	optimizeCmd.Flags().IntVar(&optMaxTrials, "max-trials", search.DefaultBudget, "trial budget per format search")
	optimizeCmd.Flags().StringVar(&optBackground, "background", "", "flatten transparency onto rrggbb background before search")
	optimizeCmd.Flags().DurationVar(&optTimeout, "timeout", 0, "abort remaining searches after this duration, keep best so far")
	optimizeCmd.Flags().StringVar(&optJSONPath, "json", "", "write a JSON run report to this path")
	optimizeCmd.Flags().BoolVar(&optForce, "force", false, "write the optimized output even when larger than the input")
	optimizeCmd.Flags().BoolVar(&optContentAddr, "content-addressed", false, "insert the content hash into the output filename")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(_ *cobra.Command, args []string) error {
	input := args[0]
	start := time.Now()

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	src, err := preprocess.Load(data)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	if src.Orientation != 1 {
		log.Debug().Int("orientation", src.Orientation).Msg("applied exif orientation")
	}

	prof := profile.Get(optProfile)
	if optQuality >= 0 {
		prof.Quality = optQuality
	}
	if optSpread >= 0 {
		prof.Spread = optSpread
	}
	if optMetric != "" {
		prof.Metric = optMetric
	}
	if optFormats != nil {
		prof.Formats = optFormats
	}

	pic := src.Picture
	if optBackground != "" && pic.HasAlpha() {
		bg, err := preprocess.ParseHexColor(optBackground)
		if err != nil {
			return err
		}
		pic = preprocess.Flatten(pic, bg)
		log.Debug().Str("background", optBackground).Msg("flattened transparency")
	}

	registry := codec.NewRegistry()
	log.Debug().Msg(registry.String())
	candidates := registry.Resolve(prof.Formats, pic.HasAlpha())
	if len(candidates) == 0 {
		return fmt.Errorf("no usable output format among %v (transparent source? try --background)", prof.Formats)
	}

	eval, err := metric.New(prof.Metric, pic)
	if err != nil {
		return err
	}

	bands := make(map[string]target.Band, len(candidates))
	for _, c := range candidates {
		band, err := target.DeriveBand(c, target.Options{
			Quality:     prof.Quality,
			Spread:      prof.Spread,
			Metric:      prof.Metric,
			TargetScore: optTarget,
			MinParam:    optMinParam,
			MaxParam:    optMaxParam,
		})
		if err != nil {
			return err
		}
		bands[c.Name()] = band
		log.Debug().Str("format", c.Name()).
			Float64("target", band.Target).Int("min", band.Min).Int("max", band.Max).
			Msg("band")
	}

	searcher, err := search.New(pic, search.Config{
		Codecs:    candidates,
		Bands:     bands,
		Evaluator: eval,
		Budget:    optMaxTrials,
		Workers:   optWorkers,
		Log:       log.Logger,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	if optTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, optTimeout)
		defer cancel()
	}

	res, err := searcher.Run(ctx)
	if err != nil {
		return fmt.Errorf("optimize %s: %w", input, err)
	}

	// Don't regress: pass the input through when it is already smaller.
	outBytes := res.Data
	copied := false
	if !optForce && len(outBytes) >= len(data) {
		outBytes = data
		copied = true
	}

	outFormat := res.Format
	if copied {
		outFormat = src.Format
	}
	outPath, err := outputPath(input, outFormat, registry, outBytes)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, outBytes, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	elapsed := time.Since(start)
	printOptimizeReport(input, outPath, data, outBytes, res, copied, elapsed)

	if optJSONPath != "" {
		r := buildReport(input, outPath, prof, src, data, outBytes, res, candidates, copied, elapsed)
		if err := report.WriteJSON(r, optJSONPath); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}

// outputPath resolves where the winning bytes go: the -o flag wins, else the
// input path with the winner's extension (and optional content hash).
func outputPath(input, format string, registry *codec.Registry, outBytes []byte) (string, error) {
	ext := format
	if c := registry.Get(format); c != nil {
		ext = c.Extension()
	}

	path := optOutput
	if path == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		path = base + "." + ext
		if sameFile(path, input) {
			path = base + ".piq." + ext
		}
	}
	if optContentAddr {
		hash := hasher.ContentHash(outBytes, 16)
		e := filepath.Ext(path)
		path = strings.TrimSuffix(path, e) + "." + hash[:8] + e
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if sameFile(path, input) {
		return "", fmt.Errorf("output %s would overwrite the input", path)
	}
	return path, nil
}

func sameFile(a, b string) bool {
	aa, errA := filepath.Abs(a)
	bb, errB := filepath.Abs(b)
	return errA == nil && errB == nil && aa == bb
}

func printOptimizeReport(input, output string, in, out []byte, res *search.Result, copied bool, elapsed time.Duration) {
	pct := float64(len(out)) / float64(len(in)) * 100
	if copied {
		fmt.Printf("%s: kept original (%s), optimized output would not be smaller\n",
			filepath.Base(input), formatBytes(int64(len(in))))
		return
	}
	status := "ok"
	if !res.Satisfied() {
		status = "closest"
	}
	fmt.Printf("%s -> %s  %s %s -> %s (%.1f%%)  param=%d score=%.5f target=%.5f trials=%d [%s] in %s\n",
		filepath.Base(input), filepath.Base(output),
		res.Format,
		formatBytes(int64(len(in))), formatBytes(int64(len(out))), pct,
		res.Param, res.Score, res.Target, res.Trials, status,
		elapsed.Round(time.Millisecond))
}

func buildReport(input, output string, prof profile.Profile, src *preprocess.Source,
	in, out []byte, res *search.Result, candidates []codec.Codec, copied bool, elapsed time.Duration) *report.Report {

	r := report.New(prof.Name)
	r.Input = report.Input{
		Path:     input,
		Format:   src.Format,
		Width:    src.Picture.W,
		Height:   src.Picture.H,
		Size:     int64(len(in)),
		HasAlpha: src.Picture.HasAlpha(),
	}
	r.Output = report.Output{
		Path:   output,
		Format: res.Format,
		Param:  res.Param,
		Size:   int64(len(out)),
		Hash:   hasher.ContentHash(out, 16),
		Copied: copied,
	}
	var names []string
	for _, c := range candidates {
		names = append(names, c.Name())
	}
	r.Search = report.Search{
		Metric:   prof.Metric,
		Quality:  prof.Quality,
		Target:   res.Target,
		Achieved: res.Score,
		Trials:   res.Trials,
		Formats:  names,
	}
	r.RunInfo = &report.RunInfo{
		Workers:   optWorkers,
		ElapsedMS: elapsed.Milliseconds(),
		Tool:      "piq " + version,
	}
	return r
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
