package report

import (
	"encoding/json"
	"os"
	"time"
)

// SupportedReportVersion is the current schema version.
const SupportedReportVersion = 1

// Report is the machine-readable record of one optimization run.
type Report struct {
	Version     int      `json:"version"`
	GeneratedAt string   `json:"generated_at"`
	Profile     string   `json:"profile"`
	Input       Input    `json:"input"`
	Output      Output   `json:"output"`
	Search      Search   `json:"search"`
	RunInfo     *RunInfo `json:"run_info,omitempty"`
}

// Input holds metadata about the source image.
type Input struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int64  `json:"size"`
	HasAlpha bool   `json:"has_alpha"`
}

// Output describes the winning encoding.
type Output struct {
	Path    string  `json:"path"`
	Format  string  `json:"format"` // "jpeg", "webp", "png"
	Param   int     `json:"param"`  // native parameter the winner used
	Size    int64   `json:"size"`   // bytes written
	Hash    string  `json:"hash"`   // first 16 hex chars of xxhash64
	Copied  bool    `json:"copied"` // true when the input was passed through unchanged
	Percent float64 `json:"percent_of_original"`
}

// Search captures how the winner was found.
type Search struct {
	Metric    string   `json:"metric"`
	Quality   int      `json:"quality"`
	Target    float64  `json:"target_score"`
	Achieved  float64  `json:"achieved_score"`
	Satisfied bool     `json:"satisfied"`
	Trials    int      `json:"trials"`
	Formats   []string `json:"candidate_formats"`
}

// RunInfo captures run-time parameters for diagnostics.
type RunInfo struct {
	Workers   int    `json:"workers"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Tool      string `json:"tool,omitempty"`
}

// New creates a report shell with defaults.
func New(profileName string) *Report {
	return &Report{
		Version:     SupportedReportVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Profile:     profileName,
	}
}

// ComputeDerived fills the fields computable from the rest of the report.
func (r *Report) ComputeDerived() {
	if r.Input.Size > 0 {
		r.Output.Percent = float64(r.Output.Size) / float64(r.Input.Size) * 100
	}
	r.Search.Satisfied = r.Search.Achieved <= r.Search.Target
}

// WriteJSON serializes the report to a JSON file.
func WriteJSON(r *Report, path string) error {
	r.ComputeDerived()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
