package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestReportRoundtrip(t *testing.T) {
	r := New("test-profile")
	r.Input = Input{
		Path: "in.png", Format: "png",
		Width: 800, Height: 600, Size: 100000, HasAlpha: false,
	}
	r.Output = Output{
		Path: "out.webp", Format: "webp", Param: 78,
		Size: 24000, Hash: "abcd1234abcd1234",
	}
	r.Search = Search{
		Metric: "dssim", Quality: 85,
		Target: 0.0047, Achieved: 0.0044, Trials: 6,
		Formats: []string{"webp", "jpeg"},
	}
	r.RunInfo = &RunInfo{Workers: 4, ElapsedMS: 310, Tool: "piq 0.1.0"}

	dir := t.TempDir()
	path := filepath.Join(dir, "piq.report.json")
	if err := WriteJSON(r, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var r2 Report
	if err := json.Unmarshal(data, &r2); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if r2.Version != SupportedReportVersion {
		t.Errorf("version: got %d, want %d", r2.Version, SupportedReportVersion)
	}
	if r2.Profile != "test-profile" {
		t.Errorf("profile: got %q", r2.Profile)
	}
	if r2.Input.Width != 800 || r2.Input.Format != "png" {
		t.Errorf("input: got %+v", r2.Input)
	}
	if r2.Output.Format != "webp" || r2.Output.Param != 78 {
		t.Errorf("output: got %+v", r2.Output)
	}
	if r2.Search.Trials != 6 {
		t.Errorf("trials: got %d", r2.Search.Trials)
	}
	if r2.RunInfo == nil || r2.RunInfo.Workers != 4 {
		t.Error("run_info not parsed correctly")
	}
}

func TestComputeDerived(t *testing.T) {
	r := New("x")
	r.Input.Size = 100000
	r.Output.Size = 24000
	r.Search.Target = 0.0050
	r.Search.Achieved = 0.0044
	r.ComputeDerived()

	if r.Output.Percent != 24.0 {
		t.Errorf("percent: got %v, want 24.0", r.Output.Percent)
	}
	if !r.Search.Satisfied {
		t.Error("achieved below target not marked satisfied")
	}

	r.Search.Achieved = 0.0060
	r.ComputeDerived()
	if r.Search.Satisfied {
		t.Error("achieved above target marked satisfied")
	}
}

func TestReportIgnoresUnknownFields(t *testing.T) {
	raw := `{
		"version": 1,
		"generated_at": "2026-01-01T00:00:00Z",
		"profile": "default",
		"future_field": "ignored",
		"input": { "path": "a.png", "width": 10, "height": 10, "new_thing": 1 },
		"output": { "path": "a.webp", "format": "webp", "param": 80 },
		"search": { "metric": "dssim", "trials": 3, "new_stat": 42 }
	}`

	var r Report
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal with unknown fields: %v", err)
	}
	if r.Version != 1 || r.Search.Trials != 3 {
		t.Error("known fields not parsed")
	}
}
