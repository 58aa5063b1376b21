package compose

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeEngine stands in for the external encoder. Probe results are keyed by
// path; Encode optionally writes output bytes, fails, or blocks until the
// context expires.
type fakeEngine struct {
	durations   map[string]float64
	encodeErr   error
	diagnostics string
	output      []byte
	noOutput    bool
	blockFor    time.Duration

	encodeCalls int
	lastCmd     *EncodeCommand
}

func (f *fakeEngine) ProbeDuration(_ context.Context, path string) (float64, bool) {
	d, ok := f.durations[path]
	return d, ok
}

func (f *fakeEngine) Encode(ctx context.Context, cmd *EncodeCommand) (string, error) {
	f.encodeCalls++
	f.lastCmd = cmd

	if f.blockFor > 0 {
		select {
		case <-ctx.Done():
			return f.diagnostics, ctx.Err()
		case <-time.After(f.blockFor):
		}
	}
	if f.encodeErr != nil {
		return f.diagnostics, f.encodeErr
	}
	if !f.noOutput {
		out := f.output
		if out == nil {
			out = []byte("rendered")
		}
		if err := os.WriteFile(cmd.OutputPath, out, 0644); err != nil {
			return f.diagnostics, err
		}
	}
	return f.diagnostics, nil
}

// newTestRequest lays out video and audio inputs in dir and returns the
// request pointing at them.
func newTestRequest(t *testing.T, dir string) Request {
	t.Helper()
	video := filepath.Join(dir, "clip.mp4")
	audio := filepath.Join(dir, "voice.aac")
	for _, p := range []string{video, audio} {
		if err := os.WriteFile(p, []byte("media"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return Request{VideoPath: video, AudioPath: audio}
}

func TestPipelineSuccess(t *testing.T) {
	dir := t.TempDir()
	req := newTestRequest(t, dir)
	engine := &fakeEngine{
		durations: map[string]float64{req.VideoPath: 10, req.AudioPath: 10},
	}

	result, err := NewPipeline(DefaultConfig(), engine).Run(context.Background(), req, dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.OutputPath != filepath.Join(dir, "render.mp4") {
		t.Errorf("output path %q", result.OutputPath)
	}
	if result.Size != int64(len("rendered")) {
		t.Errorf("size %d, want %d", result.Size, len("rendered"))
	}
	if _, err := os.Stat(result.OutputPath); err != nil {
		t.Errorf("rendered output missing before Cleanup: %v", err)
	}

	// The output survives until the caller releases it
	result.Cleanup()
	if _, err := os.Stat(result.OutputPath); !os.IsNotExist(err) {
		t.Error("rendered output not removed by Cleanup")
	}
}

func TestPipelineValidationFailsBeforeEngine(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{}
	pipeline := NewPipeline(DefaultConfig(), engine)

	cases := []Request{
		{AudioPath: filepath.Join(dir, "voice.aac")},
		{VideoPath: filepath.Join(dir, "clip.mp4")},
		{VideoPath: filepath.Join(dir, "missing.mp4"), AudioPath: filepath.Join(dir, "missing.aac")},
	}

	for i, req := range cases {
		_, err := pipeline.Run(context.Background(), req, dir)
		if err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
		if kind := KindOf(err); kind != KindValidation {
			t.Errorf("case %d: kind %s, want validation", i, kind)
		}
		if elapsed := ElapsedOf(err); elapsed != 0 {
			t.Errorf("case %d: validation failure reports elapsed %v", i, elapsed)
		}
	}

	if engine.encodeCalls != 0 {
		t.Errorf("engine invoked %d times on invalid requests", engine.encodeCalls)
	}
}

func TestPipelineEncodeFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	req := newTestRequest(t, dir)

	subs := filepath.Join(dir, "subs.ass")
	if err := os.WriteFile(subs, []byte(sampleASS), 0644); err != nil {
		t.Fatal(err)
	}
	req.SubtitlePath = subs

	engine := &fakeEngine{
		durations:   map[string]float64{req.VideoPath: 10, req.AudioPath: 10},
		encodeErr:   errors.New("exit status 1"),
		diagnostics: "Error while filtering: invalid argument",
	}

	_, err := NewPipeline(DefaultConfig(), engine).Run(context.Background(), req, dir)
	if err == nil {
		t.Fatal("expected encode failure")
	}
	if kind := KindOf(err); kind != KindEncode {
		t.Errorf("kind %s, want encode", kind)
	}
	if diag := DiagnosticsOf(err); diag != "Error while filtering: invalid argument" {
		t.Errorf("diagnostics %q", diag)
	}
	if ElapsedOf(err) <= 0 {
		t.Error("encode failure must report elapsed time")
	}

	// Both pipeline-owned artifacts are gone; the uploaded inputs are not
	for _, p := range []string{
		filepath.Join(dir, "subs"+StyledSuffix),
		filepath.Join(dir, "render.mp4"),
	} {
		if _, statErr := os.Stat(p); !os.IsNotExist(statErr) {
			t.Errorf("artifact %s not cleaned up after failure", p)
		}
	}
	for _, p := range []string{req.VideoPath, req.AudioPath, subs} {
		if _, statErr := os.Stat(p); statErr != nil {
			t.Errorf("uploaded input %s removed by pipeline cleanup", p)
		}
	}
}

func TestPipelineSubtitleFailureSkipsEncode(t *testing.T) {
	dir := t.TempDir()
	req := newTestRequest(t, dir)

	subs := filepath.Join(dir, "subs.ass")
	if err := os.WriteFile(subs, []byte("no styles in here"), 0644); err != nil {
		t.Fatal(err)
	}
	req.SubtitlePath = subs

	engine := &fakeEngine{}
	_, err := NewPipeline(DefaultConfig(), engine).Run(context.Background(), req, dir)
	if err == nil {
		t.Fatal("expected subtitle failure")
	}
	if kind := KindOf(err); kind != KindSubtitle {
		t.Errorf("kind %s, want subtitle", kind)
	}
	if engine.encodeCalls != 0 {
		t.Error("engine invoked despite subtitle failure")
	}
}

func TestPipelineEmptyOutputInvalid(t *testing.T) {
	dir := t.TempDir()
	req := newTestRequest(t, dir)
	engine := &fakeEngine{
		durations: map[string]float64{req.VideoPath: 10, req.AudioPath: 10},
		output:    []byte{},
	}

	_, err := NewPipeline(DefaultConfig(), engine).Run(context.Background(), req, dir)
	if err == nil {
		t.Fatal("expected output validation failure")
	}
	if kind := KindOf(err); kind != KindOutputInvalid {
		t.Errorf("kind %s, want output-invalid", kind)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "render.mp4")); !os.IsNotExist(statErr) {
		t.Error("empty output not cleaned up")
	}
}

func TestPipelineMissingOutputInvalid(t *testing.T) {
	dir := t.TempDir()
	req := newTestRequest(t, dir)
	engine := &fakeEngine{
		durations: map[string]float64{req.VideoPath: 10, req.AudioPath: 10},
		noOutput:  true,
	}

	_, err := NewPipeline(DefaultConfig(), engine).Run(context.Background(), req, dir)
	if kind := KindOf(err); kind != KindOutputInvalid {
		t.Errorf("kind %s, want output-invalid", kind)
	}
}

func TestPipelineEncodeTimeout(t *testing.T) {
	dir := t.TempDir()
	req := newTestRequest(t, dir)
	engine := &fakeEngine{
		durations: map[string]float64{req.VideoPath: 10, req.AudioPath: 10},
		blockFor:  time.Second,
	}

	cfg := DefaultConfig()
	cfg.EncodeTimeout = 20 * time.Millisecond

	_, err := NewPipeline(cfg, engine).Run(context.Background(), req, dir)
	if err == nil {
		t.Fatal("expected timeout failure")
	}
	if kind := KindOf(err); kind != KindEncodeTimeout {
		t.Errorf("kind %s, want encode-timeout", kind)
	}
}

func TestPipelineDegradedProbeSkipsTempo(t *testing.T) {
	dir := t.TempDir()
	req := newTestRequest(t, dir)
	// No probe results at all: both durations unknown
	engine := &fakeEngine{}

	_, err := NewPipeline(DefaultConfig(), engine).Run(context.Background(), req, dir)
	if err != nil {
		t.Fatalf("degraded probe must not fail the request: %v", err)
	}
	if desc := argAfter(engine.lastCmd.Args, "-filter_complex"); strings.Contains(desc, "atempo") {
		t.Errorf("tempo stage emitted without known durations: %q", desc)
	}
	if got := argAfter(engine.lastCmd.Args, "-map"); got != "[base]" {
		t.Errorf("video map %q, want [base]", got)
	}
}

func TestPipelineTempoReachesCommand(t *testing.T) {
	dir := t.TempDir()
	req := newTestRequest(t, dir)
	req.DurationMatch = "shortest-of-both"
	engine := &fakeEngine{
		durations: map[string]float64{req.VideoPath: 10, req.AudioPath: 4},
	}

	_, err := NewPipeline(DefaultConfig(), engine).Run(context.Background(), req, dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	desc := argAfter(engine.lastCmd.Args, "-filter_complex")
	if strings.Count(desc, "atempo=") != 2 {
		t.Errorf("expected 2 chained tempo stages, got %q", desc)
	}
	if !argsContain(engine.lastCmd.Args, "[atmp1]") {
		t.Error("synthesized audio label not mapped")
	}
	if !argsContain(engine.lastCmd.Args, "-shortest") {
		t.Error("shortest-of-both policy not forwarded")
	}
}
