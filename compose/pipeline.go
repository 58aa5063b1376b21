package compose

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"vermux/logger"
)

// State names a position in the pipeline's lifecycle. Failed is a parallel
// terminal reachable from any state.
type State int

const (
	StateReceived State = iota
	StateDurationsProbed
	StateSubtitlesRewritten
	StateGraphBuilt
	StateTempoReconciled
	StateCommandAssembled
	StateEncoding
	StateValidated
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateDurationsProbed:
		return "durations-probed"
	case StateSubtitlesRewritten:
		return "subtitles-rewritten"
	case StateGraphBuilt:
		return "graph-built"
	case StateTempoReconciled:
		return "tempo-reconciled"
	case StateCommandAssembled:
		return "command-assembled"
	case StateEncoding:
		return "encoding"
	case StateValidated:
		return "validated"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Request is one accepted composition job. Immutable once accepted.
type Request struct {
	VideoPath     string
	AudioPath     string
	SubtitlePath  string // optional
	Caption       string // optional
	Quality       string // tier; unknown values resolve to draft
	DurationMatch string // policy; unknown values preserve video length
}

// Result is the finished-artifact handle. The rendered output stays
// registered with the lifecycle until the caller finishes delivering it and
// calls Cleanup, which unlinks every pipeline-owned artifact exactly once.
type Result struct {
	OutputPath string
	Size       int64
	Elapsed    time.Duration

	lifecycle *ArtifactLifecycle
}

// Cleanup releases every pipeline-owned artifact. Safe to call more than
// once; only the first call deletes.
func (r *Result) Cleanup() { r.lifecycle.Cleanup() }

// Pipeline orchestrates one composition end to end. Instances hold no
// per-request state and are safe for concurrent use.
type Pipeline struct {
	cfg    Config
	engine Engine
}

// NewPipeline builds a pipeline around an immutable config and an engine.
func NewPipeline(cfg Config, engine Engine) *Pipeline {
	return &Pipeline{cfg: cfg, engine: engine}
}

// Run executes the composition: probe durations, rewrite subtitles, build
// the filter graph, reconcile audio tempo, assemble and run the encode, and
// validate the output. workDir is the request's private temp namespace; the
// rendered artifact is created inside it.
//
// On failure every pipeline-owned artifact is cleaned up before the
// classified error is returned; no partial media ever escapes.
func (p *Pipeline) Run(ctx context.Context, req Request, workDir string) (*Result, error) {
	start := time.Now()
	state := StateReceived
	lifecycle := NewArtifactLifecycle()

	fail := func(kind FailureKind, diagnostics string, cause error, format string, a ...any) error {
		state = StateFailed
		lifecycle.Cleanup()
		err := failf(kind, time.Since(start), cause, format, a...)
		err.Diagnostics = diagnostics
		logger.Errorf("pipeline failed (%s) after %s: %v", err.Kind, err.Elapsed.Round(time.Millisecond), err)
		return err
	}

	if err := validateRequest(req); err != nil {
		state = StateFailed
		lifecycle.Cleanup()
		return nil, err
	}

	videoDur, videoOK := p.engine.ProbeDuration(ctx, req.VideoPath)
	audioDur, audioOK := p.engine.ProbeDuration(ctx, req.AudioPath)
	state = StateDurationsProbed
	logger.Debugf("state=%s video=%.3fs(ok=%v) audio=%.3fs(ok=%v)", state, videoDur, videoOK, audioDur, audioOK)

	profile := ResolveProfile(req.Quality)
	policy := ResolvePolicy(req.DurationMatch)

	subtitlePath := ""
	if req.SubtitlePath != "" {
		styled, err := RewriteSubtitleFile(p.cfg, req.SubtitlePath)
		if err != nil {
			return nil, fail(KindSubtitle, "", err, "subtitle processing failed")
		}
		lifecycle.Register(styled)
		subtitlePath = styled
		state = StateSubtitlesRewritten
		logger.Debugf("state=%s styled=%s", state, styled)
	}

	graph, err := BuildFilterGraph(p.cfg, profile, subtitlePath, req.Caption)
	if err != nil {
		return nil, fail(KindEncode, "", err, "filter graph assembly failed")
	}
	state = StateGraphBuilt

	plan := ReconcileTempo(p.cfg, videoDur, videoOK, audioDur, audioOK)
	if err := graph.ApplyTempo(plan); err != nil {
		return nil, fail(KindEncode, "", err, "tempo chain assembly failed")
	}
	state = StateTempoReconciled
	if plan.Adjusted() {
		logger.Infof("audio tempo adjusted: factor=%.4f stages=%d", plan.Factor(), len(plan.Stages))
	}

	outputPath := filepath.Join(workDir, "render.mp4")
	lifecycle.Register(outputPath)
	cmd := AssembleCommand(p.cfg, profile, graph, policy, req.VideoPath, req.AudioPath, outputPath)
	state = StateCommandAssembled

	state = StateEncoding
	encodeCtx, cancel := context.WithTimeout(ctx, p.cfg.EncodeTimeout)
	defer cancel()

	diagnostics, err := p.engine.Encode(encodeCtx, cmd)
	if err != nil {
		if errors.Is(encodeCtx.Err(), context.DeadlineExceeded) {
			return nil, fail(KindEncodeTimeout, diagnostics, err, "encode exceeded %s bound", p.cfg.EncodeTimeout)
		}
		return nil, fail(KindEncode, diagnostics, err, "engine reported failure")
	}

	// The engine reporting success is not enough: a silent empty-output bug
	// must not be reported as success.
	info, statErr := os.Stat(outputPath)
	if statErr != nil || info.Size() == 0 {
		return nil, fail(KindOutputInvalid, diagnostics, statErr, "rendered output missing or empty")
	}
	state = StateValidated

	state = StateDone
	elapsed := time.Since(start)
	logger.Infof("render complete: %s (%d bytes, %s, tier=%s)", outputPath, info.Size(), elapsed.Round(time.Millisecond), profile.Name)

	return &Result{
		OutputPath: outputPath,
		Size:       info.Size(),
		Elapsed:    elapsed,
		lifecycle:  lifecycle,
	}, nil
}

func validateRequest(req Request) error {
	if req.VideoPath == "" {
		return failf(KindValidation, 0, nil, "missing video input")
	}
	if req.AudioPath == "" {
		return failf(KindValidation, 0, nil, "missing audio input")
	}
	for _, path := range []string{req.VideoPath, req.AudioPath} {
		if _, err := os.Stat(path); err != nil {
			return failf(KindValidation, 0, err, "input %s not readable", filepath.Base(path))
		}
	}
	if req.SubtitlePath != "" {
		if _, err := os.Stat(req.SubtitlePath); err != nil {
			return failf(KindValidation, 0, err, "subtitle input not readable")
		}
	}
	return nil
}
