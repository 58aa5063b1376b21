package compose

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"vermux/logger"
)

// diagnosticsLimit caps how much engine stderr is kept for error reports.
const diagnosticsLimit = 8 << 10

// FFmpegEngine drives ffmpeg/ffprobe as external processes.
type FFmpegEngine struct {
	ffmpegBin  string
	ffprobeBin string
}

// NewFFmpegEngine returns an engine bound to the configured binaries.
func NewFFmpegEngine(cfg Config) *FFmpegEngine {
	return &FFmpegEngine{ffmpegBin: cfg.FFmpegBin, ffprobeBin: cfg.FFprobeBin}
}

// VerifyTools checks that both engine binaries are resolvable. Called once
// at startup so a misconfigured host fails fast instead of per request.
func (e *FFmpegEngine) VerifyTools() error {
	for _, bin := range []string{e.ffmpegBin, e.ffprobeBin} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("engine binary %q not found in PATH: %w", bin, err)
		}
	}
	return nil
}

// ProbeDuration asks ffprobe for the container duration. Any failure
// (missing stream, non-media file, engine error) degrades to unknown.
func (e *FFmpegEngine) ProbeDuration(ctx context.Context, path string) (float64, bool) {
	cmd := exec.CommandContext(ctx, e.ffprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		logger.Warnf("duration probe degraded for %s: %v", path, err)
		return 0, false
	}
	sec, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || sec < 0 {
		logger.Warnf("duration probe degraded for %s: unparseable result %q", path, strings.TrimSpace(string(out)))
		return 0, false
	}
	return sec, true
}

// Encode runs ffmpeg with the assembled argument vector. The returned
// diagnostics are the tail of the engine's stderr, kept on success and
// failure alike.
func (e *FFmpegEngine) Encode(ctx context.Context, cmd *EncodeCommand) (string, error) {
	logger.Debugf("running: %s %s", e.ffmpegBin, strings.Join(cmd.Args, " "))

	var stderr bytes.Buffer
	proc := exec.CommandContext(ctx, e.ffmpegBin, cmd.Args...)
	proc.Stderr = &stderr

	err := proc.Run()
	diag := tail(stderr.Bytes(), diagnosticsLimit)
	if err != nil {
		return diag, fmt.Errorf("ffmpeg: %w", err)
	}
	return diag, nil
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
