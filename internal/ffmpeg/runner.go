// Package ffmpeg invokes the external transcoding process. Argument lists
// are built by pure helpers in command.go; Runner owns subprocess execution,
// per-invocation timeouts, and diagnostics capture.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const maxStderrBytes = 8 * 1024 // 8 KB tail of stderr kept for diagnostics

// Runner executes ffmpeg/ffprobe commands. Every invocation is bounded by
// Timeout; a hung external process fails the calling stage instead of
// wedging its worker.
type Runner struct {
	ffmpeg  string
	ffprobe string
	timeout time.Duration
	logger  *slog.Logger
}

func NewRunner(ffmpegPath, ffprobePath string, timeout time.Duration, logger *slog.Logger) *Runner {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Runner{ffmpeg: ffmpegPath, ffprobe: ffprobePath, timeout: timeout, logger: logger}
}

// Run executes ffmpeg with the given arguments. dir, when non-empty, becomes
// the subprocess working directory; relative output names then land there
// without path leakage. A non-zero exit returns an error carrying the exit
// code and the stderr tail.
func (r *Runner) Run(ctx context.Context, dir string, args ...string) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, r.ffmpeg, args...)
	cmd.Dir = dir

	var stderrBuf bytes.Buffer
	cmd.Stderr = &limitedWriter{w: &stderrBuf, limit: maxStderrBytes}
	cmd.Stdout = io.Discard

	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		tail := truncate(stderrBuf.String(), 512)
		r.logger.Warn("ffmpeg invocation failed",
			"exit_code", exitCode,
			"duration_ms", elapsed.Milliseconds(),
			"stderr_tail", tail,
		)
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("ffmpeg timed out after %s", r.timeout)
		}
		return fmt.Errorf("ffmpeg exited %d: %s", exitCode, tail)
	}

	r.logger.Debug("ffmpeg invocation succeeded",
		"duration_ms", elapsed.Milliseconds(),
	)
	return nil
}

// ProbeDuration returns the input's container duration in seconds. Callers
// treat failures as best-effort; a broken probe never fails a task by
// itself.
func (r *Runner) ProbeDuration(ctx context.Context, input string) (float64, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.ffprobe, ProbeDurationArgs(input)...)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	s := strings.TrimSpace(string(out))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter is an io.Writer that keeps only the last `limit` bytes.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		// Keep only the tail
		b := lw.w.Bytes()
		lw.w.Reset()
		lw.w.Write(b[len(b)-lw.limit:])
	}
	return n, nil
}
