package clip

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fragfeed/fragfeed/internal/ffmpeg"
)

// Runner abstracts the external transcoding process; satisfied by
// ffmpeg.Runner.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) error
}

// Extractor cuts one stream-copied clip file per event into a task-scoped
// working directory.
type Extractor struct {
	runner   Runner
	duration float64
	logger   *slog.Logger
}

func NewExtractor(runner Runner, duration float64, logger *slog.Logger) *Extractor {
	return &Extractor{runner: runner, duration: duration, logger: logger}
}

// Extract produces clips for events in chronological order. A failed cut is
// skipped so one bad window cannot sink the whole batch; the returned paths
// are the subsequence that succeeded, original order preserved. An empty
// result with a nil error is a valid outcome.
func (e *Extractor) Extract(ctx context.Context, videoPath string, events []float64, workDir string) ([]string, error) {
	clips := make([]string, 0, len(events))

	for i, ts := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		w := WindowFor(ts, e.duration)
		out := filepath.Join(workDir, fmt.Sprintf("clip_%03d.mp4", i))

		err := e.runner.Run(ctx, "", ffmpeg.TrimArgs(videoPath, w.Start, w.Duration, out)...)
		if err != nil {
			e.logger.Warn("clip extraction failed, skipping window",
				"event_s", ts,
				"start_s", w.Start,
				"error", err,
			)
			continue
		}

		e.logger.Info("clip extracted",
			"event_s", ts,
			"start_s", w.Start,
			"duration_s", w.Duration,
			"clip", filepath.Base(out),
		)
		clips = append(clips, out)
	}

	return clips, nil
}
