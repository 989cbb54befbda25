// Package packager converts an assembled highlight video into a segmented
// streaming representation: a DASH manifest plus fixed-length media
// segments, all written into a task-scoped output directory.
package packager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fragfeed/fragfeed/internal/ffmpeg"
)

// ErrPackagingFailed wraps a failed packaging invocation.
var ErrPackagingFailed = errors.New("packaging failed")

// Runner abstracts the external transcoding process; satisfied by
// ffmpeg.Runner.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) error
}

// Packager produces one video (plus optional audio) representation split
// into segments of a fixed length.
type Packager struct {
	runner     Runner
	segmentLen int
	logger     *slog.Logger
}

func NewPackager(runner Runner, segmentLen int, logger *slog.Logger) *Packager {
	return &Packager{runner: runner, segmentLen: segmentLen, logger: logger}
}

// Package re-encodes inputPath into outputDir and returns the manifest's
// filename. The external process runs with outputDir as its working
// directory so every generated name stays local to it; the manifest's
// segment references are basenames only. A source without an audio stream
// packages successfully.
func (p *Packager) Package(ctx context.Context, inputPath, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	absIn, err := filepath.Abs(inputPath)
	if err != nil {
		return "", fmt.Errorf("resolve input path: %w", err)
	}

	if err := p.runner.Run(ctx, outputDir, ffmpeg.PackageArgs(absIn, p.segmentLen)...); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPackagingFailed, err)
	}

	p.logger.Info("stream package written",
		"output_dir", outputDir,
		"manifest", ffmpeg.ManifestName,
		"segment_length_s", p.segmentLen,
	)
	return ffmpeg.ManifestName, nil
}
