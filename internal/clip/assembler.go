package clip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fragfeed/fragfeed/internal/ffmpeg"
)

var (
	// ErrNoClips is returned when assembly is requested with no input clips.
	ErrNoClips = errors.New("no clips to assemble")

	// ErrAssemblyFailed wraps a failed concatenation invocation.
	ErrAssemblyFailed = errors.New("assembly failed")
)

const concatListName = "concat.txt"

// Assembler concatenates extracted clips, in input order, into a single
// contiguous video via the concat demuxer (stream copy).
type Assembler struct {
	runner Runner
	logger *slog.Logger
}

func NewAssembler(runner Runner, logger *slog.Logger) *Assembler {
	return &Assembler{runner: runner, logger: logger}
}

// Assemble writes a concat list file next to the clips and runs the
// external process with that directory as its working directory so the
// relative clip references resolve. The list file is removed afterward
// regardless of outcome.
func (a *Assembler) Assemble(ctx context.Context, clips []string, outputPath string) error {
	if len(clips) == 0 {
		return ErrNoClips
	}

	listDir := filepath.Dir(clips[0])
	listPath := filepath.Join(listDir, concatListName)

	var b strings.Builder
	for _, c := range clips {
		fmt.Fprintf(&b, "file '%s'\n", filepath.Base(c))
	}
	if err := os.WriteFile(listPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listPath)

	absOut, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	if err := a.runner.Run(ctx, listDir, ffmpeg.ConcatArgs(concatListName, absOut)...); err != nil {
		return fmt.Errorf("%w: %v", ErrAssemblyFailed, err)
	}

	a.logger.Info("clips assembled", "count", len(clips), "output", filepath.Base(outputPath))
	return nil
}
