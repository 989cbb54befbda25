// Package pipeline orchestrates one highlight-generation run: detect kill
// events, cut clips, assemble them, package the result for streaming, and
// drive the task record to a terminal state no matter what happens along
// the way.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/fragfeed/fragfeed/internal/logging"
	"github.com/fragfeed/fragfeed/internal/task"
)

// Stage interfaces. The concrete implementations live in detect, clip and
// packager; the orchestrator only sequences them.
type (
	EventDetector interface {
		Detect(ctx context.Context, videoPath, playerName string) ([]float64, error)
	}

	ClipExtractor interface {
		Extract(ctx context.Context, videoPath string, events []float64, workDir string) ([]string, error)
	}

	ClipAssembler interface {
		Assemble(ctx context.Context, clips []string, outputPath string) error
	}

	StreamPackager interface {
		Package(ctx context.Context, inputPath, outputDir string) (string, error)
	}

	// MediaProber reports source metadata. Optional; probing is best-effort
	// and never fails a run.
	MediaProber interface {
		ProbeDuration(ctx context.Context, input string) (float64, error)
	}
)

// MessageNoHighlights is the user-visible reason for runs where the scan
// found nothing. It is a normal failed outcome, not an internal error.
const MessageNoHighlights = "no highlights found"

const assembledName = "highlights.mp4"

type Deps struct {
	Detector  EventDetector
	Extractor ClipExtractor
	Assembler ClipAssembler
	Packager  StreamPackager
	Prober    MediaProber
	Registry  *task.Registry
	Logger    *slog.Logger
}

type Pipeline struct {
	deps       Deps
	workRoot   string
	outputRoot string
}

func New(deps Deps, workRoot, outputRoot string) *Pipeline {
	return &Pipeline{deps: deps, workRoot: workRoot, outputRoot: outputRoot}
}

// Run executes the full pipeline for one task and records the terminal
// state. The uploaded source is deleted when the run finishes, whatever the
// outcome, and the task-scoped work directory is removed on every exit
// path. Run never lets a fault escape: panics are mapped to a failed task.
func (p *Pipeline) Run(ctx context.Context, taskID, sourcePath, playerName string) {
	log := logging.WithTaskID(p.deps.Logger, taskID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline panic recovered", "panic", r)
			p.deps.Registry.Fail(taskID, fmt.Sprintf("internal error: %v", r))
		}
	}()
	defer removeQuiet(log, sourcePath)

	workDir := filepath.Join(p.workRoot, taskID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		log.Error("cannot create work dir", "error", err)
		p.deps.Registry.Fail(taskID, "internal error: cannot create working directory")
		return
	}
	defer removeAllQuiet(log, workDir)

	if p.deps.Prober != nil {
		if dur, err := p.deps.Prober.ProbeDuration(ctx, sourcePath); err == nil {
			log = log.With("source_duration_s", dur)
		}
	}
	log.Info("pipeline started", "player", playerName)

	events, err := p.deps.Detector.Detect(ctx, sourcePath, playerName)
	if err != nil {
		log.Warn("detection failed", "error", err)
		p.deps.Registry.Fail(taskID, fmt.Sprintf("detection failed: %v", err))
		return
	}
	if len(events) == 0 {
		log.Info("no kill events detected")
		p.deps.Registry.Fail(taskID, MessageNoHighlights)
		return
	}

	clips, err := p.deps.Extractor.Extract(ctx, sourcePath, events, workDir)
	if err != nil {
		log.Warn("clip extraction failed", "error", err)
		p.deps.Registry.Fail(taskID, fmt.Sprintf("clip extraction failed: %v", err))
		return
	}
	if len(clips) == 0 {
		log.Warn("no clips could be extracted", "events", len(events))
		p.deps.Registry.Fail(taskID, "no clips could be extracted")
		return
	}

	assembled := filepath.Join(workDir, assembledName)
	if err := p.deps.Assembler.Assemble(ctx, clips, assembled); err != nil {
		log.Warn("assembly failed", "error", err)
		p.deps.Registry.Fail(taskID, fmt.Sprintf("assembly failed: %v", err))
		return
	}
	if _, err := os.Stat(assembled); err != nil {
		log.Warn("assembled video missing", "error", err)
		p.deps.Registry.Fail(taskID, "assembly produced no output")
		return
	}

	// The output directory is created here, not earlier, so failed runs
	// leave nothing behind under the output root.
	outputDir := filepath.Join(p.outputRoot, taskID)
	manifest, err := p.deps.Packager.Package(ctx, assembled, outputDir)
	if err != nil {
		log.Warn("packaging failed", "error", err)
		removeAllQuiet(log, outputDir)
		p.deps.Registry.Fail(taskID, fmt.Sprintf("packaging failed: %v", err))
		return
	}

	locator := path.Join(taskID, manifest)
	p.deps.Registry.Complete(taskID, locator)
	log.Info("pipeline completed",
		"events", len(events),
		"clips", len(clips),
		"manifest", locator,
	)
}

// removeQuiet deletes a file, tolerating paths that are already gone.
func removeQuiet(log *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("cleanup failed", "path", path, "error", err)
	}
}

// removeAllQuiet deletes a directory tree, tolerating paths that are
// already gone.
func removeAllQuiet(log *slog.Logger, path string) {
	if err := os.RemoveAll(path); err != nil {
		log.Warn("cleanup failed", "path", path, "error", err)
	}
}
