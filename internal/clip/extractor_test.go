package clip

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"testing"
)

// fakeRunner records invocations and fails those whose index is listed in
// failOn.
type fakeRunner struct {
	calls  [][]string
	dirs   []string
	failOn map[int]bool
}

func (f *fakeRunner) Run(ctx context.Context, dir string, args ...string) error {
	idx := len(f.calls)
	f.calls = append(f.calls, args)
	f.dirs = append(f.dirs, dir)
	if f.failOn[idx] {
		return errors.New("ffmpeg exited 1: boom")
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractor_AllWindowsSucceed(t *testing.T) {
	runner := &fakeRunner{}
	e := NewExtractor(runner, 10, testLogger())

	clips, err := e.Extract(context.Background(), "in.mp4", []float64{5.0, 40.0}, t.TempDir())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("got %d clips, want 2", len(clips))
	}
	if len(runner.calls) != 2 {
		t.Fatalf("runner invoked %d times, want 2", len(runner.calls))
	}

	// Window starts: max(0, 5-5)=0 and max(0, 40-5)=35, chronological.
	if got := argAfter(t, runner.calls[0], "-ss"); got != "0.000" {
		t.Errorf("first window start = %s, want 0.000", got)
	}
	if got := argAfter(t, runner.calls[1], "-ss"); got != "35.000" {
		t.Errorf("second window start = %s, want 35.000", got)
	}
}

func TestExtractor_FailedWindowIsSkipped(t *testing.T) {
	runner := &fakeRunner{failOn: map[int]bool{1: true}}
	e := NewExtractor(runner, 10, testLogger())

	clips, err := e.Extract(context.Background(), "in.mp4", []float64{5.0, 40.0, 90.0}, t.TempDir())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("got %d clips, want 2 (failed window skipped)", len(clips))
	}

	// Order preserved: surviving clips are the first and third windows.
	if base := filepath.Base(clips[0]); base != "clip_000.mp4" {
		t.Errorf("first surviving clip = %s, want clip_000.mp4", base)
	}
	if base := filepath.Base(clips[1]); base != "clip_002.mp4" {
		t.Errorf("second surviving clip = %s, want clip_002.mp4", base)
	}
}

func TestExtractor_AllWindowsFailIsNotAnError(t *testing.T) {
	runner := &fakeRunner{failOn: map[int]bool{0: true, 1: true}}
	e := NewExtractor(runner, 10, testLogger())

	clips, err := e.Extract(context.Background(), "in.mp4", []float64{5.0, 40.0}, t.TempDir())
	if err != nil {
		t.Fatalf("Extract() error = %v, want nil", err)
	}
	if len(clips) != 0 {
		t.Fatalf("got %d clips, want 0", len(clips))
	}
}

func TestExtractor_NoEvents(t *testing.T) {
	runner := &fakeRunner{}
	e := NewExtractor(runner, 10, testLogger())

	clips, err := e.Extract(context.Background(), "in.mp4", nil, t.TempDir())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(clips) != 0 || len(runner.calls) != 0 {
		t.Fatalf("expected no clips and no invocations, got %d/%d", len(clips), len(runner.calls))
	}
}

func argAfter(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
	return ""
}

func TestExtractor_StreamCopy(t *testing.T) {
	runner := &fakeRunner{}
	e := NewExtractor(runner, 8, testLogger())

	if _, err := e.Extract(context.Background(), "in.mp4", []float64{12.0}, t.TempDir()); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	args := runner.calls[0]
	if got := argAfter(t, args, "-c"); got != "copy" {
		t.Errorf("codec = %s, want copy (stream copy, no re-encode)", got)
	}
	if got := argAfter(t, args, "-t"); got != strconv.FormatFloat(8, 'f', 3, 64) {
		t.Errorf("duration = %s, want 8.000", got)
	}
}
