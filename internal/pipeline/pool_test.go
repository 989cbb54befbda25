package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/fragfeed/fragfeed/internal/task"
)

// blockingDetector lets tests hold workers busy.
type blockingDetector struct {
	release chan struct{}
	started sync.WaitGroup
}

func (b *blockingDetector) Detect(ctx context.Context, videoPath, playerName string) ([]float64, error) {
	b.started.Done()
	<-b.release
	return nil, errors.New("released")
}

func newPoolFixture(t *testing.T, det EventDetector, workers, queue int) (*Pool, *task.Registry) {
	t.Helper()
	registry := task.NewRegistry()
	pipe := New(Deps{
		Detector:  det,
		Extractor: &fakeExtractor{},
		Assembler: &fakeAssembler{},
		Packager:  &fakePackager{},
		Registry:  registry,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, t.TempDir(), t.TempDir())
	return NewPool(pipe, workers, queue), registry
}

func TestPool_StartTwice(t *testing.T) {
	pool, _ := newPoolFixture(t, &fakeDetector{}, 1, 1)

	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	defer pool.Stop()

	if err := pool.Start(context.Background()); err == nil {
		t.Fatal("second Start() succeeded, want error")
	}
}

func TestPool_QueueSaturation(t *testing.T) {
	det := &blockingDetector{release: make(chan struct{})}
	det.started.Add(1)
	pool, _ := newPoolFixture(t, det, 1, 1)

	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() {
		close(det.release)
		pool.Stop()
	}()

	// First submission occupies the single worker.
	if err := pool.Submit(Submission{TaskID: "busy"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	det.started.Wait()

	// Second fills the single queue slot.
	if err := pool.Submit(Submission{TaskID: "queued"}); err != nil {
		t.Fatalf("Submit() into free queue slot error = %v", err)
	}

	// Third must be rejected, not blocked.
	if err := pool.Submit(Submission{TaskID: "rejected"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Submit() on full queue error = %v, want ErrQueueFull", err)
	}
}

func TestPool_ProcessesSubmissions(t *testing.T) {
	pool, registry := newPoolFixture(t, &fakeDetector{events: nil}, 2, 4)

	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer pool.Stop()

	registry.Create("t1")
	if err := pool.Submit(Submission{TaskID: "t1", SourcePath: "/nonexistent", PlayerName: "donk"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if rec := registry.Get("t1"); rec.Terminal() {
			if rec.Status != task.StatusFailed {
				t.Fatalf("status = %q, want failed (no highlights)", rec.Status)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("task never reached a terminal state")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
