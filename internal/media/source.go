// Package media wraps video decoding behind a small surface: open a source,
// query its geometry, and sample frames at a fixed temporal cadence.
package media

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

var (
	// ErrSourceUnreadable marks input files that cannot be opened or decoded.
	ErrSourceUnreadable = errors.New("source unreadable")

	// ErrInvalidFrameRate marks sources reporting a zero or negative frame
	// rate, which makes a sampling interval impossible to compute.
	ErrInvalidFrameRate = errors.New("invalid frame rate")
)

// Source is an open handle on an on-disk video file. It owns the underlying
// capture and must be closed by the caller.
type Source struct {
	cap    *gocv.VideoCapture
	path   string
	width  int
	height int
	fps    float64
}

// Open opens the video at path for forward-only reading.
func Open(path string) (*Source, error) {
	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, path, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("%w: %s", ErrSourceUnreadable, path)
	}

	return &Source{
		cap:    cap,
		path:   path,
		width:  int(cap.Get(gocv.VideoCaptureFrameWidth)),
		height: int(cap.Get(gocv.VideoCaptureFrameHeight)),
		fps:    cap.Get(gocv.VideoCaptureFPS),
	}, nil
}

func (s *Source) Path() string       { return s.path }
func (s *Source) Width() int         { return s.width }
func (s *Source) Height() int        { return s.height }
func (s *Source) FrameRate() float64 { return s.fps }

// Close releases the underlying capture. Safe to call once.
func (s *Source) Close() error {
	return s.cap.Close()
}
