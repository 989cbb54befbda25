package media

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// Frame is one sampled frame. Image is a view into the sampler's internal
// buffer and is only valid until the next call to Next; consumers must copy
// or crop what they need before advancing.
type Frame struct {
	Index     int
	Timestamp float64
	Image     gocv.Mat
}

// Sampler walks a Source forward and yields roughly one frame per period
// seconds of source time, bounding downstream OCR cost. It is not
// restartable; a fresh pass requires reopening the source.
type Sampler struct {
	src      *Source
	interval int
	buf      gocv.Mat
	frameIdx int
	done     bool
}

// NewSampler derives the sampling interval from the source's reported frame
// rate: interval = max(1, round(rate * period)) frames.
func NewSampler(src *Source, period float64) (*Sampler, error) {
	if src.FrameRate() <= 0 {
		return nil, fmt.Errorf("%w: reported rate %.3f", ErrInvalidFrameRate, src.FrameRate())
	}
	return &Sampler{
		src:      src,
		interval: SampleInterval(src.FrameRate(), period),
		buf:      gocv.NewMat(),
	}, nil
}

// SampleInterval computes the frame stride for a given rate and sampling
// period in seconds.
func SampleInterval(frameRate, period float64) int {
	n := int(math.Round(frameRate * period))
	if n < 1 {
		return 1
	}
	return n
}

// Interval returns the stride in frames between samples.
func (s *Sampler) Interval() int {
	return s.interval
}

// Next advances to the next sampled frame. The second return is false at
// end of stream.
func (s *Sampler) Next() (Frame, bool) {
	if s.done {
		return Frame{}, false
	}

	for {
		if ok := s.src.cap.Read(&s.buf); !ok || s.buf.Empty() {
			s.done = true
			return Frame{}, false
		}
		idx := s.frameIdx
		s.frameIdx++

		if idx%s.interval != 0 {
			continue
		}

		return Frame{
			Index:     idx,
			Timestamp: float64(idx) / s.src.FrameRate(),
			Image:     s.buf,
		}, true
	}
}

// Close releases the sampler's frame buffer. The underlying Source is left
// open for the owner to close.
func (s *Sampler) Close() {
	s.buf.Close()
}
