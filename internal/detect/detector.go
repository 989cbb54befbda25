// Package detect locates a player's eliminations in gameplay footage by
// OCR-scanning the killfeed region of sampled frames.
package detect

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"gocv.io/x/gocv"

	"github.com/fragfeed/fragfeed/internal/media"
)

// Pixel values above the threshold belong to the cluttered scene behind the
// overlay and are mapped to background before recognition.
const binaryThreshold = 150

// Config holds detection policy. SamplePeriod and Cooldown come from
// server configuration.
type Config struct {
	SamplePeriod  float64
	Cooldown      float64
	NewRecognizer func() (Recognizer, error)
	Logger        *slog.Logger
}

// Detector scans a video for killfeed mentions of a player name and emits
// debounced event timestamps.
type Detector struct {
	cfg Config
}

// frameSource yields sampled frames in order. Satisfied by media.Sampler.
type frameSource interface {
	Next() (media.Frame, bool)
}

func New(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect returns the ascending timestamps (seconds) at which playerName
// appears in the killfeed, at most one per cooldown window. A video with no
// matches yields an empty slice and no error; that outcome is how "no
// highlights" is signalled. Per-frame recognition faults degrade to "no
// text" and never abort the scan.
func (d *Detector) Detect(ctx context.Context, videoPath, playerName string) ([]float64, error) {
	src, err := media.Open(videoPath)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	sampler, err := media.NewSampler(src, d.cfg.SamplePeriod)
	if err != nil {
		return nil, err
	}
	defer sampler.Close()

	ocr, err := d.cfg.NewRecognizer()
	if err != nil {
		return nil, fmt.Errorf("initialise ocr: %w", err)
	}
	defer ocr.Close()

	roi := KillfeedROI(src.Width(), src.Height())

	d.cfg.Logger.Info("killfeed scan started",
		"video", videoPath,
		"width", src.Width(),
		"height", src.Height(),
		"frame_rate", src.FrameRate(),
		"sample_interval", sampler.Interval(),
		"roi", roi.String(),
	)

	events, err := d.scan(ctx, sampler, func(frame media.Frame) (string, error) {
		return d.recognizeFrame(ocr, frame, roi)
	}, playerName)
	if err != nil {
		return nil, err
	}

	d.cfg.Logger.Info("killfeed scan finished", "events", len(events))
	return events, nil
}

// scan drives the detection loop over frames. A recognition error on one
// frame reads as no text for that frame; the scan keeps going.
func (d *Detector) scan(ctx context.Context, frames frameSource, recognize func(media.Frame) (string, error), playerName string) ([]float64, error) {
	needle := strings.ToLower(playerName)
	deb := newDebouncer(d.cfg.Cooldown)

	var events []float64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, ok := frames.Next()
		if !ok {
			break
		}

		text, err := recognize(frame)
		if err != nil {
			d.cfg.Logger.Debug("frame recognition failed",
				"frame", frame.Index,
				"error", err,
			)
			continue
		}

		if !strings.Contains(strings.ToLower(text), needle) {
			continue
		}
		if !deb.accept(frame.Timestamp) {
			continue
		}

		d.cfg.Logger.Info("kill event detected",
			"timestamp_s", frame.Timestamp,
			"frame", frame.Index,
		)
		events = append(events, frame.Timestamp)
	}

	return events, nil
}

// recognizeFrame crops the killfeed region, normalizes it for text contrast,
// and runs recognition on the result.
func (d *Detector) recognizeFrame(ocr Recognizer, frame media.Frame, roi image.Rectangle) (string, error) {
	region := frame.Image.Region(roi)
	defer region.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(region, &gray, gocv.ColorBGRToGray)

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(gray, &bin, binaryThreshold, 255, gocv.ThresholdBinaryInv)

	return ocr.Recognize(bin)
}

// debouncer enforces the minimum gap between accepted events. The sentinel
// start value keeps the first candidate unconditionally acceptable.
type debouncer struct {
	cooldown float64
	last     float64
}

func newDebouncer(cooldown float64) *debouncer {
	return &debouncer{cooldown: cooldown, last: -2 * cooldown}
}

func (d *debouncer) accept(ts float64) bool {
	if ts <= d.last+d.cooldown {
		return false
	}
	d.last = ts
	return true
}
