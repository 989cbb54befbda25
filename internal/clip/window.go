// Package clip turns detected event timestamps into trimmed clip files and
// concatenates them into a single highlight video.
package clip

// Window is the time span cut around one event: Duration seconds centered
// on the event, clamped so the start never goes negative.
type Window struct {
	Start    float64
	Duration float64
}

// WindowFor derives the clip window for an event at timestamp seconds.
func WindowFor(timestamp, duration float64) Window {
	start := timestamp - duration/2
	if start < 0 {
		start = 0
	}
	return Window{Start: start, Duration: duration}
}
