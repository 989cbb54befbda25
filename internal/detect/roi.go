package detect

import "image"

// Killfeed region as fractions of the frame, matching the top-right overlay
// placement used by the supported game HUD.
const (
	roiXFrac = 0.80
	roiYFrac = 0.10
	roiWFrac = 0.19
	roiHFrac = 0.25
)

// KillfeedROI computes the killfeed rectangle for a frame of the given
// dimensions. It is recomputed per video and never persisted.
func KillfeedROI(width, height int) image.Rectangle {
	x := int(float64(width) * roiXFrac)
	y := int(float64(height) * roiYFrac)
	w := int(float64(width) * roiWFrac)
	h := int(float64(height) * roiHFrac)
	return image.Rect(x, y, x+w, y+h)
}
