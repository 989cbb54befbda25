package detect

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// Recognizer extracts text from a single preprocessed image. Implementations
// must contain their own faults: a malformed or empty image yields an error,
// never a panic that crosses the call boundary.
type Recognizer interface {
	Recognize(img gocv.Mat) (string, error)
	Close() error
}

// Tesseract recognizes text via the Tesseract engine, configured for a
// single uniform block of text as the killfeed renders one. A Tesseract
// client is not safe for concurrent use; each detection scan owns its own
// instance.
type Tesseract struct {
	client *gosseract.Client
}

func NewTesseract(language string) (*Tesseract, error) {
	client := gosseract.NewClient()
	if language != "" {
		if err := client.SetLanguage(language); err != nil {
			client.Close()
			return nil, fmt.Errorf("set ocr language %q: %w", language, err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	return &Tesseract{client: client}, nil
}

// Recognize runs OCR over img. Any engine fault, including a panic from the
// native layer, is returned as an error so callers can degrade to "no text".
func (t *Tesseract) Recognize(img gocv.Mat) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ocr engine fault: %v", r)
		}
	}()

	if img.Empty() {
		return "", fmt.Errorf("empty image")
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return "", fmt.Errorf("encode frame region: %w", err)
	}
	defer buf.Close()

	if err := t.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", fmt.Errorf("set ocr image: %w", err)
	}

	return t.client.Text()
}

func (t *Tesseract) Close() error {
	return t.client.Close()
}
