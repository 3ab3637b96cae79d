package extractor

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine is the production OCR engine, backed by a gosseract
// client. It is not safe for concurrent use; each ingestion pipeline uses
// it sequentially.
type TesseractEngine struct {
	client *gosseract.Client
}

// NewTesseractEngine creates an OCR engine for the given languages
// (defaults to English when none are given).
func NewTesseractEngine(languages ...string) (*TesseractEngine, error) {
	client := gosseract.NewClient()
	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			client.Close()
			return nil, fmt.Errorf("set ocr languages: %w", err)
		}
	}
	return &TesseractEngine{client: client}, nil
}

// Recognize runs OCR over the image at path and returns the recognized text
// with a mean word confidence (0-100).
func (t *TesseractEngine) Recognize(path string) (string, float64, error) {
	if err := t.client.SetImage(path); err != nil {
		return "", 0, fmt.Errorf("set image: %w", err)
	}

	text, err := t.client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("recognize text: %w", err)
	}

	confidence := 0.0
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err == nil && len(boxes) > 0 {
		var sum float64
		for _, b := range boxes {
			sum += b.Confidence
		}
		confidence = sum / float64(len(boxes))
	}

	return text, confidence, nil
}

// Close releases the underlying Tesseract resources.
func (t *TesseractEngine) Close() error {
	return t.client.Close()
}
