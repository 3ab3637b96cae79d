// Package extractor turns statement files into plain text. The strategy is
// chosen by file extension: embedded-text extraction for PDFs (with an OCR
// fallback for scanned documents), OCR for raster images, and a direct read
// for CSV exports. Spreadsheet exports are rendered to CSV text.
package extractor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Method identifies the strategy that produced the extracted text.
type Method string

const (
	MethodPDF Method = "pdf-extraction"
	MethodOCR Method = "ocr"
	MethodCSV Method = "csv-read"
)

// Result is the outcome of one extraction attempt. Text is always populated
// on success. Confidence is 0-100 and only meaningful for MethodOCR; it is
// informational and never gates acceptance. PageCount is only set for PDFs.
type Result struct {
	Text       string
	Method     Method
	Confidence float64
	PageCount  int
}

// ErrUnsupportedExtension indicates a file outside the extractor's
// allow-list of formats.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// imageExtensions are the raster formats routed to OCR.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".gif":  true,
}

// Engine runs OCR over a raster image file. Implementations must be safe
// for sequential reuse; the production engine wraps Tesseract.
type Engine interface {
	Recognize(path string) (text string, confidence float64, err error)
	Close() error
}

// Extractor selects and runs the extraction strategy for a file.
type Extractor struct {
	ocr    Engine
	logger *slog.Logger
}

// New creates an extractor using the given OCR engine.
func New(ocr Engine, logger *slog.Logger) *Extractor {
	return &Extractor{ocr: ocr, logger: logger}
}

// Extract produces the plain text of the file at path. It always returns a
// populated Result or an error, never partial text. A PDF without a usable
// text layer falls back to OCR on the same file; failures on any other path
// are fatal for the attempt.
func (e *Extractor) Extract(path string) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case ext == ".pdf":
		return e.extractPDF(path)
	case imageExtensions[ext]:
		return e.extractImage(path)
	case ext == ".csv":
		return e.extractCSV(path)
	case ext == ".xlsx":
		return e.extractSpreadsheet(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, ext)
	}
}

// extractImage runs OCR and cleans up the recognized text.
func (e *Extractor) extractImage(path string) (*Result, error) {
	text, confidence, err := e.ocr.Recognize(path)
	if err != nil {
		return nil, fmt.Errorf("ocr %s: %w", filepath.Base(path), err)
	}

	return &Result{
		Text:       CleanOCRText(text),
		Method:     MethodOCR,
		Confidence: confidence,
	}, nil
}

// extractCSV reads the file verbatim.
func (e *Extractor) extractCSV(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", filepath.Base(path), err)
	}
	return &Result{Text: string(data), Method: MethodCSV}, nil
}
