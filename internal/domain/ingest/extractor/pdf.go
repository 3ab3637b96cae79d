package extractor

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/api"
)

// extractPDF pulls the embedded text layer page by page. Scanned statements
// have no text layer; when extraction fails or comes back empty the same
// file is run through OCR instead. That fallback is a hard requirement, not
// an optimization.
func (e *Extractor) extractPDF(path string) (*Result, error) {
	pageCount, err := pdfcpu.PageCountFile(path)
	if err != nil {
		e.logger.Warn("pdf page count failed, falling back to ocr",
			slog.String("file", filepath.Base(path)),
			slog.Any("error", err),
		)
		return e.pdfOCRFallback(path)
	}

	text, err := pdfTextLayer(path)
	if err != nil || strings.TrimSpace(text) == "" {
		e.logger.Info("pdf has no usable text layer, falling back to ocr",
			slog.String("file", filepath.Base(path)),
			slog.Any("error", err),
		)
		result, ferr := e.pdfOCRFallback(path)
		if ferr != nil {
			return nil, ferr
		}
		result.PageCount = pageCount
		return result, nil
	}

	return &Result{
		Text:      text,
		Method:    MethodPDF,
		PageCount: pageCount,
	}, nil
}

// pdfTextLayer concatenates the embedded text of every page. Panics inside
// the pdf library on malformed files are converted to errors so the caller
// can fall back to OCR.
func pdfTextLayer(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf text extraction panicked: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		buf.WriteString(content)
		buf.WriteByte('\n')
	}

	return buf.String(), nil
}

// pdfOCRFallback runs the OCR strategy against the PDF file itself.
func (e *Extractor) pdfOCRFallback(path string) (*Result, error) {
	text, confidence, err := e.ocr.Recognize(path)
	if err != nil {
		return nil, fmt.Errorf("ocr fallback for %s: %w", filepath.Base(path), err)
	}
	return &Result{
		Text:       CleanOCRText(text),
		Method:     MethodOCR,
		Confidence: confidence,
	}, nil
}
