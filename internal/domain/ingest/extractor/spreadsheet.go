package extractor

import (
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractSpreadsheet renders the first sheet of an xlsx export as CSV text,
// so spreadsheet exports flow through the same downstream path as native
// CSV files.
func (e *Extractor) extractSpreadsheet(path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", filepath.Base(path))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("render sheet %q: %w", sheets[0], err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("render sheet %q: %w", sheets[0], err)
	}

	return &Result{Text: sb.String(), Method: MethodCSV}, nil
}
