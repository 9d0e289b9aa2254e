package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter renders sheets to .xlsx files under a local export directory.
// Files are served by the API under /exports/.
type XLSXWriter struct {
	dir     string
	baseURL string
}

var _ Writer = (*XLSXWriter)(nil)

// NewXLSXWriter creates the export directory if needed.
func NewXLSXWriter(dir, baseURL string) (*XLSXWriter, error) {
	if dir == "" {
		return nil, fmt.Errorf("export directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &XLSXWriter{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Write renders the sheet to <baseName>-<timestamp>.xlsx and returns its URL.
func (w *XLSXWriter) Write(ctx context.Context, baseName string, sheet Sheet) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	name := sheet.Name
	if name == "" {
		name = "Sheet1"
	}
	index, err := f.NewSheet(name)
	if err != nil {
		return "", fmt.Errorf("create sheet %s: %w", name, err)
	}
	f.SetActiveSheet(index)
	if name != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	header := make([]any, len(sheet.Header))
	for i, h := range sheet.Header {
		header[i] = h
	}
	if err := writeRow(f, name, 1, header); err != nil {
		return "", err
	}
	for i, row := range sheet.Rows {
		if err := writeRow(f, name, i+2, row); err != nil {
			return "", err
		}
	}

	fileName := fmt.Sprintf("%s-%s.xlsx", sanitizeFileName(baseName), time.Now().UTC().Format("20060102-150405"))
	if err := f.SaveAs(filepath.Join(w.dir, fileName)); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	return w.baseURL + "/exports/" + fileName, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

// sanitizeFileName keeps the exported file name URL and filesystem safe.
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "export"
	}
	return b.String()
}
