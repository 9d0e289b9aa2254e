package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestXLSXWriterWrite(t *testing.T) {
	dir := t.TempDir()
	w, err := NewXLSXWriter(dir, "http://localhost:8081/")
	if err != nil {
		t.Fatalf("NewXLSXWriter() error = %v", err)
	}

	url, err := w.Write(context.Background(), "My Expenses", Sheet{
		Name:   "Expenses",
		Header: []string{"Title", "Amount", "Currency"},
		Rows: [][]any{
			{"rent", 800.0, "EUR"},
			{"groceries", 42.5, "EUR"},
		},
	})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if !strings.HasPrefix(url, "http://localhost:8081/exports/my-expenses-") {
		t.Errorf("Write() url = %q, want /exports/my-expenses-* prefix", url)
	}
	if !strings.HasSuffix(url, ".xlsx") {
		t.Errorf("Write() url = %q, want .xlsx suffix", url)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("export dir has %d files, want 1", len(entries))
	}

	f, err := excelize.OpenFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Expenses", "A2")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if got != "rent" {
		t.Errorf("cell A2 = %q, want rent", got)
	}
	header, err := f.GetCellValue("Expenses", "C1")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if header != "Currency" {
		t.Errorf("cell C1 = %q, want Currency", header)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Expenses", "my-expenses"},
		{"  report_2024  ", "report_2024"},
		{"///", "export"},
		{"Città!", "citt"},
	}
	for _, tt := range tests {
		if got := sanitizeFileName(tt.in); got != tt.want {
			t.Errorf("sanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
