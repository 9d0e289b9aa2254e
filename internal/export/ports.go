// Package export renders user data to spreadsheets. Two backends exist: a
// local XLSX writer served from the exports directory, and Google Sheets.
package export

import "context"

// Sheet is one tabular export: a worksheet name, a header row and data rows.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Writer persists a sheet and returns the URL where it can be retrieved.
type Writer interface {
	Write(ctx context.Context, baseName string, sheet Sheet) (url string, err error)
}
