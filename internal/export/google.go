package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Credentials selects the service account used to talk to the Sheets API.
// Inline JSON wins over the file path.
type Credentials struct {
	File string
	JSON string
}

// GoogleClient writes exports as new Google Sheets spreadsheets.
type GoogleClient struct {
	svc *gsheet.Service
}

var _ Writer = (*GoogleClient)(nil)

// NewGoogleClient creates a Sheets client from service account credentials.
func NewGoogleClient(ctx context.Context, creds Credentials) (*GoogleClient, error) {
	credentialsJSON, err := resolveCredentials(creds)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &GoogleClient{svc: svc}, nil
}

func resolveCredentials(creds Credentials) ([]byte, error) {
	switch {
	case strings.TrimSpace(creds.JSON) != "":
		return []byte(creds.JSON), nil
	case strings.TrimSpace(creds.File) != "":
		b, err := os.ReadFile(creds.File)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing Google credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")
	}
}

// Write creates a new spreadsheet holding the sheet and returns its URL.
func (c *GoogleClient) Write(ctx context.Context, baseName string, sheet Sheet) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	name := sheet.Name
	if name == "" {
		name = "Sheet1"
	}
	title := fmt.Sprintf("%s %s", baseName, time.Now().UTC().Format("2006-01-02 15:04"))

	created, err := c.svc.Spreadsheets.Create(&gsheet.Spreadsheet{
		Properties: &gsheet.SpreadsheetProperties{Title: title},
		Sheets: []*gsheet.Sheet{
			{Properties: &gsheet.SheetProperties{Title: name}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create spreadsheet: %w", err)
	}

	values := make([][]any, 0, len(sheet.Rows)+1)
	header := make([]any, len(sheet.Header))
	for i, h := range sheet.Header {
		header[i] = h
	}
	values = append(values, header)
	values = append(values, sheet.Rows...)

	rng := fmt.Sprintf("%s!A1", name)
	vr := &gsheet.ValueRange{Values: values}
	_, err = c.svc.Spreadsheets.Values.Update(created.SpreadsheetId, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s in spreadsheet %s: %w", rng, created.SpreadsheetId, err)
	}

	return created.SpreadsheetUrl, nil
}
