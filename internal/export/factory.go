package export

import (
	"context"
	"fmt"

	"fintrack/internal/log"
)

// Backend selects the export implementation.
type Backend string

const (
	XLSXBackend   Backend = "xlsx"
	SheetsBackend Backend = "sheets"
)

// String implements fmt.Stringer
func (b Backend) String() string {
	return string(b)
}

// IsValid returns true if the backend type is valid
func (b Backend) IsValid() bool {
	switch b {
	case XLSXBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for writer creation
type Config struct {
	Backend Backend

	// XLSX specific
	ExportDir string
	BaseURL   string

	// Google Sheets specific
	CredentialsFile string
	CredentialsJSON string
}

// NewWriter creates the export writer selected by the config.
func NewWriter(ctx context.Context, cfg Config, logger *log.Logger) (Writer, error) {
	if !cfg.Backend.IsValid() {
		return nil, fmt.Errorf("invalid export backend: %s", cfg.Backend)
	}
	logger = logger.WithComponent(log.ComponentExport)

	switch cfg.Backend {
	case SheetsBackend:
		cli, err := NewGoogleClient(ctx, Credentials{
			File: cfg.CredentialsFile,
			JSON: cfg.CredentialsJSON,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets writer: %w", err)
		}
		logger.Info("Initialized Google Sheets export backend")
		return cli, nil
	default:
		w, err := NewXLSXWriter(cfg.ExportDir, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize XLSX writer: %w", err)
		}
		logger.Info("Initialized XLSX export backend", "export_dir", cfg.ExportDir)
		return w, nil
	}
}
