// Package storage implements the SQLite persistence layer.
//
// All queries are parameterized by the filter/sort/pagination structs used by
// the list pipeline. There are no transactions: concurrent updates to the
// same record follow last-write-wins semantics at the store level.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound reports that the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate reports a violation of a unique column (title, email,
	// username).
	ErrDuplicate = errors.New("duplicate value for unique field")
)

// Repository is the SQLite-backed data access layer for users, expenses and
// incomes.
type Repository struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at dbPath and applies
// pending migrations.
func Open(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// RecordFilter parameterizes list queries for expenses and incomes.
// Zero-valued filter fields are not applied; set fields combine with AND.
type RecordFilter struct {
	UserID    int64
	Currency  string
	Category  string // expenses only
	Source    string // incomes only
	Tag       string
	Ascending bool
	Offset    int
	Limit     int
}

// UsersFilter parameterizes the admin user listing.
type UsersFilter struct {
	Admins    bool
	Ascending bool
	Offset    int
	Limit     int
}

func direction(ascending bool) string {
	if ascending {
		return "ASC"
	}
	return "DESC"
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}
