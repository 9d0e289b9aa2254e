package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

const incomeColumns = "id, title, amount, notes, is_recurring, source, tags, currency, user_id, created_at, updated_at"

func scanIncome(row rowScanner) (core.Income, error) {
	var (
		in      core.Income
		rawTags string
	)
	err := row.Scan(&in.ID, &in.Title, &in.Amount, &in.Notes, &in.IsRecurring,
		&in.Source, &rawTags, &in.Currency, &in.UserID, &in.CreatedAt, &in.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, ErrNotFound
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("scan income: %w", err)
	}
	in.Tags, err = decodeTags(rawTags)
	if err != nil {
		return core.Income{}, err
	}
	return in, nil
}

// CreateIncome inserts a new income. The title is globally unique; a duplicate
// surfaces as ErrDuplicate.
func (r *Repository) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	tags, err := encodeTags(in.Tags)
	if err != nil {
		return core.Income{}, err
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (title, amount, notes, is_recurring, source, tags, currency, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Title, in.Amount, in.Notes, in.IsRecurring, in.Source, tags, in.Currency, in.UserID, now, now)
	if isUniqueViolation(err) {
		return core.Income{}, fmt.Errorf("create income: %w", ErrDuplicate)
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Income{}, fmt.Errorf("create income id: %w", err)
	}
	return r.GetIncome(ctx, id)
}

// GetIncome fetches an income by id.
func (r *Repository) GetIncome(ctx context.Context, id int64) (core.Income, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+incomeColumns+" FROM incomes WHERE id = ?", id)
	return scanIncome(row)
}

// UpdateIncome replaces every mutable field of an income.
func (r *Repository) UpdateIncome(ctx context.Context, id int64, in core.Income) (core.Income, error) {
	tags, err := encodeTags(in.Tags)
	if err != nil {
		return core.Income{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE incomes SET title = ?, amount = ?, notes = ?, is_recurring = ?,
		 source = ?, tags = ?, currency = ?, user_id = ?, updated_at = ? WHERE id = ?`,
		in.Title, in.Amount, in.Notes, in.IsRecurring, in.Source, tags, in.Currency, in.UserID,
		time.Now().UTC(), id)
	if isUniqueViolation(err) {
		return core.Income{}, fmt.Errorf("update income: %w", ErrDuplicate)
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}
	if affected == 0 {
		return core.Income{}, ErrNotFound
	}
	return r.GetIncome(ctx, id)
}

// DeleteIncome removes an income and returns the deleted record.
func (r *Repository) DeleteIncome(ctx context.Context, id int64) (core.Income, error) {
	in, err := r.GetIncome(ctx, id)
	if err != nil {
		return core.Income{}, err
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM incomes WHERE id = ?", id); err != nil {
		return core.Income{}, fmt.Errorf("delete income: %w", err)
	}
	return in, nil
}

// ListIncomes returns one page of the caller's incomes plus the total count of
// the filtered set.
func (r *Repository) ListIncomes(ctx context.Context, f RecordFilter) ([]core.Income, int, error) {
	where, args := recordWhere("incomes", f)

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM incomes WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count incomes: %w", err)
	}

	dir := direction(f.Ascending)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+incomeColumns+" FROM incomes WHERE "+where+
			" ORDER BY created_at "+dir+", id "+dir+" LIMIT ? OFFSET ?",
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	incomes, err := collectIncomes(rows)
	if err != nil {
		return nil, 0, err
	}
	return incomes, total, nil
}

// ListUserIncomes returns every income owned by the user, newest first.
func (r *Repository) ListUserIncomes(ctx context.Context, userID int64) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+incomeColumns+" FROM incomes WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("list user incomes: %w", err)
	}
	defer rows.Close()
	return collectIncomes(rows)
}

// ListRecurringIncomes returns the user's incomes flagged as recurring.
func (r *Repository) ListRecurringIncomes(ctx context.Context, userID int64) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+incomeColumns+" FROM incomes WHERE user_id = ? AND is_recurring = 1 ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring incomes: %w", err)
	}
	defer rows.Close()
	return collectIncomes(rows)
}

// SearchIncomes matches the term case-insensitively against title, notes,
// source and tags.
func (r *Repository) SearchIncomes(ctx context.Context, userID int64, term string) ([]core.Income, error) {
	needle := strings.ToLower(term)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+incomeColumns+" FROM incomes WHERE user_id = ? AND ("+
			"instr(lower(title), ?) > 0 OR instr(lower(notes), ?) > 0 OR "+
			"instr(lower(source), ?) > 0 OR instr(lower(tags), ?) > 0)"+
			" ORDER BY created_at DESC, id DESC",
		userID, needle, needle, needle, needle)
	if err != nil {
		return nil, fmt.Errorf("search incomes: %w", err)
	}
	defer rows.Close()
	return collectIncomes(rows)
}

func collectIncomes(rows *sql.Rows) ([]core.Income, error) {
	var incomes []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect incomes: %w", err)
	}
	return incomes, nil
}
