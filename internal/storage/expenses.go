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

const expenseColumns = "id, title, amount, notes, is_recurring, category, tags, currency, user_id, created_at, updated_at"

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e       core.Expense
		rawTags string
	)
	err := row.Scan(&e.ID, &e.Title, &e.Amount, &e.Notes, &e.IsRecurring,
		&e.Category, &rawTags, &e.Currency, &e.UserID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	e.Tags, err = decodeTags(rawTags)
	if err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// CreateExpense inserts a new expense. The title is globally unique; a
// duplicate surfaces as ErrDuplicate.
func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return core.Expense{}, err
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (title, amount, notes, is_recurring, category, tags, currency, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Title, e.Amount, e.Notes, e.IsRecurring, e.Category, tags, e.Currency, e.UserID, now, now)
	if isUniqueViolation(err) {
		return core.Expense{}, fmt.Errorf("create expense: %w", ErrDuplicate)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense id: %w", err)
	}
	return r.GetExpense(ctx, id)
}

// GetExpense fetches an expense by id.
func (r *Repository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id)
	return scanExpense(row)
}

// UpdateExpense replaces every mutable field of an expense.
func (r *Repository) UpdateExpense(ctx context.Context, id int64, e core.Expense) (core.Expense, error) {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return core.Expense{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET title = ?, amount = ?, notes = ?, is_recurring = ?,
		 category = ?, tags = ?, currency = ?, user_id = ?, updated_at = ? WHERE id = ?`,
		e.Title, e.Amount, e.Notes, e.IsRecurring, e.Category, tags, e.Currency, e.UserID,
		time.Now().UTC(), id)
	if isUniqueViolation(err) {
		return core.Expense{}, fmt.Errorf("update expense: %w", ErrDuplicate)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if affected == 0 {
		return core.Expense{}, ErrNotFound
	}
	return r.GetExpense(ctx, id)
}

// DeleteExpense removes an expense and returns the deleted record.
func (r *Repository) DeleteExpense(ctx context.Context, id int64) (core.Expense, error) {
	e, err := r.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id); err != nil {
		return core.Expense{}, fmt.Errorf("delete expense: %w", err)
	}
	return e, nil
}

func recordWhere(table string, f RecordFilter) (string, []any) {
	where := []string{"user_id = ?"}
	args := []any{f.UserID}
	if f.Currency != "" {
		where = append(where, "currency = ?")
		args = append(args, f.Currency)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Source != "" {
		where = append(where, "source = ?")
		args = append(args, f.Source)
	}
	if f.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each("+table+".tags) WHERE json_each.value = ?)")
		args = append(args, f.Tag)
	}
	return strings.Join(where, " AND "), args
}

// ListExpenses returns one page of the caller's expenses plus the total count
// of the filtered set.
func (r *Repository) ListExpenses(ctx context.Context, f RecordFilter) ([]core.Expense, int, error) {
	where, args := recordWhere("expenses", f)

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM expenses WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	dir := direction(f.Ascending)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE "+where+
			" ORDER BY created_at "+dir+", id "+dir+" LIMIT ? OFFSET ?",
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses, err := collectExpenses(rows)
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

// ListUserExpenses returns every expense owned by the user, newest first.
func (r *Repository) ListUserExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("list user expenses: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

// ListRecurringExpenses returns the user's expenses flagged as recurring.
func (r *Repository) ListRecurringExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? AND is_recurring = 1 ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring expenses: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

// SearchExpenses matches the term case-insensitively against title, notes,
// category and tags.
func (r *Repository) SearchExpenses(ctx context.Context, userID int64, term string) ([]core.Expense, error) {
	needle := strings.ToLower(term)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? AND ("+
			"instr(lower(title), ?) > 0 OR instr(lower(notes), ?) > 0 OR "+
			"instr(lower(category), ?) > 0 OR instr(lower(tags), ?) > 0)"+
			" ORDER BY created_at DESC, id DESC",
		userID, needle, needle, needle, needle)
	if err != nil {
		return nil, fmt.Errorf("search expenses: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

func collectExpenses(rows *sql.Rows) ([]core.Expense, error) {
	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect expenses: %w", err)
	}
	return expenses, nil
}
