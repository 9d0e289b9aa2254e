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

const userColumns = "id, username, email, password_hash, is_admin, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// CreateUser inserts a new non-admin account with the given password hash.
func (r *Repository) CreateUser(ctx context.Context, username, email, passwordHash string) (core.User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		username, email, passwordHash, now, now)
	if isUniqueViolation(err) {
		return core.User{}, fmt.Errorf("create user: %w", ErrDuplicate)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("create user id: %w", err)
	}
	return r.GetUserByID(ctx, id)
}

// GetUserByID fetches a user by primary key.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by unique email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// UpdateUser replaces a user's username and email.
func (r *Repository) UpdateUser(ctx context.Context, id int64, username, email string) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET username = ?, email = ?, updated_at = ? WHERE id = ?",
		username, email, time.Now().UTC(), id)
	if isUniqueViolation(err) {
		return core.User{}, fmt.Errorf("update user: %w", ErrDuplicate)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.User{}, fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return core.User{}, ErrNotFound
	}
	return r.GetUserByID(ctx, id)
}

// SetUserAdmin sets a user's admin flag.
func (r *Repository) SetUserAdmin(ctx context.Context, id int64, isAdmin bool) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET is_admin = ?, updated_at = ? WHERE id = ?",
		isAdmin, time.Now().UTC(), id)
	if err != nil {
		return core.User{}, fmt.Errorf("set user admin: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.User{}, fmt.Errorf("set user admin: %w", err)
	}
	if affected == 0 {
		return core.User{}, ErrNotFound
	}
	return r.GetUserByID(ctx, id)
}

// DeleteUser removes a user account.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsers returns one page of users matching the role flag, plus the total
// count of the filtered set.
func (r *Repository) ListUsers(ctx context.Context, f UsersFilter) ([]core.User, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE is_admin = ?", f.Admins).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	dir := direction(f.Ascending)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_admin = ?"+
			" ORDER BY created_at "+dir+", id "+dir+" LIMIT ? OFFSET ?",
		f.Admins, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// SearchUsers matches the term case-insensitively against username and email.
// When role is non-empty the admin flag is filtered as well.
func (r *Repository) SearchUsers(ctx context.Context, term, role string) ([]core.User, error) {
	needle := strings.ToLower(term)
	query := "SELECT " + userColumns + " FROM users" +
		" WHERE (instr(lower(username), ?) > 0 OR instr(lower(email), ?) > 0)"
	args := []any{needle, needle}
	if role != "" {
		query += " AND is_admin = ?"
		args = append(args, role == "admin")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}
