package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

// AdminStats aggregates platform-wide counters for the admin dashboard.
func (r *Repository) AdminStats(ctx context.Context) (core.AdminStats, error) {
	var stats core.AdminStats

	err := r.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE is_admin = 1),
			(SELECT COUNT(*) FROM expenses),
			(SELECT COALESCE(SUM(amount), 0) FROM expenses)`).
		Scan(&stats.TotalUsers, &stats.TotalAdmins, &stats.TotalExpenses, &stats.TotalAmountSpent)
	if err != nil {
		return core.AdminStats{}, fmt.Errorf("admin stats: %w", err)
	}
	stats.TotalAmountSpent = core.Round2(stats.TotalAmountSpent)

	rows, err := r.db.QueryContext(ctx,
		"SELECT category, COUNT(*) FROM expenses GROUP BY category ORDER BY COUNT(*) DESC, category ASC")
	if err != nil {
		return core.AdminStats{}, fmt.Errorf("admin stats categories: %w", err)
	}
	defer rows.Close()

	stats.MostUsedCategories = make(map[string]int)
	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return core.AdminStats{}, fmt.Errorf("admin stats categories: %w", err)
		}
		stats.MostUsedCategories[category] = count
	}
	if err := rows.Err(); err != nil {
		return core.AdminStats{}, fmt.Errorf("admin stats categories: %w", err)
	}
	return stats, nil
}
