package core

import (
	"math"
	"strings"
	"time"
)

// Closed whitelists shared by validation and the query pipeline. Order matters:
// validation messages list the allowed values in this order.
var (
	Currencies = []string{
		"USD", "JPY", "EUR", "GBP", "AUD", "CHF", "CNY", "INR", "RUB", "BRL",
		"KWD", "BHD", "OMR", "JOD", "EGP", "TRY", "KRW", "QAR", "SAR", "AED",
		"MAD", "DZD", "TND", "LYD", "SYP", "IRR", "AFN",
	}

	ExpenseCategories = []string{"Food", "Transport", "Utilities", "Entertainment", "Health", "Other"}

	IncomeSources = []string{"Salary", "Business", "Investments", "Freelance", "Other"}

	SortOptions = []string{"asc", "desc", "ascending", "descending", "1", "-1"}

	Roles = []string{"admin", "user"}
)

type (
	// User is an account holder. The password hash never leaves the backend.
	User struct {
		ID           int64     `json:"id"`
		Username     string    `json:"username"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		IsAdmin      bool      `json:"isAdmin"`
		CreatedAt    time.Time `json:"createdAt"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}

	// Expense is a single spending record owned by one user.
	Expense struct {
		ID          int64     `json:"id"`
		Title       string    `json:"title"`
		Amount      float64   `json:"amount"`
		Notes       string    `json:"notes"`
		IsRecurring bool      `json:"isRecurring"`
		Category    string    `json:"category"`
		Tags        []string  `json:"tags"`
		Currency    string    `json:"currency"`
		UserID      int64     `json:"userId"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// Income mirrors Expense with a source instead of a category.
	Income struct {
		ID          int64     `json:"id"`
		Title       string    `json:"title"`
		Amount      float64   `json:"amount"`
		Source      string    `json:"source"`
		Notes       string    `json:"notes"`
		IsRecurring bool      `json:"isRecurring"`
		Tags        []string  `json:"tags"`
		Currency    string    `json:"currency"`
		UserID      int64     `json:"userId"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// AdminStats is the global statistics snapshot for administrators.
	// MostUsedCategories counts occurrences per category, not summed amounts.
	AdminStats struct {
		TotalUsers         int            `json:"totalUsers"`
		TotalAdmins        int            `json:"totalAdmins"`
		TotalExpenses      int            `json:"totalExpenses"`
		TotalAmountSpent   float64        `json:"totalAmountSpent"`
		MostUsedCategories map[string]int `json:"mostUsedCategories"`
	}
)

// OneOf reports whether value appears in the allowed list.
func OneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

// Ascending normalizes a sort parameter to a direction. Unrecognized values
// fall back to descending rather than erroring.
func Ascending(sort string) bool {
	switch strings.ToLower(sort) {
	case "asc", "ascending", "1":
		return true
	default:
		return false
	}
}

// Round2 rounds a monetary amount to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TotalExpenseAmount sums the amounts of the given expenses.
func TotalExpenseAmount(items []Expense) float64 {
	var total float64
	for _, e := range items {
		total += e.Amount
	}
	return total
}

// TotalIncomeAmount sums the amounts of the given incomes.
func TotalIncomeAmount(items []Income) float64 {
	var total float64
	for _, i := range items {
		total += i.Amount
	}
	return total
}

// Balance is the derived, non-persisted net position: incomes minus expenses,
// rounded to two decimals.
func Balance(totalIncomes, totalExpenses float64) float64 {
	return Round2(totalIncomes - totalExpenses)
}
