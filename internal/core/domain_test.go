package core

import "testing"

func TestAscending(t *testing.T) {
	cases := []struct {
		in  string
		asc bool
	}{
		{"asc", true},
		{"ascending", true},
		{"1", true},
		{"ASC", true},
		{"desc", false},
		{"descending", false},
		{"-1", false},
		{"", false},
		{"sideways", false}, // unrecognized values fall back to descending
	}
	for _, tc := range cases {
		if got := Ascending(tc.in); got != tc.asc {
			t.Fatalf("Ascending(%q) = %v, want %v", tc.in, got, tc.asc)
		}
	}
}

func TestBalance(t *testing.T) {
	cases := []struct {
		incomes  float64
		expenses float64
		want     float64
	}{
		{1500, 1800, -300},
		{1800, 1500, 300},
		{0, 0, 0},
		{10.555, 0.55, 10.01}, // rounded to two decimals
	}
	for _, tc := range cases {
		if got := Balance(tc.incomes, tc.expenses); got != tc.want {
			t.Fatalf("Balance(%v, %v) = %v, want %v", tc.incomes, tc.expenses, got, tc.want)
		}
	}
}

func TestTotalAmounts(t *testing.T) {
	expenses := []Expense{{Amount: 10.5}, {Amount: 4.5}, {Amount: 0}}
	if got := TotalExpenseAmount(expenses); got != 15 {
		t.Fatalf("TotalExpenseAmount = %v, want 15", got)
	}
	incomes := []Income{{Amount: 100}, {Amount: 250.25}}
	if got := TotalIncomeAmount(incomes); got != 350.25 {
		t.Fatalf("TotalIncomeAmount = %v, want 350.25", got)
	}
}

func TestOneOf(t *testing.T) {
	if !OneOf("EUR", Currencies) {
		t.Fatal("EUR should be a valid currency")
	}
	if OneOf("eur", Currencies) {
		t.Fatal("currency matching is case-sensitive")
	}
	if OneOf("Groceries", ExpenseCategories) {
		t.Fatal("Groceries is not a valid category")
	}
}
