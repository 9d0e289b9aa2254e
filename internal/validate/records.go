package validate

import "fintrack/internal/core"

// ExpensePayload carries the raw expense fields to validate. IsRecurring is a
// pointer so an absent flag can be told apart from an explicit false.
type ExpensePayload struct {
	Title       string
	Amount      float64
	IsRecurring *bool
	Category    string
	Currency    string
	UserID      int64
}

// Expense validates a create/update expense payload.
func Expense(p ExpensePayload) Result {
	return First("all fields are required , please input all fields",
		Text(p.Title, "the title is required , please input the title",
			Length(p.Title, 3, 100, "the title must be between 3 and 100 characters"),
		),
		Amount(p.Amount, "the amount is required , please input the amount",
			NonNegative(p.Amount, "the amount must be greater than 0"),
		),
		Flag(p.IsRecurring, "the isRecurring is required , please input the isRecurring"),
		Text(p.Category, "the category is required , please input the category",
			Enum(p.Category, core.ExpenseCategories, "the category must be one of the following : "),
		),
		Text(p.Currency, "the currency is required , please input the currency",
			Exactly(p.Currency, 3, "the currency must be 3 characters"),
			Uppercase(p.Currency, "the currency must be in uppercase"),
			Enum(p.Currency, core.Currencies, "the currency must be one of the following : "),
		),
		ID(p.UserID, "the userId is required , please input the userId"),
	)
}

// IncomePayload carries the raw income fields to validate.
type IncomePayload struct {
	Title       string
	Amount      float64
	IsRecurring *bool
	Source      string
	Currency    string
	UserID      int64
}

// Income validates a create/update income payload.
func Income(p IncomePayload) Result {
	return First("all fields are required , please input all fields",
		Text(p.Title, "the title is required , please input the title",
			Length(p.Title, 3, 100, "the title must be between 3 and 100 characters"),
		),
		Amount(p.Amount, "the amount is required , please input the amount",
			NonNegative(p.Amount, "the amount must be greater than 0"),
		),
		Flag(p.IsRecurring, "the isRecurring is required , please input the isRecurring"),
		Text(p.Source, "the source is required , please input the source",
			Enum(p.Source, core.IncomeSources, "the source must be one of the following : "),
		),
		Text(p.Currency, "the currency is required , please input the currency",
			Exactly(p.Currency, 3, "the currency must be 3 characters"),
			Uppercase(p.Currency, "the currency must be in uppercase"),
			Enum(p.Currency, core.Currencies, "the currency must be one of the following : "),
		),
		ID(p.UserID, "the userId is required , please input the userId"),
	)
}
