package validate

import (
	"strconv"

	"fintrack/internal/core"
)

// Shared defaults for the list pipeline.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

// pageLimit parses and validates the shared page/limit parameters. Raw values
// are the query-string inputs; empty strings select the defaults and skip
// validation, matching the behavior of every list endpoint.
func pageLimit(pageRaw, limitRaw string) (page, limit int, res Result) {
	page, limit = DefaultPage, DefaultPerPage

	if pageRaw != "" {
		p, err := strconv.Atoi(pageRaw)
		if err != nil {
			return 0, 0, Invalid("the page must be a number")
		}
		if p < 0 {
			return 0, 0, Invalid("the page must be greater than or equal to 0")
		}
		page = p
	}

	if limitRaw != "" {
		l, err := strconv.Atoi(limitRaw)
		if err != nil {
			return 0, 0, Invalid("the limit must be a number")
		}
		if l < 1 || l > 20 {
			return 0, 0, Invalid("the limit must be between 1 and 20 ")
		}
		limit = l
	}

	return page, limit, Valid()
}

// ExpenseQuery validates the expense list query string and returns the
// effective page and per-page values.
func ExpenseQuery(pageRaw, limitRaw, currency, category string) (page, limit int, res Result) {
	page, limit, res = pageLimit(pageRaw, limitRaw)
	if !res.IsValid {
		return 0, 0, res
	}
	res = First("",
		OptionalText(category,
			Enum(category, core.ExpenseCategories, "the category must be one of the following : "),
		),
		OptionalText(currency,
			Enum(currency, core.Currencies, "the currency must be one of the following : "),
		),
	)
	if !res.IsValid {
		return 0, 0, res
	}
	return page, limit, Valid()
}

// IncomeQuery validates the income list query string.
func IncomeQuery(pageRaw, limitRaw, currency, source string) (page, limit int, res Result) {
	page, limit, res = pageLimit(pageRaw, limitRaw)
	if !res.IsValid {
		return 0, 0, res
	}
	res = First("",
		OptionalText(source,
			Enum(source, core.IncomeSources, "the source must be one of the following : "),
		),
		OptionalText(currency,
			Enum(currency, core.Currencies, "the currency must be one of the following : "),
		),
	)
	if !res.IsValid {
		return 0, 0, res
	}
	return page, limit, Valid()
}

// UsersQuery validates the admin user list query string.
func UsersQuery(pageRaw, limitRaw, role string) (page, limit int, res Result) {
	page, limit, res = pageLimit(pageRaw, limitRaw)
	if !res.IsValid {
		return 0, 0, res
	}
	res = First("",
		OptionalText(role,
			Enum(role, core.Roles, "the role must be one of the following : "),
		),
	)
	if !res.IsValid {
		return 0, 0, res
	}
	return page, limit, Valid()
}
