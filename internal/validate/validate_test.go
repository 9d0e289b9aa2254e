package validate

import "testing"

func boolPtr(v bool) *bool { return &v }

func TestExpense(t *testing.T) {
	valid := ExpensePayload{
		Title:       "Groceries run",
		Amount:      42.5,
		IsRecurring: boolPtr(false),
		Category:    "Food",
		Currency:    "USD",
		UserID:      1,
	}

	cases := []struct {
		name    string
		mutate  func(p *ExpensePayload)
		message string
	}{
		{"valid", func(p *ExpensePayload) {}, ""},
		{"all missing", func(p *ExpensePayload) {
			*p = ExpensePayload{IsRecurring: boolPtr(false), UserID: 1}
		}, "all fields are required , please input all fields"},
		{"missing title", func(p *ExpensePayload) { p.Title = "" },
			"the title is required , please input the title"},
		{"short title", func(p *ExpensePayload) { p.Title = "ab" },
			"the title must be between 3 and 100 characters"},
		{"zero amount", func(p *ExpensePayload) { p.Amount = 0 },
			"the amount is required , please input the amount"},
		{"negative amount", func(p *ExpensePayload) { p.Amount = -5 },
			"the amount must be greater than 0"},
		{"missing recurring flag", func(p *ExpensePayload) { p.IsRecurring = nil },
			"the isRecurring is required , please input the isRecurring"},
		{"bad category", func(p *ExpensePayload) { p.Category = "Groceries" },
			"the category must be one of the following : Food, Transport, Utilities, Entertainment, Health, Other"},
		{"short currency", func(p *ExpensePayload) { p.Currency = "US" },
			"the currency must be 3 characters"},
		{"lowercase currency", func(p *ExpensePayload) { p.Currency = "usd" },
			"the currency must be in uppercase"},
		{"unknown currency", func(p *ExpensePayload) { p.Currency = "XXX" },
			"the currency must be one of the following : USD, JPY, EUR, GBP, AUD, CHF, CNY, INR, RUB, BRL, KWD, BHD, OMR, JOD, EGP, TRY, KRW, QAR, SAR, AED, MAD, DZD, TND, LYD, SYP, IRR, AFN"},
		{"missing user", func(p *ExpensePayload) { p.UserID = 0 },
			"the userId is required , please input the userId"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			res := Expense(p)
			if tc.message == "" {
				if !res.IsValid {
					t.Fatalf("expected valid, got %q", res.Message)
				}
				return
			}
			if res.IsValid {
				t.Fatal("expected invalid")
			}
			if res.Message != tc.message {
				t.Fatalf("message = %q, want %q", res.Message, tc.message)
			}
		})
	}
}

func TestIncome(t *testing.T) {
	valid := IncomePayload{
		Title:       "Monthly salary",
		Amount:      1500,
		IsRecurring: boolPtr(true),
		Source:      "Salary",
		Currency:    "EUR",
		UserID:      1,
	}

	if res := Income(valid); !res.IsValid {
		t.Fatalf("expected valid, got %q", res.Message)
	}

	bad := valid
	bad.Source = "Lottery"
	res := Income(bad)
	if res.IsValid {
		t.Fatal("expected invalid source")
	}
	want := "the source must be one of the following : Salary, Business, Investments, Freelance, Other"
	if res.Message != want {
		t.Fatalf("message = %q, want %q", res.Message, want)
	}
}

func TestSignUp(t *testing.T) {
	cases := []struct {
		name                      string
		username, email, password string
		message                   string
	}{
		{"valid", "alice", "alice@example.com", "secret1", ""},
		{"all missing", "", "", "", "all fields are required , please input all fields"},
		{"short username", "al", "alice@example.com", "secret1",
			"the username must be between 3 and 50 characters"},
		{"bad email", "alice", "not-an-email", "secret1",
			"please enter a valid email address"},
		{"short password", "alice", "alice@example.com", "12345",
			"the password must be at least 6 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := SignUp(tc.username, tc.email, tc.password)
			if tc.message == "" {
				if !res.IsValid {
					t.Fatalf("expected valid, got %q", res.Message)
				}
				return
			}
			if res.IsValid || res.Message != tc.message {
				t.Fatalf("got (%v, %q), want %q", res.IsValid, res.Message, tc.message)
			}
		})
	}
}

func TestExpenseQuery(t *testing.T) {
	cases := []struct {
		name                              string
		page, limit, currency, category   string
		wantPage, wantLimit               int
		message                           string
	}{
		{"defaults", "", "", "", "", 1, 10, ""},
		{"explicit", "3", "20", "USD", "Food", 3, 20, ""},
		{"page not a number", "abc", "", "", "", 0, 0, "the page must be a number"},
		{"negative page", "-1", "", "", "", 0, 0, "the page must be greater than or equal to 0"},
		{"limit not a number", "", "ten", "", "", 0, 0, "the limit must be a number"},
		{"limit too small", "", "0", "", "", 0, 0, "the limit must be between 1 and 20 "},
		{"limit too large", "", "21", "", "", 0, 0, "the limit must be between 1 and 20 "},
		{"bad category", "", "", "", "Pets", 0, 0,
			"the category must be one of the following : Food, Transport, Utilities, Entertainment, Health, Other"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, limit, res := ExpenseQuery(tc.page, tc.limit, tc.currency, tc.category)
			if tc.message == "" {
				if !res.IsValid {
					t.Fatalf("expected valid, got %q", res.Message)
				}
				if page != tc.wantPage || limit != tc.wantLimit {
					t.Fatalf("page/limit = %d/%d, want %d/%d", page, limit, tc.wantPage, tc.wantLimit)
				}
				return
			}
			if res.IsValid || res.Message != tc.message {
				t.Fatalf("got (%v, %q), want %q", res.IsValid, res.Message, tc.message)
			}
		})
	}
}

func TestUsersQuery(t *testing.T) {
	if _, _, res := UsersQuery("", "", "admin"); !res.IsValid {
		t.Fatalf("expected valid, got %q", res.Message)
	}
	_, _, res := UsersQuery("", "", "owner")
	if res.IsValid {
		t.Fatal("expected invalid role")
	}
	if want := "the role must be one of the following : admin, user"; res.Message != want {
		t.Fatalf("message = %q, want %q", res.Message, want)
	}
}
