package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/validate"
)

// recordPayload is the request body shared by expense and income writes.
// IsRecurring is a pointer so the validators can tell an absent flag from an
// explicit false.
type recordPayload struct {
	Title       string   `json:"title"`
	Amount      float64  `json:"amount"`
	IsRecurring *bool    `json:"isRecurring"`
	Category    string   `json:"category"`
	Source      string   `json:"source"`
	Notes       string   `json:"notes"`
	Currency    string   `json:"currency"`
	Tags        []string `json:"tags"`
}

// pathID parses the {id} path segment. Non-numeric values are treated the
// same as ids that do not exist.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// pageWindow derives the page count for the filtered total and reports
// whether the requested page falls past the end.
func pageWindow(total, page, limit int) (totalPages int, overflow bool) {
	totalPages = (total + limit - 1) / limit
	return totalPages, page > totalPages
}

// publishRecordEvent logs a record mutation and emits a change event for the
// audit stream. Publishing is best-effort: the mutation already committed, so
// failures are only logged.
func (s *Server) publishRecordEvent(r *http.Request, kind, action string, id, userID int64, title string, amount float64, currency string) {
	ctx := r.Context()
	s.structured.LogRecordChange(ctx, action, kind, id, userID, title, amount, currency)

	if s.events == nil {
		return
	}
	event := amqp.NewRecordEvent(kind, action, id, userID, title, amount, currency)
	if err := s.events.PublishRecordEvent(ctx, event); err != nil {
		s.structured.LogError(ctx, "Failed to publish record event", err,
			log.ComponentAMQP, log.OpSync,
			log.NewFields().WithRecord(kind, id, title, amount, currency).WithUser(userID))
	}
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit, res := validate.ExpenseQuery(q.Get("page"), q.Get("limit"), q.Get("currency"), q.Get("category"))
	if !res.IsValid {
		fail(w, http.StatusBadRequest, res.Message)
		return
	}

	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	expenses, total, err := s.repo.ListExpenses(r.Context(), storage.RecordFilter{
		UserID:    sessionClaims(r).UserID,
		Currency:  q.Get("currency"),
		Category:  q.Get("category"),
		Tag:       q.Get("tags"),
		Ascending: core.Ascending(q.Get("sort")),
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	totalPages, overflow := pageWindow(total, page, limit)
	if overflow {
		fail(w, http.StatusNotFound, "No expenses found for this page")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"numberOfExpenses":      total,
		"totalAmountOfExpenses": core.Round2(core.TotalExpenseAmount(expenses)),
		"totalPages":            totalPages,
		"currentPage":           page,
		"expenses":              expenses,
	})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var payload recordPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	userID := sessionClaims(r).UserID
	res := validate.Expense(validate.ExpensePayload{
		Title:       payload.Title,
		Amount:      payload.Amount,
		IsRecurring: payload.IsRecurring,
		Category:    payload.Category,
		Currency:    payload.Currency,
		UserID:      userID,
	})
	if !res.IsValid {
		fail(w, http.StatusBadRequest, res.Message)
		return
	}

	expense, err := s.repo.CreateExpense(r.Context(), core.Expense{
		Title:       payload.Title,
		Amount:      payload.Amount,
		Notes:       payload.Notes,
		IsRecurring: *payload.IsRecurring,
		Category:    payload.Category,
		Tags:        payload.Tags,
		Currency:    payload.Currency,
		UserID:      userID,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	s.invalidateStats()
	s.publishRecordEvent(r, amqp.KindExpense, amqp.ActionCreated, expense.ID, userID, expense.Title, expense.Amount, expense.Currency)
	succeed(w, http.StatusCreated, "Expense created successfully", envelope{"expense": expense})
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "Expense not found")
		return
	}

	expense, err := s.repo.GetExpense(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "Expense not found")
			return
		}
		internalError(w, err)
		return
	}
	succeed(w, http.StatusOK, "Expense retrieved successfully", envelope{"expense": expense})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "Expense not found")
		return
	}

	var payload recordPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	userID := sessionClaims(r).UserID
	res := validate.Expense(validate.ExpensePayload{
		Title:       payload.Title,
		Amount:      payload.Amount,
		IsRecurring: payload.IsRecurring,
		Category:    payload.Category,
		Currency:    payload.Currency,
		UserID:      userID,
	})
	if !res.IsValid {
		fail(w, http.StatusBadRequest, res.Message)
		return
	}

	expense, err := s.repo.UpdateExpense(r.Context(), id, core.Expense{
		Title:       payload.Title,
		Amount:      payload.Amount,
		Notes:       payload.Notes,
		IsRecurring: *payload.IsRecurring,
		Category:    payload.Category,
		Tags:        payload.Tags,
		Currency:    payload.Currency,
		UserID:      userID,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "Expense not found")
			return
		}
		internalError(w, err)
		return
	}

	s.invalidateStats()
	s.publishRecordEvent(r, amqp.KindExpense, amqp.ActionUpdated, expense.ID, userID, expense.Title, expense.Amount, expense.Currency)
	succeed(w, http.StatusOK, "Expense updated successfully", envelope{"expense": expense})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "Expense not found")
		return
	}

	deleted, err := s.repo.DeleteExpense(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "Expense not found")
			return
		}
		internalError(w, err)
		return
	}

	s.invalidateStats()
	s.publishRecordEvent(r, amqp.KindExpense, amqp.ActionDeleted, deleted.ID, deleted.UserID, deleted.Title, deleted.Amount, deleted.Currency)
	succeed(w, http.StatusOK, "Expense deleted successfully", envelope{"deletedExpense": deleted})
}

func (s *Server) handleRecurringExpenses(w http.ResponseWriter, r *http.Request) {
	recurring, err := s.repo.ListRecurringExpenses(r.Context(), sessionClaims(r).UserID)
	if err != nil {
		internalError(w, err)
		return
	}
	succeed(w, http.StatusOK, "", envelope{
		"number":                 len(recurring),
		"totalRecurringExpenses": core.Round2(core.TotalExpenseAmount(recurring)),
		"recurringExpenses":      recurring,
	})
}

func (s *Server) handleDownloadExpenses(w http.ResponseWriter, r *http.Request) {
	userID := sessionClaims(r).UserID
	expenses, err := s.repo.ListUserExpenses(r.Context(), userID)
	if err != nil {
		internalError(w, err)
		return
	}

	rows := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, []any{
			e.Title, e.Amount, e.IsRecurring, e.Category, e.Notes,
			e.Currency, strings.Join(e.Tags, ", "), e.CreatedAt.Format(time.RFC3339),
		})
	}

	fileURL, err := s.exporter.Write(r.Context(), "expenses_"+strconv.FormatInt(userID, 10), export.Sheet{
		Name:   "Expenses",
		Header: []string{"Title", "Amount", "IsRecurring", "Category", "Notes", "Currency", "Tags", "CreatedAt"},
		Rows:   rows,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Generated expense sheet",
		log.FieldUserID, userID,
		log.FieldOperation, log.OpExport,
		log.FieldExportURL, fileURL)

	succeed(w, http.StatusCreated, "Excel file generated successfully", envelope{"fileUrl": fileURL})
}

func (s *Server) handleSearchExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		fail(w, http.StatusBadRequest, "the query parameter is require for searching")
		return
	}

	results, err := s.repo.SearchExpenses(r.Context(), sessionClaims(r).UserID, q)
	if err != nil {
		internalError(w, err)
		return
	}
	if len(results) == 0 {
		fail(w, http.StatusNotFound, "your search term \""+q+"\" doesn't exist in the expenses")
		return
	}
	succeed(w, http.StatusOK, "", envelope{"numberOfResults": len(results), "results": results})
}
