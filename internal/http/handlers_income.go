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

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit, res := validate.IncomeQuery(q.Get("page"), q.Get("limit"), q.Get("currency"), q.Get("source"))
	if !res.IsValid {
		fail(w, http.StatusBadRequest, res.Message)
		return
	}

	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	incomes, total, err := s.repo.ListIncomes(r.Context(), storage.RecordFilter{
		UserID:    sessionClaims(r).UserID,
		Currency:  q.Get("currency"),
		Source:    q.Get("source"),
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
		fail(w, http.StatusNotFound, "No incomes found for this page")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"numberOfIncomes":      total,
		"totalAmountOfIncomes": core.Round2(core.TotalIncomeAmount(incomes)),
		"totalPages":           totalPages,
		"currentPage":          page,
		"incomes":              incomes,
	})
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var payload recordPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	userID := sessionClaims(r).UserID
	res := validate.Income(validate.IncomePayload{
		Title:       payload.Title,
		Amount:      payload.Amount,
		IsRecurring: payload.IsRecurring,
		Source:      payload.Source,
		Currency:    payload.Currency,
		UserID:      userID,
	})
	if !res.IsValid {
		fail(w, http.StatusBadRequest, res.Message)
		return
	}

	income, err := s.repo.CreateIncome(r.Context(), core.Income{
		Title:       payload.Title,
		Amount:      payload.Amount,
		Source:      payload.Source,
		Notes:       payload.Notes,
		IsRecurring: *payload.IsRecurring,
		Tags:        payload.Tags,
		Currency:    payload.Currency,
		UserID:      userID,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	s.publishRecordEvent(r, amqp.KindIncome, amqp.ActionCreated, income.ID, userID, income.Title, income.Amount, income.Currency)
	succeed(w, http.StatusCreated, "Income created successfully", envelope{"income": income})
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "Income not found")
		return
	}

	income, err := s.repo.GetIncome(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "Income not found")
			return
		}
		internalError(w, err)
		return
	}
	succeed(w, http.StatusOK, "Income retrieved successfully", envelope{"income": income})
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "Income not found")
		return
	}

	var payload recordPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	userID := sessionClaims(r).UserID
	res := validate.Income(validate.IncomePayload{
		Title:       payload.Title,
		Amount:      payload.Amount,
		IsRecurring: payload.IsRecurring,
		Source:      payload.Source,
		Currency:    payload.Currency,
		UserID:      userID,
	})
	if !res.IsValid {
		fail(w, http.StatusBadRequest, res.Message)
		return
	}

	income, err := s.repo.UpdateIncome(r.Context(), id, core.Income{
		Title:       payload.Title,
		Amount:      payload.Amount,
		Source:      payload.Source,
		Notes:       payload.Notes,
		IsRecurring: *payload.IsRecurring,
		Tags:        payload.Tags,
		Currency:    payload.Currency,
		UserID:      userID,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "Income not found")
			return
		}
		internalError(w, err)
		return
	}

	s.publishRecordEvent(r, amqp.KindIncome, amqp.ActionUpdated, income.ID, userID, income.Title, income.Amount, income.Currency)
	succeed(w, http.StatusOK, "Income updated successfully", envelope{"income": income})
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "Income not found")
		return
	}

	deleted, err := s.repo.DeleteIncome(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "Income not found")
			return
		}
		internalError(w, err)
		return
	}

	s.publishRecordEvent(r, amqp.KindIncome, amqp.ActionDeleted, deleted.ID, deleted.UserID, deleted.Title, deleted.Amount, deleted.Currency)
	succeed(w, http.StatusOK, "Income deleted successfully", envelope{"deletedIncome": deleted})
}

func (s *Server) handleRecurringIncomes(w http.ResponseWriter, r *http.Request) {
	recurring, err := s.repo.ListRecurringIncomes(r.Context(), sessionClaims(r).UserID)
	if err != nil {
		internalError(w, err)
		return
	}
	succeed(w, http.StatusOK, "", envelope{
		"number":                len(recurring),
		"totalRecurringIncomes": core.Round2(core.TotalIncomeAmount(recurring)),
		"recurringIncomes":      recurring,
	})
}

func (s *Server) handleDownloadIncomes(w http.ResponseWriter, r *http.Request) {
	userID := sessionClaims(r).UserID
	incomes, err := s.repo.ListUserIncomes(r.Context(), userID)
	if err != nil {
		internalError(w, err)
		return
	}

	rows := make([][]any, 0, len(incomes))
	for _, in := range incomes {
		rows = append(rows, []any{
			in.Title, in.Amount, in.IsRecurring, in.Source, in.Notes,
			in.Currency, strings.Join(in.Tags, ", "), in.CreatedAt.Format(time.RFC3339),
		})
	}

	fileURL, err := s.exporter.Write(r.Context(), "incomes_"+strconv.FormatInt(userID, 10), export.Sheet{
		Name:   "Incomes",
		Header: []string{"Title", "Amount", "IsRecurring", "Source", "Notes", "Currency", "Tags", "CreatedAt"},
		Rows:   rows,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Generated income sheet",
		log.FieldUserID, userID,
		log.FieldOperation, log.OpExport,
		log.FieldExportURL, fileURL)

	succeed(w, http.StatusCreated, "Excel file generated successfully", envelope{"fileUrl": fileURL})
}

func (s *Server) handleSearchIncomes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		fail(w, http.StatusBadRequest, "the query parameter is require for searching")
		return
	}

	results, err := s.repo.SearchIncomes(r.Context(), sessionClaims(r).UserID, q)
	if err != nil {
		internalError(w, err)
		return
	}
	if len(results) == 0 {
		fail(w, http.StatusNotFound, "your search term \""+q+"\" doesn't exist in the incomes")
		return
	}
	succeed(w, http.StatusOK, "", envelope{"numberOfResults": len(results), "results": results})
}

// handleBalance reports the net position across all of the user's records.
// The currency label comes from the first income on file, falling back to USD
// when the user has no incomes yet.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	userID := sessionClaims(r).UserID

	incomes, err := s.repo.ListUserIncomes(r.Context(), userID)
	if err != nil {
		internalError(w, err)
		return
	}
	expenses, err := s.repo.ListUserExpenses(r.Context(), userID)
	if err != nil {
		internalError(w, err)
		return
	}

	totalIncomes := core.Round2(core.TotalIncomeAmount(incomes))
	totalExpenses := core.Round2(core.TotalExpenseAmount(expenses))
	balance := core.Balance(totalIncomes, totalExpenses)

	currency := "USD"
	if len(incomes) > 0 && incomes[0].Currency != "" {
		currency = incomes[0].Currency
	}

	amount := strconv.FormatFloat(balance, 'f', -1, 64)
	message := "✅ Your current balance is " + amount + " " + currency + ". Keep tracking your finances!"
	if balance < 0 {
		message = "⚠️ Your balance is " + amount + " " + currency + ". We recommend increasing your income or reducing your expenses."
	}

	succeed(w, http.StatusOK, message, envelope{
		"income":  totalIncomes,
		"expense": totalExpenses,
		"balance": balance,
	})
}
