package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

// errorBody is the JSON error envelope. Every non-2xx response carries it.
type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeBodyError responds to a failed body decode. Domain errors raised by
// custom unmarshalers (a malformed date value in otherwise valid JSON) are
// validation failures; anything else means the body itself was unreadable.
func writeBodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrInvalidDate) {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeDetail(w, http.StatusBadRequest, "malformed JSON body")
}

// writeUnauthorized responds 401 with the bearer challenge. The detail is
// deliberately generic so callers cannot tell which credential failed.
func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, detail)
}

// writeError maps domain and storage errors onto the stable status codes.
// Unknown errors become an opaque 500; the cause goes to the log, not the
// client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrConflict):
		writeDetail(w, http.StatusConflict, "already exists")
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidPeriod),
		errors.Is(err, core.ErrDescriptionTooLong):
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

// Response DTOs. Amounts cross the boundary as floats in currency units,
// matching the stored cents via core.Money conversions.

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        userResponse `json:"user"`
}

type transactionResponse struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        core.Date `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

func newTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Amount:      tx.Amount.Float(),
		Type:        string(tx.Type),
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.Date,
		CreatedAt:   tx.CreatedAt,
	}
}

func newTransactionList(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionResponse(tx))
	}
	return out
}

type categoryAmountResponse struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

func newCategoryList(items []core.CategoryAmount) []categoryAmountResponse {
	out := make([]categoryAmountResponse, 0, len(items))
	for _, ca := range items {
		out = append(out, categoryAmountResponse{Category: ca.Category, Amount: ca.Amount.Float()})
	}
	return out
}

type balanceResponse struct {
	TotalIncome   float64   `json:"total_income"`
	TotalExpenses float64   `json:"total_expenses"`
	Balance       float64   `json:"balance"`
	Period        string    `json:"period"`
	StartDate     core.Date `json:"start_date"`
	EndDate       core.Date `json:"end_date"`
}

func newBalanceResponse(res core.BalanceResult, p core.Period, dr core.DateRange) balanceResponse {
	return balanceResponse{
		TotalIncome:   res.TotalIncome.Float(),
		TotalExpenses: res.TotalExpenses.Float(),
		Balance:       core.Money{Cents: res.Balance()}.Float(),
		Period:        string(p),
		StartDate:     dr.Start,
		EndDate:       dr.End,
	}
}

type expensesByCategoryResponse struct {
	ExpensesByCategory []categoryAmountResponse `json:"expenses_by_category"`
	Period             string                   `json:"period"`
	StartDate          core.Date                `json:"start_date"`
	EndDate            core.Date                `json:"end_date"`
}

type summaryResponse struct {
	Balance            balanceResponse          `json:"balance"`
	ExpensesByCategory []categoryAmountResponse `json:"expenses_by_category"`
	Period             string                   `json:"period"`
	StartDate          core.Date                `json:"start_date"`
	EndDate            core.Date                `json:"end_date"`
}

func newSummaryResponse(sum core.Summary) summaryResponse {
	return summaryResponse{
		Balance:            newBalanceResponse(sum.Balance, sum.Period, sum.Range),
		ExpensesByCategory: newCategoryList(sum.ByCategory),
		Period:             string(sum.Period),
		StartDate:          sum.Range.Start,
		EndDate:            sum.Range.End,
	}
}

type budgetResponse struct {
	ID           string    `json:"id"`
	Category     string    `json:"category"`
	LimitAmount  float64   `json:"limit_amount"`
	Period       string    `json:"period"`
	CurrentSpent float64   `json:"current_spent"`
	Remaining    float64   `json:"remaining"`
	IsExceeded   bool      `json:"is_exceeded"`
	CreatedAt    time.Time `json:"created_at"`
}

func newBudgetResponse(v services.BudgetView) budgetResponse {
	return budgetResponse{
		ID:           v.ID,
		Category:     v.Category,
		LimitAmount:  v.LimitAmount.Float(),
		Period:       string(v.Period),
		CurrentSpent: v.CurrentSpent.Float(),
		Remaining:    v.Remaining.Float(),
		IsExceeded:   v.IsExceeded,
		CreatedAt:    v.CreatedAt,
	}
}

type alertResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	AlertType string    `json:"alert_type"`
	Category  string    `json:"category"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func newAlertResponse(a core.Alert) alertResponse {
	return alertResponse{
		ID:        a.ID,
		Message:   a.Message,
		AlertType: string(a.AlertType),
		Category:  a.Category,
		IsRead:    a.IsRead,
		CreatedAt: a.CreatedAt,
	}
}
