package http

import (
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

type budgetRequest struct {
	Category    string  `json:"category"`
	LimitAmount float64 `json:"limit_amount"`
	Period      string  `json:"period"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	cents, err := core.CentsFromFloat(req.LimitAmount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	period, err := core.ParsePeriod(req.Period)
	if err != nil {
		writeError(w, r, err)
		return
	}

	b, err := s.budgets.Create(r.Context(), core.Budget{
		UserID:      user.ID,
		Category:    sanitizeInput(req.Category),
		LimitAmount: core.Money{Cents: cents},
		Period:      period,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	// A fresh budget has no spending attached yet.
	writeJSON(w, http.StatusCreated, newBudgetResponse(services.BudgetView{
		Budget:    b,
		Remaining: b.LimitAmount,
	}))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	views, err := s.budgets.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetResponse, 0, len(views))
	for _, v := range views {
		out = append(out, newBudgetResponse(v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	deleted, err := s.budgets.Delete(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !deleted {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	alerts, err := s.budgets.Alerts(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, newAlertResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	if err := s.budgets.MarkAlertRead(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
