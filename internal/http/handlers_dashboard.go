package http

import (
	"fmt"
	"net/http"
)

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	period, start, end, err := parseDashboardParams(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, dr, err := s.dashboard.Balance(r.Context(), user.ID, period, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBalanceResponse(res, period, dr))
}

func (s *Server) handleExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	period, start, end, err := parseDashboardParams(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	byCategory, dr, err := s.dashboard.ExpensesByCategory(r.Context(), user.ID, period, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expensesByCategoryResponse{
		ExpensesByCategory: newCategoryList(byCategory),
		Period:             string(period),
		StartDate:          dr.Start,
		EndDate:            dr.End,
	})
}

// handleSummary serves the combined view. It is period-only: explicit date
// overrides belong to the balance and breakdown endpoints. Results are
// cached briefly per user and period; any write by the user drops them.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	period, _, _, err := parseDashboardParams(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := summaryCacheKey(user.ID, string(period))
	if cached, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	sum, err := s.dashboard.Summary(r.Context(), user.ID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := newSummaryResponse(sum)
	s.summaryCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func summaryCacheKey(userID, period string) string {
	return fmt.Sprintf("%s:%s", userID, period)
}

// invalidateDashboards drops every cached dashboard view for the user.
// Called after each transaction write so reads never serve stale totals
// past the write.
func (s *Server) invalidateDashboards(userID string) {
	s.summaryCache.DeletePrefix(userID + ":")
}
