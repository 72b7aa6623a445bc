package http

import (
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

type transactionRequest struct {
	Amount      *float64   `json:"amount"`
	Type        *string    `json:"type"`
	Category    *string    `json:"category"`
	Description *string    `json:"description"`
	Date        *core.Date `json:"date"`
}

// patch converts the request into a partial update, carrying only the
// fields that were present in the body.
func (req transactionRequest) patch() (services.TransactionPatch, error) {
	var p services.TransactionPatch

	if req.Amount != nil {
		cents, err := core.CentsFromFloat(*req.Amount)
		if err != nil {
			return p, err
		}
		p.Amount = &core.Money{Cents: cents}
	}
	if req.Type != nil {
		t := core.TransactionType(*req.Type)
		p.Type = &t
	}
	if req.Category != nil {
		c := sanitizeInput(*req.Category)
		p.Category = &c
	}
	if req.Description != nil {
		d := sanitizeInput(*req.Description)
		p.Description = &d
	}
	if req.Date != nil {
		p.Date = req.Date
	}
	return p, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	tx := core.Transaction{UserID: user.ID}
	if req.Amount != nil {
		cents, err := core.CentsFromFloat(*req.Amount)
		if err != nil {
			writeError(w, r, err)
			return
		}
		tx.Amount = core.Money{Cents: cents}
	}
	if req.Type != nil {
		tx.Type = core.TransactionType(*req.Type)
	}
	if req.Category != nil {
		tx.Category = sanitizeInput(*req.Category)
	}
	if req.Description != nil {
		tx.Description = sanitizeInput(*req.Description)
	}
	if req.Date != nil {
		tx.Date = *req.Date
	}

	saved, err := s.ledger.Create(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(user.ID)
	writeJSON(w, http.StatusCreated, newTransactionResponse(saved))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	filter, err := parseTransactionFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	txs, err := s.ledger.List(r.Context(), user.ID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionList(txs))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	tx, err := s.ledger.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.ledger.Update(r.Context(), user.ID, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(user.ID)
	writeJSON(w, http.StatusOK, newTransactionResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	deleted, err := s.ledger.Delete(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !deleted {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}

	s.invalidateDashboards(user.ID)
	w.WriteHeader(http.StatusNoContent)
}
