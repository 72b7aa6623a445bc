// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// LedgerService orchestrates transaction writes and the budget checks that
// hang off them.
type LedgerService struct {
	storage *storage.Repository
	now     func() time.Time
}

func NewLedgerService(repo *storage.Repository) *LedgerService {
	return &LedgerService{
		storage: repo,
		now:     time.Now,
	}
}

// TransactionPatch carries the fields of a partial update. Nil means
// "leave as stored".
type TransactionPatch struct {
	Amount      *core.Money
	Type        *core.TransactionType
	Category    *string
	Description *string
	Date        *core.Date
}

// Create validates and persists a transaction. Expense creation also runs
// the budget check for the category; a failed check is logged, never
// surfaced, so the write itself cannot be lost to a secondary effect.
func (s *LedgerService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.storage.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	if saved.Type == core.Expense {
		if err := s.checkBudgets(ctx, saved.UserID, saved.Category); err != nil {
			slog.ErrorContext(ctx, "Budget check failed",
				"user_id", saved.UserID, "category", saved.Category, "error", err)
		}
	}

	return saved, nil
}

func (s *LedgerService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	return s.storage.Transaction(ctx, userID, id)
}

func (s *LedgerService) List(ctx context.Context, userID string, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, userID, f)
}

// Update applies a partial update by reading the stored row, overlaying the
// supplied fields and writing it back whole. Last write wins.
func (s *LedgerService) Update(ctx context.Context, userID, id string, patch TransactionPatch) (core.Transaction, error) {
	tx, err := s.storage.Transaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}

	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	if patch.Description != nil {
		tx.Description = *patch.Description
	}
	if patch.Date != nil {
		tx.Date = *patch.Date
	}

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	return s.storage.UpdateTransaction(ctx, tx)
}

// Delete removes a transaction. The bool reports whether anything was
// deleted; a repeated delete is not an error.
func (s *LedgerService) Delete(ctx context.Context, userID, id string) (bool, error) {
	return s.storage.DeleteTransaction(ctx, userID, id)
}

const budgetWarningThreshold = 0.8

// checkBudgets compares spending against every budget watching the category
// and records an alert for each exceeded or near-exceeded one.
func (s *LedgerService) checkBudgets(ctx context.Context, userID, category string) error {
	budgets, err := s.storage.BudgetsForCategory(ctx, userID, category)
	if err != nil {
		return fmt.Errorf("load budgets: %w", err)
	}

	today := core.Today(s.now())
	for _, b := range budgets {
		period := core.ResolveRange(b.Period, today)
		spent, err := s.storage.ExpenseTotal(ctx, userID, category, period)
		if err != nil {
			return fmt.Errorf("sum expenses for %q: %w", category, err)
		}

		alert, ok := budgetAlert(b, spent)
		if !ok {
			continue
		}
		if _, err := s.storage.CreateAlert(ctx, alert); err != nil {
			return fmt.Errorf("record alert: %w", err)
		}
		slog.InfoContext(ctx, "Budget alert recorded",
			"user_id", userID,
			"budget_id", b.ID,
			"category", category,
			"alert_type", string(alert.AlertType),
			"spent_cents", spent,
			"limit_cents", b.LimitAmount.Cents)
	}
	return nil
}

// budgetAlert builds the alert matching the spending level, if any.
func budgetAlert(b core.Budget, spentCents int64) (core.Alert, bool) {
	limit := b.LimitAmount.Cents
	spent := core.Money{Cents: spentCents}

	switch {
	case spentCents > limit:
		return core.Alert{
			UserID:    b.UserID,
			Category:  b.Category,
			AlertType: core.AlertBudgetExceeded,
			Message: fmt.Sprintf("Budget %s (%s) depasse: %.2f sur %.2f",
				b.Category, b.Period, spent.Float(), b.LimitAmount.Float()),
		}, true
	case float64(spentCents) >= budgetWarningThreshold*float64(limit):
		return core.Alert{
			UserID:    b.UserID,
			Category:  b.Category,
			AlertType: core.AlertBudgetWarning,
			Message: fmt.Sprintf("Budget %s (%s) a %.0f%%: %.2f sur %.2f",
				b.Category, b.Period, 100*float64(spentCents)/float64(limit), spent.Float(), b.LimitAmount.Float()),
		}, true
	default:
		return core.Alert{}, false
	}
}
