package services

import (
	"context"
	"fmt"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// BudgetView is a budget enriched with spending over its current period.
type BudgetView struct {
	core.Budget
	CurrentSpent core.Money
	Remaining    core.Money
	IsExceeded   bool
}

// BudgetService manages spending budgets and the alerts they produce.
type BudgetService struct {
	storage *storage.Repository
	now     func() time.Time
}

func NewBudgetService(repo *storage.Repository) *BudgetService {
	return &BudgetService{
		storage: repo,
		now:     time.Now,
	}
}

func (s *BudgetService) Create(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return s.storage.CreateBudget(ctx, b)
}

// List returns the user's budgets with current-period spending attached.
// Each budget's period is resolved against today independently.
func (s *BudgetService) List(ctx context.Context, userID string) ([]BudgetView, error) {
	budgets, err := s.storage.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := core.Today(s.now())
	views := make([]BudgetView, 0, len(budgets))
	for _, b := range budgets {
		period := core.ResolveRange(b.Period, today)
		spent, err := s.storage.ExpenseTotal(ctx, userID, b.Category, period)
		if err != nil {
			return nil, fmt.Errorf("sum spending for budget %s: %w", b.ID, err)
		}
		views = append(views, BudgetView{
			Budget:       b,
			CurrentSpent: core.Money{Cents: spent},
			Remaining:    core.Money{Cents: b.LimitAmount.Cents - spent},
			IsExceeded:   spent > b.LimitAmount.Cents,
		})
	}
	return views, nil
}

func (s *BudgetService) Delete(ctx context.Context, userID, id string) (bool, error) {
	return s.storage.DeleteBudget(ctx, userID, id)
}

func (s *BudgetService) Alerts(ctx context.Context, userID string) ([]core.Alert, error) {
	return s.storage.ListAlerts(ctx, userID)
}

func (s *BudgetService) MarkAlertRead(ctx context.Context, userID, id string) error {
	return s.storage.MarkAlertRead(ctx, userID, id)
}
