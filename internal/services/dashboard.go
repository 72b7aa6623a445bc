package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// DashboardService computes read-only aggregate views. Every method resolves
// the effective date range once so all figures in a response agree on it.
type DashboardService struct {
	storage *storage.Repository
	now     func() time.Time
}

func NewDashboardService(repo *storage.Repository) *DashboardService {
	return &DashboardService{
		storage: repo,
		now:     time.Now,
	}
}

func (s *DashboardService) today() core.Date {
	return core.Today(s.now())
}

// Balance returns income/expense totals over the period, or over the
// explicit range when both bounds are given.
func (s *DashboardService) Balance(ctx context.Context, userID string, p core.Period, start, end core.Date) (core.BalanceResult, core.DateRange, error) {
	dr := core.RangeFor(p, start, end, s.today())
	res, err := s.storage.Balance(ctx, userID, dr)
	if err != nil {
		return core.BalanceResult{}, core.DateRange{}, fmt.Errorf("compute balance: %w", err)
	}
	return res, dr, nil
}

// ExpensesByCategory returns the expense breakdown over the period, or over
// the explicit range when both bounds are given.
func (s *DashboardService) ExpensesByCategory(ctx context.Context, userID string, p core.Period, start, end core.Date) ([]core.CategoryAmount, core.DateRange, error) {
	dr := core.RangeFor(p, start, end, s.today())
	byCategory, err := s.storage.ExpensesByCategory(ctx, userID, dr)
	if err != nil {
		return nil, core.DateRange{}, fmt.Errorf("compute category breakdown: %w", err)
	}
	return byCategory, dr, nil
}

// Summary combines balance and breakdown for one period. The two queries run
// concurrently against the same resolved range, so the views cannot drift.
func (s *DashboardService) Summary(ctx context.Context, userID string, p core.Period) (core.Summary, error) {
	dr := core.ResolveRange(p, s.today())

	var (
		balance    core.BalanceResult
		byCategory []core.CategoryAmount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balance, err = s.storage.Balance(gctx, userID, dr)
		return err
	})
	g.Go(func() error {
		var err error
		byCategory, err = s.storage.ExpensesByCategory(gctx, userID, dr)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, fmt.Errorf("compute summary: %w", err)
	}

	return core.Summary{
		Balance:    balance,
		ByCategory: byCategory,
		Range:      dr,
		Period:     p,
	}, nil
}
