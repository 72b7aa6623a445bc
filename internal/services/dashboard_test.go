package services

import (
	"context"
	"testing"

	"bilancio/internal/core"
)

func seedDashboardData(t *testing.T, svc *LedgerService, userID string) {
	t.Helper()
	ctx := context.Background()
	rows := []core.Transaction{
		{Type: core.Income, Category: "salaire", Amount: core.Money{Cents: 300000}, Date: core.NewDate(2024, 3, 1)},
		{Type: core.Expense, Category: "loyer", Amount: core.Money{Cents: 90000}, Date: core.NewDate(2024, 3, 2)},
		{Type: core.Expense, Category: "courses", Amount: core.Money{Cents: 25000}, Date: core.NewDate(2024, 3, 8)},
		{Type: core.Expense, Category: "courses", Amount: core.Money{Cents: 10000}, Date: core.NewDate(2024, 3, 20)},
		// Outside March; must never leak into monthly views.
		{Type: core.Expense, Category: "transport", Amount: core.Money{Cents: 5000}, Date: core.NewDate(2024, 2, 15)},
	}
	for _, tx := range rows {
		tx.UserID = userID
		if _, err := svc.Create(ctx, tx); err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
	}
}

func TestDashboardBalance(t *testing.T) {
	repo := newTestRepo(t)
	ledger := NewLedgerService(repo)
	svc := NewDashboardService(repo)
	svc.now = fixedNow
	user := newTestUser(t, repo)
	seedDashboardData(t, ledger, user.ID)

	res, dr, err := svc.Balance(context.Background(), user.ID, core.Monthly, core.Date{}, core.Date{})
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if dr.Start.String() != "2024-03-01" || dr.End.String() != "2024-03-31" {
		t.Errorf("resolved range = [%s, %s], want March 2024", dr.Start, dr.End)
	}
	if res.TotalIncome.Cents != 300000 || res.TotalExpenses.Cents != 125000 {
		t.Errorf("totals = %+v, want income 300000 expenses 125000", res)
	}
	if res.Balance() != 175000 {
		t.Errorf("balance = %d, want 175000", res.Balance())
	}
}

func TestDashboardBalanceExplicitRange(t *testing.T) {
	repo := newTestRepo(t)
	ledger := NewLedgerService(repo)
	svc := NewDashboardService(repo)
	svc.now = fixedNow
	user := newTestUser(t, repo)
	seedDashboardData(t, ledger, user.ID)

	// Both bounds given: the period is ignored entirely.
	res, dr, err := svc.Balance(context.Background(), user.ID, core.Yearly,
		core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 10))
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if dr.Start.String() != "2024-03-01" || dr.End.String() != "2024-03-10" {
		t.Errorf("resolved range = [%s, %s], want explicit bounds", dr.Start, dr.End)
	}
	if res.TotalExpenses.Cents != 115000 {
		t.Errorf("expenses = %d, want 115000 (rent + first groceries)", res.TotalExpenses.Cents)
	}

	// A single bound falls back to the full period.
	_, dr, err = svc.Balance(context.Background(), user.ID, core.Monthly,
		core.NewDate(2024, 3, 1), core.Date{})
	if err != nil {
		t.Fatalf("balance with partial override: %v", err)
	}
	if dr.Start.String() != "2024-03-01" || dr.End.String() != "2024-03-31" {
		t.Errorf("partial override should fall back to the monthly range, got [%s, %s]", dr.Start, dr.End)
	}
}

func TestDashboardExpensesByCategory(t *testing.T) {
	repo := newTestRepo(t)
	ledger := NewLedgerService(repo)
	svc := NewDashboardService(repo)
	svc.now = fixedNow
	user := newTestUser(t, repo)
	seedDashboardData(t, ledger, user.ID)

	byCategory, _, err := svc.ExpensesByCategory(context.Background(), user.ID, core.Monthly, core.Date{}, core.Date{})
	if err != nil {
		t.Fatalf("expenses by category: %v", err)
	}
	want := []core.CategoryAmount{
		{Category: "loyer", Amount: core.Money{Cents: 90000}},
		{Category: "courses", Amount: core.Money{Cents: 35000}},
	}
	if len(byCategory) != len(want) {
		t.Fatalf("got %d categories, want %d: %+v", len(byCategory), len(want), byCategory)
	}
	for i := range want {
		if byCategory[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, byCategory[i], want[i])
		}
	}
}

func TestDashboardSummary(t *testing.T) {
	repo := newTestRepo(t)
	ledger := NewLedgerService(repo)
	svc := NewDashboardService(repo)
	svc.now = fixedNow
	user := newTestUser(t, repo)
	seedDashboardData(t, ledger, user.ID)

	sum, err := svc.Summary(context.Background(), user.ID, core.Weekly)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	// 2024-03-15 is a Friday; its week runs Monday 03-11 through Sunday 03-17.
	if sum.Range.Start.String() != "2024-03-11" || sum.Range.End.String() != "2024-03-17" {
		t.Errorf("range = [%s, %s], want [2024-03-11, 2024-03-17]", sum.Range.Start, sum.Range.End)
	}
	if sum.Period != core.Weekly {
		t.Errorf("period = %s, want weekly", sum.Period)
	}
	// No seeded transaction falls inside that week.
	if sum.Balance.TotalIncome.Cents != 0 || sum.Balance.TotalExpenses.Cents != 0 || len(sum.ByCategory) != 0 {
		t.Errorf("weekly summary should be empty, got %+v", sum)
	}

	monthly, err := svc.Summary(context.Background(), user.ID, core.Monthly)
	if err != nil {
		t.Fatalf("monthly summary: %v", err)
	}
	if monthly.Balance.Balance() != 175000 {
		t.Errorf("monthly balance = %d, want 175000", monthly.Balance.Balance())
	}
	if len(monthly.ByCategory) != 2 {
		t.Errorf("monthly breakdown has %d categories, want 2", len(monthly.ByCategory))
	}
}
