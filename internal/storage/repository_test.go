package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"bilancio/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *Repository, email string) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), email, "hashed-password")
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func newTestTransaction(t *testing.T, repo *Repository, userID string, txType core.TransactionType, category string, cents int64, date core.Date) core.Transaction {
	t.Helper()
	tx, err := repo.CreateTransaction(context.Background(), core.Transaction{
		UserID:   userID,
		Amount:   core.Money{Cents: cents},
		Type:     txType,
		Category: category,
		Date:     date,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tx
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	newTestUser(t, repo, "dup@example.com")
	_, err := repo.CreateUser(ctx, "dup@example.com", "other-hash")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUserLookup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := newTestUser(t, repo, "who@example.com")

	byEmail, err := repo.UserByEmail(ctx, "who@example.com")
	if err != nil || byEmail.ID != created.ID {
		t.Fatalf("lookup by email: got (%+v, %v)", byEmail, err)
	}
	byID, err := repo.UserByID(ctx, created.ID)
	if err != nil || byID.Email != "who@example.com" {
		t.Fatalf("lookup by id: got (%+v, %v)", byID, err)
	}
	if _, err := repo.UserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransactionUserScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	alice := newTestUser(t, repo, "alice@example.com")
	bob := newTestUser(t, repo, "bob@example.com")
	tx := newTestTransaction(t, repo, alice.ID, core.Expense, "courses", 1000, core.NewDate(2024, 3, 5))

	// Another user's id must resolve to not found on every operation.
	if _, err := repo.Transaction(ctx, bob.ID, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	foreign := tx
	foreign.UserID = bob.ID
	if _, err := repo.UpdateTransaction(ctx, foreign); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	deleted, err := repo.DeleteTransaction(ctx, bob.ID, tx.ID)
	if err != nil || deleted {
		t.Fatalf("delete by non-owner: got (%v, %v)", deleted, err)
	}

	// The owner still sees it.
	got, err := repo.Transaction(ctx, alice.ID, tx.ID)
	if err != nil || got.Amount.Cents != 1000 {
		t.Fatalf("owner get: got (%+v, %v)", got, err)
	}
}

func TestDeleteTransactionIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newTestUser(t, repo, "user@example.com")
	tx := newTestTransaction(t, repo, user.ID, core.Expense, "transport", 500, core.NewDate(2024, 3, 5))

	deleted, err := repo.DeleteTransaction(ctx, user.ID, tx.ID)
	if err != nil || !deleted {
		t.Fatalf("first delete: got (%v, %v)", deleted, err)
	}
	deleted, err = repo.DeleteTransaction(ctx, user.ID, tx.ID)
	if err != nil || deleted {
		t.Fatalf("second delete should report false: got (%v, %v)", deleted, err)
	}
}

func TestListTransactionsOrderingAndPagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newTestUser(t, repo, "user@example.com")
	newTestTransaction(t, repo, user.ID, core.Expense, "courses", 100, core.NewDate(2024, 3, 1))
	newTestTransaction(t, repo, user.ID, core.Expense, "courses", 200, core.NewDate(2024, 3, 2))
	newTestTransaction(t, repo, user.ID, core.Expense, "courses", 300, core.NewDate(2024, 3, 3))

	all, err := repo.ListTransactions(ctx, user.ID, TransactionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Date.String() != "2024-03-03" || all[2].Date.String() != "2024-03-01" {
		t.Fatalf("expected date-descending order, got %+v", all)
	}

	// skip/limit apply after ordering: skip=1 limit=1 lands on 03-02.
	page, err := repo.ListTransactions(ctx, user.ID, TransactionFilter{Skip: 1, Limit: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 1 || page[0].Date.String() != "2024-03-02" {
		t.Fatalf("expected the 2024-03-02 entry, got %+v", page)
	}
}

func TestListTransactionsFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newTestUser(t, repo, "user@example.com")
	newTestTransaction(t, repo, user.ID, core.Income, "salaire", 100000, core.NewDate(2024, 3, 1))
	newTestTransaction(t, repo, user.ID, core.Expense, "courses", 2000, core.NewDate(2024, 3, 10))
	newTestTransaction(t, repo, user.ID, core.Expense, "transport", 500, core.NewDate(2024, 4, 2))

	byType, err := repo.ListTransactions(ctx, user.ID, TransactionFilter{Type: core.Expense})
	if err != nil || len(byType) != 2 {
		t.Fatalf("type filter: got (%d, %v)", len(byType), err)
	}

	byCategory, err := repo.ListTransactions(ctx, user.ID, TransactionFilter{Category: "transport"})
	if err != nil || len(byCategory) != 1 {
		t.Fatalf("category filter: got (%d, %v)", len(byCategory), err)
	}

	// Inclusive date bounds, AND-combined with type.
	inMarch, err := repo.ListTransactions(ctx, user.ID, TransactionFilter{
		StartDate: core.NewDate(2024, 3, 1),
		EndDate:   core.NewDate(2024, 3, 31),
		Type:      core.Expense,
	})
	if err != nil || len(inMarch) != 1 || inMarch[0].Category != "courses" {
		t.Fatalf("combined filter: got (%+v, %v)", inMarch, err)
	}
}

func TestBalance(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newTestUser(t, repo, "user@example.com")
	newTestTransaction(t, repo, user.ID, core.Income, "salaire", 100000, core.NewDate(2024, 3, 5))
	newTestTransaction(t, repo, user.ID, core.Expense, "courses", 30000, core.NewDate(2024, 3, 10))
	newTestTransaction(t, repo, user.ID, core.Expense, "courses", 5000, core.NewDate(2024, 2, 28))

	res, err := repo.Balance(ctx, user.ID, core.DateRange{
		Start: core.NewDate(2024, 3, 1),
		End:   core.NewDate(2024, 3, 31),
	})
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if res.TotalIncome.Cents != 100000 || res.TotalExpenses.Cents != 30000 {
		t.Fatalf("unexpected totals: %+v", res)
	}
	if res.Balance() != 70000 {
		t.Fatalf("balance: got %d, want 70000", res.Balance())
	}
}

func TestBalanceEmptyAndInvertedRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newTestUser(t, repo, "user@example.com")
	newTestTransaction(t, repo, user.ID, core.Income, "salaire", 100000, core.NewDate(2024, 3, 5))

	empty, err := repo.Balance(ctx, user.ID, core.DateRange{
		Start: core.NewDate(2023, 1, 1),
		End:   core.NewDate(2023, 1, 31),
	})
	if err != nil || empty.TotalIncome.Cents != 0 || empty.TotalExpenses.Cents != 0 {
		t.Fatalf("empty range should sum to zero: (%+v, %v)", empty, err)
	}

	inverted, err := repo.Balance(ctx, user.ID, core.DateRange{
		Start: core.NewDate(2024, 3, 31),
		End:   core.NewDate(2024, 3, 1),
	})
	if err != nil || inverted.TotalIncome.Cents != 0 {
		t.Fatalf("inverted range should sum to zero, not error: (%+v, %v)", inverted, err)
	}
}

func TestExpensesByCategory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newTestUser(t, repo, "user@example.com")
	newTestTransaction(t, repo, user.ID, core.Expense, "courses", 10000, core.NewDate(2024, 3, 5))
	newTestTransaction(t, repo, user.ID, core.Expense, "courses", 5000, core.NewDate(2024, 3, 12))
	newTestTransaction(t, repo, user.ID, core.Expense, "transport", 3000, core.NewDate(2024, 3, 20))
	// Income and out-of-range expenses must not show up.
	newTestTransaction(t, repo, user.ID, core.Income, "salaire", 100000, core.NewDate(2024, 3, 1))
	newTestTransaction(t, repo, user.ID, core.Expense, "restaurant", 2000, core.NewDate(2024, 4, 1))

	got, err := repo.ExpensesByCategory(ctx, user.ID, core.DateRange{
		Start: core.NewDate(2024, 3, 1),
		End:   core.NewDate(2024, 3, 31),
	})
	if err != nil {
		t.Fatalf("expenses by category: %v", err)
	}
	want := []core.CategoryAmount{
		{Category: "courses", Amount: core.Money{Cents: 15000}},
		{Category: "transport", Amount: core.Money{Cents: 3000}},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBudgetCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newTestUser(t, repo, "user@example.com")
	b, err := repo.CreateBudget(ctx, core.Budget{
		UserID:      user.ID,
		Category:    "courses",
		LimitAmount: core.Money{Cents: 40000},
		Period:      core.Monthly,
	})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}

	// Same category+period for the same user conflicts.
	if _, err := repo.CreateBudget(ctx, core.Budget{
		UserID:      user.ID,
		Category:    "courses",
		LimitAmount: core.Money{Cents: 1},
		Period:      core.Monthly,
	}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	list, err := repo.ListBudgets(ctx, user.ID)
	if err != nil || len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("list budgets: got (%+v, %v)", list, err)
	}

	forCategory, err := repo.BudgetsForCategory(ctx, user.ID, "courses")
	if err != nil || len(forCategory) != 1 {
		t.Fatalf("budgets for category: got (%+v, %v)", forCategory, err)
	}

	deleted, err := repo.DeleteBudget(ctx, user.ID, b.ID)
	if err != nil || !deleted {
		t.Fatalf("delete budget: got (%v, %v)", deleted, err)
	}
	deleted, err = repo.DeleteBudget(ctx, user.ID, b.ID)
	if err != nil || deleted {
		t.Fatalf("second delete should report false: got (%v, %v)", deleted, err)
	}
}

func TestAlerts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	alice := newTestUser(t, repo, "alice@example.com")
	bob := newTestUser(t, repo, "bob@example.com")

	a, err := repo.CreateAlert(ctx, core.Alert{
		UserID:    alice.ID,
		Message:   "budget 'courses' exceeded",
		AlertType: core.AlertBudgetExceeded,
		Category:  "courses",
	})
	if err != nil {
		t.Fatalf("create alert: %v", err)
	}

	list, err := repo.ListAlerts(ctx, alice.ID)
	if err != nil || len(list) != 1 || list[0].IsRead {
		t.Fatalf("list alerts: got (%+v, %v)", list, err)
	}

	// Marking through another user is not found.
	if err := repo.MarkAlertRead(ctx, bob.ID, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.MarkAlertRead(ctx, alice.ID, a.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	list, err = repo.ListAlerts(ctx, alice.ID)
	if err != nil || len(list) != 1 || !list[0].IsRead {
		t.Fatalf("alert should be read: got (%+v, %v)", list, err)
	}
}
