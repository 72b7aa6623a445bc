package core

// CategoryAmount is an expense sum aggregated by category.
type CategoryAmount struct {
	Category string
	Amount   Money
}

// BalanceResult holds period totals. Balance may be negative.
type BalanceResult struct {
	TotalIncome   Money
	TotalExpenses Money
}

// Balance returns income minus expenses in cents.
func (b BalanceResult) Balance() int64 {
	return b.TotalIncome.Cents - b.TotalExpenses.Cents
}

// Summary combines the balance and the category breakdown computed over
// one resolved range, so the two views are always consistent.
type Summary struct {
	Balance    BalanceResult
	ByCategory []CategoryAmount
	Range      DateRange
	Period     Period
}
