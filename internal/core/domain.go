package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID          string
		UserID      string
		Amount      Money
		Type        TransactionType
		Category    string
		Description string
		Date        Date
		CreatedAt   time.Time
	}

	User struct {
		ID           string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	Budget struct {
		ID          string
		UserID      string
		Category    string
		LimitAmount Money
		Period      Period
		CreatedAt   time.Time
	}

	Alert struct {
		ID        string
		UserID    string
		Message   string
		AlertType AlertType
		Category  string
		IsRead    bool
		CreatedAt time.Time
	}

	AlertType string
)

const (
	AlertBudgetExceeded  AlertType = "budget_exceeded"
	AlertBudgetWarning   AlertType = "budget_warning"
	AlertUnusualSpending AlertType = "unusual_spending"
)

// Category vocabulary. Income and expense categories share one namespace
// and are not cross-checked against the transaction type.
var (
	IncomeCategories = []string{"salaire", "freelance", "investissement", "autre_revenu"}

	ExpenseCategories = []string{
		"courses", "loyer", "transport", "utilities", "divertissement",
		"sante", "education", "vetements", "restaurant", "autre_depense",
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidDate        = errors.New("invalid date")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// ValidCategory reports whether name belongs to the fixed category vocabulary.
func ValidCategory(name string) bool {
	for _, c := range IncomeCategories {
		if c == name {
			return true
		}
	}
	for _, c := range ExpenseCategories {
		if c == name {
			return true
		}
	}
	return false
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (tx Transaction) Validate() error {
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if !ValidCategory(tx.Category) {
		return ErrInvalidCategory
	}
	if tx.Date.IsZero() {
		return ErrInvalidDate
	}
	// Rune count, not bytes: accented text must not shrink the limit.
	if utf8.RuneCountInString(strings.TrimSpace(tx.Description)) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.LimitAmount.Validate(); err != nil {
		return err
	}
	if !ValidCategory(b.Category) {
		return ErrInvalidCategory
	}
	return b.Period.Validate()
}

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today truncates now to a calendar date in UTC.
func Today(now time.Time) Date {
	y, m, d := now.UTC().Date()
	return NewDate(y, int(m), d)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
