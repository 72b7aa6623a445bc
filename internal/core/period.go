package core

import "errors"

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

type (
	Period string

	// DateRange is an inclusive calendar interval. It is derived per
	// request and never persisted.
	DateRange struct {
		Start Date
		End   Date
	}
)

var ErrInvalidPeriod = errors.New("invalid period")

func (p Period) Validate() error {
	switch p {
	case Weekly, Monthly, Yearly:
		return nil
	default:
		return ErrInvalidPeriod
	}
}

// ParsePeriod parses a period name, defaulting to monthly for the empty string.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return Monthly, nil
	}
	p := Period(s)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// ResolveRange computes the calendar range the period covers around today.
//
//	weekly:  Monday on/before today through the following Sunday
//	monthly: first through last day of today's month
//	yearly:  Jan 1 through Dec 31 of today's year
func ResolveRange(p Period, today Date) DateRange {
	switch p {
	case Weekly:
		// time.Weekday counts Sunday as 0; shift so Monday is 0.
		offset := (int(today.Weekday()) + 6) % 7
		start := Date{Time: today.AddDate(0, 0, -offset)}
		return DateRange{Start: start, End: Date{Time: start.AddDate(0, 0, 6)}}
	case Yearly:
		return DateRange{
			Start: NewDate(today.Year(), 1, 1),
			End:   NewDate(today.Year(), 12, 31),
		}
	default: // monthly
		start := NewDate(today.Year(), int(today.Month()), 1)
		end := Date{Time: start.AddDate(0, 1, -1)}
		return DateRange{Start: start, End: end}
	}
}

// RangeFor resolves the effective range for a dashboard query. Explicit
// start and end override the period entirely, but only when both are set;
// a partial override falls back to the full period computation.
func RangeFor(p Period, start, end Date, today Date) DateRange {
	if !start.IsZero() && !end.IsZero() {
		return DateRange{Start: start, End: end}
	}
	return ResolveRange(p, today)
}

// Contains reports whether d falls inside the range. An inverted range
// contains nothing.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start.Time) && !d.After(r.End.Time)
}
