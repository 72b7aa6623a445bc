package core

import "testing"

func TestResolveRange(t *testing.T) {
	cases := []struct {
		name   string
		period Period
		today  Date
		start  Date
		end    Date
	}{
		{"weekly mid-week", Weekly, NewDate(2024, 3, 15), NewDate(2024, 3, 11), NewDate(2024, 3, 17)},
		{"weekly on monday", Weekly, NewDate(2024, 3, 11), NewDate(2024, 3, 11), NewDate(2024, 3, 17)},
		{"weekly on sunday", Weekly, NewDate(2024, 3, 17), NewDate(2024, 3, 11), NewDate(2024, 3, 17)},
		{"monthly", Monthly, NewDate(2024, 3, 15), NewDate(2024, 3, 1), NewDate(2024, 3, 31)},
		{"monthly december rollover", Monthly, NewDate(2024, 12, 20), NewDate(2024, 12, 1), NewDate(2024, 12, 31)},
		{"monthly leap february", Monthly, NewDate(2024, 2, 10), NewDate(2024, 2, 1), NewDate(2024, 2, 29)},
		{"yearly", Yearly, NewDate(2024, 3, 15), NewDate(2024, 1, 1), NewDate(2024, 12, 31)},
	}
	for _, tc := range cases {
		r := ResolveRange(tc.period, tc.today)
		if !r.Start.Equal(tc.start.Time) || !r.End.Equal(tc.end.Time) {
			t.Fatalf("%s: got [%s, %s], want [%s, %s]", tc.name, r.Start, r.End, tc.start, tc.end)
		}
	}
}

func TestRangeFor(t *testing.T) {
	today := NewDate(2024, 3, 15)
	explicitStart := NewDate(2024, 2, 1)
	explicitEnd := NewDate(2024, 2, 15)

	// Both bounds present: they win over the period.
	r := RangeFor(Yearly, explicitStart, explicitEnd, today)
	if !r.Start.Equal(explicitStart.Time) || !r.End.Equal(explicitEnd.Time) {
		t.Fatalf("explicit bounds ignored: got [%s, %s]", r.Start, r.End)
	}

	// Only one bound present: fall back to the full period computation.
	r = RangeFor(Monthly, explicitStart, Date{}, today)
	if !r.Start.Equal(NewDate(2024, 3, 1).Time) || !r.End.Equal(NewDate(2024, 3, 31).Time) {
		t.Fatalf("partial override should resolve the period: got [%s, %s]", r.Start, r.End)
	}
	r = RangeFor(Monthly, Date{}, explicitEnd, today)
	if !r.Start.Equal(NewDate(2024, 3, 1).Time) {
		t.Fatalf("partial override should resolve the period: got [%s, %s]", r.Start, r.End)
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := ParsePeriod(""); err != nil || p != Monthly {
		t.Fatalf("empty period should default to monthly, got (%q, %v)", p, err)
	}
	if _, err := ParsePeriod("daily"); err == nil {
		t.Fatalf("expected error for unknown period")
	}
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{Start: NewDate(2024, 3, 1), End: NewDate(2024, 3, 31)}
	if !r.Contains(NewDate(2024, 3, 1)) || !r.Contains(NewDate(2024, 3, 31)) {
		t.Fatalf("bounds are inclusive")
	}
	if r.Contains(NewDate(2024, 2, 29)) {
		t.Fatalf("out-of-range date included")
	}
	inverted := DateRange{Start: NewDate(2024, 3, 31), End: NewDate(2024, 3, 1)}
	if inverted.Contains(NewDate(2024, 3, 15)) {
		t.Fatalf("inverted range should contain nothing")
	}
}
