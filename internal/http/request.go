package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// decodeJSON reads a JSON request body into dst. A syntactically unreadable
// body is a 400 concern for the caller, distinct from semantic validation.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	return nil
}

// parsePagination reads skip and limit from the query. Limit is clamped to
// [1, 1000] with 100 as the default; a negative skip becomes zero.
func parsePagination(query url.Values) (skip, limit int) {
	limit = defaultListLimit

	if v := strings.TrimSpace(query.Get("skip")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			skip = n
		}
	}
	if v := strings.TrimSpace(query.Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return skip, limit
}

// parseTransactionFilter builds the list filter from the query string.
func parseTransactionFilter(query url.Values) (storage.TransactionFilter, error) {
	var f storage.TransactionFilter
	f.Skip, f.Limit = parsePagination(query)

	if v := strings.TrimSpace(query.Get("start_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, err
		}
		f.StartDate = d
	}
	if v := strings.TrimSpace(query.Get("end_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, err
		}
		f.EndDate = d
	}
	if v := strings.TrimSpace(query.Get("transaction_type")); v != "" {
		t := core.TransactionType(v)
		if err := t.Validate(); err != nil {
			return f, err
		}
		f.Type = t
	}
	f.Category = strings.TrimSpace(query.Get("category"))

	return f, nil
}

// parseDashboardParams reads period plus optional start_date/end_date
// overrides. Zero dates mean "not supplied".
func parseDashboardParams(query url.Values) (core.Period, core.Date, core.Date, error) {
	p, err := core.ParsePeriod(strings.TrimSpace(query.Get("period")))
	if err != nil {
		return "", core.Date{}, core.Date{}, err
	}

	var start, end core.Date
	if v := strings.TrimSpace(query.Get("start_date")); v != "" {
		if start, err = core.ParseDate(v); err != nil {
			return "", core.Date{}, core.Date{}, err
		}
	}
	if v := strings.TrimSpace(query.Get("end_date")); v != "" {
		if end, err = core.ParseDate(v); err != nil {
			return "", core.Date{}, core.Date{}, err
		}
	}
	return p, start, end, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
