package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"school-admin/internal/grades"
)

var errNoRecipient = errors.New("no recipient: pass --to or record an email on the student's parent or family")

// validateAndParseID validates that the argument is a non-empty, valid integer ID
func validateAndParseID(arg string) (int64, error) {
	if strings.TrimSpace(arg) == "" {
		return 0, fmt.Errorf("ID cannot be empty")
	}

	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ID '%s': must be a positive integer", arg)
	}

	if id <= 0 {
		return 0, fmt.Errorf("invalid ID '%d': must be a positive integer", id)
	}

	return id, nil
}

// parseMonth validates a YYYY-MM month; empty means the month of now
func parseMonth(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.Format("2006-01"), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return "", fmt.Errorf("invalid month '%s': expected YYYY-MM", s)
	}
	return t.Format("2006-01"), nil
}

// parseQuarter accepts 1-4, T1-T4, or "year"/"all"/0 for the whole year
func parseQuarter(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "0", "all", "year", "annee", "année":
		return grades.AllQuarters, nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "t"))
	if err != nil || n < 1 || n > 4 {
		return 0, fmt.Errorf("invalid quarter '%s': expected 1-4 or 'year'", s)
	}
	return n, nil
}
