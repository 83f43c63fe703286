// Package age derives completed-years ages from ISO birth dates.
package age

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the ISO date layout emitted by date widgets.
const Layout = "2006-01-02"

// ErrEmpty is returned by Parse for blank input.
var ErrEmpty = errors.New("age: empty date")

// Parse reads an ISO date. Blank input yields ErrEmpty.
func Parse(iso string) (time.Time, error) {
	trimmed := strings.TrimSpace(iso)
	if trimmed == "" {
		return time.Time{}, ErrEmpty
	}
	t, err := time.Parse(Layout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("age: parse %q: %w", trimmed, err)
	}
	return t, nil
}

// Years returns the age in completed years: the naive year difference,
// decremented by one when today's month/day precedes the birth month/day.
func Years(birth, today time.Time) int {
	years := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		years--
	}
	return years
}

// Of returns the age for iso as of today. ok is false for blank or
// unparseable dates; callers gating on age must treat that as "no gating".
func Of(iso string, today time.Time) (years int, ok bool) {
	birth, err := Parse(iso)
	if err != nil {
		return 0, false
	}
	return Years(birth, today), true
}

// OrZero returns the age for iso, or 0 when it is unknown. It is meant for
// display and payload formatting only.
func OrZero(iso string, today time.Time) int {
	years, _ := Of(iso, today)
	return years
}

// InFuture reports whether iso names a day after today.
func InFuture(iso string, today time.Time) bool {
	birth, err := Parse(iso)
	if err != nil {
		return false
	}
	y, m, d := today.Date()
	return birth.After(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// Anomaly reports whether a child of childAge is at least as old as the
// youngest known parent. Parent ages that are not positive are unknown and
// ignored; with no known parent age there is no anomaly.
func Anomaly(childAge int, parentAges ...int) bool {
	youngest := -1
	for _, parent := range parentAges {
		if parent <= 0 {
			continue
		}
		if youngest < 0 || parent < youngest {
			youngest = parent
		}
	}
	return youngest > 0 && childAge >= youngest
}
