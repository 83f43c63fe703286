// Package testsupport holds helpers shared by the package tests: a fixed
// clock, birth dates for a target age and golden file handling.
package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// Today is the fixed date tests run against.
var Today = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

// Clock returns a clock frozen at Today.
func Clock() func() time.Time {
	return func() time.Time { return Today }
}

// BirthDate returns an ISO date that makes someone exactly years old on Today.
func BirthDate(years int) string {
	return Today.AddDate(-years, 0, 0).Format("2006-01-02")
}

// BirthDateTurning returns an ISO date for someone who turns years old the day
// after Today.
func BirthDateTurning(years int) string {
	return Today.AddDate(-years, 0, 1).Format("2006-01-02")
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}
