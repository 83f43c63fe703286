package age

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYearsCompletedRule(t *testing.T) {
	t.Parallel()

	birth := day(2006, time.October, 17)
	cases := []struct {
		today time.Time
		want  int
	}{
		{day(2024, time.October, 16), 17},
		{day(2024, time.October, 17), 18},
		{day(2024, time.November, 1), 18},
		{day(2024, time.January, 30), 17},
	}
	for _, tc := range cases {
		if got := Years(birth, tc.today); got != tc.want {
			t.Fatalf("Years(%s) = %d, want %d", tc.today.Format(Layout), got, tc.want)
		}
	}
}

func TestYearsLeapDay(t *testing.T) {
	t.Parallel()

	birth := day(2004, time.February, 29)
	if got := Years(birth, day(2023, time.February, 28)); got != 18 {
		t.Fatalf("before leap birthday = %d, want 18", got)
	}
	if got := Years(birth, day(2023, time.March, 1)); got != 19 {
		t.Fatalf("after leap birthday = %d, want 19", got)
	}
}

func TestOfEmptyIsUnknown(t *testing.T) {
	t.Parallel()

	today := day(2024, time.June, 1)
	if _, ok := Of("", today); ok {
		t.Fatalf("empty date must not produce a gating age")
	}
	if _, ok := Of("01/02/2000", today); ok {
		t.Fatalf("malformed date must not produce a gating age")
	}
	if got := OrZero("", today); got != 0 {
		t.Fatalf("OrZero = %d, want 0", got)
	}
	if _, err := Parse(" "); !errors.Is(err, ErrEmpty) {
		t.Fatalf("Parse blank = %v, want ErrEmpty", err)
	}
}

func TestInFuture(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, time.June, 1, 15, 30, 0, 0, time.UTC)
	if InFuture("2024-06-01", today) {
		t.Fatalf("today is not in the future")
	}
	if !InFuture("2024-06-02", today) {
		t.Fatalf("tomorrow is in the future")
	}
}

func TestAnomaly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		child   int
		parents []int
		want    bool
	}{
		{"same age", 40, []int{40}, true},
		{"older child", 41, []int{40}, true},
		{"younger child", 39, []int{40}, false},
		{"youngest parent wins", 35, []int{60, 35}, true},
		{"unknown parents", 50, []int{0, 0}, false},
		{"no parents", 10, nil, false},
	}
	for _, tc := range cases {
		if got := Anomaly(tc.child, tc.parents...); got != tc.want {
			t.Fatalf("%s: Anomaly = %v, want %v", tc.name, got, tc.want)
		}
	}
}
