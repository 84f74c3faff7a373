package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseMonthAt(t *testing.T) {
	now := time.Date(2024, time.July, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		in        string
		year      int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"full name", "March", 0, date(2024, 3, 1), date(2024, 4, 1)},
		{"lowercase", "march", 0, date(2024, 3, 1), date(2024, 4, 1)},
		{"abbreviation", "Sep", 0, date(2024, 9, 1), date(2024, 10, 1)},
		{"number", "3", 0, date(2024, 3, 1), date(2024, 4, 1)},
		{"zero padded", "03", 0, date(2024, 3, 1), date(2024, 4, 1)},
		{"explicit year", "February", 2022, date(2022, 2, 1), date(2022, 3, 1)},
		{"year-month form", "2021-11", 0, date(2021, 11, 1), date(2021, 12, 1)},
		{"year-month overrides year", "2021-11", 2030, date(2021, 11, 1), date(2021, 12, 1)},
		{"december rolls over", "December", 0, date(2024, 12, 1), date(2025, 1, 1)},
		{"empty means current month", "", 0, date(2024, 7, 1), date(2024, 8, 1)},
		{"whitespace trimmed", "  june ", 0, date(2024, 6, 1), date(2024, 7, 1)},
		{"leap february", "2", 2024, date(2024, 2, 1), date(2024, 3, 1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseMonthAt(tc.in, tc.year, now)
			if err != nil {
				t.Fatalf("ParseMonthAt(%q) error: %v", tc.in, err)
			}
			if !got.Start.Equal(tc.wantStart) || !got.End.Equal(tc.wantEnd) {
				t.Fatalf("ParseMonthAt(%q) = [%v, %v), want [%v, %v)", tc.in, got.Start, got.End, tc.wantStart, tc.wantEnd)
			}
		})
	}
}

func TestParseMonthAtRejectsInvalidInput(t *testing.T) {
	now := time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"Marchh", "0", "13", "-1", "2024-13", "2024-00", "abcd-01", "Invalid Date", "1.5"} {
		_, err := ParseMonthAt(in, 0, now)
		if !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("ParseMonthAt(%q) err = %v, want ErrInvalidParameter", in, err)
		}
	}
}

func TestMonthRangeContainsIsHalfOpen(t *testing.T) {
	r := NewMonthRange(2024, time.March)

	if !r.Contains(date(2024, 3, 1)) {
		t.Fatalf("start of month should be included")
	}
	if !r.Contains(time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("last second of month should be included")
	}
	if r.Contains(date(2024, 4, 1)) {
		t.Fatalf("first day of next month should be excluded")
	}
	if r.Contains(time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("previous month should be excluded")
	}
	if r.String() != "2024-03" {
		t.Fatalf("String() = %q", r.String())
	}
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}
