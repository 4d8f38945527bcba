package core

import (
	"encoding/json"
	"testing"
)

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"same day", "2024-03-10", "2024-03-10", 1},
		{"january", "2024-01-01", "2024-01-31", 31},
		{"thirty days", "2024-01-01", "2024-01-30", 30},
		{"leap year", "2024-01-01", "2024-12-31", 366},
		{"common year", "2023-01-01", "2023-12-31", 365},
		{"across february leap", "2024-02-28", "2024-03-01", 3},
		{"inverted", "2024-01-02", "2024-01-01", 0},
		{"eight centuries", "1600-01-01", "2400-01-01", 292195},
		{"beyond duration range", "0002-01-01", "9999-12-31", 3651694},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DaysBetween(MustParseDate(tt.start), MustParseDate(tt.end))
			if got != tt.want {
				t.Errorf("DaysBetween(%s, %s) = %d, want %d", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestIsValidRange(t *testing.T) {
	tests := []struct {
		start, end string
		want       bool
	}{
		{"2024-01-01", "2024-01-01", true},
		{"2024-01-01", "2024-12-31", true},
		{"2024-1-5", "2024-01-06", true},
		{"2024-12-31", "2024-01-01", false},
		{"", "2024-01-01", false},
		{"2024-01-01", "", false},
		{"2024-02-30", "2024-03-01", false},
		{"not-a-date", "2024-03-01", false},
		{"2024-13-01", "2024-12-01", false},
	}
	for i, tc := range tests {
		if got := IsValidRange(tc.start, tc.end); got != tc.want {
			t.Fatalf("case %d IsValidRange(%q, %q) = %v, want %v", i, tc.start, tc.end, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != 2 || d.Day() != 29 {
		t.Fatalf("unexpected date %v", d)
	}
	if _, err := ParseDate("2023-02-29"); err == nil {
		t.Fatalf("expected error for non-leap Feb 29")
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("String() = %q", d.String())
	}
	if _, err := ParseDate("0001-01-01"); err == nil {
		t.Fatalf("expected error for the unset date")
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, 1, 31)
	if got := d.AddDays(1).String(); got != "2024-02-01" {
		t.Errorf("AddDays = %s", got)
	}
	if got := d.AddYears(1).String(); got != "2025-01-31" {
		t.Errorf("AddYears = %s", got)
	}
	if got := NewDate(2024, 1, 15).AddMonths(2).String(); got != "2024-03-15" {
		t.Errorf("AddMonths = %s", got)
	}
}

func TestDateRange(t *testing.T) {
	r, err := NewDateRange("2024-01-01", "2024-01-10")
	if err != nil {
		t.Fatalf("NewDateRange: %v", err)
	}
	if !r.Valid() {
		t.Fatalf("expected valid range")
	}
	if r.Days() != 10 {
		t.Fatalf("Days() = %d, want 10", r.Days())
	}
	if !r.Contains(NewDate(2024, 1, 1)) || !r.Contains(NewDate(2024, 1, 10)) {
		t.Fatalf("bounds must be included")
	}
	if r.Contains(NewDate(2024, 1, 11)) {
		t.Fatalf("date after end must not be contained")
	}
	if (DateRange{}).Valid() {
		t.Fatalf("empty range must not be valid")
	}
	if (DateRange{Start: NewDate(2024, 2, 1), End: NewDate(2024, 1, 1)}).Valid() {
		t.Fatalf("inverted range must not be valid")
	}
}

func TestDateRangeJSON(t *testing.T) {
	r := DateRange{Start: NewDate(2024, 1, 1), End: NewDate(2024, 12, 31)}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"startDate":"2024-01-01","endDate":"2024-12-31"}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}

	var back DateRange
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Start.Equal(r.Start.Time) || !back.End.Equal(r.End.Time) {
		t.Fatalf("round trip mismatch: %v", back)
	}

	if err := json.Unmarshal([]byte(`{"startDate":"2024-99-01","endDate":"2024-12-31"}`), &back); err == nil {
		t.Fatalf("expected error for invalid date")
	}
}
