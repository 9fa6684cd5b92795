package rules

import (
	"testing"
	"time"
)

func TestParseDeadlineRelative(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		raw  string
		want time.Time
	}{
		{"3 часа", now.In(deadlineZone).Add(3 * time.Hour)},
		{"1 час", now.In(deadlineZone).Add(time.Hour)},
		{"2 дня", now.In(deadlineZone).AddDate(0, 0, 2)},
		{"5 дней", now.In(deadlineZone).AddDate(0, 0, 5)},
		{"1 неделя", now.In(deadlineZone).AddDate(0, 0, 7)},
		{"2 недели", now.In(deadlineZone).AddDate(0, 0, 14)},
		{"1 месяц", now.In(deadlineZone).AddDate(0, 1, 0)},
		{"  3 ЧАСА  ", now.In(deadlineZone).Add(3 * time.Hour)},
	}

	for _, tc := range cases {
		got, err := ParseDeadline(tc.raw, now)
		if err != nil {
			t.Errorf("ParseDeadline(%q): %v", tc.raw, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseDeadline(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestParseDeadlineAbsolute(t *testing.T) {
	got, err := ParseDeadline("2026-09-01 18:30", time.Now())
	if err != nil {
		t.Fatalf("ParseDeadline: %v", err)
	}

	want := time.Date(2026, 9, 1, 18, 30, 0, 0, deadlineZone)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseDeadlineInvalid(t *testing.T) {
	invalid := []string{
		"",
		"завтра",
		"3",
		"часа 3",
		"0 часов",
		"-1 день",
		"три часа",
		"3 парсека",
	}

	for _, raw := range invalid {
		if _, err := ParseDeadline(raw, time.Now()); err == nil {
			t.Errorf("ParseDeadline(%q): expected error", raw)
		}
	}
}

func TestFormatDeadlineRoundTrip(t *testing.T) {
	deadline := time.Date(2026, 9, 1, 18, 30, 0, 0, deadlineZone)
	formatted := FormatDeadline(deadline)

	parsed, err := ParseDeadline(formatted, time.Now())
	if err != nil {
		t.Fatalf("ParseDeadline(%q): %v", formatted, err)
	}
	if !parsed.Equal(deadline) {
		t.Fatalf("round trip mismatch: %v != %v", parsed, deadline)
	}
}
