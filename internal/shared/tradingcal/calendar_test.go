package tradingcal

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalendar_IsTradingDay_Weekends(t *testing.T) {
	t.Parallel()

	cal := New()

	// 2025-01-04 is a Saturday, 2025-01-05 a Sunday.
	sat := date(2025, time.January, 4)
	for i := 0; i < 8; i++ {
		weekend := sat.AddDate(0, 0, 7*i)
		if cal.IsTradingDay(weekend) {
			t.Errorf("Saturday %s should not be a trading day", FormatYMD(weekend))
		}
		sun := weekend.AddDate(0, 0, 1)
		if cal.IsTradingDay(sun) {
			t.Errorf("Sunday %s should not be a trading day", FormatYMD(sun))
		}
	}
}

func TestCalendar_IsTradingDay_Holidays(t *testing.T) {
	t.Parallel()

	cal := New()

	tests := []struct {
		name string
		d    time.Time
		want bool
	}{
		{"new year's day", date(2025, time.January, 1), false},
		{"independence movement day", date(2024, time.March, 1), false},
		{"christmas", date(2025, time.December, 25), false},
		{"seollal 2025", date(2025, time.January, 29), false},
		{"seollal eve 2025", date(2025, time.January, 28), false},
		{"children's day substitute 2025", date(2025, time.May, 6), false},
		{"foundation day substitute 2025", date(2025, time.October, 6), false},
		{"regular thursday", date(2025, time.January, 2), true},
		{"regular monday", date(2025, time.January, 6), true},
		// 2024 has no override entry, so Jan 28 (a Tuesday in 2025's
		// table only) stays a normal weekday in 2024 terms.
		{"jan 28 2026 (wednesday, no override)", date(2026, time.January, 28), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := cal.IsTradingDay(tt.d); got != tt.want {
				t.Errorf("IsTradingDay(%s) = %v, want %v", FormatYMD(tt.d), got, tt.want)
			}
		})
	}
}

func TestCalendar_TradingDaysBetween(t *testing.T) {
	t.Parallel()

	cal := New()

	t.Run("start after end returns empty", func(t *testing.T) {
		t.Parallel()
		days := cal.TradingDaysBetween(date(2025, time.March, 10), date(2025, time.March, 1))
		if len(days) != 0 {
			t.Errorf("expected empty slice, got %d days", len(days))
		}
	})

	t.Run("inclusive of both endpoints", func(t *testing.T) {
		t.Parallel()
		// Thu 2025-01-02 .. Mon 2025-01-06: Thu, Fri, Mon (weekend skipped).
		days := cal.TradingDaysBetween(date(2025, time.January, 2), date(2025, time.January, 6))
		want := []string{"20250102", "20250103", "20250106"}
		if len(days) != len(want) {
			t.Fatalf("expected %d days, got %d", len(want), len(days))
		}
		for i, d := range days {
			if FormatYMD(d) != want[i] {
				t.Errorf("day[%d] = %s, want %s", i, FormatYMD(d), want[i])
			}
		}
	})

	t.Run("single trading day range", func(t *testing.T) {
		t.Parallel()
		d := date(2025, time.January, 2)
		days := cal.TradingDaysBetween(d, d)
		if len(days) != 1 || !days[0].Equal(d) {
			t.Errorf("expected exactly [20250102], got %v", days)
		}
	})

	t.Run("seollal week 2025", func(t *testing.T) {
		t.Parallel()
		// Mon 27th trades; Tue-Thu are Seollal; Fri 31st trades.
		days := cal.TradingDaysBetween(date(2025, time.January, 27), date(2025, time.January, 31))
		want := []string{"20250127", "20250131"}
		if len(days) != len(want) {
			t.Fatalf("expected %v, got %d days", want, len(days))
		}
		for i, d := range days {
			if FormatYMD(d) != want[i] {
				t.Errorf("day[%d] = %s, want %s", i, FormatYMD(d), want[i])
			}
		}
	})
}

func TestCalendar_TradingDaysBetweenYMD(t *testing.T) {
	t.Parallel()

	cal := New()

	days, err := cal.TradingDaysBetweenYMD("20250102", "20250106")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"20250102", "20250103", "20250106"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(days))
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("day[%d] = %s, want %s", i, days[i], want[i])
		}
	}

	if _, err := cal.TradingDaysBetweenYMD("2025-01-02", "20250106"); err == nil {
		t.Error("expected error for non-YYYYMMDD input")
	}
}

func TestCalendar_LastTradingDay(t *testing.T) {
	t.Parallel()

	cal := New()

	tests := []struct {
		name string
		base time.Time
		want string
	}{
		{"trading day returns itself", date(2025, time.January, 2), "20250102"},
		{"sunday falls back to friday", date(2025, time.January, 5), "20250103"},
		{"new year's day falls back", date(2025, time.January, 1), "20241231"},
		{"seollal thursday falls back to monday", date(2025, time.January, 30), "20250127"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FormatYMD(cal.LastTradingDay(tt.base))
			if got != tt.want {
				t.Errorf("LastTradingDay(%s) = %s, want %s", FormatYMD(tt.base), got, tt.want)
			}
		})
	}
}

func TestCalendar_PreviousNextTradingDay(t *testing.T) {
	t.Parallel()

	cal := New()

	// Friday 2025-01-03: previous is Thursday, next is Monday.
	fri := date(2025, time.January, 3)
	if got := FormatYMD(cal.PreviousTradingDay(fri)); got != "20250102" {
		t.Errorf("PreviousTradingDay = %s, want 20250102", got)
	}
	if got := FormatYMD(cal.NextTradingDay(fri)); got != "20250106" {
		t.Errorf("NextTradingDay = %s, want 20250106", got)
	}

	// Across the Seollal break: Mon 2025-01-27 -> Fri 2025-01-31.
	mon := date(2025, time.January, 27)
	if got := FormatYMD(cal.NextTradingDay(mon)); got != "20250131" {
		t.Errorf("NextTradingDay across holidays = %s, want 20250131", got)
	}
}

func TestParseFormatYMD(t *testing.T) {
	t.Parallel()

	d, err := ParseYMD("20250630")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if FormatYMD(d) != "20250630" {
		t.Errorf("round trip mismatch: %s", FormatYMD(d))
	}

	if _, err := ParseYMD("not-a-date"); err == nil {
		t.Error("expected error for malformed date")
	}
}
