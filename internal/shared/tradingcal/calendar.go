// Package tradingcal は韓国株式市場（KRX）の営業日計算を提供します。
// 週末と公休日を除外した純粋な日付計算のみで、外部I/Oは行いません。
package tradingcal

import (
	"fmt"
	"time"
)

// LayoutYMD is the canonical 8-digit date form (YYYYMMDD) used across
// the collection pipeline. Upstream feed data uses this textual form, so
// it is preserved at every boundary.
const LayoutYMD = "20060102"

// EpochYear is the first year whose holiday table is maintained.
// Holiday accuracy before this year is not guaranteed; only the weekend
// rule applies there.
const EpochYear = 2020

// fixedHolidays are the KRX holidays that fall on the same month/day
// every year.
var fixedHolidays = []struct {
	month time.Month
	day   int
}{
	{time.January, 1},   // 신정 (New Year's Day)
	{time.March, 1},     // 삼일절 (Independence Movement Day)
	{time.May, 5},       // 어린이날 (Children's Day)
	{time.June, 6},      // 현충일 (Memorial Day)
	{time.August, 15},   // 광복절 (Liberation Day)
	{time.October, 3},   // 개천절 (National Foundation Day)
	{time.October, 9},   // 한글날 (Hangul Day)
	{time.December, 25}, // 성탄절 (Christmas Day)
}

// extraHolidays carries the year-specific closures that cannot be derived
// from the fixed table: lunar-calendar holidays and substitute holidays.
var extraHolidays = map[int][]struct {
	month time.Month
	day   int
}{
	2025: {
		{time.January, 28}, // 설날 연휴 (Seollal holiday)
		{time.January, 29}, // 설날 (Seollal)
		{time.January, 30}, // 설날 연휴 (Seollal holiday)
		{time.May, 6},      // 어린이날 대체 (Children's Day substitute)
		{time.October, 6},  // 개천절 대체 (Foundation Day substitute)
	},
}

// Calendar answers trading-day questions for the Korean stock market.
// The zero value is ready to use.
type Calendar struct{}

// New returns a Calendar for the Korean stock market.
func New() *Calendar {
	return &Calendar{}
}

// holidaysFor returns the set of market holidays for a year keyed by
// month/day. Pure function of the year.
func holidaysFor(year int) map[[2]int]struct{} {
	hs := make(map[[2]int]struct{}, len(fixedHolidays)+6)
	for _, h := range fixedHolidays {
		hs[[2]int{int(h.month), h.day}] = struct{}{}
	}
	for _, h := range extraHolidays[year] {
		hs[[2]int{int(h.month), h.day}] = struct{}{}
	}
	return hs
}

// IsTradingDay reports whether d is a day the market is open:
// not a Saturday/Sunday and not a listed holiday.
func (c *Calendar) IsTradingDay(d time.Time) bool {
	// 週末チェック
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	hs := holidaysFor(d.Year())
	_, holiday := hs[[2]int{int(d.Month()), d.Day()}]
	return !holiday
}

// TradingDaysBetween returns every trading day in [start, end] in
// ascending order, inclusive of both endpoints. start after end yields
// an empty slice.
func (c *Calendar) TradingDaysBetween(start, end time.Time) []time.Time {
	days := []time.Time{}
	for d := dateOnly(start); !d.After(dateOnly(end)); d = d.AddDate(0, 0, 1) {
		if c.IsTradingDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// TradingDaysBetweenYMD is TradingDaysBetween over YYYYMMDD strings,
// which is how dates travel through the rest of the pipeline.
func (c *Calendar) TradingDaysBetweenYMD(start, end string) ([]string, error) {
	s, err := ParseYMD(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseYMD(end)
	if err != nil {
		return nil, err
	}
	days := c.TradingDaysBetween(s, e)
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, FormatYMD(d))
	}
	return out, nil
}

// LastTradingDay returns the most recent trading day at or before base,
// scanning at most 14 days back. If no trading day is found within the
// window it falls back to the previous calendar day.
func (c *Calendar) LastTradingDay(base time.Time) time.Time {
	base = dateOnly(base)
	for i := 0; i < 14; i++ {
		d := base.AddDate(0, 0, -i)
		if c.IsTradingDay(d) {
			return d
		}
	}
	return base.AddDate(0, 0, -1)
}

// PreviousTradingDay returns the trading day strictly before d, scanning
// at most 10 days back; falls back to the previous calendar day.
func (c *Calendar) PreviousTradingDay(d time.Time) time.Time {
	cur := dateOnly(d).AddDate(0, 0, -1)
	for i := 0; i < 10; i++ {
		if c.IsTradingDay(cur) {
			return cur
		}
		cur = cur.AddDate(0, 0, -1)
	}
	return dateOnly(d).AddDate(0, 0, -1)
}

// NextTradingDay returns the trading day strictly after d, scanning at
// most 10 days forward; falls back to the next calendar day.
func (c *Calendar) NextTradingDay(d time.Time) time.Time {
	cur := dateOnly(d).AddDate(0, 0, 1)
	for i := 0; i < 10; i++ {
		if c.IsTradingDay(cur) {
			return cur
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return dateOnly(d).AddDate(0, 0, 1)
}

// ParseYMD parses an 8-digit YYYYMMDD date string.
func ParseYMD(s string) (time.Time, error) {
	d, err := time.Parse(LayoutYMD, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// FormatYMD renders a date in the canonical YYYYMMDD form.
func FormatYMD(d time.Time) string {
	return d.Format(LayoutYMD)
}

func dateOnly(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
