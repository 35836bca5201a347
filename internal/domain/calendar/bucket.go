// Package calendar assigns dated records to calendar-month buckets.
//
// Buckets are keyed by (year, month) so that two months sharing a name in
// different years never collapse into one bucket, whatever the window size.
// Only the display label is month-name based.
package calendar

import (
	"fmt"
	"time"

	"github.com/mamadbah2/shopcapital/internal/domain/models"
)

// DashboardWindow is the number of trailing months shown on the dashboard.
const DashboardWindow = 6

// MonthKey identifies one calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

// KeyOf returns the bucket a date falls into.
func KeyOf(d models.Date) MonthKey {
	return MonthKey{Year: d.Year(), Month: d.Month()}
}

// KeyAt returns the bucket containing the instant t, in t's location.
func KeyAt(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// AddMonths steps the key forward (or backward for negative n) by n months.
func (k MonthKey) AddMonths(n int) MonthKey {
	idx := k.Year*12 + int(k.Month-1) + n
	year := idx / 12
	month := idx % 12
	if month < 0 {
		month += 12
		year--
	}
	return MonthKey{Year: year, Month: time.Month(month + 1)}
}

// Before reports whether k is an earlier month than other.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// FirstDay is the first calendar date of the month.
func (k MonthKey) FirstDay() models.Date {
	return models.NewDate(k.Year, k.Month, 1)
}

// ShortLabel is the abbreviated month name, e.g. "Mar".
func (k MonthKey) ShortLabel() string {
	return k.Month.String()[:3]
}

// LongLabel is the full month name and year, e.g. "March 2024".
func (k MonthKey) LongLabel() string {
	return fmt.Sprintf("%s %d", k.Month.String(), k.Year)
}

// Trailing returns the n months ending at the month containing now, oldest first.
func Trailing(now time.Time, n int) []MonthKey {
	if n <= 0 {
		return nil
	}
	current := KeyAt(now)
	keys := make([]MonthKey, n)
	for i := 0; i < n; i++ {
		keys[i] = current.AddMonths(i - (n - 1))
	}
	return keys
}

// WindowStart is the first calendar day covered by the trailing window.
func WindowStart(now time.Time, n int) models.Date {
	return KeyAt(now).AddMonths(-(n - 1)).FirstDay()
}
