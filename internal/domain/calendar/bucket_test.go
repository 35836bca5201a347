package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shopcapital/internal/domain/models"
)

func TestTrailingWithinOneYear(t *testing.T) {
	now := time.Date(2024, time.August, 15, 10, 0, 0, 0, time.UTC)

	keys := Trailing(now, DashboardWindow)

	require.Len(t, keys, 6)
	assert.Equal(t, MonthKey{2024, time.March}, keys[0])
	assert.Equal(t, MonthKey{2024, time.August}, keys[5])
}

func TestTrailingAcrossYearBoundary(t *testing.T) {
	now := time.Date(2024, time.February, 29, 23, 59, 0, 0, time.UTC)

	keys := Trailing(now, DashboardWindow)

	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = k.ShortLabel()
	}
	assert.Equal(t, []string{"Sep", "Oct", "Nov", "Dec", "Jan", "Feb"}, labels)
	assert.Equal(t, 2023, keys[0].Year)
	assert.Equal(t, 2024, keys[5].Year)
}

func TestTrailingTwelveMonthsKeepsYearsApart(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	keys := Trailing(now, 13)

	require.Len(t, keys, 13)
	assert.Equal(t, keys[0].ShortLabel(), keys[12].ShortLabel())
	assert.NotEqual(t, keys[0], keys[12])

	seen := map[MonthKey]bool{}
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate bucket %v", k)
		seen[k] = true
	}
}

func TestAddMonths(t *testing.T) {
	cases := []struct {
		from MonthKey
		n    int
		want MonthKey
	}{
		{MonthKey{2024, time.January}, -1, MonthKey{2023, time.December}},
		{MonthKey{2024, time.January}, -13, MonthKey{2022, time.December}},
		{MonthKey{2023, time.December}, 1, MonthKey{2024, time.January}},
		{MonthKey{2024, time.May}, 0, MonthKey{2024, time.May}},
		{MonthKey{2024, time.May}, 20, MonthKey{2026, time.January}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.AddMonths(tc.n), "%v %+d", tc.from, tc.n)
	}
}

func TestKeyOfAndLabels(t *testing.T) {
	k := KeyOf(models.NewDate(2024, time.March, 31))

	assert.Equal(t, MonthKey{2024, time.March}, k)
	assert.Equal(t, "Mar", k.ShortLabel())
	assert.Equal(t, "March 2024", k.LongLabel())
	assert.True(t, MonthKey{2023, time.December}.Before(k))
	assert.False(t, k.Before(k))
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, models.NewDate(2023, time.September, 1), WindowStart(now, DashboardWindow))
}
