package repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := ParseDate(raw)
	require.NoError(t, err)
	return d
}

func fmtDate(d time.Time) string {
	return d.Format(DateLayout)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		from string
		n    int
		want string
	}{
		{"2022-01-15", 1, "2022-02-15"},
		{"2022-01-31", 1, "2022-02-28"},
		{"2024-01-31", 1, "2024-02-29"},
		{"2022-01-31", 3, "2022-04-30"},
		{"2022-12-15", 1, "2023-01-15"},
		{"2022-03-31", -1, "2022-02-28"},
		{"2020-02-29", 12, "2021-02-28"},
		{"2022-05-10", 0, "2022-05-10"},
	}
	for _, tt := range tests {
		got := AddMonths(date(t, tt.from), tt.n)
		assert.Equal(t, tt.want, fmtDate(got), "AddMonths(%s, %d)", tt.from, tt.n)
	}
}

func TestMonthDiff(t *testing.T) {
	assert.Equal(t, 1, MonthDiff(date(t, "2022-10-31"), date(t, "2022-10-01")))
	assert.Equal(t, 3, MonthDiff(date(t, "2022-10-10"), date(t, "2022-08-10")))
	assert.Equal(t, 13, MonthDiff(date(t, "2023-01-01"), date(t, "2022-01-31")))
	assert.Equal(t, 0, MonthDiff(date(t, "2022-07-10"), date(t, "2022-08-10")))
}

func TestDateOf(t *testing.T) {
	in := time.Date(2022, 10, 10, 23, 59, 59, 0, time.FixedZone("X", 5*3600))
	got := DateOf(in)
	assert.Equal(t, "2022-10-10", fmtDate(got))
	assert.Equal(t, time.UTC, got.Location())
	assert.Zero(t, got.Hour())
}

func TestNextDueDate(t *testing.T) {
	const today = "2022-10-10"
	tests := []struct {
		name      string
		unit      PeriodUnit
		start     string
		end       string
		reference string // defaults to start
		today     string // defaults to 2022-10-10
		want      string
	}{
		{name: "daily from yesterday", unit: PeriodDaily, start: "2022-10-09", want: "2022-10-10"},
		{name: "daily catches up", unit: PeriodDaily, start: "2022-10-08", want: "2022-10-10"},
		{name: "daily starting today", unit: PeriodDaily, start: "2022-10-10", want: "2022-10-11"},
		{name: "weekly from a week ago", unit: PeriodWeekly, start: "2022-10-03", want: "2022-10-10"},
		{name: "weekly catches up", unit: PeriodWeekly, start: "2022-09-01", want: "2022-10-13"},
		{name: "monthly catches up two months", unit: PeriodMonthly, start: "2022-08-10", want: "2022-10-10"},
		{name: "monthly starting today", unit: PeriodMonthly, start: "2022-10-10", want: "2022-11-10"},
		{name: "monthly from previous due date", unit: PeriodMonthly, start: "2022-08-10", reference: "2022-10-10", want: "2022-11-10"},
		{name: "quarterly clamps day", unit: PeriodQuarterly, start: "2022-01-31", today: "2022-01-31", want: "2022-04-30"},
		{name: "quarterly catches up", unit: PeriodQuarterly, start: "2022-01-15", want: "2022-10-15"},
		{name: "monthly does not drift after clamping", unit: PeriodMonthly, start: "2022-01-31", reference: "2022-02-28", today: "2022-02-28", want: "2022-03-31"},
		{name: "yearly from leap day", unit: PeriodYearly, start: "2020-02-29", today: "2020-02-29", want: "2021-02-28"},
		{name: "yearly second occurrence", unit: PeriodYearly, start: "2020-02-29", reference: "2021-02-28", today: "2021-02-28", want: "2022-02-28"},
		{name: "monthly loop stops at end date", unit: PeriodMonthly, start: "2022-08-10", end: "2022-09-15", want: "2022-10-10"},
		{name: "monthly lands on end date", unit: PeriodMonthly, start: "2022-08-10", end: "2022-09-10", want: "2022-09-10"},
		{name: "daily stops at past end date", unit: PeriodDaily, start: "2022-10-01", end: "2022-10-05", want: "2022-10-05"},
		{name: "end in the future does not limit", unit: PeriodWeekly, start: "2022-10-03", end: "2022-12-31", want: "2022-10-10"},
		{name: "unknown unit steps one day", unit: PeriodUnit("Hourly"), start: "2022-10-09", want: "2022-10-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := tt.reference
			if ref == "" {
				ref = tt.start
			}
			now := tt.today
			if now == "" {
				now = today
			}
			var end time.Time
			if tt.end != "" {
				end = date(t, tt.end)
			}
			got := NextDueDate(date(t, tt.start), tt.unit, end, date(t, ref), date(t, now))
			assert.Equal(t, tt.want, fmtDate(got))
		})
	}
}

func TestNextDueDateNeverInThePast(t *testing.T) {
	today := date(t, "2022-10-10")
	units := []PeriodUnit{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly}
	for _, unit := range units {
		for offset := 0; offset < 800; offset += 7 {
			start := today.AddDate(0, 0, -offset)
			got := NextDueDate(start, unit, time.Time{}, start, today)
			assert.False(t, got.Before(today), "%s from %s gave %s", unit, fmtDate(start), fmtDate(got))
			assert.True(t, got.After(start), "%s from %s gave %s", unit, fmtDate(start), fmtDate(got))
		}
	}
}

func TestNextDueDateBoundedByPastEnd(t *testing.T) {
	today := date(t, "2022-10-10")
	end := date(t, "2022-06-30")
	for _, unit := range []PeriodUnit{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly} {
		start := date(t, "2022-01-31")
		got := NextDueDate(start, unit, end, start, today)
		assert.False(t, got.Before(end), "%s gave %s", unit, fmtDate(got))
		assert.True(t, got.Before(today), "%s gave %s", unit, fmtDate(got))
	}
}

func TestNextDueDateIsIdempotent(t *testing.T) {
	start := date(t, "2022-08-10")
	end := date(t, "2023-01-01")
	today := date(t, "2022-10-10")
	first := NextDueDate(start, PeriodMonthly, end, start, today)
	second := NextDueDate(start, PeriodMonthly, end, start, today)
	assert.Equal(t, first, second)
}

func TestCountPeriods(t *testing.T) {
	tests := []struct {
		unit       PeriodUnit
		start, end string
		want       int
	}{
		{PeriodMonthly, "2022-01-15", "2022-12-15", 11},
		{PeriodQuarterly, "2022-01-15", "2022-12-15", 3},
		{PeriodYearly, "2022-01-01", "2024-06-01", 2},
		{PeriodWeekly, "2022-10-01", "2022-10-20", 2},
		{PeriodDaily, "2022-10-01", "2022-10-20", 19},
		{PeriodMonthly, "2022-10-01", "2022-10-31", 0},
	}
	for _, tt := range tests {
		got := CountPeriods(date(t, tt.start), date(t, tt.end), tt.unit)
		assert.Equal(t, tt.want, got, "%s %s..%s", tt.unit, tt.start, tt.end)
	}

	assert.Zero(t, CountPeriods(date(t, "2022-10-01"), time.Time{}, PeriodDaily))
}
