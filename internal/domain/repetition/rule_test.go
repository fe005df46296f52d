package repetition

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleValidate(t *testing.T) {
	start := date(t, "2022-10-01")

	r := &Rule{PeriodUnit: PeriodDaily, StartDate: start}
	assert.NoError(t, r.Validate())

	r = &Rule{PeriodUnit: "Hourly", StartDate: start}
	assert.ErrorIs(t, r.Validate(), ErrInvalidPeriodUnit)

	r = &Rule{PeriodUnit: PeriodDaily, StartDate: start, EndDate: sql.NullTime{Time: start, Valid: true}}
	assert.ErrorIs(t, r.Validate(), ErrInvalidDateRange)

	r = &Rule{PeriodUnit: PeriodDaily, StartDate: start, EndDate: sql.NullTime{Time: date(t, "2022-09-30"), Valid: true}}
	assert.ErrorIs(t, r.Validate(), ErrInvalidDateRange)

	r = &Rule{PeriodUnit: PeriodDaily, StartDate: start, EndDate: sql.NullTime{Time: date(t, "2022-10-02"), Valid: true}}
	assert.NoError(t, r.Validate())
}

func TestRuleSchedule(t *testing.T) {
	today := date(t, "2022-10-10")

	r := &Rule{PeriodUnit: PeriodDaily, StartDate: date(t, "2022-10-09")}
	r.Schedule(today)
	assert.Equal(t, StatusActive, r.Status)
	assert.Equal(t, "2022-10-10", fmtDate(r.NextDueDate))
	assert.Zero(t, r.PeriodCount)

	r = &Rule{
		PeriodUnit: PeriodMonthly,
		StartDate:  date(t, "2022-08-10"),
		EndDate:    sql.NullTime{Time: date(t, "2023-08-10"), Valid: true},
	}
	r.Schedule(today)
	assert.Equal(t, StatusActive, r.Status)
	assert.Equal(t, "2022-10-10", fmtDate(r.NextDueDate))
	assert.Equal(t, 12, r.PeriodCount)
}

func TestRuleScheduleEndedBeforeToday(t *testing.T) {
	r := &Rule{
		PeriodUnit: PeriodMonthly,
		StartDate:  date(t, "2022-08-10"),
		EndDate:    sql.NullTime{Time: date(t, "2022-09-15"), Valid: true},
	}
	r.Schedule(date(t, "2022-10-10"))

	assert.Equal(t, StatusCompleted, r.Status)
	assert.Equal(t, "2022-09-15", fmtDate(r.NextDueDate))
	assert.False(t, r.NextDueDate.Before(r.StartDate))
	assert.False(t, r.IsDue(date(t, "2022-10-10")))
}

func TestRuleAdvance(t *testing.T) {
	today := date(t, "2022-10-10")
	r := &Rule{
		PeriodUnit:  PeriodMonthly,
		StartDate:   date(t, "2022-08-10"),
		NextDueDate: today,
		Status:      StatusActive,
	}

	assert.True(t, r.Advance(today))
	assert.Equal(t, "2022-11-10", fmtDate(r.NextDueDate))
	assert.Equal(t, StatusActive, r.Status)
}

func TestRuleAdvanceStopsAtEndDate(t *testing.T) {
	today := date(t, "2022-10-10")
	r := &Rule{
		PeriodUnit:  PeriodMonthly,
		StartDate:   date(t, "2022-08-10"),
		EndDate:     sql.NullTime{Time: date(t, "2022-10-31"), Valid: true},
		NextDueDate: today,
		Status:      StatusActive,
	}

	assert.False(t, r.Advance(today))
	assert.Equal(t, StatusCompleted, r.Status)
	assert.Equal(t, "2022-10-10", fmtDate(r.NextDueDate), "due date must not move past the end date")
}

func TestRuleAdvanceIsMonotonic(t *testing.T) {
	for _, unit := range []PeriodUnit{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly} {
		r := &Rule{PeriodUnit: unit, StartDate: date(t, "2021-01-31")}
		today := r.StartDate
		r.Schedule(today)
		prev := r.NextDueDate
		for i := 0; i < 30; i++ {
			today = r.NextDueDate
			assert.True(t, r.Advance(today))
			assert.True(t, r.NextDueDate.After(prev), "%s: %s then %s", unit, fmtDate(prev), fmtDate(r.NextDueDate))
			prev = r.NextDueDate
		}
	}
}

func TestRuleIsDue(t *testing.T) {
	r := &Rule{NextDueDate: date(t, "2022-10-10"), Status: StatusActive}
	assert.True(t, r.IsDue(date(t, "2022-10-10")))
	assert.True(t, r.IsDue(date(t, "2022-10-11")))
	assert.False(t, r.IsDue(date(t, "2022-10-09")))

	r.Status = StatusCompleted
	assert.False(t, r.IsDue(date(t, "2022-10-11")))
}
