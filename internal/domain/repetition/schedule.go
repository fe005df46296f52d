// internal/domain/repetition/schedule.go
package repetition

import "time"

// DateLayout is the calendar date format used across the service.
const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, raw, time.UTC)
}

// MonthDiff returns the number of calendar months from b to a, counting both
// ends: two dates in the same month are one month apart.
func MonthDiff(a, b time.Time) int {
	return (a.Year()*12 + int(a.Month())) - (b.Year()*12 + int(b.Month())) + 1
}

// AddMonths moves t by n calendar months. When the target month is shorter
// the day is clamped to its last day, so Jan 31 + 1 month is Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextDueDate computes the next date a clone should be produced for a rule
// anchored at start. reference is the previous due date (or start itself when
// the rule is first scheduled). A zero end means the rule is open ended.
//
// Month-based units are always derived from start so that clamped days do
// not drift (Jan 31, Feb 28, Mar 31, ...). Day-based units step from
// reference. Dates already in the past are skipped until the result is on
// or after today, or on or after end.
func NextDueDate(start time.Time, unit PeriodUnit, end, reference, today time.Time) time.Time {
	start, reference, today = DateOf(start), DateOf(reference), DateOf(today)
	hasEnd := !end.IsZero()
	if hasEnd {
		end = DateOf(end)
	}

	months := unit.Months()
	monthCount := 0
	var next time.Time
	if months > 0 {
		monthCount = months + MonthDiff(reference, start) - 1
		next = AddMonths(start, monthCount)
	} else {
		next = reference.AddDate(0, 0, unit.Days())
	}

	for next.Before(today) && (!hasEnd || next.Before(end)) {
		if months > 0 {
			monthCount += months
			next = AddMonths(start, monthCount)
		} else {
			next = next.AddDate(0, 0, unit.Days())
		}
	}
	return next
}

// CountPeriods returns how many whole periods fit between start and end.
// It only feeds the displayed period count; scheduling never reads it.
// A zero end yields 0.
func CountPeriods(start, end time.Time, unit PeriodUnit) int {
	if end.IsZero() {
		return 0
	}
	start, end = DateOf(start), DateOf(end)
	if months := unit.Months(); months > 0 {
		return (MonthDiff(end, start) - 1) / months
	}
	days := int(end.Sub(start).Hours() / 24)
	if unit == PeriodWeekly {
		return days / 7
	}
	return days
}
