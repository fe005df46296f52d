// internal/domain/repetition/period.go
package repetition

import (
	"fmt"
	"strings"
)

// PeriodUnit is the granularity of a repetition.
type PeriodUnit string

const (
	PeriodDaily     PeriodUnit = "Daily"
	PeriodWeekly    PeriodUnit = "Weekly"
	PeriodMonthly   PeriodUnit = "Monthly"
	PeriodQuarterly PeriodUnit = "Quarterly"
	PeriodYearly    PeriodUnit = "Yearly"
)

// monthsPerPeriod holds the month-family units. Units missing here step in days.
var monthsPerPeriod = map[PeriodUnit]int{
	PeriodMonthly:   1,
	PeriodQuarterly: 3,
	PeriodYearly:    12,
}

// ParsePeriodUnit accepts a unit name in any letter case.
func ParsePeriodUnit(raw string) (PeriodUnit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "daily":
		return PeriodDaily, nil
	case "weekly":
		return PeriodWeekly, nil
	case "monthly":
		return PeriodMonthly, nil
	case "quarterly":
		return PeriodQuarterly, nil
	case "yearly":
		return PeriodYearly, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriodUnit, raw)
}

// Valid reports whether u is one of the recognised units.
func (u PeriodUnit) Valid() bool {
	switch u {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}

// Months returns the period length in months, or 0 for day-based units.
func (u PeriodUnit) Months() int {
	return monthsPerPeriod[u]
}

// Days returns the day step used by day-based units.
// Anything that is not Weekly steps one day.
func (u PeriodUnit) Days() int {
	if u == PeriodWeekly {
		return 7
	}
	return 1
}
