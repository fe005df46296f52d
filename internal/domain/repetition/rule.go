// internal/domain/repetition/rule.go
package repetition

import (
	"database/sql"
	"time"
)

// Status tells whether a rule still produces clones.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED" // next due date would pass the end date
)

// Rule repeats one source record on a schedule.
// Corresponds to the 'repetitions' table.
type Rule struct {
	ID          int64
	RecordType  string // e.g. "ToDo"
	RecordName  string // name of the source record
	PeriodUnit  PeriodUnit
	StartDate   time.Time
	EndDate     sql.NullTime // open ended when not valid
	NextDueDate time.Time
	PeriodCount int // completed periods between start and end, display only
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the unit and the date range.
func (r *Rule) Validate() error {
	if !r.PeriodUnit.Valid() {
		return ErrInvalidPeriodUnit
	}
	if r.EndDate.Valid && !DateOf(r.EndDate.Time).After(DateOf(r.StartDate)) {
		return ErrInvalidDateRange
	}
	return nil
}

func (r *Rule) end() time.Time {
	if !r.EndDate.Valid {
		return time.Time{}
	}
	return DateOf(r.EndDate.Time)
}

// pastEnd reports whether d lies after the rule's end date.
func (r *Rule) pastEnd(d time.Time) bool {
	return r.EndDate.Valid && d.After(r.end())
}

// Schedule sets the first due date and the period count of a new rule.
// If every occurrence is already behind today the rule is created completed,
// parked on its end date.
func (r *Rule) Schedule(today time.Time) {
	r.StartDate = DateOf(r.StartDate)
	r.PeriodCount = CountPeriods(r.StartDate, r.end(), r.PeriodUnit)
	r.Status = StatusActive

	next := NextDueDate(r.StartDate, r.PeriodUnit, r.end(), r.StartDate, today)
	if r.pastEnd(next) {
		r.NextDueDate = r.end()
		r.Status = StatusCompleted
		return
	}
	r.NextDueDate = next
}

// Advance moves the due date one period past the current one, catching up to
// today. It returns false and completes the rule instead of moving past the
// end date.
func (r *Rule) Advance(today time.Time) bool {
	next := NextDueDate(r.StartDate, r.PeriodUnit, r.end(), r.NextDueDate, today)
	if r.pastEnd(next) {
		r.Status = StatusCompleted
		return false
	}
	r.NextDueDate = next
	return true
}

// IsDue reports whether an active rule should produce a clone on asOf.
func (r *Rule) IsDue(asOf time.Time) bool {
	return r.Status == StatusActive && !DateOf(r.NextDueDate).After(DateOf(asOf))
}
