package repetition

import "errors"

var (
	ErrInvalidPeriodUnit       = errors.New("invalid period unit")
	ErrInvalidDateRange        = errors.New("end date must be after start date")
	ErrAlreadyOnRepetition     = errors.New("record is already on repetition")
	ErrRecordTypeNotRepeatable = errors.New("record type does not allow repetition")
	ErrRunDateInFuture         = errors.New("cannot process repetitions for a future date")
)
