// internal/domain/repetition/repository.go
package repetition

import (
	"context"
	"time"
)

// Repository defines operations for persisting repetition rules.
type Repository interface {
	Create(ctx context.Context, rule *Rule) error
	GetByID(ctx context.Context, id int64) (*Rule, error)
	// GetBySource finds the rule repeating the given source record.
	GetBySource(ctx context.Context, recordType, recordName string) (*Rule, error)
	List(ctx context.Context) ([]*Rule, error)
	// ListDue returns active rules whose next due date is on or before asOf.
	ListDue(ctx context.Context, asOf time.Time) ([]*Rule, error)
	// UpdateSchedule persists NextDueDate and Status.
	UpdateSchedule(ctx context.Context, rule *Rule) error
	Delete(ctx context.Context, id int64) error
}
