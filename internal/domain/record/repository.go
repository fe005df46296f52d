// internal/domain/record/repository.go
package record

import "context"

// Repository defines operations for persisting records.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByName(ctx context.Context, recordType, name string) (*Record, error)
	// CreateClone inserts a repetition clone. At most one clone may exist per
	// repetition and due date.
	CreateClone(ctx context.Context, rec *Record) error
	ListByRepetition(ctx context.Context, repetitionID int64) ([]*Record, error)
}
