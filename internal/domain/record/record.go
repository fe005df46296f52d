// internal/domain/record/record.go
package record

import (
	"database/sql"
	"time"
)

// Record is a document of some record type. Fields hold its values keyed by
// field name. Clones produced by a repetition carry RepetitionID and DueDate.
// Corresponds to the 'records' table.
type Record struct {
	ID           int64
	RecordType   string
	Name         string
	Fields       map[string]any
	RepetitionID sql.NullInt64
	DueDate      sql.NullTime
	CreatedAt    time.Time
}
