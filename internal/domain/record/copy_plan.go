// internal/domain/record/copy_plan.go
package record

import (
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// CommonFields are copied to every clone when the source carries them.
var CommonFields = []string{
	"naming_series",
	"ignore_pricing_rule",
	"posting_time",
	"select_print_heading",
	"user_remark",
	"remarks",
	"owner",
}

// CopyPlan lists which fields of a record type survive cloning.
type CopyPlan struct {
	Fields     []string `yaml:"fields"`
	DateFields []string `yaml:"date_fields"` // set to the due date on the clone
}

// CopyPlans maps a record type to its plan. Types without a plan cannot be
// repeated.
type CopyPlans map[string]CopyPlan

// DefaultCopyPlans is used when no plan file is configured.
func DefaultCopyPlans() CopyPlans {
	return CopyPlans{
		"ToDo": {
			Fields:     []string{"description", "assigned_by", "priority", "status"},
			DateFields: []string{"date"},
		},
		"Journal Entry": {
			Fields:     []string{"company", "voucher_type", "accounts", "cheque_no"},
			DateFields: []string{"posting_date"},
		},
	}
}

// Types returns the repeatable record types in sorted order.
func (p CopyPlans) Types() []string {
	types := make([]string, 0, len(p))
	for t := range p {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// CloneName names the clone of source produced for due.
func CloneName(source string, due time.Time) string {
	return fmt.Sprintf("%s-%s", source, due.Format("2006-01-02"))
}

// Clone builds the record produced by repetitionID for the given due date.
func (p CopyPlan) Clone(src *Record, repetitionID int64, due time.Time) *Record {
	fields := make(map[string]any, len(p.Fields)+len(CommonFields)+len(p.DateFields))
	for _, list := range [][]string{CommonFields, p.Fields} {
		for _, name := range list {
			if v, ok := src.Fields[name]; ok {
				fields[name] = v
			}
		}
	}
	for _, name := range p.DateFields {
		fields[name] = due.Format("2006-01-02")
	}

	return &Record{
		RecordType:   src.RecordType,
		Name:         CloneName(src.Name, due),
		Fields:       fields,
		RepetitionID: sql.NullInt64{Int64: repetitionID, Valid: true},
		DueDate:      sql.NullTime{Time: due, Valid: true},
	}
}
