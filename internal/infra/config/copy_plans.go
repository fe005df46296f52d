package config

import (
	"fmt"
	"os"

	"record_repeater/internal/domain/record"

	"gopkg.in/yaml.v3"
)

// copyPlansFile is the on-disk layout:
//
//	record_types:
//	  ToDo:
//	    fields: [description, assigned_by]
//	    date_fields: [date]
type copyPlansFile struct {
	RecordTypes map[string]record.CopyPlan `yaml:"record_types"`
}

// LoadCopyPlans reads the copy plan table from path. An empty path yields the
// built-in defaults.
func LoadCopyPlans(path string) (record.CopyPlans, error) {
	if path == "" {
		return record.DefaultCopyPlans(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read copy plans %s: %w", path, err)
	}
	return ParseCopyPlans(data)
}

// ParseCopyPlans decodes a YAML copy plan table.
func ParseCopyPlans(data []byte) (record.CopyPlans, error) {
	var file copyPlansFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid copy plans: %w", err)
	}
	if len(file.RecordTypes) == 0 {
		return nil, fmt.Errorf("invalid copy plans: no record_types defined")
	}
	for name, plan := range file.RecordTypes {
		if name == "" {
			return nil, fmt.Errorf("invalid copy plans: empty record type name")
		}
		if len(plan.Fields) == 0 && len(plan.DateFields) == 0 {
			return nil, fmt.Errorf("invalid copy plans: record type %q copies no fields", name)
		}
	}
	return record.CopyPlans(file.RecordTypes), nil
}
