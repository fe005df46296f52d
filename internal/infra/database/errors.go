package database

import "fmt"

// Custom errors shared by the PostgreSQL and SQLite repositories
var ErrRuleNotFound = fmt.Errorf("repetition not found")
var ErrDuplicateRule = fmt.Errorf("repetition for this record already exists")
var ErrRecordNotFound = fmt.Errorf("record not found")
var ErrDuplicateRecord = fmt.Errorf("record with this type and name already exists")
var ErrDuplicateClone = fmt.Errorf("clone for this repetition and due date already exists")
