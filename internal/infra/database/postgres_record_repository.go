// internal/infra/database/postgres_record_repository.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"record_repeater/internal/domain/record"
	"record_repeater/internal/domain/repetition"
)

const recordColumns = `id, record_type, name, fields, repetition_id, due_date, created_at`

type PostgresRecordRepository struct {
	db *sql.DB
}

var _ record.Repository = (*PostgresRecordRepository)(nil)

func NewPostgresRecordRepository(db *sql.DB) *PostgresRecordRepository {
	return &PostgresRecordRepository{db: db}
}

func (r *PostgresRecordRepository) insert(ctx context.Context, rec *record.Record) error {
	fields, err := encodeFields(rec.Fields)
	if err != nil {
		return err
	}
	query := `INSERT INTO records (record_type, name, fields, repetition_id, due_date)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, rec.RecordType, rec.Name, fields, rec.RepetitionID, rec.DueDate).
		Scan(&rec.ID, &rec.CreatedAt)
}

func (r *PostgresRecordRepository) Create(ctx context.Context, rec *record.Record) error {
	if err := r.insert(ctx, rec); err != nil {
		if isPgUniqueViolation(err, "records_name_unique") {
			return ErrDuplicateRecord
		}
		return fmt.Errorf("error creating record: %w", err)
	}
	return nil
}

// CreateClone stores a clone. It returns ErrDuplicateClone when the rule
// already has a clone for the due date and ErrDuplicateRecord when another
// record holds the clone's name.
func (r *PostgresRecordRepository) CreateClone(ctx context.Context, rec *record.Record) error {
	err := r.insert(ctx, rec)
	if err == nil {
		return nil
	}
	if !isPgUniqueViolation(err, "") {
		return fmt.Errorf("error creating clone: %w", err)
	}
	// Both constraints can fail on a re-run, so look for the clone itself.
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM records WHERE repetition_id = $1 AND due_date = $2)`
	if err := r.db.QueryRowContext(ctx, query, rec.RepetitionID, rec.DueDate).Scan(&exists); err != nil {
		return fmt.Errorf("error checking existing clone: %w", err)
	}
	if exists {
		return ErrDuplicateClone
	}
	return fmt.Errorf("%w: %s", ErrDuplicateRecord, rec.Name)
}

func scanPgRecord(row interface{ Scan(...any) error }) (*record.Record, error) {
	rec := &record.Record{}
	var fields []byte
	if err := row.Scan(&rec.ID, &rec.RecordType, &rec.Name, &fields, &rec.RepetitionID, &rec.DueDate, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fields, &rec.Fields); err != nil {
		return nil, fmt.Errorf("error decoding record fields: %w", err)
	}
	if rec.DueDate.Valid {
		rec.DueDate.Time = repetition.DateOf(rec.DueDate.Time)
	}
	return rec, nil
}

func (r *PostgresRecordRepository) GetByName(ctx context.Context, recordType, name string) (*record.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE record_type = $1 AND name = $2`
	rec, err := scanPgRecord(r.db.QueryRowContext(ctx, query, recordType, name))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("error getting record by name: %w", err)
	}
	return rec, nil
}

func (r *PostgresRecordRepository) ListByRepetition(ctx context.Context, repetitionID int64) ([]*record.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE repetition_id = $1 ORDER BY due_date`
	rows, err := r.db.QueryContext(ctx, query, repetitionID)
	if err != nil {
		return nil, fmt.Errorf("error querying records by repetition: %w", err)
	}
	defer rows.Close()

	recs := make([]*record.Record, 0)
	for rows.Next() {
		rec, err := scanPgRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning record row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating record rows: %w", err)
	}
	return recs, nil
}

// encodeFields renders fields as JSON text, which both JSONB and TEXT columns accept.
func encodeFields(fields map[string]any) (string, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("error encoding record fields: %w", err)
	}
	return string(b), nil
}
