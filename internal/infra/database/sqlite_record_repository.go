// internal/infra/database/sqlite_record_repository.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"record_repeater/internal/domain/record"
)

type SQLiteRecordRepository struct {
	db *sql.DB
}

var _ record.Repository = (*SQLiteRecordRepository)(nil)

func NewSQLiteRecordRepository(db *sql.DB) *SQLiteRecordRepository {
	return &SQLiteRecordRepository{db: db}
}

func (r *SQLiteRecordRepository) insert(ctx context.Context, rec *record.Record) error {
	fields, err := encodeFields(rec.Fields)
	if err != nil {
		return err
	}
	now := sqliteNow()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO records (record_type, name, fields, repetition_id, due_date, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RecordType, rec.Name, fields, rec.RepetitionID, sqliteNullDate(rec.DueDate), now,
	)
	if err != nil {
		return err
	}
	if rec.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("error reading record id: %w", err)
	}
	rec.CreatedAt, _ = parseSQLiteTimestamp(now)
	return nil
}

func (r *SQLiteRecordRepository) Create(ctx context.Context, rec *record.Record) error {
	if err := r.insert(ctx, rec); err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrDuplicateRecord
		}
		return fmt.Errorf("error creating record: %w", err)
	}
	return nil
}

// CreateClone stores a clone. It returns ErrDuplicateClone when the rule
// already has a clone for the due date and ErrDuplicateRecord when another
// record holds the clone's name.
func (r *SQLiteRecordRepository) CreateClone(ctx context.Context, rec *record.Record) error {
	err := r.insert(ctx, rec)
	if err == nil {
		return nil
	}
	if !isSQLiteUniqueViolation(err) {
		return fmt.Errorf("error creating clone: %w", err)
	}
	// SQLite reports whichever unique index failed first, so look for the clone itself.
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM records WHERE repetition_id = ? AND due_date = ?)`,
		rec.RepetitionID, sqliteNullDate(rec.DueDate),
	).Scan(&exists); err != nil {
		return fmt.Errorf("error checking existing clone: %w", err)
	}
	if exists {
		return ErrDuplicateClone
	}
	return fmt.Errorf("%w: %s", ErrDuplicateRecord, rec.Name)
}

func scanSQLiteRecord(row interface{ Scan(...any) error }) (*record.Record, error) {
	var (
		rec             record.Record
		fields, created string
		due             sql.NullString
		err             error
	)
	if err = row.Scan(&rec.ID, &rec.RecordType, &rec.Name, &fields, &rec.RepetitionID, &due, &created); err != nil {
		return nil, err
	}
	if err = json.Unmarshal([]byte(fields), &rec.Fields); err != nil {
		return nil, fmt.Errorf("error decoding record fields: %w", err)
	}
	if rec.DueDate, err = parseSQLiteNullDate(due); err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = parseSQLiteTimestamp(created); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *SQLiteRecordRepository) GetByName(ctx context.Context, recordType, name string) (*record.Record, error) {
	rec, err := scanSQLiteRecord(r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE record_type = ? AND name = ?`, recordType, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("error getting record by name: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRecordRepository) ListByRepetition(ctx context.Context, repetitionID int64) ([]*record.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE repetition_id = ? ORDER BY due_date`, repetitionID)
	if err != nil {
		return nil, fmt.Errorf("error querying records by repetition: %w", err)
	}
	defer rows.Close()

	recs := make([]*record.Record, 0)
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
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
