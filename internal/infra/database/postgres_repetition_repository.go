// internal/infra/database/postgres_repetition_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"record_repeater/internal/domain/repetition"

	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

// isPgUniqueViolation reports whether err is a unique violation, optionally of
// the named constraint.
func isPgUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

const repetitionColumns = `id, record_type, record_name, period_unit, start_date, end_date, next_due_date, period_count, status, created_at, updated_at`

type PostgresRepetitionRepository struct {
	db *sql.DB
}

var _ repetition.Repository = (*PostgresRepetitionRepository)(nil)

func NewPostgresRepetitionRepository(db *sql.DB) *PostgresRepetitionRepository {
	return &PostgresRepetitionRepository{db: db}
}

func (r *PostgresRepetitionRepository) Create(ctx context.Context, rule *repetition.Rule) error {
	query := `INSERT INTO repetitions (record_type, record_name, period_unit, start_date, end_date, next_due_date, period_count, status)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		rule.RecordType, rule.RecordName, rule.PeriodUnit, rule.StartDate, rule.EndDate,
		rule.NextDueDate, rule.PeriodCount, rule.Status,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if isPgUniqueViolation(err, "repetitions_source_unique") {
			return ErrDuplicateRule
		}
		return fmt.Errorf("error creating repetition: %w", err)
	}
	return nil
}

func scanPgRule(row interface{ Scan(...any) error }) (*repetition.Rule, error) {
	rule := &repetition.Rule{}
	err := row.Scan(
		&rule.ID, &rule.RecordType, &rule.RecordName, &rule.PeriodUnit, &rule.StartDate, &rule.EndDate,
		&rule.NextDueDate, &rule.PeriodCount, &rule.Status, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	// DATE columns come back as midnight in whatever zone the driver picks.
	rule.StartDate = repetition.DateOf(rule.StartDate)
	rule.NextDueDate = repetition.DateOf(rule.NextDueDate)
	if rule.EndDate.Valid {
		rule.EndDate.Time = repetition.DateOf(rule.EndDate.Time)
	}
	return rule, nil
}

func (r *PostgresRepetitionRepository) getOne(ctx context.Context, query string, args ...any) (*repetition.Rule, error) {
	rule, err := scanPgRule(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("error getting repetition: %w", err)
	}
	return rule, nil
}

func (r *PostgresRepetitionRepository) GetByID(ctx context.Context, id int64) (*repetition.Rule, error) {
	return r.getOne(ctx, `SELECT `+repetitionColumns+` FROM repetitions WHERE id = $1`, id)
}

func (r *PostgresRepetitionRepository) GetBySource(ctx context.Context, recordType, recordName string) (*repetition.Rule, error) {
	return r.getOne(ctx, `SELECT `+repetitionColumns+` FROM repetitions WHERE record_type = $1 AND record_name = $2`, recordType, recordName)
}

func (r *PostgresRepetitionRepository) list(ctx context.Context, query string, args ...any) ([]*repetition.Rule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying repetitions: %w", err)
	}
	defer rows.Close()

	rules := make([]*repetition.Rule, 0)
	for rows.Next() {
		rule, err := scanPgRule(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning repetition row: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repetition rows: %w", err)
	}
	return rules, nil
}

func (r *PostgresRepetitionRepository) List(ctx context.Context) ([]*repetition.Rule, error) {
	return r.list(ctx, `SELECT `+repetitionColumns+` FROM repetitions ORDER BY id`)
}

func (r *PostgresRepetitionRepository) ListDue(ctx context.Context, asOf time.Time) ([]*repetition.Rule, error) {
	query := `SELECT ` + repetitionColumns + `
               FROM repetitions
               WHERE status = $1 AND next_due_date <= $2
               ORDER BY next_due_date, id` // Oldest schedules first
	return r.list(ctx, query, repetition.StatusActive, repetition.DateOf(asOf))
}

func (r *PostgresRepetitionRepository) UpdateSchedule(ctx context.Context, rule *repetition.Rule) error {
	query := `UPDATE repetitions
               SET next_due_date = $1, status = $2, updated_at = NOW()
               WHERE id = $3
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, rule.NextDueDate, rule.Status, rule.ID).Scan(&rule.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrRuleNotFound
		}
		return fmt.Errorf("error updating repetition schedule: %w", err)
	}
	return nil
}

func (r *PostgresRepetitionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM repetitions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting repetition: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRuleNotFound
	}
	return nil
}
