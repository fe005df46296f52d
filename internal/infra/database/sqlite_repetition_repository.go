// internal/infra/database/sqlite_repetition_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"record_repeater/internal/domain/repetition"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLite stores dates as YYYY-MM-DD text and timestamps as RFC 3339 text.

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch code := sqliteErr.Code(); {
	case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case code&0xff == sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(sqliteErr.Error(), "UNIQUE")
	}
	return false
}

func sqliteDate(t time.Time) string {
	return repetition.DateOf(t).Format(repetition.DateLayout)
}

func sqliteNullDate(t sql.NullTime) sql.NullString {
	if !t.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: sqliteDate(t.Time), Valid: true}
}

func sqliteNow() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseSQLiteDate(raw string) (time.Time, error) {
	t, err := repetition.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing stored date %q: %w", raw, err)
	}
	return t, nil
}

func parseSQLiteNullDate(raw sql.NullString) (sql.NullTime, error) {
	if !raw.Valid {
		return sql.NullTime{}, nil
	}
	t, err := parseSQLiteDate(raw.String)
	if err != nil {
		return sql.NullTime{}, err
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

func parseSQLiteTimestamp(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing stored timestamp %q: %w", raw, err)
	}
	return t, nil
}

type SQLiteRepetitionRepository struct {
	db *sql.DB
}

var _ repetition.Repository = (*SQLiteRepetitionRepository)(nil)

func NewSQLiteRepetitionRepository(db *sql.DB) *SQLiteRepetitionRepository {
	return &SQLiteRepetitionRepository{db: db}
}

func (r *SQLiteRepetitionRepository) Create(ctx context.Context, rule *repetition.Rule) error {
	now := sqliteNow()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO repetitions (record_type, record_name, period_unit, start_date, end_date, next_due_date, period_count, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.RecordType, rule.RecordName, string(rule.PeriodUnit), sqliteDate(rule.StartDate), sqliteNullDate(rule.EndDate),
		sqliteDate(rule.NextDueDate), rule.PeriodCount, string(rule.Status), now, now,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrDuplicateRule
		}
		return fmt.Errorf("error creating repetition: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading repetition id: %w", err)
	}
	rule.ID = id
	rule.CreatedAt, _ = parseSQLiteTimestamp(now)
	rule.UpdatedAt = rule.CreatedAt
	return nil
}

func scanSQLiteRule(row interface{ Scan(...any) error }) (*repetition.Rule, error) {
	var (
		rule                         repetition.Rule
		start, next, created, update string
		end                          sql.NullString
		err                          error
	)
	if err = row.Scan(
		&rule.ID, &rule.RecordType, &rule.RecordName, &rule.PeriodUnit, &start, &end,
		&next, &rule.PeriodCount, &rule.Status, &created, &update,
	); err != nil {
		return nil, err
	}
	if rule.StartDate, err = parseSQLiteDate(start); err != nil {
		return nil, err
	}
	if rule.EndDate, err = parseSQLiteNullDate(end); err != nil {
		return nil, err
	}
	if rule.NextDueDate, err = parseSQLiteDate(next); err != nil {
		return nil, err
	}
	if rule.CreatedAt, err = parseSQLiteTimestamp(created); err != nil {
		return nil, err
	}
	if rule.UpdatedAt, err = parseSQLiteTimestamp(update); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *SQLiteRepetitionRepository) getOne(ctx context.Context, query string, args ...any) (*repetition.Rule, error) {
	rule, err := scanSQLiteRule(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("error getting repetition: %w", err)
	}
	return rule, nil
}

func (r *SQLiteRepetitionRepository) GetByID(ctx context.Context, id int64) (*repetition.Rule, error) {
	return r.getOne(ctx, `SELECT `+repetitionColumns+` FROM repetitions WHERE id = ?`, id)
}

func (r *SQLiteRepetitionRepository) GetBySource(ctx context.Context, recordType, recordName string) (*repetition.Rule, error) {
	return r.getOne(ctx, `SELECT `+repetitionColumns+` FROM repetitions WHERE record_type = ? AND record_name = ?`, recordType, recordName)
}

func (r *SQLiteRepetitionRepository) list(ctx context.Context, query string, args ...any) ([]*repetition.Rule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying repetitions: %w", err)
	}
	defer rows.Close()

	rules := make([]*repetition.Rule, 0)
	for rows.Next() {
		rule, err := scanSQLiteRule(rows)
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

func (r *SQLiteRepetitionRepository) List(ctx context.Context) ([]*repetition.Rule, error) {
	return r.list(ctx, `SELECT `+repetitionColumns+` FROM repetitions ORDER BY id`)
}

// ListDue compares dates as text, which orders correctly for YYYY-MM-DD.
func (r *SQLiteRepetitionRepository) ListDue(ctx context.Context, asOf time.Time) ([]*repetition.Rule, error) {
	return r.list(ctx,
		`SELECT `+repetitionColumns+` FROM repetitions WHERE status = ? AND next_due_date <= ? ORDER BY next_due_date, id`,
		string(repetition.StatusActive), sqliteDate(asOf),
	)
}

func (r *SQLiteRepetitionRepository) UpdateSchedule(ctx context.Context, rule *repetition.Rule) error {
	now := sqliteNow()
	res, err := r.db.ExecContext(ctx,
		`UPDATE repetitions SET next_due_date = ?, status = ?, updated_at = ? WHERE id = ?`,
		sqliteDate(rule.NextDueDate), string(rule.Status), now, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating repetition schedule: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRuleNotFound
	}
	rule.UpdatedAt, _ = parseSQLiteTimestamp(now)
	return nil
}

func (r *SQLiteRepetitionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM repetitions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting repetition: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRuleNotFound
	}
	return nil
}
