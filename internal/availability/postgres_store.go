package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx pool surface the store needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore stores availability windows in the relational database.
type PostgresStore struct {
	db DB
}

// NewPostgresStore initializes a store backed by a pgx pool.
func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("availability: pgx pool required")
	}
	return &PostgresStore{db: db}
}

// Set upserts the single window for a doctor/date. The unique constraint on
// (doctor_id, date) gives replace-by-date semantics.
func (s *PostgresStore) Set(ctx context.Context, w Window) error {
	if err := w.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO availability (id, doctor_id, date, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (doctor_id, date)
		DO UPDATE SET start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time`,
		uuid.New(), w.DoctorID, w.Date, w.StartTime, w.EndTime,
	)
	if err != nil {
		return fmt.Errorf("availability: set window: %w", err)
	}
	return nil
}

// ReplaceSchedule clears all windows on or after fromDate and inserts the
// replacements in one transaction.
func (s *PostgresStore) ReplaceSchedule(ctx context.Context, doctorID, fromDate string, windows []Window) error {
	for i := range windows {
		if err := windows[i].Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("availability: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `DELETE FROM availability WHERE doctor_id = $1 AND date >= $2`, doctorID, fromDate)
	if err != nil {
		return fmt.Errorf("availability: clear future: %w", err)
	}
	for _, w := range windows {
		_, err = tx.Exec(ctx, `
			INSERT INTO availability (id, doctor_id, date, start_time, end_time)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), doctorID, w.Date, w.StartTime, w.EndTime,
		)
		if err != nil {
			return fmt.Errorf("availability: insert window: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("availability: commit: %w", err)
	}
	return nil
}

// ClearFuture deletes all windows on or after fromDate.
func (s *PostgresStore) ClearFuture(ctx context.Context, doctorID, fromDate string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM availability WHERE doctor_id = $1 AND date >= $2`, doctorID, fromDate)
	if err != nil {
		return fmt.Errorf("availability: clear future: %w", err)
	}
	return nil
}

// List returns windows on or after fromDate, date ascending.
func (s *PostgresStore) List(ctx context.Context, doctorID, fromDate string) ([]Window, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, doctor_id, date, start_time, end_time
		FROM availability
		WHERE doctor_id = $1 AND date >= $2
		ORDER BY date ASC`, doctorID, fromDate)
	if err != nil {
		return nil, fmt.Errorf("availability: list: %w", err)
	}
	defer rows.Close()

	var out []Window
	for rows.Next() {
		var w Window
		if err := rows.Scan(&w.ID, &w.DoctorID, &w.Date, &w.StartTime, &w.EndTime); err != nil {
			return nil, fmt.Errorf("availability: scan: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// WindowFor returns the declared window for a doctor/date, or nil when the
// date has none.
func (s *PostgresStore) WindowFor(ctx context.Context, doctorID, date string) (*Window, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, doctor_id, date, start_time, end_time
		FROM availability
		WHERE doctor_id = $1 AND date = $2`, doctorID, date)
	var w Window
	if err := row.Scan(&w.ID, &w.DoctorID, &w.Date, &w.StartTime, &w.EndTime); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("availability: window for date: %w", err)
	}
	return &w, nil
}

var _ Store = (*PostgresStore)(nil)
