package patients

import (
	"context"
	"errors"
	"fmt"

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

// PostgresStore stores patients in the relational database.
type PostgresStore struct {
	db DB
}

// NewPostgresStore initializes a store backed by a pgx pool.
func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("patients: pgx pool required")
	}
	return &PostgresStore{db: db}
}

// List returns patients joined with their user identity, name ascending. A
// non-empty search narrows by case-insensitive substring over name and
// contact info.
func (s *PostgresStore) List(ctx context.Context, search string) ([]Patient, error) {
	query := `
		SELECT p.id, p.user_id, u.name, u.contact_info, p.medical_history
		FROM patients p
		JOIN users u ON p.user_id = u.id`
	args := []any{}
	if search != "" {
		query += ` WHERE u.name ILIKE $1 OR u.contact_info ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY u.name ASC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("patients: list: %w", err)
	}
	defer rows.Close()

	var out []Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.ContactInfo, &p.MedicalHistory); err != nil {
			return nil, fmt.Errorf("patients: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns a patient by id.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Patient, error) {
	row := s.db.QueryRow(ctx, `
		SELECT p.id, p.user_id, u.name, u.contact_info, p.medical_history
		FROM patients p
		JOIN users u ON p.user_id = u.id
		WHERE p.id = $1`, id)

	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.ContactInfo, &p.MedicalHistory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("patients: select: %w", err)
	}
	return &p, nil
}

// Update edits the user identity fields and the medical history in one
// transaction.
func (s *PostgresStore) Update(ctx context.Context, id string, req *UpdateRequest) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("patients: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE patients SET medical_history = $1 WHERE id = $2`,
		req.MedicalHistory, id)
	if err != nil {
		return fmt.Errorf("patients: update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx, `
		UPDATE users SET name = $1, contact_info = $2
		WHERE id = (SELECT user_id FROM patients WHERE id = $3)`,
		req.Name, req.Contact, id,
	)
	if err != nil {
		return fmt.Errorf("patients: update user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("patients: commit: %w", err)
	}
	return nil
}

// Delete removes the patient's user row; foreign keys cascade the profile
// and appointments.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM users WHERE id = (SELECT user_id FROM patients WHERE id = $1)`, id)
	if err != nil {
		return fmt.Errorf("patients: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IDForUser resolves a user id to its patient profile id.
func (s *PostgresStore) IDForUser(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, `SELECT id FROM patients WHERE user_id = $1`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("patients: lookup by user: %w", err)
	}
	return id, nil
}

var _ Store = (*PostgresStore)(nil)
