package doctors

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

// PostgresStore stores doctors in the relational database.
type PostgresStore struct {
	db DB
}

// NewPostgresStore initializes a store backed by a pgx pool.
func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("doctors: pgx pool required")
	}
	return &PostgresStore{db: db}
}

// CreateDoctor inserts the user row, the doctor profile and any seeded
// availability windows in one transaction.
func (s *PostgresStore) CreateDoctor(ctx context.Context, req *CreateRequest, passwordHash string, shiftDates []string) (*Doctor, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("doctors: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	doc := &Doctor{
		ID:             uuid.NewString(),
		UserID:         uuid.NewString(),
		Name:           req.Name,
		ContactInfo:    req.Contact,
		Specialization: req.Specialization,
		DepartmentID:   req.DepartmentID,
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, role, name, contact_info)
		VALUES ($1, $2, $3, 'doctor', $4, $5)`,
		doc.UserID, req.Username, passwordHash, req.Name, req.Contact,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("doctors: insert user: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO doctors (id, user_id, specialization, department_id)
		VALUES ($1, $2, $3, $4)`,
		doc.ID, doc.UserID, req.Specialization, req.DepartmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("doctors: insert profile: %w", err)
	}

	if req.DefaultShift != nil {
		for _, date := range shiftDates {
			_, err = tx.Exec(ctx, `
				INSERT INTO availability (id, doctor_id, date, start_time, end_time)
				VALUES ($1, $2, $3, $4, $5)`,
				uuid.NewString(), doc.ID, date, req.DefaultShift.StartTime, req.DefaultShift.EndTime,
			)
			if err != nil {
				return nil, fmt.Errorf("doctors: seed availability: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("doctors: commit: %w", err)
	}
	return doc, nil
}

// List returns doctors joined with their user identity, name ascending. A
// non-empty specialization narrows by case-insensitive substring.
func (s *PostgresStore) List(ctx context.Context, specialization string) ([]Doctor, error) {
	query := `
		SELECT d.id, d.user_id, u.name, u.contact_info, d.specialization, d.department_id
		FROM doctors d
		JOIN users u ON d.user_id = u.id`
	args := []any{}
	if specialization != "" {
		query += ` WHERE d.specialization ILIKE $1`
		args = append(args, "%"+specialization+"%")
	}
	query += ` ORDER BY u.name ASC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("doctors: list: %w", err)
	}
	defer rows.Close()

	var out []Doctor
	for rows.Next() {
		var doc Doctor
		if err := rows.Scan(&doc.ID, &doc.UserID, &doc.Name, &doc.ContactInfo, &doc.Specialization, &doc.DepartmentID); err != nil {
			return nil, fmt.Errorf("doctors: scan: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Get returns a doctor by id.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Doctor, error) {
	row := s.db.QueryRow(ctx, `
		SELECT d.id, d.user_id, u.name, u.contact_info, d.specialization, d.department_id
		FROM doctors d
		JOIN users u ON d.user_id = u.id
		WHERE d.id = $1`, id)

	var doc Doctor
	err := row.Scan(&doc.ID, &doc.UserID, &doc.Name, &doc.ContactInfo, &doc.Specialization, &doc.DepartmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("doctors: select: %w", err)
	}
	return &doc, nil
}

// Update edits the user identity fields and the doctor profile in one
// transaction.
func (s *PostgresStore) Update(ctx context.Context, id string, req *UpdateRequest) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("doctors: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE doctors SET specialization = $1, department_id = $2 WHERE id = $3`,
		req.Specialization, req.DepartmentID, id,
	)
	if err != nil {
		return fmt.Errorf("doctors: update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx, `
		UPDATE users SET name = $1, contact_info = $2
		WHERE id = (SELECT user_id FROM doctors WHERE id = $3)`,
		req.Name, req.Contact, id,
	)
	if err != nil {
		return fmt.Errorf("doctors: update user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("doctors: commit: %w", err)
	}
	return nil
}

// Delete removes the doctor's user row; foreign keys cascade the profile,
// availability and appointments.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM users WHERE id = (SELECT user_id FROM doctors WHERE id = $1)`, id)
	if err != nil {
		return fmt.Errorf("doctors: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IDForUser resolves a user id to its doctor profile id.
func (s *PostgresStore) IDForUser(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, `SELECT id FROM doctors WHERE user_id = $1`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("doctors: lookup by user: %w", err)
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Store = (*PostgresStore)(nil)
