package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx pool surface the store needs, so tests can inject
// pgxmock.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore stores user accounts in the relational database.
type PostgresStore struct {
	db DB
}

// NewPostgresStore initializes a store backed by a pgx pool.
func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("users: pgx pool required")
	}
	return &PostgresStore{db: db}
}

// CreatePatientUser inserts the user row and its empty patient profile in a
// single transaction. A duplicate handle surfaces as ErrDuplicateUsername.
func (s *PostgresStore) CreatePatientUser(ctx context.Context, req *RegisterRequest, passwordHash string) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("users: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	userID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, role, name, contact_info)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, req.Username, passwordHash, string(RolePatient), req.Name, req.Contact,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("users: insert user: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO patients (id, user_id, medical_history)
		VALUES ($1, $2, '')`,
		uuid.New(), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("users: insert patient profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("users: commit: %w", err)
	}

	return &User{
		ID:           userID.String(),
		Username:     req.Username,
		PasswordHash: passwordHash,
		Role:         RolePatient,
		Name:         req.Name,
		ContactInfo:  req.Contact,
	}, nil
}

// GetByUsername fetches a user by handle.
func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, username, password_hash, role, name, contact_info
		FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// GetByID fetches a user by id.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, username, password_hash, role, name, contact_info
		FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	var role string
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &role, &user.Name, &user.ContactInfo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: scan: %w", err)
	}
	user.Role = Role(role)
	return &user, nil
}

// isUniqueViolation reports whether err is a postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Store = (*PostgresStore)(nil)
