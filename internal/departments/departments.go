// Package departments holds the hospital's department catalog. Doctors
// optionally reference a department; the catalog itself is admin-managed
// list-and-create only.
package departments

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrMissingName   = errors.New("department name is required")
	ErrDuplicateName = errors.New("department already exists")
)

// Department is one catalog entry.
type Department struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateRequest is the request body for creating a department.
type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Store defines the interface for department storage.
type Store interface {
	List(ctx context.Context) ([]Department, error)
	Create(ctx context.Context, req *CreateRequest) (*Department, error)
}

// InMemoryStore is a stub implementation of Store for tests and development.
type InMemoryStore struct {
	mu   sync.RWMutex
	byID map[string]*Department
}

// NewInMemoryStore creates an empty in-memory department store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[string]*Department)}
}

// List returns departments, name ascending.
func (s *InMemoryStore) List(ctx context.Context) ([]Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Department
	for _, d := range s.byID {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Create inserts a department; a taken name fails with ErrDuplicateName.
func (s *InMemoryStore) Create(ctx context.Context, req *CreateRequest) (*Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.byID {
		if d.Name == req.Name {
			return nil, ErrDuplicateName
		}
	}
	d := &Department{ID: uuid.NewString(), Name: req.Name, Description: req.Description}
	s.byID[d.ID] = d
	copy := *d
	return &copy, nil
}

// PostgresDB abstracts the pgx pool surface the store needs.
type PostgresDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore stores departments in the relational database.
type PostgresStore struct {
	db PostgresDB
}

// NewPostgresStore initializes a store backed by a pgx pool.
func NewPostgresStore(db PostgresDB) *PostgresStore {
	if db == nil {
		panic("departments: pgx pool required")
	}
	return &PostgresStore{db: db}
}

// List returns departments, name ascending.
func (s *PostgresStore) List(ctx context.Context) ([]Department, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, description FROM departments ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("departments: list: %w", err)
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description); err != nil {
			return nil, fmt.Errorf("departments: scan: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Create inserts a department; the name uniqueness constraint maps to
// ErrDuplicateName.
func (s *PostgresStore) Create(ctx context.Context, req *CreateRequest) (*Department, error) {
	d := &Department{ID: uuid.NewString(), Name: req.Name, Description: req.Description}
	_, err := s.db.Exec(ctx, `INSERT INTO departments (id, name, description) VALUES ($1, $2, $3)`,
		d.ID, d.Name, d.Description)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("departments: insert: %w", err)
	}
	return d, nil
}

var (
	_ Store = (*InMemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
