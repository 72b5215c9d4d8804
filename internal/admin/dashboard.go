// Package admin serves the admin dashboard counts.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/harborview/hms/pkg/logging"
)

// Counts is the dashboard summary.
type Counts struct {
	Doctors      int `json:"doctors"`
	Patients     int `json:"patients"`
	Appointments int `json:"appointments"`
}

// CountSource produces the dashboard counts.
type CountSource interface {
	Counts(ctx context.Context) (*Counts, error)
}

// PostgresDB abstracts the pgx pool surface the count source needs.
type PostgresDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresCounts reads the dashboard counts from the database.
type PostgresCounts struct {
	db PostgresDB
}

// NewPostgresCounts initializes a count source backed by a pgx pool.
func NewPostgresCounts(db PostgresDB) *PostgresCounts {
	if db == nil {
		panic("admin: pgx pool required")
	}
	return &PostgresCounts{db: db}
}

// Counts runs the three count queries in one statement.
func (s *PostgresCounts) Counts(ctx context.Context) (*Counts, error) {
	var c Counts
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM doctors),
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM appointments)`,
	).Scan(&c.Doctors, &c.Patients, &c.Appointments)
	if err != nil {
		return nil, fmt.Errorf("admin: counts: %w", err)
	}
	return &c, nil
}

// StaticCounts is a fixed count source for tests and development.
type StaticCounts Counts

// Counts returns the fixed values.
func (s StaticCounts) Counts(ctx context.Context) (*Counts, error) {
	c := Counts(s)
	return &c, nil
}

// Handler serves GET /admin/dashboard.
type Handler struct {
	source CountSource
	logger *logging.Logger
}

// NewHandler creates an admin dashboard handler.
func NewHandler(source CountSource, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{source: source, logger: logger}
}

// Dashboard handles GET /admin/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.source.Counts(r.Context())
	if err != nil {
		h.logger.Error("failed to load dashboard counts", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(counts)
}

var (
	_ CountSource = (*PostgresCounts)(nil)
	_ CountSource = StaticCounts{}
)
