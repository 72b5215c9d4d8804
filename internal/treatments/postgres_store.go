package treatments

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

// PostgresStore stores treatments in the relational database.
type PostgresStore struct {
	db DB
}

// NewPostgresStore initializes a store backed by a pgx pool.
func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("treatments: pgx pool required")
	}
	return &PostgresStore{db: db}
}

// Upsert writes the treatment row and completes the appointment in one
// transaction. The unique constraint on appointment_id turns a second
// recording into an overwrite.
func (s *PostgresStore) Upsert(ctx context.Context, appointmentID string, req *UpsertRequest) (*Treatment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("treatments: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE appointments SET status = 'Completed' WHERE id = $1`, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("treatments: complete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrAppointmentNotFound
	}

	t := &Treatment{
		AppointmentID: appointmentID,
		TreatmentName: req.TreatmentName,
		Diagnosis:     req.Diagnosis,
		Prescription:  req.Prescription,
		Notes:         req.Notes,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO treatments (id, appointment_id, treatment_name, diagnosis, prescription, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (appointment_id) DO UPDATE SET
			treatment_name = EXCLUDED.treatment_name,
			diagnosis = EXCLUDED.diagnosis,
			prescription = EXCLUDED.prescription,
			notes = EXCLUDED.notes
		RETURNING id`,
		uuid.NewString(), appointmentID, req.TreatmentName, req.Diagnosis, req.Prescription, req.Notes,
	).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("treatments: upsert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("treatments: commit: %w", err)
	}
	return t, nil
}

// Get returns the treatment for an appointment joined with appointment and
// patient context.
func (s *PostgresStore) Get(ctx context.Context, appointmentID string) (*Detail, error) {
	row := s.db.QueryRow(ctx, `
		SELECT t.id, t.appointment_id, t.treatment_name, t.diagnosis, t.prescription, t.notes,
		       a.date, a.time, u.name
		FROM treatments t
		JOIN appointments a ON t.appointment_id = a.id
		JOIN patients p ON a.patient_id = p.id
		JOIN users u ON p.user_id = u.id
		WHERE t.appointment_id = $1`, appointmentID)

	var d Detail
	err := row.Scan(&d.ID, &d.AppointmentID, &d.TreatmentName, &d.Diagnosis, &d.Prescription, &d.Notes,
		&d.Date, &d.Time, &d.PatientName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("treatments: select: %w", err)
	}
	return &d, nil
}

// PatientHistory returns the patient's Completed appointments with any
// treatment data, date descending.
func (s *PostgresStore) PatientHistory(ctx context.Context, patientID string) ([]HistoryEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.id, a.date, a.time, u.name,
		       t.treatment_name, t.diagnosis, t.prescription, t.notes
		FROM appointments a
		JOIN doctors d ON a.doctor_id = d.id
		JOIN users u ON d.user_id = u.id
		LEFT JOIN treatments t ON a.id = t.appointment_id
		WHERE a.patient_id = $1 AND a.status = 'Completed'
		ORDER BY a.date DESC, a.time ASC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("treatments: patient history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.AppointmentID, &e.Date, &e.Time, &e.DoctorName,
			&e.TreatmentName, &e.Diagnosis, &e.Prescription, &e.Notes); err != nil {
			return nil, fmt.Errorf("treatments: scan history: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ Store = (*PostgresStore)(nil)
