package appointments

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
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore stores appointments in the relational database.
type PostgresStore struct {
	db DB
}

// NewPostgresStore initializes a store backed by a pgx pool.
func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresStore{db: db}
}

// Create inserts a new appointment row. Losing a race for the slot surfaces
// as ErrSlotTaken via the unique constraint on (doctor_id, date, time); the
// constraint does not exclude cancelled rows.
func (s *PostgresStore) Create(ctx context.Context, appt *Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if appt.Status == "" {
		appt.Status = StatusScheduled
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, date, time, status, treatment_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		appt.ID, appt.PatientID, appt.DoctorID, appt.Date, appt.Time, string(appt.Status), appt.TreatmentType,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("appointments: insert: %w", err)
	}
	return nil
}

// Get fetches an appointment by id.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Appointment, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, date, time, status, COALESCE(treatment_type, '')
		FROM appointments WHERE id = $1`, id)

	var appt Appointment
	var status string
	err := row.Scan(&appt.ID, &appt.PatientID, &appt.DoctorID, &appt.Date, &appt.Time, &status, &appt.TreatmentType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select: %w", err)
	}
	appt.Status = Status(status)
	return &appt, nil
}

// UpdateStatus overwrites the status of an appointment unconditionally.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	tag, err := s.db.Exec(ctx, `UPDATE appointments SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("appointments: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForDoctor returns a doctor's appointments joined with patient identity.
func (s *PostgresStore) ListForDoctor(ctx context.Context, doctorID, dateFilter string) ([]DoctorView, error) {
	var rows pgx.Rows
	var err error
	if dateFilter != "" {
		rows, err = s.db.Query(ctx, `
			SELECT a.id, a.date, a.time, a.status, COALESCE(a.treatment_type, ''), p.id, u.name
			FROM appointments a
			JOIN patients p ON a.patient_id = p.id
			JOIN users u ON p.user_id = u.id
			WHERE a.doctor_id = $1 AND a.date = $2
			ORDER BY a.time ASC`, doctorID, dateFilter)
	} else {
		rows, err = s.db.Query(ctx, `
			SELECT a.id, a.date, a.time, a.status, COALESCE(a.treatment_type, ''), p.id, u.name
			FROM appointments a
			JOIN patients p ON a.patient_id = p.id
			JOIN users u ON p.user_id = u.id
			WHERE a.doctor_id = $1
			ORDER BY a.date DESC, a.time ASC`, doctorID)
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: list for doctor: %w", err)
	}
	defer rows.Close()

	var out []DoctorView
	for rows.Next() {
		var v DoctorView
		var status string
		if err := rows.Scan(&v.ID, &v.Date, &v.Time, &status, &v.TreatmentType, &v.PatientID, &v.PatientName); err != nil {
			return nil, fmt.Errorf("appointments: scan doctor view: %w", err)
		}
		v.Status = Status(status)
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListForPatient returns a patient's appointments joined with doctor
// identity and treatment columns.
func (s *PostgresStore) ListForPatient(ctx context.Context, patientID string) ([]PatientView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.id, a.date, a.time, a.status, u.name, t.treatment_name, t.diagnosis, t.prescription
		FROM appointments a
		JOIN doctors d ON a.doctor_id = d.id
		JOIN users u ON d.user_id = u.id
		LEFT JOIN treatments t ON a.id = t.appointment_id
		WHERE a.patient_id = $1
		ORDER BY a.date DESC, a.time ASC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list for patient: %w", err)
	}
	defer rows.Close()

	var out []PatientView
	for rows.Next() {
		var v PatientView
		var status string
		if err := rows.Scan(&v.ID, &v.Date, &v.Time, &status, &v.DoctorName, &v.TreatmentName, &v.Diagnosis, &v.Prescription); err != nil {
			return nil, fmt.Errorf("appointments: scan patient view: %w", err)
		}
		v.Status = Status(status)
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListAll returns every appointment with both parties' names for the admin
// view.
func (s *PostgresStore) ListAll(ctx context.Context) ([]AdminView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.id, a.date, a.time, a.status, pu.name, du.name
		FROM appointments a
		JOIN patients p ON a.patient_id = p.id
		JOIN users pu ON p.user_id = pu.id
		JOIN doctors d ON a.doctor_id = d.id
		JOIN users du ON d.user_id = du.id
		ORDER BY a.date DESC`)
	if err != nil {
		return nil, fmt.Errorf("appointments: list all: %w", err)
	}
	defer rows.Close()

	var out []AdminView
	for rows.Next() {
		var v AdminView
		var status string
		if err := rows.Scan(&v.ID, &v.Date, &v.Time, &status, &v.PatientName, &v.DoctorName); err != nil {
			return nil, fmt.Errorf("appointments: scan admin view: %w", err)
		}
		v.Status = Status(status)
		out = append(out, v)
	}
	return out, rows.Err()
}

// isUniqueViolation reports whether err is a postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Store = (*PostgresStore)(nil)
