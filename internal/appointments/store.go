package appointments

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Store defines the interface for appointment storage.
type Store interface {
	// Create inserts a new appointment. A second non-deleted row for the same
	// (doctor, date, time) slot fails with ErrSlotTaken.
	Create(ctx context.Context, appt *Appointment) error
	Get(ctx context.Context, id string) (*Appointment, error)
	// UpdateStatus overwrites the status unconditionally.
	UpdateStatus(ctx context.Context, id string, status Status) error
	// ListForDoctor returns a doctor's appointments. With dateFilter empty the
	// full history is returned, date descending then time ascending; with a
	// date set, only that day, time ascending.
	ListForDoctor(ctx context.Context, doctorID, dateFilter string) ([]DoctorView, error)
	// ListForPatient returns a patient's appointments joined with treatment
	// data, date descending.
	ListForPatient(ctx context.Context, patientID string) ([]PatientView, error)
	// ListAll returns every appointment for the admin view, date descending.
	ListAll(ctx context.Context) ([]AdminView, error)
}

// InMemoryStore is a stub implementation of Store for tests and development.
// It enforces the same slot uniqueness rule as the relational constraint,
// including the quirk that cancelled rows keep blocking their slot.
type InMemoryStore struct {
	mu    sync.RWMutex
	rows  map[string]*Appointment
	slots map[string]string // doctor|date|time -> appointment id

	// Name lookups for the joined views; tests seed these.
	PatientNames map[string]string
	DoctorNames  map[string]string

	// Treatment fields for the patient view join; the treatments in-memory
	// store writes through via AttachTreatment.
	treatments map[string]treatmentCols
}

type treatmentCols struct {
	name, diagnosis, prescription string
}

// NewInMemoryStore creates an empty in-memory appointment store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		rows:         make(map[string]*Appointment),
		slots:        make(map[string]string),
		PatientNames: make(map[string]string),
		DoctorNames:  make(map[string]string),
		treatments:   make(map[string]treatmentCols),
	}
}

func slotKey(doctorID, date, timeOfDay string) string {
	return doctorID + "|" + date + "|" + timeOfDay
}

// Create inserts an appointment, enforcing slot uniqueness.
func (s *InMemoryStore) Create(ctx context.Context, appt *Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey(appt.DoctorID, appt.Date, appt.Time)
	if _, taken := s.slots[key]; taken {
		return ErrSlotTaken
	}
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if appt.Status == "" {
		appt.Status = StatusScheduled
	}
	stored := *appt
	s.rows[appt.ID] = &stored
	s.slots[key] = appt.ID
	return nil
}

// Get returns an appointment by id.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	appt, ok := s.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *appt
	return &copy, nil
}

// UpdateStatus overwrites the status of an appointment.
func (s *InMemoryStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	appt, ok := s.rows[id]
	if !ok {
		return ErrNotFound
	}
	appt.Status = status
	return nil
}

// AttachTreatment records treatment columns for the patient view join.
func (s *InMemoryStore) AttachTreatment(appointmentID, name, diagnosis, prescription string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.treatments[appointmentID] = treatmentCols{name: name, diagnosis: diagnosis, prescription: prescription}
}

// ListForDoctor returns a doctor's appointments with patient identity.
func (s *InMemoryStore) ListForDoctor(ctx context.Context, doctorID, dateFilter string) ([]DoctorView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []DoctorView
	for _, appt := range s.rows {
		if appt.DoctorID != doctorID {
			continue
		}
		if dateFilter != "" && appt.Date != dateFilter {
			continue
		}
		out = append(out, DoctorView{
			ID:            appt.ID,
			Date:          appt.Date,
			Time:          appt.Time,
			Status:        appt.Status,
			TreatmentType: appt.TreatmentType,
			PatientID:     appt.PatientID,
			PatientName:   s.PatientNames[appt.PatientID],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if dateFilter == "" && out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

// ListForPatient returns a patient's appointments with doctor identity and
// treatment columns, date descending.
func (s *InMemoryStore) ListForPatient(ctx context.Context, patientID string) ([]PatientView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []PatientView
	for _, appt := range s.rows {
		if appt.PatientID != patientID {
			continue
		}
		view := PatientView{
			ID:         appt.ID,
			Date:       appt.Date,
			Time:       appt.Time,
			Status:     appt.Status,
			DoctorName: s.DoctorNames[appt.DoctorID],
		}
		if t, ok := s.treatments[appt.ID]; ok {
			view.TreatmentName = &t.name
			view.Diagnosis = &t.diagnosis
			view.Prescription = &t.prescription
		}
		out = append(out, view)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

// ListAll returns every appointment with both identities, date descending.
func (s *InMemoryStore) ListAll(ctx context.Context) ([]AdminView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []AdminView
	for _, appt := range s.rows {
		out = append(out, AdminView{
			ID:          appt.ID,
			Date:        appt.Date,
			Time:        appt.Time,
			Status:      appt.Status,
			PatientName: s.PatientNames[appt.PatientID],
			DoctorName:  s.DoctorNames[appt.DoctorID],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

var _ Store = (*InMemoryStore)(nil)
