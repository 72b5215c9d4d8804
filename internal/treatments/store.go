package treatments

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/harborview/hms/internal/appointments"
)

// Store defines the interface for treatment storage.
type Store interface {
	// Upsert inserts or overwrites the treatment for an appointment and marks
	// the appointment Completed, atomically.
	Upsert(ctx context.Context, appointmentID string, req *UpsertRequest) (*Treatment, error)
	// Get returns the treatment for an appointment with appointment context.
	Get(ctx context.Context, appointmentID string) (*Detail, error)
	// PatientHistory returns a patient's Completed appointments with any
	// treatment data, date descending.
	PatientHistory(ctx context.Context, patientID string) ([]HistoryEntry, error)
}

// InMemoryStore is a stub implementation of Store for tests and development.
// It writes through to the in-memory appointment store so status coupling
// and the joined views stay consistent.
type InMemoryStore struct {
	mu     sync.RWMutex
	byAppt map[string]*Treatment
	appts  *appointments.InMemoryStore
}

// NewInMemoryStore creates an in-memory treatment store backed by the given
// appointment store.
func NewInMemoryStore(appts *appointments.InMemoryStore) *InMemoryStore {
	return &InMemoryStore{
		byAppt: make(map[string]*Treatment),
		appts:  appts,
	}
}

// Upsert records a treatment and completes the appointment.
func (s *InMemoryStore) Upsert(ctx context.Context, appointmentID string, req *UpsertRequest) (*Treatment, error) {
	if _, err := s.appts.Get(ctx, appointmentID); err != nil {
		return nil, ErrAppointmentNotFound
	}

	s.mu.Lock()
	t, ok := s.byAppt[appointmentID]
	if !ok {
		t = &Treatment{ID: uuid.NewString(), AppointmentID: appointmentID}
		s.byAppt[appointmentID] = t
	}
	t.TreatmentName = req.TreatmentName
	t.Diagnosis = req.Diagnosis
	t.Prescription = req.Prescription
	t.Notes = req.Notes
	copy := *t
	s.mu.Unlock()

	if err := s.appts.UpdateStatus(ctx, appointmentID, appointments.StatusCompleted); err != nil {
		return nil, err
	}
	s.appts.AttachTreatment(appointmentID, req.TreatmentName, req.Diagnosis, req.Prescription)
	return &copy, nil
}

// Get returns a treatment with its appointment context.
func (s *InMemoryStore) Get(ctx context.Context, appointmentID string) (*Detail, error) {
	s.mu.RLock()
	t, ok := s.byAppt[appointmentID]
	if !ok {
		s.mu.RUnlock()
		return nil, ErrNotFound
	}
	detail := Detail{Treatment: *t}
	s.mu.RUnlock()

	if appt, err := s.appts.Get(ctx, appointmentID); err == nil {
		detail.Date = appt.Date
		detail.Time = appt.Time
		detail.PatientName = s.appts.PatientNames[appt.PatientID]
	}
	return &detail, nil
}

// PatientHistory returns the patient's Completed appointments, date
// descending, with treatment columns where recorded.
func (s *InMemoryStore) PatientHistory(ctx context.Context, patientID string) ([]HistoryEntry, error) {
	views, err := s.appts.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []HistoryEntry
	for _, v := range views {
		if v.Status != appointments.StatusCompleted {
			continue
		}
		entry := HistoryEntry{
			AppointmentID: v.ID,
			Date:          v.Date,
			Time:          v.Time,
			DoctorName:    v.DoctorName,
		}
		if t, ok := s.byAppt[v.ID]; ok {
			entry.TreatmentName = &t.TreatmentName
			entry.Diagnosis = &t.Diagnosis
			entry.Prescription = &t.Prescription
			entry.Notes = &t.Notes
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

var _ Store = (*InMemoryStore)(nil)
