package treatments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborview/hms/internal/appointments"
	"github.com/harborview/hms/internal/session"
	"github.com/harborview/hms/pkg/logging"
)

// AppointmentSource resolves appointment ownership for the doctor routes.
type AppointmentSource interface {
	Get(ctx context.Context, id string) (*appointments.Appointment, error)
}

// DoctorLookup resolves a session user id to the doctor profile id.
type DoctorLookup func(ctx context.Context, userID string) (string, error)

// Handler exposes the doctor-facing treatment endpoints.
type Handler struct {
	store   Store
	appts   AppointmentSource
	doctors DoctorLookup
	logger  *logging.Logger
}

// NewHandler creates a treatments handler.
func NewHandler(store Store, appts AppointmentSource, doctors DoctorLookup, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, appts: appts, doctors: doctors, logger: logger}
}

// resolveAppointment loads the appointment named in the URL and checks it
// belongs to the requesting doctor.
func (h *Handler) resolveAppointment(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, _ := session.IdentityFromContext(r.Context())
	doctorID, err := h.doctors(r.Context(), id.UserID)
	if err != nil {
		http.Error(w, "doctor profile not found", http.StatusNotFound)
		return "", false
	}

	apptID := chi.URLParam(r, "appointmentID")
	appt, err := h.appts.Get(r.Context(), apptID)
	if err != nil || appt.DoctorID != doctorID {
		http.Error(w, ErrAppointmentNotFound.Error(), http.StatusNotFound)
		return "", false
	}
	return apptID, true
}

// Upsert handles POST /doctor/appointments/{appointmentID}/treatment.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	apptID, ok := h.resolveAppointment(w, r)
	if !ok {
		return
	}

	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	t, err := h.store.Upsert(r.Context(), apptID, &req)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("treatment upsert failed", "error", err, "appointment_id", apptID)
		http.Error(w, "failed to record treatment", http.StatusInternalServerError)
		return
	}

	h.logger.Info("treatment recorded", "appointment_id", apptID, "treatment_id", t.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}

// Get handles GET /doctor/appointments/{appointmentID}/treatment.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	apptID, ok := h.resolveAppointment(w, r)
	if !ok {
		return
	}

	detail, err := h.store.Get(r.Context(), apptID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("treatment lookup failed", "error", err, "appointment_id", apptID)
		http.Error(w, "failed to load treatment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

// PatientHistory handles GET /doctor/patients/{patientID}/history.
func (h *Handler) PatientHistory(w http.ResponseWriter, r *http.Request) {
	id, _ := session.IdentityFromContext(r.Context())
	if _, err := h.doctors(r.Context(), id.UserID); err != nil {
		http.Error(w, "doctor profile not found", http.StatusNotFound)
		return
	}

	patientID := chi.URLParam(r, "patientID")
	history, err := h.store.PatientHistory(r.Context(), patientID)
	if err != nil {
		h.logger.Error("patient history lookup failed", "error", err, "patient_id", patientID)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"history": history})
}
