package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harborview/hms/internal/session"
	"github.com/harborview/hms/pkg/logging"
)

// ProfileLookup resolves a session user id to the role-specific profile id
// (patient or doctor row).
type ProfileLookup func(ctx context.Context, userID string) (string, error)

// Handler exposes the appointment endpoints for all three roles.
type Handler struct {
	scheduler *Scheduler
	store     Store
	patients  ProfileLookup
	doctors   ProfileLookup
	logger    *logging.Logger
	now       func() time.Time
}

// NewHandler creates an appointments handler.
func NewHandler(scheduler *Scheduler, store Store, patients, doctors ProfileLookup, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		scheduler: scheduler,
		store:     store,
		patients:  patients,
		doctors:   doctors,
		logger:    logger,
		now:       time.Now,
	}
}

// Book handles POST /patient/book.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "please log in to access this page", http.StatusUnauthorized)
		return
	}
	patientID, err := h.patients(r.Context(), id.UserID)
	if err != nil {
		http.Error(w, "patient profile not found", http.StatusNotFound)
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.PatientID = patientID

	appt, err := h.scheduler.Book(r.Context(), req)
	if err != nil {
		h.writeBookError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(appt)
}

func (h *Handler) writeBookError(w http.ResponseWriter, err error) {
	var oow *OutOfWindowError
	switch {
	case errors.Is(err, ErrMissingFields):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrSlotTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &oow):
		http.Error(w, oow.Error(), http.StatusUnprocessableEntity)
	default:
		h.logger.Error("booking failed", "error", err)
		http.Error(w, "booking failed", http.StatusInternalServerError)
	}
}

// PatientAppointments handles GET /patient/dashboard.
func (h *Handler) PatientAppointments(w http.ResponseWriter, r *http.Request) {
	id, _ := session.IdentityFromContext(r.Context())
	patientID, err := h.patients(r.Context(), id.UserID)
	if err != nil {
		http.Error(w, "patient profile not found", http.StatusNotFound)
		return
	}

	appts, err := h.store.ListForPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("failed to list patient appointments", "error", err)
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"appointments": appts})
}

// PatientCancel handles POST /patient/appointments/{appointmentID}/cancel.
// Patients can only cancel their own appointments.
func (h *Handler) PatientCancel(w http.ResponseWriter, r *http.Request) {
	id, _ := session.IdentityFromContext(r.Context())
	patientID, err := h.patients(r.Context(), id.UserID)
	if err != nil {
		http.Error(w, "patient profile not found", http.StatusNotFound)
		return
	}

	apptID := chi.URLParam(r, "appointmentID")
	appt, err := h.store.Get(r.Context(), apptID)
	if err != nil || appt.PatientID != patientID {
		http.Error(w, ErrNotFound.Error(), http.StatusNotFound)
		return
	}

	h.cancel(w, r, apptID)
}

// AdminCancel handles POST /admin/appointments/{appointmentID}/cancel.
func (h *Handler) AdminCancel(w http.ResponseWriter, r *http.Request) {
	h.cancel(w, r, chi.URLParam(r, "appointmentID"))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request, apptID string) {
	if err := h.scheduler.Cancel(r.Context(), apptID); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("cancellation failed", "error", err, "appointment_id", apptID)
		http.Error(w, "cancellation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "appointment cancelled"})
}

// DoctorAppointments handles GET /doctor/appointments. An optional ?date=
// query narrows the list to one day.
func (h *Handler) DoctorAppointments(w http.ResponseWriter, r *http.Request) {
	id, _ := session.IdentityFromContext(r.Context())
	doctorID, err := h.doctors(r.Context(), id.UserID)
	if err != nil {
		http.Error(w, "doctor profile not found", http.StatusNotFound)
		return
	}

	appts, err := h.store.ListForDoctor(r.Context(), doctorID, r.URL.Query().Get("date"))
	if err != nil {
		h.logger.Error("failed to list doctor appointments", "error", err)
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"appointments": appts})
}

// DoctorDashboard handles GET /doctor/dashboard: today's appointments only.
func (h *Handler) DoctorDashboard(w http.ResponseWriter, r *http.Request) {
	id, _ := session.IdentityFromContext(r.Context())
	doctorID, err := h.doctors(r.Context(), id.UserID)
	if err != nil {
		http.Error(w, "doctor profile not found", http.StatusNotFound)
		return
	}

	// Same UTC day convention as the availability schedule.
	today := h.now().UTC().Format("2006-01-02")
	appts, err := h.store.ListForDoctor(r.Context(), doctorID, today)
	if err != nil {
		h.logger.Error("failed to load doctor dashboard", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"date": today, "appointments": appts})
}

// StatusRequest is the request body for a doctor status update.
type StatusRequest struct {
	Status Status `json:"status"`
}

// SetStatus handles POST /doctor/appointments/{appointmentID}/status. The
// appointment must belong to the requesting doctor.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := session.IdentityFromContext(r.Context())
	doctorID, err := h.doctors(r.Context(), id.UserID)
	if err != nil {
		http.Error(w, "doctor profile not found", http.StatusNotFound)
		return
	}

	apptID := chi.URLParam(r, "appointmentID")
	appt, err := h.store.Get(r.Context(), apptID)
	if err != nil || appt.DoctorID != doctorID {
		http.Error(w, ErrNotFound.Error(), http.StatusNotFound)
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.scheduler.SetStatus(r.Context(), apptID, req.Status); err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error("status update failed", "error", err, "appointment_id", apptID)
			http.Error(w, "status update failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "status updated"})
}

// AdminAppointments handles GET /admin/appointments.
func (h *Handler) AdminAppointments(w http.ResponseWriter, r *http.Request) {
	appts, err := h.store.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"appointments": appts})
}
