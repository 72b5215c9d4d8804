package availability

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

// Handler handles availability HTTP requests.
type Handler struct {
	store   Store
	doctors DoctorLookup
	logger  *logging.Logger
	now     func() time.Time
}

// DoctorLookup maps a logged-in user to their doctor profile id.
type DoctorLookup func(ctx context.Context, userID string) (string, error)

// NewHandler creates a new availability handler.
func NewHandler(store Store, doctors DoctorLookup, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, doctors: doctors, logger: logger, now: time.Now}
}

func (h *Handler) today() string {
	return h.now().UTC().Format("2006-01-02")
}

// ScheduleRequest is the request body for replacing the rolling schedule.
type ScheduleRequest struct {
	Windows []Window `json:"windows"`
}

// GetSchedule handles GET /doctor/availability, listing the caller's future
// windows.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, _ := session.IdentityFromContext(r.Context())
	doctorID, err := h.doctors(r.Context(), id.UserID)
	if err != nil {
		http.Error(w, "doctor profile not found", http.StatusNotFound)
		return
	}

	windows, err := h.store.List(r.Context(), doctorID, h.today())
	if err != nil {
		h.logger.Error("failed to list availability", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to load availability", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"availability": windows})
}

// ReplaceSchedule handles POST /doctor/availability. The caller's windows
// from today onward are wiped and replaced with the submitted set, matching
// the weekly re-declaration flow.
func (h *Handler) ReplaceSchedule(w http.ResponseWriter, r *http.Request) {
	id, _ := session.IdentityFromContext(r.Context())
	doctorID, err := h.doctors(r.Context(), id.UserID)
	if err != nil {
		http.Error(w, "doctor profile not found", http.StatusNotFound)
		return
	}

	h.replaceFor(w, r, doctorID)
}

// AdminReplaceSchedule handles POST /admin/doctors/{doctorID}/availability,
// letting an admin rewrite a doctor's schedule on their behalf.
func (h *Handler) AdminReplaceSchedule(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	if doctorID == "" {
		http.Error(w, "missing doctor id", http.StatusBadRequest)
		return
	}

	h.replaceFor(w, r, doctorID)
}

func (h *Handler) replaceFor(w http.ResponseWriter, r *http.Request, doctorID string) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.store.ReplaceSchedule(r.Context(), doctorID, h.today(), req.Windows); err != nil {
		if errors.Is(err, ErrInvalidWindow) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to replace schedule", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to update availability", http.StatusInternalServerError)
		return
	}

	h.logger.Info("availability updated", "doctor_id", doctorID, "windows", len(req.Windows))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "availability updated"})
}

// PublicList handles GET /get_availability/{doctorID}, returning the future
// windows any logged-in user may inspect before booking.
func (h *Handler) PublicList(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	if doctorID == "" {
		http.Error(w, "missing doctor id", http.StatusBadRequest)
		return
	}

	windows, err := h.store.List(r.Context(), doctorID, h.today())
	if err != nil {
		h.logger.Error("failed to list availability", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to load availability", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"availability": windows})
}
