package doctors

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/harborview/hms/pkg/logging"
)

// Handler exposes the admin doctor-management endpoints.
type Handler struct {
	store       Store
	horizonDays int
	logger      *logging.Logger
	now         func() time.Time
}

// NewHandler creates a doctors handler. horizonDays controls how many days
// of availability a default shift seeds, starting today.
func NewHandler(store Store, horizonDays int, logger *logging.Logger) *Handler {
	if horizonDays <= 0 {
		horizonDays = 7
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, horizonDays: horizonDays, logger: logger, now: time.Now}
}

// Create handles POST /admin/doctors.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		http.Error(w, "failed to create doctor", http.StatusInternalServerError)
		return
	}

	var shiftDates []string
	if req.DefaultShift != nil {
		start := h.now()
		for i := 0; i < h.horizonDays; i++ {
			shiftDates = append(shiftDates, start.AddDate(0, 0, i).Format("2006-01-02"))
		}
	}

	doc, err := h.store.CreateDoctor(r.Context(), &req, string(hash), shiftDates)
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.logger.Error("failed to create doctor", "error", err, "username", req.Username)
		http.Error(w, "failed to create doctor", http.StatusInternalServerError)
		return
	}

	h.logger.Info("doctor created", "doctor_id", doc.ID, "seeded_days", len(shiftDates))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(doc)
}

// List handles GET /admin/doctors. An optional ?specialization= query
// narrows by substring.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.List(r.Context(), r.URL.Query().Get("specialization"))
	if err != nil {
		h.logger.Error("failed to list doctors", "error", err)
		http.Error(w, "failed to load doctors", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"doctors": docs})
}

// Get handles GET /admin/doctors/{doctorID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Get(r.Context(), chi.URLParam(r, "doctorID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load doctor", "error", err)
		http.Error(w, "failed to load doctor", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

// Update handles PUT /admin/doctors/{doctorID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	doctorID := chi.URLParam(r, "doctorID")
	if err := h.store.Update(r.Context(), doctorID, &req); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update doctor", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to update doctor", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "doctor updated"})
}

// Delete handles DELETE /admin/doctors/{doctorID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	if err := h.store.Delete(r.Context(), doctorID); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete doctor", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to delete doctor", http.StatusInternalServerError)
		return
	}

	h.logger.Info("doctor deleted", "doctor_id", doctorID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "doctor deleted"})
}
