package patients

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborview/hms/internal/session"
	"github.com/harborview/hms/pkg/logging"
)

// Handler exposes the admin roster endpoints and the patient's own profile.
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates a patients handler.
func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// List handles GET /admin/patients. An optional ?search= query narrows by
// name or contact substring.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("failed to list patients", "error", err)
		http.Error(w, "failed to load patients", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"patients": out})
}

// Get handles GET /admin/patients/{patientID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), chi.URLParam(r, "patientID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load patient", "error", err)
		http.Error(w, "failed to load patient", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// Update handles PUT /admin/patients/{patientID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, chi.URLParam(r, "patientID"))
}

// Delete handles DELETE /admin/patients/{patientID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	if err := h.store.Delete(r.Context(), patientID); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete patient", "error", err, "patient_id", patientID)
		http.Error(w, "failed to delete patient", http.StatusInternalServerError)
		return
	}

	h.logger.Info("patient deleted", "patient_id", patientID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "patient deleted"})
}

// Profile handles GET /patient/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	patientID, ok := h.ownPatientID(w, r)
	if !ok {
		return
	}

	p, err := h.store.Get(r.Context(), patientID)
	if err != nil {
		h.logger.Error("failed to load own profile", "error", err, "patient_id", patientID)
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// UpdateProfile handles PUT /patient/profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	patientID, ok := h.ownPatientID(w, r)
	if !ok {
		return
	}
	h.update(w, r, patientID)
}

func (h *Handler) ownPatientID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, _ := session.IdentityFromContext(r.Context())
	patientID, err := h.store.IDForUser(r.Context(), id.UserID)
	if err != nil {
		http.Error(w, "patient profile not found", http.StatusNotFound)
		return "", false
	}
	return patientID, true
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, patientID string) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.store.Update(r.Context(), patientID, &req); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update patient", "error", err, "patient_id", patientID)
		http.Error(w, "failed to update patient", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "patient updated"})
}
