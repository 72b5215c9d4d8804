package departments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/harborview/hms/pkg/logging"
)

// Handler exposes the admin department endpoints.
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates a departments handler.
func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// List handles GET /admin/departments.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list departments", "error", err)
		http.Error(w, "failed to load departments", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"departments": out})
}

// Create handles POST /admin/departments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, ErrMissingName.Error(), http.StatusBadRequest)
		return
	}

	d, err := h.store.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrDuplicateName) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.logger.Error("failed to create department", "error", err, "name", req.Name)
		http.Error(w, "failed to create department", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(d)
}
