package patients

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/hms/internal/session"
	"github.com/harborview/hms/pkg/logging"
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(session.WithIdentity(req.Context(), session.Identity{UserID: userID, Role: "patient"}))
}

func TestAdminListWithSearch(t *testing.T) {
	store := NewInMemoryStore()
	handler := NewHandler(store, logging.Default())
	store.Add(Patient{Name: "Jane Roe", ContactInfo: "jane@example.com"})
	store.Add(Patient{Name: "Joe Bloggs"})

	req := httptest.NewRequest(http.MethodGet, "/admin/patients?search=jane", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Patients []Patient `json:"patients"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Patients, 1)
	assert.Equal(t, "Jane Roe", resp.Patients[0].Name)
}

func TestOwnProfileReadAndUpdate(t *testing.T) {
	store := NewInMemoryStore()
	handler := NewHandler(store, logging.Default())
	p := store.Add(Patient{Name: "Jane Roe", UserID: "user-pat"})

	req := asUser(httptest.NewRequest(http.MethodGet, "/patient/profile", nil), "user-pat")
	w := httptest.NewRecorder()
	handler.Profile(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var got Patient
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, p.ID, got.ID)

	body, _ := json.Marshal(UpdateRequest{Name: "Jane R. Roe", MedicalHistory: "asthma"})
	req = asUser(httptest.NewRequest(http.MethodPut, "/patient/profile", bytes.NewReader(body)), "user-pat")
	w = httptest.NewRecorder()
	handler.UpdateProfile(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	updated, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane R. Roe", updated.Name)
	assert.Equal(t, "asthma", updated.MedicalHistory)
}

func TestOwnProfileWithoutPatientRow(t *testing.T) {
	handler := NewHandler(NewInMemoryStore(), logging.Default())

	req := asUser(httptest.NewRequest(http.MethodGet, "/patient/profile", nil), "user-ghost")
	w := httptest.NewRecorder()
	handler.Profile(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminDeletePatient(t *testing.T) {
	store := NewInMemoryStore()
	handler := NewHandler(store, logging.Default())
	p := store.Add(Patient{Name: "Jane Roe"})

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/admin/patients/"+p.ID, nil), "patientID", p.ID)
	w := httptest.NewRecorder()
	handler.Delete(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/admin/patients/"+p.ID, nil), "patientID", p.ID)
	w = httptest.NewRecorder()
	handler.Get(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
