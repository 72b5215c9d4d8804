package doctors

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/hms/pkg/logging"
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateSeedsSevenDayShift(t *testing.T) {
	store := NewInMemoryStore()
	handler := NewHandler(store, 7, logging.Default())
	handler.now = func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) }

	body, _ := json.Marshal(CreateRequest{
		Username:     "drgrey",
		Password:     "pw",
		Name:         "Dr. Grey",
		DefaultShift: &Shift{StartTime: "09:00", EndTime: "17:00"},
	})
	req := httptest.NewRequest(http.MethodPost, "/admin/doctors", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var doc Doctor
	require.NoError(t, json.NewDecoder(w.Body).Decode(&doc))

	dates := store.SeededShiftDates[doc.ID]
	require.Len(t, dates, 7)
	assert.Equal(t, "2024-03-01", dates[0])
	assert.Equal(t, "2024-03-07", dates[6])
}

func TestCreateWithoutShiftSeedsNothing(t *testing.T) {
	store := NewInMemoryStore()
	handler := NewHandler(store, 7, logging.Default())

	body, _ := json.Marshal(CreateRequest{Username: "drgrey", Password: "pw", Name: "Dr. Grey"})
	req := httptest.NewRequest(http.MethodPost, "/admin/doctors", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var doc Doctor
	require.NoError(t, json.NewDecoder(w.Body).Decode(&doc))
	assert.Empty(t, store.SeededShiftDates[doc.ID])
}

func TestCreateDuplicateUsernameConflict(t *testing.T) {
	store := NewInMemoryStore()
	handler := NewHandler(store, 7, logging.Default())

	body, _ := json.Marshal(CreateRequest{Username: "drgrey", Password: "pw"})
	req := httptest.NewRequest(http.MethodPost, "/admin/doctors", bytes.NewReader(body))
	handler.Create(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodPost, "/admin/doctors", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.Create(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateMissingCredentials(t *testing.T) {
	handler := NewHandler(NewInMemoryStore(), 7, logging.Default())

	body, _ := json.Marshal(CreateRequest{Name: "Dr. Nobody"})
	req := httptest.NewRequest(http.MethodPost, "/admin/doctors", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.Create(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAndDeleteEndpoints(t *testing.T) {
	store := NewInMemoryStore()
	handler := NewHandler(store, 7, logging.Default())
	ctx := context.Background()

	doc, err := store.CreateDoctor(ctx, &CreateRequest{Username: "drgrey", Password: "pw", Name: "Dr. Grey"}, "hashed", nil)
	require.NoError(t, err)

	body, _ := json.Marshal(UpdateRequest{Name: "Dr. M. Grey", Specialization: "Surgery"})
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/admin/doctors/"+doc.ID, bytes.NewReader(body)), "doctorID", doc.ID)
	w := httptest.NewRecorder()
	handler.Update(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = withURLParam(httptest.NewRequest(http.MethodDelete, "/admin/doctors/"+doc.ID, nil), "doctorID", doc.ID)
	w = httptest.NewRecorder()
	handler.Delete(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/admin/doctors/"+doc.ID, nil), "doctorID", doc.ID)
	w = httptest.NewRecorder()
	handler.Get(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
