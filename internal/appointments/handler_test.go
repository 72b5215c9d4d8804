package appointments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/harborview/hms/internal/availability"
	"github.com/harborview/hms/internal/observability/metrics"
	"github.com/harborview/hms/internal/session"
	"github.com/harborview/hms/pkg/logging"
)

func lookupPatient(ctx context.Context, userID string) (string, error) {
	if userID == "user-pat" {
		return "pat-1", nil
	}
	return "", errors.New("no patient profile")
}

func lookupDoctor(ctx context.Context, userID string) (string, error) {
	if userID == "user-doc" {
		return "doc-1", nil
	}
	return "", errors.New("no doctor profile")
}

func asPatient(req *http.Request) *http.Request {
	return req.WithContext(session.WithIdentity(req.Context(), session.Identity{UserID: "user-pat", Role: "patient"}))
}

func asDoctor(req *http.Request) *http.Request {
	return req.WithContext(session.WithIdentity(req.Context(), session.Identity{UserID: "user-doc", Role: "doctor"}))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func newTestHandler(t *testing.T) (*Handler, *InMemoryStore, *availability.InMemoryStore) {
	t.Helper()
	store := NewInMemoryStore()
	windows := availability.NewInMemoryStore()
	m := metrics.NewSchedulingMetrics(prometheus.NewRegistry())
	sched := NewScheduler(store, windows, nil, m, logging.Default())
	handler := NewHandler(sched, store, lookupPatient, lookupDoctor, logging.Default())
	return handler, store, windows
}

func postBook(t *testing.T, handler *Handler, req BookRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(req)
	httpReq := asPatient(httptest.NewRequest(http.MethodPost, "/patient/book", bytes.NewReader(body)))
	w := httptest.NewRecorder()
	handler.Book(w, httpReq)
	return w
}

// Covers the core booking scenario: a declared 09:00-12:00 window admits an
// in-range slot once, rejects the same slot again, and rejects an
// out-of-range time with the valid range in the message.
func TestBookingScenario(t *testing.T) {
	handler, _, windows := newTestHandler(t)
	err := windows.Set(context.Background(), availability.Window{
		DoctorID: "doc-1", Date: "2024-03-01", StartTime: "09:00", EndTime: "12:00",
	})
	if err != nil {
		t.Fatalf("failed to seed window: %v", err)
	}

	w := postBook(t, handler, BookRequest{DoctorID: "doc-1", Date: "2024-03-01", Time: "09:30"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	var appt Appointment
	if err := json.NewDecoder(w.Body).Decode(&appt); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if appt.Status != StatusScheduled {
		t.Errorf("expected Scheduled, got %s", appt.Status)
	}

	w = postBook(t, handler, BookRequest{DoctorID: "doc-1", Date: "2024-03-01", Time: "09:30"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d for taken slot, got %d", http.StatusConflict, w.Code)
	}

	w = postBook(t, handler, BookRequest{DoctorID: "doc-1", Date: "2024-03-01", Time: "13:00"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d out of window, got %d", http.StatusUnprocessableEntity, w.Code)
	}
	if body := w.Body.String(); !bytes.Contains([]byte(body), []byte("between 09:00 and 12:00")) {
		t.Errorf("expected valid range in message, got %q", body)
	}
}

func TestBookMissingFieldsRejected(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	w := postBook(t, handler, BookRequest{DoctorID: "doc-1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestBookNoPatientProfile(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	body, _ := json.Marshal(BookRequest{DoctorID: "doc-1", Date: "2024-03-01", Time: "09:30"})
	req := httptest.NewRequest(http.MethodPost, "/patient/book", bytes.NewReader(body))
	req = req.WithContext(session.WithIdentity(req.Context(), session.Identity{UserID: "user-other", Role: "patient"}))
	w := httptest.NewRecorder()
	handler.Book(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestPatientCancelOwnAppointment(t *testing.T) {
	handler, store, _ := newTestHandler(t)

	w := postBook(t, handler, BookRequest{DoctorID: "doc-1", Date: "2024-03-01", Time: "09:30"})
	var appt Appointment
	if err := json.NewDecoder(w.Body).Decode(&appt); err != nil {
		t.Fatalf("failed to decode booking: %v", err)
	}

	req := asPatient(httptest.NewRequest(http.MethodPost, "/patient/appointments/"+appt.ID+"/cancel", nil))
	req = withURLParam(req, "appointmentID", appt.ID)
	w = httptest.NewRecorder()
	handler.PatientCancel(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	got, err := store.Get(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("expected Cancelled, got %s", got.Status)
	}
}

func TestPatientCannotCancelOthersAppointment(t *testing.T) {
	handler, store, _ := newTestHandler(t)

	other := &Appointment{PatientID: "pat-2", DoctorID: "doc-1", Date: "2024-03-01", Time: "09:30"}
	if err := store.Create(context.Background(), other); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	req := asPatient(httptest.NewRequest(http.MethodPost, "/patient/appointments/"+other.ID+"/cancel", nil))
	req = withURLParam(req, "appointmentID", other.ID)
	w := httptest.NewRecorder()
	handler.PatientCancel(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestDoctorSetStatus(t *testing.T) {
	handler, store, _ := newTestHandler(t)

	appt := &Appointment{PatientID: "pat-1", DoctorID: "doc-1", Date: "2024-03-01", Time: "09:30"}
	if err := store.Create(context.Background(), appt); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	body, _ := json.Marshal(StatusRequest{Status: StatusCompleted})
	req := asDoctor(httptest.NewRequest(http.MethodPost, "/doctor/appointments/"+appt.ID+"/status", bytes.NewReader(body)))
	req = withURLParam(req, "appointmentID", appt.ID)
	w := httptest.NewRecorder()
	handler.SetStatus(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	got, _ := store.Get(context.Background(), appt.ID)
	if got.Status != StatusCompleted {
		t.Errorf("expected Completed, got %s", got.Status)
	}
}

func TestDoctorSetStatusInvalidValue(t *testing.T) {
	handler, store, _ := newTestHandler(t)

	appt := &Appointment{PatientID: "pat-1", DoctorID: "doc-1", Date: "2024-03-01", Time: "09:30"}
	if err := store.Create(context.Background(), appt); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	body, _ := json.Marshal(StatusRequest{Status: Status("Archived")})
	req := asDoctor(httptest.NewRequest(http.MethodPost, "/doctor/appointments/"+appt.ID+"/status", bytes.NewReader(body)))
	req = withURLParam(req, "appointmentID", appt.ID)
	w := httptest.NewRecorder()
	handler.SetStatus(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestDoctorAppointmentsDateFilter(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	ctx := context.Background()
	store.PatientNames["pat-1"] = "Jane Roe"

	for _, slot := range []struct{ date, time string }{
		{"2024-03-01", "09:00"}, {"2024-03-02", "10:00"},
	} {
		if err := store.Create(ctx, &Appointment{PatientID: "pat-1", DoctorID: "doc-1", Date: slot.date, Time: slot.time}); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	req := asDoctor(httptest.NewRequest(http.MethodGet, "/doctor/appointments?date=2024-03-01", nil))
	w := httptest.NewRecorder()
	handler.DoctorAppointments(w, req)

	var resp struct {
		Appointments []DoctorView `json:"appointments"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Appointments) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(resp.Appointments))
	}
	if resp.Appointments[0].PatientName != "Jane Roe" {
		t.Errorf("expected joined patient name, got %q", resp.Appointments[0].PatientName)
	}
}

func TestDoctorDashboardUsesUTCDay(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	ctx := context.Background()
	store.PatientNames["pat-1"] = "Jane Roe"

	// 01:30 on March 2nd in UTC+10 is still March 1st in UTC.
	local := time.FixedZone("UTC+10", 10*60*60)
	handler.now = func() time.Time {
		return time.Date(2024, 3, 2, 1, 30, 0, 0, local)
	}

	for _, slot := range []struct{ date, time string }{
		{"2024-03-01", "09:00"}, {"2024-03-02", "10:00"},
	} {
		if err := store.Create(ctx, &Appointment{PatientID: "pat-1", DoctorID: "doc-1", Date: slot.date, Time: slot.time}); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	req := asDoctor(httptest.NewRequest(http.MethodGet, "/doctor/dashboard", nil))
	w := httptest.NewRecorder()
	handler.DoctorDashboard(w, req)

	var resp struct {
		Date         string       `json:"date"`
		Appointments []DoctorView `json:"appointments"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Date != "2024-03-01" {
		t.Fatalf("expected UTC day 2024-03-01, got %s", resp.Date)
	}
	if len(resp.Appointments) != 1 || resp.Appointments[0].Date != "2024-03-01" {
		t.Fatalf("expected only the UTC-day appointment, got %+v", resp.Appointments)
	}
}

func TestAdminCancelAnyAppointment(t *testing.T) {
	handler, store, _ := newTestHandler(t)

	appt := &Appointment{PatientID: "pat-2", DoctorID: "doc-1", Date: "2024-03-01", Time: "09:30"}
	if err := store.Create(context.Background(), appt); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/appointments/"+appt.ID+"/cancel", nil)
	req = req.WithContext(session.WithIdentity(req.Context(), session.Identity{UserID: "user-admin", Role: "admin"}))
	req = withURLParam(req, "appointmentID", appt.ID)
	w := httptest.NewRecorder()
	handler.AdminCancel(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	got, _ := store.Get(context.Background(), appt.ID)
	if got.Status != StatusCancelled {
		t.Errorf("expected Cancelled, got %s", got.Status)
	}
}
