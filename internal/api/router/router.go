// Package router assembles the HTTP surface: public auth and availability
// endpoints plus the role-gated admin, doctor and patient groups.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/harborview/hms/internal/admin"
	"github.com/harborview/hms/internal/appointments"
	"github.com/harborview/hms/internal/availability"
	"github.com/harborview/hms/internal/departments"
	"github.com/harborview/hms/internal/doctors"
	httpmiddleware "github.com/harborview/hms/internal/http/middleware"
	"github.com/harborview/hms/internal/patients"
	"github.com/harborview/hms/internal/session"
	"github.com/harborview/hms/internal/treatments"
	"github.com/harborview/hms/internal/users"
	"github.com/harborview/hms/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger   *logging.Logger
	Sessions *session.Manager

	UsersHandler        *users.Handler
	AvailabilityHandler *availability.Handler
	AppointmentsHandler *appointments.Handler
	TreatmentsHandler   *treatments.Handler
	DoctorsHandler      *doctors.Handler
	PatientsHandler     *patients.Handler
	DepartmentsHandler  *departments.Handler
	AdminDashboard      *admin.Handler

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		public.Post("/register", cfg.UsersHandler.Register)
		public.Post("/login", cfg.UsersHandler.Login)
		public.Get("/logout", cfg.UsersHandler.Logout)
		public.Get("/get_availability/{doctorID}", cfg.AvailabilityHandler.PublicList)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	authenticate := session.Authenticate(cfg.Sessions)

	r.Route("/admin", func(adm chi.Router) {
		adm.Use(authenticate, session.RequireRole("admin"))
		adm.Get("/dashboard", cfg.AdminDashboard.Dashboard)
		adm.Get("/departments", cfg.DepartmentsHandler.List)
		adm.Post("/departments", cfg.DepartmentsHandler.Create)
		adm.Get("/doctors", cfg.DoctorsHandler.List)
		adm.Post("/doctors", cfg.DoctorsHandler.Create)
		adm.Route("/doctors/{doctorID}", func(d chi.Router) {
			d.Get("/", cfg.DoctorsHandler.Get)
			d.Put("/", cfg.DoctorsHandler.Update)
			d.Delete("/", cfg.DoctorsHandler.Delete)
			d.Post("/availability", cfg.AvailabilityHandler.AdminReplaceSchedule)
		})
		adm.Get("/patients", cfg.PatientsHandler.List)
		adm.Route("/patients/{patientID}", func(p chi.Router) {
			p.Get("/", cfg.PatientsHandler.Get)
			p.Put("/", cfg.PatientsHandler.Update)
			p.Delete("/", cfg.PatientsHandler.Delete)
		})
		adm.Get("/appointments", cfg.AppointmentsHandler.AdminAppointments)
		adm.Post("/appointments/{appointmentID}/cancel", cfg.AppointmentsHandler.AdminCancel)
	})

	r.Route("/doctor", func(doc chi.Router) {
		doc.Use(authenticate, session.RequireRole("doctor"))
		doc.Get("/dashboard", cfg.AppointmentsHandler.DoctorDashboard)
		doc.Get("/appointments", cfg.AppointmentsHandler.DoctorAppointments)
		doc.Post("/appointments/{appointmentID}/status", cfg.AppointmentsHandler.SetStatus)
		doc.Get("/appointments/{appointmentID}/treatment", cfg.TreatmentsHandler.Get)
		doc.Post("/appointments/{appointmentID}/treatment", cfg.TreatmentsHandler.Upsert)
		doc.Get("/availability", cfg.AvailabilityHandler.GetSchedule)
		doc.Post("/availability", cfg.AvailabilityHandler.ReplaceSchedule)
		doc.Get("/patients/{patientID}/history", cfg.TreatmentsHandler.PatientHistory)
	})

	r.Route("/patient", func(pat chi.Router) {
		pat.Use(authenticate, session.RequireRole("patient"))
		pat.Get("/dashboard", cfg.AppointmentsHandler.PatientAppointments)
		pat.Get("/profile", cfg.PatientsHandler.Profile)
		pat.Put("/profile", cfg.PatientsHandler.UpdateProfile)
		pat.Post("/book", cfg.AppointmentsHandler.Book)
		pat.Post("/appointments/{appointmentID}/cancel", cfg.AppointmentsHandler.PatientCancel)
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
