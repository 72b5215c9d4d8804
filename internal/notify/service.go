package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/harborview/hms/internal/appointments"
	"github.com/harborview/hms/pkg/logging"
)

// ContactLookup resolves a patient id to the display name and contact
// address stored on the patient's user record.
type ContactLookup func(ctx context.Context, patientID string) (name, contact string, err error)

// DoctorNameLookup resolves a doctor id to the doctor's display name.
type DoctorNameLookup func(ctx context.Context, doctorID string) (string, error)

// Service sends appointment lifecycle emails to patients. Sends are best
// effort; the booking flow never fails on a notification error.
type Service struct {
	email   EmailSender
	patient ContactLookup
	doctor  DoctorNameLookup
	logger  *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, patient ContactLookup, doctor DoctorNameLookup, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, patient: patient, doctor: doctor, logger: logger}
}

// AppointmentBooked emails the patient a booking confirmation.
func (s *Service) AppointmentBooked(ctx context.Context, appt *appointments.Appointment) error {
	return s.send(ctx, appt, "Appointment confirmed",
		"Your appointment with %s on %s at %s is confirmed.")
}

// AppointmentCancelled emails the patient a cancellation notice.
func (s *Service) AppointmentCancelled(ctx context.Context, appt *appointments.Appointment) error {
	return s.send(ctx, appt, "Appointment cancelled",
		"Your appointment with %s on %s at %s has been cancelled.")
}

func (s *Service) send(ctx context.Context, appt *appointments.Appointment, subject, bodyFormat string) error {
	if s.email == nil {
		return nil
	}

	name, contact, err := s.patient(ctx, appt.PatientID)
	if err != nil {
		return fmt.Errorf("notify: lookup patient: %w", err)
	}
	// The contact field is free text; only email addresses are deliverable.
	if !strings.Contains(contact, "@") {
		s.logger.Debug("notify: patient contact is not an email, skipping", "patient_id", appt.PatientID)
		return nil
	}

	doctorName := "your doctor"
	if s.doctor != nil {
		if n, err := s.doctor(ctx, appt.DoctorID); err == nil && n != "" {
			doctorName = n
		}
	}

	body := fmt.Sprintf(bodyFormat, doctorName, appt.Date, appt.Time)
	if appt.TreatmentType != "" {
		body += fmt.Sprintf("\nTreatment: %s", appt.TreatmentType)
	}

	msg := EmailMessage{
		To:      contact,
		ToName:  name,
		Subject: subject,
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	return nil
}
