package appointments

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/harborview/hms/internal/availability"
	"github.com/harborview/hms/internal/observability/metrics"
	"github.com/harborview/hms/pkg/logging"
)

var schedulerTracer = otel.Tracer("hms.internal.appointments")

// WindowSource exposes the availability window for a doctor's day.
type WindowSource interface {
	WindowFor(ctx context.Context, doctorID, date string) (*availability.Window, error)
}

// Notifier sends patient-facing appointment emails. Failures are logged,
// never surfaced to the booking flow.
type Notifier interface {
	AppointmentBooked(ctx context.Context, appt *Appointment) error
	AppointmentCancelled(ctx context.Context, appt *Appointment) error
}

// Scheduler coordinates booking, cancellation and status changes across the
// appointment store and the availability windows.
type Scheduler struct {
	store    Store
	windows  WindowSource
	notifier Notifier
	metrics  *metrics.SchedulingMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewScheduler constructs a scheduler.
func NewScheduler(store Store, windows WindowSource, notifier Notifier, m *metrics.SchedulingMetrics, logger *logging.Logger) *Scheduler {
	if store == nil {
		panic("appointments: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		store:    store,
		windows:  windows,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Book creates a Scheduled appointment after checking the doctor's window
// for the requested day. A day without a declared window accepts any time;
// only an existing window that excludes the requested time rejects the
// booking, with OutOfWindowError carrying the valid range.
func (s *Scheduler) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	ctx, span := schedulerTracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("hms.doctor_id", req.DoctorID),
		attribute.String("hms.date", req.Date),
		attribute.String("hms.time", req.Time),
	)
	started := s.now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if s.windows != nil {
		window, err := s.windows.WindowFor(ctx, req.DoctorID, req.Date)
		if err != nil {
			span.RecordError(err)
			s.metrics.ObserveBooking("error", s.now().Sub(started).Seconds())
			return nil, err
		}
		if window != nil && !window.Contains(req.Time) {
			s.metrics.ObserveBooking("out_of_window", s.now().Sub(started).Seconds())
			return nil, &OutOfWindowError{Start: window.StartTime, End: window.EndTime}
		}
	}

	appt := &Appointment{
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		Date:          req.Date,
		Time:          req.Time,
		Status:        StatusScheduled,
		TreatmentType: req.TreatmentType,
	}
	if err := s.store.Create(ctx, appt); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.metrics.ObserveBooking("slot_taken", s.now().Sub(started).Seconds())
		} else {
			span.RecordError(err)
			s.metrics.ObserveBooking("error", s.now().Sub(started).Seconds())
		}
		return nil, err
	}

	s.metrics.ObserveBooking("booked", s.now().Sub(started).Seconds())
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID, "doctor_id", appt.DoctorID, "date", appt.Date, "time", appt.Time)

	if s.notifier != nil {
		if err := s.notifier.AppointmentBooked(ctx, appt); err != nil {
			s.logger.Warn("booking confirmation email failed", "error", err, "appointment_id", appt.ID)
		}
	}
	return appt, nil
}

// Cancel marks an appointment Cancelled. The write is unconditional; an
// already cancelled or completed appointment is cancelled again without
// complaint, and the slot stays blocked either way.
func (s *Scheduler) Cancel(ctx context.Context, id string) error {
	ctx, span := schedulerTracer.Start(ctx, "appointments.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("hms.appointment_id", id))

	appt, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		span.RecordError(err)
		return err
	}

	s.metrics.ObserveCancellation()
	s.logger.Info("appointment cancelled", "appointment_id", id)

	if s.notifier != nil {
		appt.Status = StatusCancelled
		if err := s.notifier.AppointmentCancelled(ctx, appt); err != nil {
			s.logger.Warn("cancellation email failed", "error", err, "appointment_id", id)
		}
	}
	return nil
}

// SetStatus overwrites an appointment's status. The new status must name a
// known state, but no transition rule is applied against the current one.
func (s *Scheduler) SetStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.metrics.ObserveStatusChange(string(status))
	s.logger.Info("appointment status updated", "appointment_id", id, "status", status)
	return nil
}
