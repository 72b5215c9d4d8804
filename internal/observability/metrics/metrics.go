package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for the booking flow.
type SchedulingMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	cancellationsTotal prometheus.Counter
	statusTotal        *prometheus.CounterVec
	bookingLatency     prometheus.Histogram
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hms",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Total booking attempts by outcome",
		}, []string{"outcome"}),
		cancellationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hms",
			Subsystem: "scheduling",
			Name:      "cancellations_total",
			Help:      "Total appointment cancellations",
		}),
		statusTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hms",
			Subsystem: "scheduling",
			Name:      "status_changes_total",
			Help:      "Total appointment status writes by new status",
		}, []string{"status"}),
		bookingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hms",
			Subsystem: "scheduling",
			Name:      "booking_latency_seconds",
			Help:      "Latency of booking attempts",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.cancellationsTotal, m.statusTotal, m.bookingLatency)
	return m
}

func (m *SchedulingMetrics) ObserveBooking(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
	m.bookingLatency.Observe(seconds)
}

func (m *SchedulingMetrics) ObserveCancellation() {
	if m == nil {
		return
	}
	m.cancellationsTotal.Inc()
}

func (m *SchedulingMetrics) ObserveStatusChange(status string) {
	if m == nil {
		return
	}
	m.statusTotal.WithLabelValues(status).Inc()
}
