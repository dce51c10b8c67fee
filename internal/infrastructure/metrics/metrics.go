package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for booking and clinical result flows.
type BookingMetrics struct {
	bookingsCreated   *prometheus.CounterVec
	transitions       *prometheus.CounterVec
	rejections        *prometheus.CounterVec
	resultSubmissions *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hivcare",
			Subsystem: "booking",
			Name:      "created_total",
			Help:      "Total bookings created",
		}, []string{"anonymous"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hivcare",
			Subsystem: "booking",
			Name:      "status_transitions_total",
			Help:      "Total applied booking status transitions",
		}, []string{"from", "to", "role"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hivcare",
			Subsystem: "booking",
			Name:      "rejections_total",
			Help:      "Total booking operations rejected by a domain rule",
		}, []string{"operation", "reason"}),
		resultSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hivcare",
			Subsystem: "result",
			Name:      "submissions_total",
			Help:      "Total clinical result submissions",
		}, []string{"outcome", "arv", "regimen_cloned"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsCreated, m.transitions, m.rejections, m.resultSubmissions)
	return m
}

func (m *BookingMetrics) ObserveBookingCreated(anonymous bool) {
	if m == nil {
		return
	}
	m.bookingsCreated.WithLabelValues(boolLabel(anonymous)).Inc()
}

func (m *BookingMetrics) ObserveTransition(from, to, role string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to, role).Inc()
}

func (m *BookingMetrics) ObserveRejection(operation, reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(operation, reason).Inc()
}

func (m *BookingMetrics) ObserveResultSubmission(outcome string, arv, regimenCloned bool) {
	if m == nil {
		return
	}
	m.resultSubmissions.WithLabelValues(outcome, boolLabel(arv), boolLabel(regimenCloned)).Inc()
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
