package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flow.
type BookingMetrics struct {
	slotQueries    *prometheus.CounterVec
	bookingsTotal  *prometheus.CounterVec
	confirmLatency prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		slotQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "booking",
			Name:      "slot_queries_total",
			Help:      "Total availability queries",
		}, []string{"status"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "booking",
			Name:      "confirmations_total",
			Help:      "Total booking confirmation attempts",
		}, []string{"status"}),
		confirmLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agenda",
			Subsystem: "booking",
			Name:      "confirmation_latency_seconds",
			Help:      "Latency of booking confirmations",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.slotQueries, m.bookingsTotal, m.confirmLatency)
	return m
}

func (m *BookingMetrics) ObserveSlotQuery(status string) {
	if m == nil {
		return
	}
	m.slotQueries.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveConfirmation(status string, seconds float64) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
	m.confirmLatency.Observe(seconds)
}
