package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics exposes counters/histograms for the agenda flows.
// A nil *BookingMetrics is valid and records nothing.
type BookingMetrics struct {
	bookingsTotal  *prometheus.CounterVec
	conflictsTotal *prometheus.CounterVec
	slotLatency    *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "booking",
			Name:      "created_total",
			Help:      "Appointments created",
		}, []string{"channel"}),
		conflictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "booking",
			Name:      "conflicts_total",
			Help:      "Bookings rejected by the overlap constraint",
		}, []string{"channel"}),
		slotLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agenda",
			Subsystem: "availability",
			Name:      "listing_seconds",
			Help:      "Latency of slot listing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "availability",
			Name:      "cache_lookups_total",
			Help:      "Availability cache lookups by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.conflictsTotal, m.slotLatency, m.cacheLookups)
	return m
}

func (m *BookingMetrics) ObserveBooking(channel string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(channel).Inc()
}

func (m *BookingMetrics) ObserveConflict(channel string) {
	if m == nil {
		return
	}
	m.conflictsTotal.WithLabelValues(channel).Inc()
}

func (m *BookingMetrics) ObserveSlotListing(source string, seconds float64) {
	if m == nil {
		return
	}
	m.slotLatency.WithLabelValues(source).Observe(seconds)
}

// ObserveCache records "hit", "miss" or "error".
func (m *BookingMetrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
