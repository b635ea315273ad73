// Package metrics provides observability for the marketplace module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks listing lifecycle counts and settlement durations.
type Metrics struct {
	ListingsCreated   prometheus.Counter
	ListingsFilled    prometheus.Counter
	ListingsCancelled prometheus.Counter
	FillDuration      prometheus.Histogram
}

// New creates a Metrics instance with all marketplace metrics registered.
func New() *Metrics {
	return &Metrics{
		ListingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "landshare_listings_created_total",
			Help: "Total number of share listings created",
		}),
		ListingsFilled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "landshare_listings_filled_total",
			Help: "Total number of share listings filled by buyers",
		}),
		ListingsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "landshare_listings_cancelled_total",
			Help: "Total number of share listings cancelled by sellers",
		}),
		FillDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "landshare_listing_fill_duration_seconds",
			Help:    "Duration of listing fill operations (settlement critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementListingsCreated records a new open listing.
func (m *Metrics) IncrementListingsCreated() {
	m.ListingsCreated.Inc()
}

// IncrementListingsCancelled records a cancelled listing.
func (m *Metrics) IncrementListingsCancelled() {
	m.ListingsCancelled.Inc()
}

// ObserveFill records a completed fill.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveFill(start time.Time) {
	m.ListingsFilled.Inc()
	m.FillDuration.Observe(time.Since(start).Seconds())
}
