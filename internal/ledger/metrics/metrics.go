// Package metrics provides observability for the share ledger module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks ledger mint/transfer counts and critical path durations.
type Metrics struct {
	LedgersMinted     prometheus.Counter
	SharesTransferred prometheus.Counter
	TransferDuration  prometheus.Histogram
}

// New creates a Metrics instance with all ledger metrics registered.
func New() *Metrics {
	return &Metrics{
		LedgersMinted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "landshare_ledgers_minted_total",
			Help: "Total number of share ledgers minted by fractionalization",
		}),
		SharesTransferred: promauto.NewCounter(prometheus.CounterOpts{
			Name: "landshare_shares_transferred_total",
			Help: "Total number of shares moved by direct transfers",
		}),
		TransferDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "landshare_share_transfer_duration_seconds",
			Help:    "Duration of share transfer operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementLedgersMinted records a successful ledger mint.
func (m *Metrics) IncrementLedgersMinted() {
	m.LedgersMinted.Inc()
}

// ObserveTransfer records a completed transfer of amount shares.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveTransfer(start time.Time, amount uint64) {
	m.SharesTransferred.Add(float64(amount))
	m.TransferDuration.Observe(time.Since(start).Seconds())
}
