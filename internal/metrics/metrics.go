// Package metrics keeps in-process counters for gateway traffic and payment
// syncs. Counters are atomic and safe for concurrent use.
package metrics

import (
	"sync/atomic"
	"time"

	lexeerr "github.com/mrz1836/lexe/pkg/errors"
)

// Metrics holds the counters.
type Metrics struct {
	gatewayCalls        atomic.Int64
	gatewayErrors       atomic.Int64
	gatewayRetryable    atomic.Int64
	gatewayLatencyNanos atomic.Int64
	rateLimitWaits      atomic.Int64

	syncsTotal      atomic.Int64
	syncErrors      atomic.Int64
	paymentsNew     atomic.Int64
	paymentsUpdated atomic.Int64

	provisions atomic.Int64
}

// Global is the process-wide instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordGatewayCall records one gateway request.
func (m *Metrics) RecordGatewayCall(duration time.Duration, err error) {
	m.gatewayCalls.Add(1)
	m.gatewayLatencyNanos.Add(duration.Nanoseconds())
	if err == nil {
		return
	}
	m.gatewayErrors.Add(1)
	if lexeerr.IsRetryable(err) {
		m.gatewayRetryable.Add(1)
	}
}

// RecordRateLimitWait records a request that had to wait for a token.
func (m *Metrics) RecordRateLimitWait() {
	m.rateLimitWaits.Add(1)
}

// RecordSync records a finished payment sync.
func (m *Metrics) RecordSync(numNew, numUpdated int, err error) {
	m.syncsTotal.Add(1)
	m.paymentsNew.Add(int64(numNew))
	m.paymentsUpdated.Add(int64(numUpdated))
	if err != nil {
		m.syncErrors.Add(1)
	}
}

// RecordProvision records a provision request sent to the node.
func (m *Metrics) RecordProvision() {
	m.provisions.Add(1)
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	GatewayCalls        int64 `json:"gateway_calls"`
	GatewayErrors       int64 `json:"gateway_errors"`
	GatewayRetryable    int64 `json:"gateway_retryable_errors"`
	GatewayLatencyNanos int64 `json:"gateway_latency_ns"`
	RateLimitWaits      int64 `json:"rate_limit_waits"`
	SyncsTotal          int64 `json:"syncs"`
	SyncErrors          int64 `json:"sync_errors"`
	PaymentsNew         int64 `json:"payments_new"`
	PaymentsUpdated     int64 `json:"payments_updated"`
	Provisions          int64 `json:"provisions"`
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		GatewayCalls:        m.gatewayCalls.Load(),
		GatewayErrors:       m.gatewayErrors.Load(),
		GatewayRetryable:    m.gatewayRetryable.Load(),
		GatewayLatencyNanos: m.gatewayLatencyNanos.Load(),
		RateLimitWaits:      m.rateLimitWaits.Load(),
		SyncsTotal:          m.syncsTotal.Load(),
		SyncErrors:          m.syncErrors.Load(),
		PaymentsNew:         m.paymentsNew.Load(),
		PaymentsUpdated:     m.paymentsUpdated.Load(),
		Provisions:          m.provisions.Load(),
	}
}

// GatewayLatencyAvgMs returns the average gateway latency in milliseconds,
// or 0 before the first call.
func (m *Metrics) GatewayLatencyAvgMs() float64 {
	calls := m.gatewayCalls.Load()
	if calls == 0 {
		return 0
	}
	return float64(m.gatewayLatencyNanos.Load()) / float64(calls) / 1e6
}

// Reset zeroes every counter.
func (m *Metrics) Reset() {
	m.gatewayCalls.Store(0)
	m.gatewayErrors.Store(0)
	m.gatewayRetryable.Store(0)
	m.gatewayLatencyNanos.Store(0)
	m.rateLimitWaits.Store(0)
	m.syncsTotal.Store(0)
	m.syncErrors.Store(0)
	m.paymentsNew.Store(0)
	m.paymentsUpdated.Store(0)
	m.provisions.Store(0)
}
