// Package metrics provides process-wide counters for the bridge.
//
// The Collector accumulates counters across process and retrieve calls. It is
// a leaf package: failure kinds and endpoints are plain strings so callers'
// error types stay out of it.
package metrics

import (
	"maps"
	"sync"
)

// Snapshot is an immutable point-in-time view of all metrics.
type Snapshot struct {
	// Process lifecycle
	ProcessStarted      int64
	ProcessSucceeded    int64
	ProcessFailed       int64
	FailedByKind        map[string]int64
	SucceededByEndpoint map[string]int64

	// Artifacts
	RecordsWritten int64
	BytesWritten   int64

	// Retrieval
	Retrievals          int64
	RetrieveHits        int64
	RetrieveReprocessed int64

	// Ledger
	LedgerWriteSuccess int64
	LedgerWriteFailure int64

	// Notifications
	NotifySuccess int64
	NotifyFailure int64

	// Dimensions (informational, set at construction)
	SourceBackend string
	TargetBackend string
}

// Collector accumulates metrics. Thread-safe via sync.Mutex. All methods are
// nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	processStarted   int64
	processSucceeded int64
	processFailed    int64
	failedByKind     map[string]int64
	byEndpoint       map[string]int64

	recordsWritten int64
	bytesWritten   int64

	retrievals          int64
	retrieveHits        int64
	retrieveReprocessed int64

	ledgerWriteSuccess int64
	ledgerWriteFailure int64

	notifySuccess int64
	notifyFailure int64

	sourceBackend string
	targetBackend string
}

// NewCollector creates a Collector labelled with the storage backends.
func NewCollector(sourceBackend, targetBackend string) *Collector {
	return &Collector{
		failedByKind:  make(map[string]int64),
		byEndpoint:    make(map[string]int64),
		sourceBackend: sourceBackend,
		targetBackend: targetBackend,
	}
}

func (c *Collector) update(fn func()) {
	if c == nil {
		return
	}
	c.mu.Lock()
	fn()
	c.mu.Unlock()
}

// IncProcessStarted records a process attempt.
func (c *Collector) IncProcessStarted() {
	c.update(func() { c.processStarted++ })
}

// RecordProcessSuccess records a written artifact.
func (c *Collector) RecordProcessSuccess(endpoint string, records int, bytes int64) {
	c.update(func() {
		c.processSucceeded++
		c.byEndpoint[endpoint]++
		c.recordsWritten += int64(records)
		c.bytesWritten += bytes
	})
}

// RecordProcessFailure records a failed process attempt by error kind.
func (c *Collector) RecordProcessFailure(kind string) {
	c.update(func() {
		c.processFailed++
		c.failedByKind[kind]++
	})
}

// RecordRetrieve records a retrieval; reprocessed is true on a cache miss.
func (c *Collector) RecordRetrieve(reprocessed bool) {
	c.update(func() {
		c.retrievals++
		if reprocessed {
			c.retrieveReprocessed++
		} else {
			c.retrieveHits++
		}
	})
}

// IncLedgerWriteSuccess records a ledger append.
func (c *Collector) IncLedgerWriteSuccess() {
	c.update(func() { c.ledgerWriteSuccess++ })
}

// IncLedgerWriteFailure records a failed ledger append.
func (c *Collector) IncLedgerWriteFailure() {
	c.update(func() { c.ledgerWriteFailure++ })
}

// IncNotifySuccess records a published notification.
func (c *Collector) IncNotifySuccess() {
	c.update(func() { c.notifySuccess++ })
}

// IncNotifyFailure records a notification that could not be published.
func (c *Collector) IncNotifyFailure() {
	c.update(func() { c.notifyFailure++ })
}

// Snapshot returns a copy of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		ProcessStarted:      c.processStarted,
		ProcessSucceeded:    c.processSucceeded,
		ProcessFailed:       c.processFailed,
		FailedByKind:        maps.Clone(c.failedByKind),
		SucceededByEndpoint: maps.Clone(c.byEndpoint),

		RecordsWritten: c.recordsWritten,
		BytesWritten:   c.bytesWritten,

		Retrievals:          c.retrievals,
		RetrieveHits:        c.retrieveHits,
		RetrieveReprocessed: c.retrieveReprocessed,

		LedgerWriteSuccess: c.ledgerWriteSuccess,
		LedgerWriteFailure: c.ledgerWriteFailure,

		NotifySuccess: c.notifySuccess,
		NotifyFailure: c.notifyFailure,

		SourceBackend: c.sourceBackend,
		TargetBackend: c.targetBackend,
	}
}
