package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "filebridge"

// Exporter exposes a Collector's snapshot as Prometheus metrics. Values are
// read at scrape time so the Collector stays the single source of truth.
type Exporter struct {
	c *Collector

	processTotal  *prometheus.Desc
	failuresTotal *prometheus.Desc
	recordsTotal  *prometheus.Desc
	bytesTotal    *prometheus.Desc
	retrieveTotal *prometheus.Desc
	ledgerTotal   *prometheus.Desc
	notifyTotal   *prometheus.Desc
	info          *prometheus.Desc
}

// NewExporter creates an exporter over c.
func NewExporter(c *Collector) *Exporter {
	return &Exporter{
		c: c,
		processTotal: prometheus.NewDesc(namespace+"_process_total",
			"Process attempts by outcome.", []string{"outcome"}, nil),
		failuresTotal: prometheus.NewDesc(namespace+"_process_failures_total",
			"Failed process attempts by error kind.", []string{"kind"}, nil),
		recordsTotal: prometheus.NewDesc(namespace+"_records_written_total",
			"Records written to artifacts.", nil, nil),
		bytesTotal: prometheus.NewDesc(namespace+"_bytes_written_total",
			"Bytes written to artifacts.", nil, nil),
		retrieveTotal: prometheus.NewDesc(namespace+"_retrieve_total",
			"Retrievals by cache result.", []string{"result"}, nil),
		ledgerTotal: prometheus.NewDesc(namespace+"_ledger_writes_total",
			"Ledger appends by outcome.", []string{"outcome"}, nil),
		notifyTotal: prometheus.NewDesc(namespace+"_notifications_total",
			"Artifact notifications by outcome.", []string{"outcome"}, nil),
		info: prometheus.NewDesc(namespace+"_storage_info",
			"Configured storage backends.", []string{"source_backend", "target_backend"}, nil),
	}
}

// NewRegistry returns a registry exporting c.
func NewRegistry(c *Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewExporter(c))
	return reg
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		e.processTotal, e.failuresTotal, e.recordsTotal, e.bytesTotal,
		e.retrieveTotal, e.ledgerTotal, e.notifyTotal, e.info,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	s := e.c.Snapshot()
	counter := func(d *prometheus.Desc, v int64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}

	counter(e.processTotal, s.ProcessSucceeded, "success")
	counter(e.processTotal, s.ProcessFailed, "failure")

	kinds := make([]string, 0, len(s.FailedByKind))
	for k := range s.FailedByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		counter(e.failuresTotal, s.FailedByKind[k], k)
	}

	counter(e.recordsTotal, s.RecordsWritten)
	counter(e.bytesTotal, s.BytesWritten)
	counter(e.retrieveTotal, s.RetrieveHits, "hit")
	counter(e.retrieveTotal, s.RetrieveReprocessed, "reprocessed")
	counter(e.ledgerTotal, s.LedgerWriteSuccess, "success")
	counter(e.ledgerTotal, s.LedgerWriteFailure, "failure")
	counter(e.notifyTotal, s.NotifySuccess, "success")
	counter(e.notifyTotal, s.NotifyFailure, "failure")

	ch <- prometheus.MustNewConstMetric(e.info, prometheus.GaugeValue, 1, s.SourceBackend, s.TargetBackend)
}

var _ prometheus.Collector = (*Exporter)(nil)
