package index

import (
	"github.com/prometheus/client_golang/prometheus"
)

/* Prometheus collectors of a DocumentsWriter. */
type Metrics struct {
	DocsIndexedTotal  prometheus.Counter
	DocsDeletedTotal  prometheus.Counter
	FlushesTotal      *prometheus.CounterVec
	AbortsTotal       prometheus.Counter
	FlushedFilesTotal prometheus.Counter
	FlushDuration     prometheus.Histogram
	RAMBytesUsed      prometheus.Gauge
}

/*
Creates the collectors and registers them on reg. A nil reg leaves
them unregistered, which is what tests want.
*/
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "termshash_docs_indexed_total",
			Help: "Total documents added to the in-memory generation.",
		}),
		DocsDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "termshash_docs_deleted_total",
			Help: "Total documents marked deleted after a non-aborting error.",
		}),
		FlushesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "termshash_flushes_total",
			Help: "Total segment flushes by result (ok, error).",
		}, []string{"result"}),
		AbortsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "termshash_aborts_total",
			Help: "Total discarded indexing generations.",
		}),
		FlushedFilesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "termshash_flushed_files_total",
			Help: "Total files written by successful flushes.",
		}),
		FlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "termshash_flush_duration_seconds",
			Help:    "Segment flush latency in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),
		RAMBytesUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "termshash_ram_bytes_used",
			Help: "Bytes held by the in-memory indexing buffers.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.DocsIndexedTotal,
			m.DocsDeletedTotal,
			m.FlushesTotal,
			m.AbortsTotal,
			m.FlushedFilesTotal,
			m.FlushDuration,
			m.RAMBytesUsed,
		)
	}
	return m
}
