// Package metrics provides Prometheus metrics for a materialization run.
//
// The tool is a one-shot CLI, so metrics are collected in a private registry
// and can be exported in the node_exporter textfile format at the end of a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeWritten = "written"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Recorder collects run metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	filesTotal         *prometheus.CounterVec
	bytesDownloaded    prometheus.Counter
	directoriesCreated prometheus.Counter
	nodesSkipped       *prometheus.CounterVec
	fetchDuration      prometheus.Histogram
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		reg: reg,
		filesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vercel_source_files_total",
				Help: "Files processed, by outcome",
			},
			[]string{"outcome"},
		),
		bytesDownloaded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "vercel_source_bytes_downloaded_total",
				Help: "Decoded bytes written to disk",
			},
		),
		directoriesCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "vercel_source_directories_created_total",
				Help: "Directories created or confirmed on disk",
			},
		),
		nodesSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vercel_source_nodes_skipped_total",
				Help: "Listing entries skipped before any download, by reason",
			},
			[]string{"reason"},
		),
		fetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vercel_source_fetch_duration_seconds",
				Help:    "Duration of file content requests",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// RecordFile records the outcome of one file fetch.
func (r *Recorder) RecordFile(outcome string, bytes int) {
	if r == nil {
		return
	}
	r.filesTotal.WithLabelValues(outcome).Inc()
	if bytes > 0 {
		r.bytesDownloaded.Add(float64(bytes))
	}
}

// RecordDirectory records a directory creation.
func (r *Recorder) RecordDirectory() {
	if r == nil {
		return
	}
	r.directoriesCreated.Inc()
}

// RecordNodeSkip records a listing entry dropped before download.
func (r *Recorder) RecordNodeSkip(reason string) {
	if r == nil {
		return
	}
	r.nodesSkipped.WithLabelValues(reason).Inc()
}

// ObserveFetch records how long a content request took.
func (r *Recorder) ObserveFetch(d time.Duration) {
	if r == nil {
		return
	}
	r.fetchDuration.Observe(d.Seconds())
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.Registry())
}
