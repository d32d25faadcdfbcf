package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every exported metric.
const Namespace = "nbpublish"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	itemsTotal    *prom.CounterVec
	skippedTotal  *prom.CounterVec
	archiveFiles  prom.Counter
	brokenLinks   prom.Counter
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		itemsTotal: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "items_published_total",
			Help:      "Published items by kind",
		}, []string{"kind"}),
		skippedTotal: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "inputs_skipped_total",
			Help:      "Inputs that produced no item, by reason",
		}, []string{"reason"}),
		archiveFiles: prom.NewCounter(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "archive_files_total",
			Help:      "Data files written into archives",
		}),
		brokenLinks: prom.NewCounter(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "broken_links_total",
			Help:      "Relative links in generated pages with no target",
		}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: Namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.itemsTotal, pr.skippedTotal, pr.archiveFiles, pr.brokenLinks, pr.buildDuration, pr.buildOutcome)
	return pr
}

// Registry returns the registry the metrics are registered with.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) IncItemPublished(kind string) {
	p.itemsTotal.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncInputSkipped(reason string) {
	p.skippedTotal.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) AddArchiveFiles(n int) {
	if n > 0 {
		p.archiveFiles.Add(float64(n))
	}
}

func (p *PrometheusRecorder) AddBrokenLinks(n int) {
	if n > 0 {
		p.brokenLinks.Add(float64(n))
	}
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

// WriteTextfile writes the recorder's metrics to path in the Prometheus text
// exposition format. The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
