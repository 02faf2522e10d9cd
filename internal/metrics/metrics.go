// Package metrics records run metrics of a merge on a private Prometheus
// registry, written out as a textfile at the end of the run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentstation/enrollsync/pkg/matchcase"
	"github.com/agentstation/enrollsync/pkg/reconcile"
)

const namespace = "enrollsync"

// Recorder implements reconcile.Observer.
type Recorder struct {
	registry *prometheus.Registry

	students  prometheus.Counter
	cases     *prometheus.CounterVec
	unmatched *prometheus.GaugeVec
	rows      *prometheus.GaugeVec
	duration  prometheus.Gauge
	lastRun   prometheus.Gauge
}

var _ reconcile.Observer = (*Recorder)(nil)

// New registers the run collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		students: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "students_total",
			Help:      "Students processed by the matching pass",
		}),
		cases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "case_matches_total",
			Help:      "Records classified per match case",
		}, []string{"case", "family"}),
		unmatched: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unmatched_records",
			Help:      "Records no case accepted",
		}, []string{"side"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "output_rows",
			Help:      "Rows written per output table",
		}, []string{"table"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "match_duration_seconds",
			Help:      "Duration of the matching pass",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the matching pass finished",
		}),
	}
	r.registry.MustRegister(r.students, r.cases, r.unmatched, r.rows, r.duration, r.lastRun)
	return r
}

// StudentProcessed implements reconcile.Observer.
func (r *Recorder) StudentProcessed() {
	r.students.Inc()
}

// CaseMatched implements reconcile.Observer.
func (r *Recorder) CaseMatched(c *matchcase.Case) {
	r.cases.WithLabelValues(c.Name, c.Family.String()).Inc()
}

// ObserveResult records the totals of a finished matching pass.
func (r *Recorder) ObserveResult(res *reconcile.Result) {
	s := res.Metadata.Stats
	r.unmatched.WithLabelValues("clearinghouse").Set(float64(s.UnmatchedClearinghouse))
	r.unmatched.WithLabelValues("database").Set(float64(s.UnmatchedDatabase))
	r.duration.Set(res.Metadata.Duration.Seconds())
	r.lastRun.Set(float64(res.Metadata.EndTime.Time.Unix()))
}

// ObserveRows records the row count of an output table.
func (r *Recorder) ObserveRows(table string, n int) {
	r.rows.WithLabelValues(table).Set(float64(n))
}

// Gatherer returns the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}
