// Package metrics records run statistics and exports them in the Prometheus
// textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ethanis/nitpicker/pkg/nitpick"
	"github.com/ethanis/nitpicker/pkg/publisher"
)

// Recorder holds the metrics of a single run on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	rulesEvaluated    prometheus.Counter
	rulesApplicable   prometheus.Counter
	commentActions    *prometheus.CounterVec
	conclusionFailure prometheus.Gauge
}

// NewRecorder creates a recorder with every metric registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		rulesEvaluated: factory.NewCounter(prometheus.CounterOpts{
			Name: "nitpicker_rules_evaluated_total",
			Help: "Total number of rules evaluated against the change set",
		}),
		rulesApplicable: factory.NewCounter(prometheus.CounterOpts{
			Name: "nitpicker_rules_applicable_total",
			Help: "Total number of rules that applied to at least one change",
		}),
		commentActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nitpicker_comment_actions_total",
			Help: "Comment actions carried out, by action",
		}, []string{"action"}),
		conclusionFailure: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nitpicker_conclusion_failure",
			Help: "1 when the run concluded with failure, 0 otherwise",
		}),
	}
}

// Registry returns the registry the metrics live on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRules counts evaluated and applicable rules.
func (r *Recorder) ObserveRules(evaluated, applicable int) {
	r.rulesEvaluated.Add(float64(evaluated))
	r.rulesApplicable.Add(float64(applicable))
}

// ObserveConclusion sets the failure gauge.
func (r *Recorder) ObserveConclusion(c nitpick.Conclusion) {
	if c == nitpick.ConclusionFailure {
		r.conclusionFailure.Set(1)
		return
	}
	r.conclusionFailure.Set(0)
}

// ObserveResult counts the actions of a publish result.
func (r *Recorder) ObserveResult(result publisher.PublishResult) {
	for _, a := range result.Actions {
		r.commentActions.WithLabelValues(a.Type).Inc()
	}
}

// WriteFile writes all metrics to path in the textfile collector format.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
