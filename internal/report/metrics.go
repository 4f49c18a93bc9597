package report

import (
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gotrs-io/snipeit-e2e/internal/scenario"
)

// Metrics writes metrics.prom in the node_exporter textfile format.
type Metrics struct{}

func (Metrics) Name() string { return "metrics" }

func (Metrics) Write(dir string, results *scenario.Results) (string, error) {
	reg := prometheus.NewRegistry()

	outcomes := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "snipeit_e2e",
		Name:      "scenarios",
		Help:      "Number of scenarios by outcome in the last run.",
	}, []string{"outcome"})
	duration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "snipeit_e2e",
		Name:      "scenario_duration_seconds",
		Help:      "Duration of each scenario in the last run.",
	}, []string{"scenario", "outcome"})
	runDuration := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "snipeit_e2e",
		Name:      "run_duration_seconds",
		Help:      "Wall time of the last run.",
	})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "snipeit_e2e",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished.",
	})
	reg.MustRegister(outcomes, duration, runDuration, lastRun)

	for _, o := range []scenario.Outcome{scenario.Passed, scenario.Failed, scenario.Skipped} {
		outcomes.WithLabelValues(string(o)).Set(float64(results.Count(o)))
	}
	for _, r := range results.Scenarios {
		duration.WithLabelValues(r.Name, string(r.Outcome)).Set(r.Duration.Seconds())
	}
	runDuration.Set(results.Duration().Seconds())
	lastRun.Set(float64(results.Finished.Unix()))

	path := filepath.Join(dir, "metrics.prom")
	return path, prometheus.WriteToTextfile(path, reg)
}
