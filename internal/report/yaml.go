package report

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gotrs-io/snipeit-e2e/internal/scenario"
)

// YAML writes results.yaml, a machine readable dump of the run.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

type yamlStep struct {
	Name     string `yaml:"name"`
	Outcome  string `yaml:"outcome"`
	Duration string `yaml:"duration"`
	Error    string `yaml:"error,omitempty"`
}

type yamlScenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Outcome     string     `yaml:"outcome"`
	Duration    string     `yaml:"duration"`
	ErrorType   string     `yaml:"error_type,omitempty"`
	Error       string     `yaml:"error,omitempty"`
	URL         string     `yaml:"url,omitempty"`
	Screenshot  string     `yaml:"screenshot,omitempty"`
	Steps       []yamlStep `yaml:"steps,omitempty"`
}

type yamlRun struct {
	RunID     string         `yaml:"run_id"`
	Started   time.Time      `yaml:"started"`
	Finished  time.Time      `yaml:"finished"`
	Passed    int            `yaml:"passed"`
	Failed    int            `yaml:"failed"`
	Skipped   int            `yaml:"skipped"`
	Scenarios []yamlScenario `yaml:"scenarios"`
}

func (YAML) Write(dir string, results *scenario.Results) (string, error) {
	doc := yamlRun{
		RunID:    results.RunID.String(),
		Started:  results.Started.UTC(),
		Finished: results.Finished.UTC(),
		Passed:   results.Count(scenario.Passed),
		Failed:   results.Count(scenario.Failed),
		Skipped:  results.Count(scenario.Skipped),
	}
	for _, r := range results.Scenarios {
		s := yamlScenario{
			Name:        r.Name,
			Description: r.Description,
			Outcome:     string(r.Outcome),
			Duration:    r.Duration.String(),
			Error:       r.Message(),
			URL:         r.URL,
			Screenshot:  r.Screenshot,
		}
		if r.Outcome == scenario.Failed {
			s.ErrorType = failureType(r.Err)
		}
		for _, st := range r.Steps {
			ys := yamlStep{Name: st.Name, Outcome: string(st.Outcome), Duration: st.Duration.String()}
			if st.Err != nil {
				ys.Error = st.Err.Error()
			}
			s.Steps = append(s.Steps, ys)
		}
		doc.Scenarios = append(doc.Scenarios, s)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "results.yaml")
	return path, os.WriteFile(path, data, 0o644)
}
