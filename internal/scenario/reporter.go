package scenario

// Reporter observes a run as it happens.
type Reporter interface {
	RunStarted(results *Results, scenarios []Scenario)
	ScenarioStarted(s Scenario)
	StepFinished(s Scenario, step StepResult)
	ScenarioFinished(result Result)
	RunFinished(results *Results)
}

// NopReporter ignores every event. Embed it to implement a subset.
type NopReporter struct{}

func (NopReporter) RunStarted(*Results, []Scenario)   {}
func (NopReporter) ScenarioStarted(Scenario)          {}
func (NopReporter) StepFinished(Scenario, StepResult) {}
func (NopReporter) ScenarioFinished(Result)           {}
func (NopReporter) RunFinished(*Results)              {}

// MultiReporter fans every event out to each reporter in order.
type MultiReporter []Reporter

func (m MultiReporter) RunStarted(r *Results, s []Scenario) {
	for _, rep := range m {
		rep.RunStarted(r, s)
	}
}

func (m MultiReporter) ScenarioStarted(s Scenario) {
	for _, rep := range m {
		rep.ScenarioStarted(s)
	}
}

func (m MultiReporter) StepFinished(s Scenario, step StepResult) {
	for _, rep := range m {
		rep.StepFinished(s, step)
	}
}

func (m MultiReporter) ScenarioFinished(r Result) {
	for _, rep := range m {
		rep.ScenarioFinished(r)
	}
}

func (m MultiReporter) RunFinished(r *Results) {
	for _, rep := range m {
		rep.RunFinished(r)
	}
}
