package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/gotrs-io/snipeit-e2e/internal/scenario"
)

// Console prints progress as scenarios run.
type Console struct {
	scenario.NopReporter

	out     io.Writer
	verbose bool

	errColor     *color.Color
	failedColor  *color.Color
	skippedColor *color.Color
	passedColor  *color.Color
	faintColor   *color.Color
}

// NewConsole writes to out. Verbose adds a line per step.
func NewConsole(out io.Writer, verbose, noColor bool) *Console {
	c := &Console{
		out:          out,
		verbose:      verbose,
		errColor:     color.New(color.FgYellow),
		failedColor:  color.New(color.FgRed),
		skippedColor: color.New(color.Faint, color.FgBlue),
		passedColor:  color.New(color.FgGreen),
		faintColor:   color.New(color.Faint),
	}
	if noColor {
		for _, col := range []*color.Color{c.errColor, c.failedColor, c.skippedColor, c.passedColor, c.faintColor} {
			col.DisableColor()
		}
	}
	return c
}

func (c *Console) RunStarted(results *scenario.Results, scenarios []scenario.Scenario) {
	_, _ = c.faintColor.Fprintf(c.out, "run %s: %d scenarios\n", results.RunID, len(scenarios))
}

func (c *Console) ScenarioStarted(s scenario.Scenario) {
	fmt.Fprintf(c.out, "[%s]\n", s.Name)
}

func (c *Console) StepFinished(s scenario.Scenario, step scenario.StepResult) {
	if !c.verbose {
		return
	}
	if step.Outcome == scenario.Failed {
		_, _ = c.failedColor.Fprintf(c.out, "  x %s\n", step.Name)
		return
	}
	_, _ = c.faintColor.Fprintf(c.out, "  - %s (%s)\n", step.Name, step.Duration.Round(time.Millisecond))
}

func (c *Console) ScenarioFinished(r scenario.Result) {
	switch r.Outcome {
	case scenario.Failed:
		for _, line := range strings.Split(r.Message(), "\n") {
			_, _ = c.errColor.Fprintf(c.out, "  %s\n", line)
		}
		if r.URL != "" {
			_, _ = c.errColor.Fprintf(c.out, "  url: %s\n", r.URL)
		}
		if r.Screenshot != "" {
			_, _ = c.errColor.Fprintf(c.out, "  screenshot: %s\n", r.Screenshot)
		}
		_, _ = c.failedColor.Fprintf(c.out, "  FAILED: %s\n", r.Name)
	case scenario.Skipped:
		if msg := r.Message(); msg != "" {
			_, _ = c.skippedColor.Fprintf(c.out, "  SKIPPED: %s (%s)\n", r.Name, msg)
		} else {
			_, _ = c.skippedColor.Fprintf(c.out, "  SKIPPED: %s\n", r.Name)
		}
	}
}

func (c *Console) RunFinished(results *scenario.Results) {
	if results.OK() {
		_, _ = c.passedColor.Fprintf(c.out, "All %d scenarios passed in %s\n", results.Count(scenario.Passed), results.Duration().Round(time.Millisecond))
		return
	}
	_, _ = c.failedColor.Fprintf(c.out, "FAILED SCENARIOS (%d):\n", results.Count(scenario.Failed))
	for _, r := range results.Scenarios {
		if r.Outcome == scenario.Failed {
			_, _ = c.failedColor.Fprintf(c.out, "  * %s\n", r.Name)
		}
	}
	if n := results.Count(scenario.Skipped); n > 0 {
		_, _ = c.skippedColor.Fprintf(c.out, "%d scenarios skipped\n", n)
	}
}
