package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
)

// Session is the part of the session manager the runner needs.
type Session interface {
	Page() browser.Page
	Reset() error
	CaptureFailure(name string) string
}

// Options configures a Runner.
type Options struct {
	// FailFast skips every remaining scenario after the first failure.
	FailFast bool
	Reporter Reporter
	Logger   *zap.Logger
	Now      func() time.Time
}

// Runner executes scenarios in declared order against one session.
type Runner struct {
	session  Session
	opts     Options
	logger   *zap.Logger
	reporter Reporter
}

// NewRunner binds a runner to a session.
func NewRunner(session Session, opts Options) *Runner {
	r := &Runner{session: session, opts: opts, logger: opts.Logger, reporter: opts.Reporter}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.reporter == nil {
		r.reporter = NopReporter{}
	}
	if r.opts.Now == nil {
		r.opts.Now = time.Now
	}
	return r
}

// Run validates the plan and executes it. The error is non-nil only when the
// plan itself is invalid; scenario failures are reported in the results.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (*Results, error) {
	return r.RunWithState(ctx, NewState(), scenarios)
}

// RunWithState runs against a caller supplied state, which is left holding
// every value the scenarios produced.
func (r *Runner) RunWithState(ctx context.Context, state *State, scenarios []Scenario) (*Results, error) {
	if err := Plan(scenarios); err != nil {
		return nil, err
	}

	results := &Results{RunID: uuid.New(), Started: r.opts.Now()}
	logger := r.logger.With(zap.String("run_id", results.RunID.String()))
	logger.Info("run started", zap.Int("scenarios", len(scenarios)), zap.Bool("fail_fast", r.opts.FailFast))
	r.reporter.RunStarted(results, scenarios)

	var abort error
	for _, s := range scenarios {
		if abort == nil && ctx.Err() != nil {
			abort = &SkipError{Reason: fmt.Sprintf("run cancelled: %v", ctx.Err())}
		}
		if abort != nil {
			res := Result{Name: s.Name, Description: s.Description, Outcome: Skipped, Started: r.opts.Now(), Err: abort}
			r.reporter.ScenarioStarted(s)
			r.reporter.ScenarioFinished(res)
			results.Scenarios = append(results.Scenarios, res)
			continue
		}

		res := r.runScenario(ctx, logger, state, s)
		results.Scenarios = append(results.Scenarios, res)
		if res.Outcome == Failed && r.opts.FailFast {
			abort = &SkipError{Reason: fmt.Sprintf("upstream scenario %q failed", s.Name)}
		}
	}

	results.Finished = r.opts.Now()
	logger.Info("run finished",
		zap.Int("passed", results.Count(Passed)),
		zap.Int("failed", results.Count(Failed)),
		zap.Int("skipped", results.Count(Skipped)),
		zap.Duration("duration", results.Duration()),
	)
	r.reporter.RunFinished(results)
	return results, nil
}

func (r *Runner) runScenario(ctx context.Context, logger *zap.Logger, state *State, s Scenario) Result {
	logger = logger.With(zap.String("scenario", s.Name))
	res := Result{Name: s.Name, Description: s.Description, Started: r.opts.Now()}
	r.reporter.ScenarioStarted(s)

	finish := func(outcome Outcome, err error) Result {
		res.Outcome, res.Err = outcome, err
		res.Duration = r.opts.Now().Sub(res.Started)
		switch outcome {
		case Failed:
			if page := r.session.Page(); page != nil {
				res.URL = page.URL()
			}
			res.Screenshot = r.session.CaptureFailure(s.Name)
			logger.Error("scenario failed", zap.Error(err), zap.String("url", res.URL), zap.String("screenshot", res.Screenshot))
		case Skipped:
			logger.Warn("scenario skipped", zap.Error(err))
		default:
			logger.Info("scenario passed", zap.Duration("duration", res.Duration))
		}
		r.reporter.ScenarioFinished(res)
		return res
	}

	if missing := missingKeys(state, s.Requires); len(missing) > 0 {
		return finish(Skipped, &PreconditionError{Scenario: s.Name, Missing: missing})
	}

	if s.Isolation == Isolated {
		if err := r.session.Reset(); err != nil {
			return finish(Failed, fmt.Errorf("reset session for %q: %w", s.Name, err))
		}
	}

	t := newT(ctx, s.Name, r.session.Page(), state, logger)
	for _, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return finish(Failed, fmt.Errorf("%s / %s: %w", s.Name, step.Name, err))
		}
		started := r.opts.Now()
		err := t.run(step)
		sr := StepResult{Name: step.Name, Outcome: Passed, Duration: r.opts.Now().Sub(started), Err: err}
		if err != nil {
			sr.Outcome = Failed
		}
		res.Steps = append(res.Steps, sr)
		r.reporter.StepFinished(s, sr)
		logger.Debug("step finished", zap.String("step", step.Name), zap.String("outcome", string(sr.Outcome)))
		if err != nil {
			return finish(Failed, err)
		}
	}

	if missing := missingKeys(state, s.Produces); len(missing) > 0 {
		return finish(Failed, fmt.Errorf("scenario %q finished without producing %v", s.Name, missing))
	}
	return finish(Passed, nil)
}

func missingKeys(state *State, keys []Key) []Key {
	var missing []Key
	for _, k := range keys {
		if !state.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}
