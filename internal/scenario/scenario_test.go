package scenario

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
)

type stubPage struct {
	browser.Page
	url string
}

func (p *stubPage) URL() string { return p.url }

type fakeSession struct {
	page     *stubPage
	resets   int
	captures []string
	resetErr error
}

func newSession() *fakeSession {
	return &fakeSession{page: &stubPage{url: "http://snipeit.test/"}}
}

func (s *fakeSession) Page() browser.Page { return s.page }

func (s *fakeSession) Reset() error {
	s.resets++
	return s.resetErr
}

func (s *fakeSession) CaptureFailure(name string) string {
	s.captures = append(s.captures, name)
	return "screenshots/" + name + ".png"
}

type recordingReporter struct {
	NopReporter
	events []string
}

func (r *recordingReporter) ScenarioStarted(s Scenario) { r.events = append(r.events, "start "+s.Name) }

func (r *recordingReporter) StepFinished(s Scenario, st StepResult) {
	r.events = append(r.events, fmt.Sprintf("step %s/%s %s", s.Name, st.Name, st.Outcome))
}

func (r *recordingReporter) ScenarioFinished(res Result) {
	r.events = append(r.events, fmt.Sprintf("finish %s %s", res.Name, res.Outcome))
}

func (r *recordingReporter) RunFinished(res *Results) { r.events = append(r.events, "done") }

const tagKey Key = "asset-tag"

func produce(name string, key Key, value string) Scenario {
	return Scenario{
		Name:     name,
		Produces: []Key{key},
		Steps: []Step{{Name: "produce", Run: func(t *T) {
			t.State().Set(key, value)
		}}},
	}
}

func consume(name string, key Key, got *string) Scenario {
	return Scenario{
		Name:     name,
		Requires: []Key{key},
		Steps: []Step{{Name: "consume", Run: func(t *T) {
			*got = t.State().String(key)
		}}},
	}
}

func failing(name string) Scenario {
	return Scenario{Name: name, Steps: []Step{{Name: "boom", Run: func(t *T) {
		require.Equal(t, "expected", "actual")
	}}}}
}

func newRunner(t *testing.T, s Session, failFast bool, rep Reporter) *Runner {
	return NewRunner(s, Options{FailFast: failFast, Reporter: rep, Logger: zaptest.NewLogger(t)})
}

func TestPlan(t *testing.T) {
	var sink string
	ok := []Scenario{produce("create", tagKey, "AB12CD34"), consume("search", tagKey, &sink)}
	require.NoError(t, Plan(ok))

	testCases := []struct {
		name      string
		scenarios []Scenario
		want      string
	}{
		{"consumer before producer", []Scenario{consume("search", tagKey, &sink), produce("create", tagKey, "x")}, `requires "asset-tag"`},
		{"duplicate names", []Scenario{produce("create", tagKey, "x"), produce("create", tagKey, "y")}, `duplicate scenario "create"`},
		{"missing name", []Scenario{{Steps: []Step{{Name: "x", Run: func(*T) {}}}}}, "has no name"},
		{"no steps", []Scenario{{Name: "empty"}}, "has no steps"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Plan(tc.scenarios)
			assert.ErrorIs(t, err, ErrInvalidPlan)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestRunnerRejectsInvalidPlan(t *testing.T) {
	var sink string
	res, err := newRunner(t, newSession(), true, nil).Run(context.Background(), []Scenario{consume("search", tagKey, &sink)})
	assert.ErrorIs(t, err, ErrInvalidPlan)
	assert.Nil(t, res)
}

func TestSubset(t *testing.T) {
	all := []Scenario{
		{Name: "login", Produces: []Key{"user"}},
		{Name: "create", Requires: []Key{"user"}, Produces: []Key{tagKey}},
		{Name: "dashboard", Requires: []Key{"user"}},
		{Name: "search", Requires: []Key{tagKey}},
		{Name: "delete", Requires: []Key{tagKey}},
	}
	names := func(ss []Scenario) []string {
		var out []string
		for _, s := range ss {
			out = append(out, s.Name)
		}
		return out
	}

	got, err := Subset(all, []string{"search"})
	require.NoError(t, err)
	assert.Equal(t, []string{"login", "create", "search"}, names(got))

	got, err = Subset(all, []string{"dashboard"})
	require.NoError(t, err)
	assert.Equal(t, []string{"login", "dashboard"}, names(got))

	got, err = Subset(all, nil)
	require.NoError(t, err)
	assert.Len(t, got, 5)

	_, err = Subset(all, []string{"nope"})
	assert.ErrorContains(t, err, `unknown scenario "nope"`)
}

func TestStatePassesBetweenScenarios(t *testing.T) {
	var got string
	rep := &recordingReporter{}
	results, err := newRunner(t, newSession(), true, rep).Run(context.Background(), []Scenario{
		produce("create", tagKey, "AB12CD34"),
		consume("search", tagKey, &got),
	})
	require.NoError(t, err)
	assert.True(t, results.OK())
	assert.Equal(t, "AB12CD34", got)
	assert.Equal(t, 2, results.Count(Passed))
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", results.RunID.String())
	assert.False(t, results.Finished.Before(results.Started))
	assert.Equal(t, []string{
		"start create", "step create/produce passed", "finish create passed",
		"start search", "step search/consume passed", "finish search passed",
		"done",
	}, rep.events)
}

func TestFailFastSkipsTheRest(t *testing.T) {
	var got string
	session := newSession()
	session.page.url = "http://snipeit.test/hardware/create"

	results, err := newRunner(t, session, true, nil).Run(context.Background(), []Scenario{
		produce("login", "user", "admin"),
		failing("create"),
		consume("search", "user", &got),
	})
	require.NoError(t, err)
	assert.False(t, results.OK())

	create, _ := results.Lookup("create")
	assert.Equal(t, Failed, create.Outcome)
	assert.ErrorIs(t, create.Err, ErrAssertion)
	assert.Equal(t, "http://snipeit.test/hardware/create", create.URL)
	assert.Equal(t, "screenshots/create.png", create.Screenshot)
	assert.Equal(t, "boom", create.FailedStep())
	assert.Contains(t, create.Message(), "expected")

	search, _ := results.Lookup("search")
	assert.Equal(t, Skipped, search.Outcome)
	assert.ErrorIs(t, search.Err, ErrSkipped)
	assert.Contains(t, search.Message(), `upstream scenario "create" failed`)
	assert.Empty(t, got, "skipped scenario never ran")
	assert.Equal(t, []string{"create"}, session.captures)
}

func TestMissingOutputSkipsConsumers(t *testing.T) {
	var got string
	lazy := Scenario{Name: "create", Produces: []Key{tagKey}, Steps: []Step{{Name: "forget", Run: func(*T) {}}}}

	session := newSession()
	results, err := newRunner(t, session, false, nil).Run(context.Background(), []Scenario{
		lazy,
		consume("search", tagKey, &got),
	})
	require.NoError(t, err)

	create, _ := results.Lookup("create")
	assert.Equal(t, Failed, create.Outcome)
	assert.ErrorContains(t, create.Err, "without producing")

	search, _ := results.Lookup("search")
	assert.Equal(t, Skipped, search.Outcome)
	var pe *PreconditionError
	require.ErrorAs(t, search.Err, &pe)
	assert.Equal(t, []Key{tagKey}, pe.Missing)
	assert.ErrorIs(t, search.Err, ErrPrecondition)
	assert.Empty(t, search.Screenshot)
	assert.Empty(t, search.URL)
	assert.Empty(t, got)

	assert.Equal(t, []string{"create"}, session.captures, "only the failed scenario is captured")
	assert.Equal(t, 1, results.Count(Failed))
	assert.Equal(t, 1, results.Count(Skipped))
}

func TestEmptyStringIsNotProduced(t *testing.T) {
	var got string
	results, err := newRunner(t, newSession(), true, nil).Run(context.Background(), []Scenario{
		produce("create", tagKey, ""),
		consume("search", tagKey, &got),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, results.Count(Failed))
	assert.Equal(t, 1, results.Count(Skipped))
}

func TestIsolation(t *testing.T) {
	session := newSession()
	step := []Step{{Name: "noop", Run: func(*T) {}}}
	_, err := newRunner(t, session, true, nil).Run(context.Background(), []Scenario{
		{Name: "login", Isolation: Isolated, Steps: step},
		{Name: "dashboard", Steps: step},
		{Name: "logout", Isolation: Isolated, Steps: step},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, session.resets)

	session = newSession()
	session.resetErr = errors.New("context closed")
	results, err := newRunner(t, session, true, nil).Run(context.Background(), []Scenario{
		{Name: "login", Isolation: Isolated, Steps: step},
	})
	require.NoError(t, err)
	login, _ := results.Lookup("login")
	assert.ErrorContains(t, login.Err, "context closed")
}

func TestMustKeepsDriverErrorType(t *testing.T) {
	results, err := newRunner(t, newSession(), true, nil).Run(context.Background(), []Scenario{{
		Name: "create",
		Steps: []Step{{Name: "fill tag", Run: func(t *T) {
			t.Must(&browser.ElementNotFoundError{Name: "asset.tag", Selectors: []string{"#asset_tag"}})
			t.Errorf("not reached")
		}}},
	}})
	require.NoError(t, err)
	create, _ := results.Lookup("create")
	assert.ErrorIs(t, create.Err, browser.ErrElementNotFound)
	assert.NotErrorIs(t, create.Err, ErrAssertion)
}

func TestMustKeepsEarlierAssertions(t *testing.T) {
	results, err := newRunner(t, newSession(), true, nil).Run(context.Background(), []Scenario{{
		Name: "details",
		Steps: []Step{{Name: "read", Run: func(t *T) {
			assert.Equal(t, "Ready to Deploy", "Pending")
			t.Must(&browser.ElementNotFoundError{Name: "details.serial", Selectors: []string{"#serial"}})
		}}},
	}})
	require.NoError(t, err)
	details, _ := results.Lookup("details")
	assert.ErrorIs(t, details.Err, browser.ErrElementNotFound)
	assert.ErrorIs(t, details.Err, ErrAssertion)
	var ae *AssertionError
	require.ErrorAs(t, details.Err, &ae)
	require.Len(t, ae.Messages, 1)
	assert.Contains(t, ae.Messages[0], "Ready to Deploy")
	assert.Contains(t, details.Message(), "details.serial")
}

func TestAssertContinuesRequireStops(t *testing.T) {
	reached := false
	results, err := newRunner(t, newSession(), true, nil).Run(context.Background(), []Scenario{{
		Name: "details",
		Steps: []Step{{Name: "check", Run: func(t *T) {
			assert.Equal(t, "Ready to Deploy", "Pending")
			assert.Equal(t, "AB12CD34", "XX")
			reached = true
		}}},
	}})
	require.NoError(t, err)
	assert.True(t, reached)
	details, _ := results.Lookup("details")
	var ae *AssertionError
	require.ErrorAs(t, details.Err, &ae)
	assert.Len(t, ae.Messages, 2)
	assert.Equal(t, "check", ae.Step)
}

func TestPanicBecomesFailure(t *testing.T) {
	results, err := newRunner(t, newSession(), true, nil).Run(context.Background(), []Scenario{{
		Name:  "explode",
		Steps: []Step{{Name: "nil map", Run: func(*T) { panic("kaboom") }}},
	}})
	require.NoError(t, err)
	res, _ := results.Lookup("explode")
	assert.Equal(t, Failed, res.Outcome)
	assert.ErrorContains(t, res.Err, "kaboom")
}

func TestCancelledContextSkipsEverything(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := newRunner(t, newSession(), true, nil).Run(ctx, []Scenario{
		produce("a", "x", "1"),
		produce("b", "y", "2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, results.Count(Skipped))
	a, _ := results.Lookup("a")
	assert.Contains(t, a.Message(), "cancelled")
}

func TestStepsSeeRunContextAndPage(t *testing.T) {
	session := newSession()
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")

	var seen string
	var page browser.Page
	_, err := newRunner(t, session, true, nil).Run(ctx, []Scenario{{
		Name: "inspect",
		Steps: []Step{{Name: "look", Run: func(t *T) {
			seen, _ = t.Context().Value(ctxKey{}).(string)
			page = t.Page()
			assert.Equal(t, "inspect/look", t.Name())
		}}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "marker", seen)
	assert.Same(t, session.page, page)
}

func TestStateHelpers(t *testing.T) {
	s := NewState()
	s.Set("count", 3)
	s.Set("tag", "AB12CD34")

	n, ok := Value[int](s, "count")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	_, ok = Value[string](s, "count")
	assert.False(t, ok)
	assert.Equal(t, "3", s.String("count"))
	assert.Equal(t, []Key{"count", "tag"}, s.Keys())
	assert.False(t, s.Has("missing"))
}

func TestResultDuration(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &Results{Started: start, Finished: start.Add(90 * time.Second)}
	assert.Equal(t, 90*time.Second, r.Duration())
}
