package dashboard

import (
	"testing"
	"time"

	"github.com/google/shlex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Morrolan/testr/internal/config"
	"github.com/Morrolan/testr/internal/engine"
	"github.com/Morrolan/testr/internal/events"
)

const (
	idA = "example.com/a::TestA"
	idB = "example.com/a::TestB"
	idC = "example.com/c::TestC"
)

func mixedRun() func(engine.Hooks) engine.ExitStatus {
	return runScript(
		result{nodeID: idA, outcome: "passed", ms: 12},
		result{nodeID: idB, outcome: "failed", detail: "want 1, got 2"},
		result{nodeID: idC, outcome: "error", detail: "panic: boom"},
	)
}

func TestFullRunBuildsState(t *testing.T) {
	t.Parallel()

	eng := &scriptEngine{script: mixedRun()}
	c, view := newTestController(t, eng)

	drain(t, c, c.Init())

	assert.Equal(t, PhaseIdle, c.Phase())
	assert.False(t, c.Active())
	assert.Equal(t, []string{"./...", "-json", "-count=1"}, eng.lastArgs())

	st := c.State()
	require.NotNil(t, st.Total)
	assert.Equal(t, 3, *st.Total)
	assert.Equal(t, 3, st.Completed)
	assert.Equal(t, 1, st.Counts[events.OutcomePassed])
	assert.Equal(t, 1, st.Counts[events.OutcomeFailed])
	assert.Equal(t, 1, st.Counts[events.OutcomeError])
	assert.Equal(t, []string{idB, idC}, st.LastFailed)
	require.Len(t, st.Failures, 2)
	assert.Equal(t, "want 1, got 2", st.Failures[0].Detail)

	assert.Equal(t, []string{
		"Starting full suite run…",
		"go test ./... -json -count=1",
		"Collected 3 tests.",
		"▶ " + idA,
		idA + " [passed] (12.0 ms)",
		"▶ " + idB,
		idB + " [failed] (0.0 ms)",
		"▶ " + idC,
		idC + " [error] (0.0 ms)",
		"Run complete (exit status 1).",
	}, view.lines)
	assert.Equal(t, "Run complete (exit status 1).", view.summary.Extra)
	assert.Equal(t, 2, view.summary.Failed)
}

func TestCompletedCountIsMonotonic(t *testing.T) {
	t.Parallel()

	c, view := newTestController(t, &scriptEngine{script: mixedRun()})
	drain(t, c, c.Init())

	assert.Equal(t, []int{0, 0, 1, 2, 3}, view.progress)
	require.NotNil(t, view.total)
	assert.Equal(t, 3, *view.total)
}

func TestOnlyFailuresEnterRegistry(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t, &scriptEngine{script: runScript(
		result{nodeID: idA, outcome: "passed"},
		result{nodeID: idB, outcome: "skipped"},
	)})
	drain(t, c, c.Init())

	st := c.State()
	assert.Empty(t, st.Failures)
	assert.Empty(t, st.LastFailed)
}

func TestFailureRowsAndDetails(t *testing.T) {
	t.Parallel()

	c, view := newTestController(t, &scriptEngine{script: runScript(
		result{nodeID: idB, outcome: "failed", detail: "line one\nline two"},
		result{nodeID: idC, outcome: "failed"},
	)})
	drain(t, c, c.Init())

	require.Len(t, view.rows, 2)
	assert.Equal(t, "example.com/a :: TestB", view.rows[0].Group)
	assert.Equal(t, "example.com/c :: TestC", view.rows[1].Group)

	// First row is selected automatically.
	assert.Equal(t, []string{idB}, c.State().Selected)
	assert.Equal(t, []string{idB, "line one", "line two", "----------------------------------------"}, view.details)

	c.Select(view.rows[1].Key)
	assert.Equal(t, []string{idC}, c.State().Selected)
	assert.Equal(t, []string{idC, "No traceback recorded.", "----------------------------------------"}, view.details)

	c.Select("missing")
	assert.Empty(t, c.State().Selected)
	assert.Equal(t, []string{"No details available for this row."}, view.details)
}

func TestRerunFailedTargetsRememberedFailures(t *testing.T) {
	t.Parallel()

	eng := &scriptEngine{script: mixedRun()}
	c, view := newTestController(t, eng)
	drain(t, c, c.Init())

	eng.script = runScript(
		result{nodeID: idB, outcome: "passed"},
		result{nodeID: idC, outcome: "passed"},
	)
	drain(t, c, c.RerunFailed())

	assert.Equal(t, []string{idB, idC, "-json", "-count=1"}, eng.lastArgs())
	assert.Equal(t, "Starting failed tests run…", view.lines[0])
	assert.Empty(t, c.State().LastFailed, "a clean run leaves nothing to rerun")

	assert.Nil(t, c.RerunFailed())
	assert.Equal(t, msgNothingToRerun, view.lines[len(view.lines)-1])
}

func TestRerunSelectedRestrictsTargets(t *testing.T) {
	t.Parallel()

	eng := &scriptEngine{script: mixedRun()}
	c, view := newTestController(t, eng)
	drain(t, c, c.Init())

	c.Select(view.rows[1].Key)
	eng.script = runScript(result{nodeID: idC, outcome: "error", detail: "panic: boom"})
	drain(t, c, c.RerunSelected())

	assert.Equal(t, []string{idC, "-json", "-count=1"}, eng.lastArgs())
	assert.Equal(t, []string{idC}, c.State().LastFailed)
}

func TestRerunSelectedFallsBack(t *testing.T) {
	t.Parallel()

	c, view := newTestController(t, &scriptEngine{script: runScript(result{nodeID: idA, outcome: "passed"})})
	drain(t, c, c.Init())

	assert.Nil(t, c.RerunSelected())
	n := len(view.lines)
	assert.Equal(t, []string{msgNoSelection, msgNothingToRerun}, view.lines[n-2:])
}

func TestConcurrentRunIsRejected(t *testing.T) {
	t.Parallel()

	c, view := newTestController(t, &scriptEngine{script: mixedRun()})
	cmd := c.StartRun(false)
	require.NotNil(t, cmd)
	gen := c.gen
	before := c.State()

	assert.Nil(t, c.StartRun(false))
	assert.Nil(t, c.RerunAll())
	assert.Equal(t, msgRunActive, view.lines[len(view.lines)-1])
	assert.Equal(t, gen, c.gen)
	assert.Equal(t, before, c.State())
	assert.Equal(t, PhaseCollecting, c.Phase())
}

func TestStopWithoutRunIsIdempotent(t *testing.T) {
	t.Parallel()

	c, view := newTestController(t, &scriptEngine{script: mixedRun()})
	before := c.State()

	assert.Nil(t, c.Stop())
	assert.Nil(t, c.Stop())

	assert.Equal(t, []string{msgNoActiveRun, msgNoActiveRun}, view.lines)
	assert.Equal(t, before, c.State())
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Empty(t, view.modalTitle)
}

func TestStopFinishesRunAndWaitsForWorker(t *testing.T) {
	t.Parallel()

	eng := &scriptEngine{script: mixedRun()}
	c, view := newTestController(t, eng)
	worker, consumer := split(t, c.StartRun(false))

	assert.Nil(t, c.Stop())
	assert.Equal(t, PhaseStopping, c.Phase())
	assert.Equal(t, StopModalTitle, view.modalTitle)
	assert.Contains(t, view.lines, msgStopRequested)
	assert.Equal(t, "Stopping run…", view.summary.Extra)

	// A second stop while stopping reports no active run.
	assert.Nil(t, c.Stop())
	assert.Equal(t, msgNoActiveRun, view.lines[len(view.lines)-1])

	drain(t, c, consumer)
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Equal(t, msgStoppedSummary, view.summary.Extra)
	assert.True(t, c.Active(), "worker has not exited yet")
	assert.Nil(t, c.StartRun(false))

	// The worker sees the stop flag at its first checkpoint.
	msg := worker()
	done, ok := msg.(WorkerDoneMsg)
	require.True(t, ok)
	assert.Equal(t, engine.Interrupted, done.Status)
	c.Update(msg)
	assert.False(t, c.Active())
	assert.Zero(t, c.State().Completed)
}

func TestStoppingIgnoresLateEvents(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t, &scriptEngine{script: mixedRun()})
	split(t, c.StartRun(false))
	c.Stop()

	cmd := c.Update(EventMsg{Gen: c.gen, Event: events.TestResult{NodeID: idB, Outcome: events.OutcomeFailed}})
	assert.NotNil(t, cmd, "consumer keeps waiting for the finish event")
	assert.Zero(t, c.State().Completed)
	assert.Empty(t, c.State().Failures)
}

func TestStaleEventsAreDropped(t *testing.T) {
	t.Parallel()

	c, view := newTestController(t, &scriptEngine{script: mixedRun()})
	split(t, c.StartRun(false))
	lines := len(view.lines)

	assert.Nil(t, c.Update(EventMsg{Gen: c.gen - 1, Event: events.Collected{Total: 9}}))
	assert.Nil(t, c.State().Total)
	assert.Len(t, view.lines, lines)
}

func TestConsumerSurvivesBadEvents(t *testing.T) {
	t.Parallel()

	c, view := newTestController(t, &scriptEngine{script: mixedRun()})
	split(t, c.StartRun(false))

	assert.NotNil(t, c.Update(EventMsg{Gen: c.gen, Event: nil}), "unknown events are ignored")

	view.panicOn = "▶"
	assert.NotNil(t, c.Update(EventMsg{Gen: c.gen, Event: events.TestStarted{NodeID: idA}}))
	view.panicOn = ""

	c.Update(EventMsg{Gen: c.gen, Event: events.Collected{Total: 2}})
	assert.Equal(t, PhaseRunning, c.Phase())
	assert.Equal(t, "Collected 2 tests.", view.lines[len(view.lines)-1])
}

func TestCollectErrorIsRecordedAsFailure(t *testing.T) {
	t.Parallel()

	c, view := newTestController(t, &scriptEngine{script: func(hooks engine.Hooks) engine.ExitStatus {
		hooks.CollectReport(engine.CollectReport{Failed: true, NodeID: "example.com/broken", LongReprText: "syntax error"})
		hooks.CollectionFinish(0)
		return engine.TestsFailed
	}})
	drain(t, c, c.Init())

	assert.Contains(t, view.lines, "[!] Collection error in example.com/broken")
	st := c.State()
	require.Len(t, st.Failures, 1)
	assert.Equal(t, events.OutcomeFailed, st.Failures[0].Outcome)
	assert.Equal(t, []string{"example.com/broken"}, st.LastFailed)
	assert.Equal(t, "example.com/broken :: example.com/broken", view.rows[0].Group)
}

func TestRerunCommandForSelection(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t, &scriptEngine{script: runScript(result{nodeID: idB, outcome: "failed"})})
	drain(t, c, c.Init())

	cmd, err := c.RerunCommand()
	require.NoError(t, err)
	assert.Equal(t, `go test -run ^TestB\$ -count=1 example.com/a`, cmd)

	c.cfg = config.New(nil, "", "", []string{"-ldflags", "-X 'main.version=1 2'"})
	cmd, err = c.RerunCommand()
	require.NoError(t, err)
	words, err := shlex.Split(cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "test", "-run", "^TestB$", "-ldflags", "-X 'main.version=1 2'", "-count=1", "example.com/a"}, words)
}

func TestRerunCommandSpanningPackages(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t, &scriptEngine{script: mixedRun()})
	c.selected = []string{idB, idC}

	cmd, err := c.RerunCommand()
	require.NoError(t, err)
	assert.Equal(t, `go test -run ^TestB\$ -count=1 example.com/a && go test -run ^TestC\$ -count=1 example.com/c`, cmd)
}

func TestCompletedNeverExceedsTotal(t *testing.T) {
	t.Parallel()

	script := runScript(result{nodeID: idA, outcome: "passed"}, result{nodeID: idB, outcome: "failed"})
	c, view := newTestController(t, &scriptEngine{script: func(hooks engine.Hooks) engine.ExitStatus {
		hooks.CollectionFinish(1)
		return script(&undercountHooks{Hooks: hooks})
	}})
	drain(t, c, c.Init())

	require.NotNil(t, view.total)
	assert.Equal(t, 1, *view.total)
	for _, done := range view.progress {
		assert.LessOrEqual(t, done, 1)
	}
	st := c.Summary("")
	assert.Equal(t, 1, st.Completed)
	assert.Equal(t, 1, st.Passed)
	assert.Equal(t, 1, st.Failed)
}

func TestPhaseLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Running", PhaseRunning.Label())
	assert.Equal(t, "Idle", PhaseIdle.Label())
}

func TestWorkerPanicFinishesSession(t *testing.T) {
	t.Parallel()

	c, view := newTestController(t, &scriptEngine{script: func(engine.Hooks) engine.ExitStatus {
		panic("engine exploded")
	}})
	drain(t, c, c.Init())

	assert.False(t, c.Active())
	assert.Equal(t, "Run complete (exit status 3).", view.summary.Extra)
}

func TestSummaryDuringRunUsesClock(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t, &scriptEngine{script: mixedRun()})
	c.clock = func() time.Time { return fixedNow.Add(90 * time.Second) }
	c.startedAt = fixedNow
	assert.Equal(t, "1m30s", c.Summary("").Elapsed)
}
