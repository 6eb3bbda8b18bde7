package plugin

import (
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Morrolan/testr/internal/engine"
	"github.com/Morrolan/testr/internal/events"
)

func newTestPlugin(stop *atomic.Bool) (*Plugin, *[]events.Event) {
	var got []events.Event
	log := logrus.New()
	log.SetOutput(io.Discard)
	p := New(func(ev events.Event) { got = append(got, ev) }, stop, log)
	return p, &got
}

func kinds(evs []events.Event) []string {
	out := make([]string, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Kind())
	}
	return out
}

func TestHookSequenceProducesEventSequence(t *testing.T) {
	t.Parallel()

	p, got := newTestPlugin(nil)

	p.CollectionFinish(3)
	p.CollectReport(engine.CollectReport{Failed: true, NodeID: "example.com/broken", LongReprText: "syntax error"})
	p.LogStart("example.com/a::TestOne", engine.Location{File: "example.com/a", Name: "TestOne"})
	require.NoError(t, p.LogReport(&engine.Report{
		NodeID:       "example.com/a::TestOne",
		When:         engine.PhaseCall,
		Outcome:      "failed",
		Duration:     120 * time.Millisecond,
		LongReprText: "want 1, got 2",
	}))
	p.SessionFinish(engine.TestsFailed)

	assert.Equal(t, []string{"collected", "collect_error", "start", "result", "finished"}, kinds(*got))
	assert.Equal(t, events.Collected{Total: 3}, (*got)[0])
	assert.Equal(t, events.CollectError{NodeID: "example.com/broken", Detail: "syntax error"}, (*got)[1])

	result := (*got)[3].(events.TestResult)
	assert.Equal(t, events.OutcomeFailed, result.Outcome)
	assert.Equal(t, "want 1, got 2", result.Detail)
	assert.Equal(t, 120*time.Millisecond, result.Duration)

	finished := (*got)[4].(events.SessionFinished)
	code, ok := finished.Status.Code()
	assert.True(t, ok)
	assert.Equal(t, 1, code)
}

func TestCollectReportUsesPathWithoutNodeID(t *testing.T) {
	t.Parallel()

	p, got := newTestPlugin(nil)
	p.CollectReport(engine.CollectReport{Failed: true, Path: "pkg/dir"})
	p.CollectReport(engine.CollectReport{Failed: false, NodeID: "pkg/ok"})

	require.Len(t, *got, 1)
	assert.Equal(t, "pkg/dir", (*got)[0].(events.CollectError).NodeID)
}

func TestPassingResultCarriesNoDetail(t *testing.T) {
	t.Parallel()

	p, got := newTestPlugin(nil)
	require.NoError(t, p.LogReport(&engine.Report{NodeID: "a::T", When: engine.PhaseCall, Outcome: "passed", LongReprText: "noise"}))

	require.Len(t, *got, 1)
	assert.Empty(t, (*got)[0].(events.TestResult).Detail)
}

func TestNonCallPhasesAndNilReportsAreIgnored(t *testing.T) {
	t.Parallel()

	p, got := newTestPlugin(nil)
	require.NoError(t, p.LogReport(nil))
	require.NoError(t, p.LogReport(&engine.Report{NodeID: "a::T", When: engine.PhaseSetup, Outcome: "failed"}))
	require.NoError(t, p.LogReport(&engine.Report{NodeID: "a::T", When: engine.PhaseTeardown, Outcome: "passed"}))
	require.NoError(t, p.LogReport(&engine.Report{NodeID: "a::T", When: engine.PhaseCall, Outcome: "xpassed"}))

	assert.Empty(t, *got)
}

func TestStopFlagAbortsBeforeSetup(t *testing.T) {
	t.Parallel()

	stop := &atomic.Bool{}
	p, got := newTestPlugin(stop)

	require.NoError(t, p.Setup("a::T"))
	stop.Store(true)
	require.ErrorIs(t, p.Setup("a::T"), engine.ErrSessionAborted)
	assert.Empty(t, *got)
}

func TestStopFlagForcesSkippedResult(t *testing.T) {
	t.Parallel()

	stop := &atomic.Bool{}
	stop.Store(true)
	p, got := newTestPlugin(stop)

	err := p.LogReport(&engine.Report{NodeID: "a::T", When: engine.PhaseCall, Outcome: "failed", Duration: time.Second, LongReprText: "boom"})
	require.ErrorIs(t, err, engine.ErrSessionAborted)

	require.Len(t, *got, 1)
	result := (*got)[0].(events.TestResult)
	assert.Equal(t, events.OutcomeSkipped, result.Outcome)
	assert.Zero(t, result.Duration)
	assert.Equal(t, StoppedDetail, result.Detail)
}

func TestPanickingEmitDoesNotEscape(t *testing.T) {
	t.Parallel()

	log := logrus.New()
	log.SetOutput(io.Discard)
	p := New(func(events.Event) { panic("emit broke") }, nil, log)

	assert.NotPanics(t, func() {
		p.CollectionFinish(1)
		p.LogStart("a::T", engine.Location{})
		assert.NoError(t, p.LogReport(&engine.Report{NodeID: "a::T", When: engine.PhaseCall, Outcome: "passed"}))
		p.SessionFinish(engine.OK)
	})
}
