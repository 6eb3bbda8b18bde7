package dashboard

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/Morrolan/testr/internal/config"
	"github.com/Morrolan/testr/internal/engine"
)

// fakeView records everything the controller presents.
type fakeView struct {
	lines      []string
	summary    Summary
	rows       []FailureRow
	details    []string
	modalTitle string
	modalBody  []string
	progress   []int
	total      *int
	// panicOn makes WriteLine panic for lines with this prefix.
	panicOn string
}

func (v *fakeView) WriteLine(line string) {
	if v.panicOn != "" && strings.HasPrefix(line, v.panicOn) {
		panic("presenter broke on " + line)
	}
	v.lines = append(v.lines, line)
}

func (v *fakeView) ClearLog() { v.lines = nil }

func (v *fakeView) SetProgress(total *int, completed int) {
	v.total = total
	v.progress = append(v.progress, completed)
}

func (v *fakeView) SetSummary(s Summary) { v.summary = s }

func (v *fakeView) ReplaceFailureRows(rows []FailureRow) { v.rows = rows }

func (v *fakeView) ShowDetails(lines []string) { v.details = lines }

func (v *fakeView) ShowModal(title string, body []string) {
	v.modalTitle = title
	v.modalBody = body
}

// scriptEngine runs a scripted session and records the arguments of every
// session it was asked to run.
type scriptEngine struct {
	mu     sync.Mutex
	args   [][]string
	script func(hooks engine.Hooks) engine.ExitStatus
}

func (e *scriptEngine) Main(_ context.Context, args []string, hooks engine.Hooks) engine.ExitStatus {
	e.mu.Lock()
	e.args = append(e.args, args)
	script := e.script
	e.mu.Unlock()

	status := script(hooks)
	hooks.SessionFinish(status)
	return status
}

func (e *scriptEngine) lastArgs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.args[len(e.args)-1]
}

// result is one scripted test outcome.
type result struct {
	nodeID  string
	outcome string
	detail  string
	ms      int
}

func runScript(results ...result) func(engine.Hooks) engine.ExitStatus {
	return func(hooks engine.Hooks) engine.ExitStatus {
		hooks.CollectionFinish(len(results))
		status := engine.OK
		for _, r := range results {
			pkg, _, _ := strings.Cut(r.nodeID, engine.NodeSeparator)
			hooks.LogStart(r.nodeID, engine.Location{File: pkg})
			if err := hooks.Setup(r.nodeID); err != nil {
				return engine.Interrupted
			}
			if r.outcome == "failed" || r.outcome == "error" {
				status = engine.TestsFailed
			}
			err := hooks.LogReport(&engine.Report{
				NodeID:       r.nodeID,
				When:         engine.PhaseCall,
				Outcome:      r.outcome,
				Duration:     time.Duration(r.ms) * time.Millisecond,
				LongReprText: r.detail,
			})
			if err != nil {
				return engine.Interrupted
			}
		}
		return status
	}
}

// undercountHooks drops the collection count a script reports so a test can
// announce its own, smaller total.
type undercountHooks struct {
	engine.Hooks
}

func (undercountHooks) CollectionFinish(int) {}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestController(t *testing.T, eng engine.Engine) (*Controller, *fakeView) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)
	view := &fakeView{}
	c := New(Options{
		Config: config.New(nil, "", "", nil),
		Engine: eng,
		Log:    log,
		Clock:  func() time.Time { return fixedNow },
	}, view)
	t.Cleanup(c.Shutdown)
	return c, view
}

// drain executes cmd and every command it leads to, in order, feeding the
// resulting messages back into the controller. Batches run their commands
// first to last, so a worker finishes before its consumer starts reading.
func drain(t *testing.T, c *Controller, cmd tea.Cmd) {
	t.Helper()

	pending := []tea.Cmd{cmd}
	for steps := 0; len(pending) > 0; steps++ {
		require.Less(t, steps, 10000, "command chain did not settle")
		next := pending[0]
		pending = pending[1:]
		if next == nil {
			continue
		}
		msg := next()
		if batch, ok := msg.(tea.BatchMsg); ok {
			pending = append(pending, batch...)
			continue
		}
		pending = append(pending, c.Update(msg))
	}
}

// split returns the worker and consumer commands of a started run.
func split(t *testing.T, cmd tea.Cmd) (worker, consumer tea.Cmd) {
	t.Helper()

	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok, "expected a batch of worker and consumer")
	require.Len(t, batch, 2)
	return batch[0], batch[1]
}
