package run

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
	"github.com/Morrolan/testr/internal/dashboard"
	"github.com/Morrolan/testr/internal/engine"
)

type outcome struct {
	nodeID string
	result string
	detail string
}

// fakeEngine plays back a fixed session and records the args of each run.
type fakeEngine struct {
	mu       sync.Mutex
	calls    [][]string
	outcomes []outcome
}

func (e *fakeEngine) Main(_ context.Context, args []string, hooks engine.Hooks) engine.ExitStatus {
	e.mu.Lock()
	e.calls = append(e.calls, args)
	e.mu.Unlock()

	hooks.CollectionFinish(len(e.outcomes))
	status := engine.OK
	for _, o := range e.outcomes {
		pkg, _, _ := strings.Cut(o.nodeID, engine.NodeSeparator)
		hooks.LogStart(o.nodeID, engine.Location{File: pkg})
		if err := hooks.Setup(o.nodeID); err != nil {
			status = engine.Interrupted
			break
		}
		if o.result != "passed" && o.result != "skipped" {
			status = engine.TestsFailed
		}
		err := hooks.LogReport(&engine.Report{
			NodeID:       o.nodeID,
			When:         engine.PhaseCall,
			Outcome:      o.result,
			Duration:     12 * time.Millisecond,
			LongReprText: o.detail,
		})
		if err != nil {
			status = engine.Interrupted
			break
		}
	}
	hooks.SessionFinish(status)
	return status
}

func (e *fakeEngine) lastCall() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.calls) == 0 {
		return nil
	}
	return e.calls[len(e.calls)-1]
}

func sampleEngine() *fakeEngine {
	return &fakeEngine{outcomes: []outcome{
		{nodeID: "example.com/a::TestAlpha", result: "passed"},
		{nodeID: "example.com/a::TestBeta", result: "failed", detail: "beta_test.go:12: want 1, got 2"},
		{nodeID: "example.com/b::TestGamma", result: "error", detail: "panic: boom"},
	}}
}

func newTestModel(t *testing.T, eng engine.Engine) *Model {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)
	m := New(dashboard.Options{
		Config: config.New(nil, "", "", nil),
		Engine: eng,
		Log:    log,
	})
	t.Cleanup(m.ctrl.Shutdown)
	return m
}

// drive runs cmd and everything it leads to through the model, stopping at
// timer commands so the chain settles.
func drive(t *testing.T, m *Model, cmd tea.Cmd) {
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
		_, follow := m.Update(msg)
		pending = append(pending, follow)
	}
}

func press(m *Model, k string) tea.Cmd {
	_, cmd := m.Update(keyMsg(k))
	return cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "ctrl+q":
		return tea.KeyMsg{Type: tea.KeyCtrlQ}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}
