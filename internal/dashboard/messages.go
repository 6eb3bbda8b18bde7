package dashboard

import (
	"context"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/Morrolan/testr/internal/engine"
	"github.com/Morrolan/testr/internal/errors"
	"github.com/Morrolan/testr/internal/events"
	"github.com/Morrolan/testr/internal/plugin"
)

// EventMsg carries one lifecycle event into the UI loop.
type EventMsg struct {
	Gen   int
	Event events.Event
}

// WorkerDoneMsg reports that a run's worker goroutine has exited.
type WorkerDoneMsg struct {
	Gen    int
	Status engine.ExitStatus
}

// consumerStoppedMsg reports that a consumer gave up waiting on its queue.
type consumerStoppedMsg struct {
	gen int
}

// listenQueue waits for the next event of run gen.
func listenQueue(ctx context.Context, gen int, q *events.Queue) tea.Cmd {
	return func() tea.Msg {
		ev, ok := q.Next(ctx)
		if !ok {
			return consumerStoppedMsg{gen: gen}
		}
		return EventMsg{Gen: gen, Event: ev}
	}
}

// workerCmd runs one session to completion. It is the only code that
// touches the engine, and it reaches the UI loop only through q.
func workerCmd(ctx context.Context, gen int, eng engine.Engine, args []string, q *events.Queue, stop *atomic.Bool, log logrus.FieldLogger) tea.Cmd {
	return func() (msg tea.Msg) {
		emitter := events.NewEmitter(q)

		defer errors.Recover(func(cause error) {
			log.Error(errors.PrintErrorWithStackTrace(cause))
			emitter.Emit(events.SessionFinished{Status: events.ExitCode(int(engine.InternalError))})
			msg = WorkerDoneMsg{Gen: gen, Status: engine.InternalError}
		})

		emitter.Emit(events.ArgsEcho{Args: args})
		hooks := plugin.New(emitter.Emit, stop, log.WithField("component", "plugin"))
		status := eng.Main(ctx, args, hooks)
		return WorkerDoneMsg{Gen: gen, Status: status}
	}
}
