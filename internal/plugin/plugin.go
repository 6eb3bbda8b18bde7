// Package plugin adapts engine hooks into dashboard events.
package plugin

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/Morrolan/testr/internal/engine"
	"github.com/Morrolan/testr/internal/errors"
	"github.com/Morrolan/testr/internal/events"
)

// StoppedDetail is the detail attached to a result forced by a stop.
const StoppedDetail = "Stopped by user"

// Plugin implements engine.Hooks. Cancellation is advisory: the stop flag is
// only checked before a test body runs and after its call phase reports.
type Plugin struct {
	emit events.EmitFunc
	stop *atomic.Bool
	log  logrus.FieldLogger
}

var _ engine.Hooks = (*Plugin)(nil)

// New returns a plugin emitting through emit and watching stop. A nil stop
// flag never fires.
func New(emit events.EmitFunc, stop *atomic.Bool, log logrus.FieldLogger) *Plugin {
	if stop == nil {
		stop = &atomic.Bool{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Plugin{emit: emit, stop: stop, log: log}
}

func (p *Plugin) CollectionFinish(total int) {
	defer errors.Recover(p.onPanic("collection_finish"))
	p.emit(events.Collected{Total: total})
}

func (p *Plugin) CollectReport(report engine.CollectReport) {
	defer errors.Recover(p.onPanic("collect_report"))
	if !report.Failed {
		return
	}
	nodeID := report.NodeID
	if nodeID == "" {
		nodeID = report.Path
	}
	p.emit(events.CollectError{NodeID: nodeID, Detail: report.LongReprText})
}

func (p *Plugin) LogStart(nodeID string, loc engine.Location) {
	defer errors.Recover(p.onPanic("log_start"))
	p.emit(events.TestStarted{NodeID: nodeID, Location: location(loc)})
}

func (p *Plugin) Setup(string) error {
	if p.stop.Load() {
		return engine.ErrSessionAborted
	}
	return nil
}

func (p *Plugin) LogReport(report *engine.Report) error {
	defer errors.Recover(p.onPanic("log_report"))
	if report == nil || report.When != engine.PhaseCall {
		return nil
	}

	if p.stop.Load() {
		p.emit(events.TestResult{
			NodeID:   report.NodeID,
			Outcome:  events.OutcomeSkipped,
			Location: location(report.Location),
			Detail:   StoppedDetail,
		})
		return engine.ErrSessionAborted
	}

	outcome, ok := events.ParseOutcome(report.Outcome)
	if !ok {
		p.log.WithField("outcome", report.Outcome).Warnf("ignoring report for %s with unknown outcome", report.NodeID)
		return nil
	}
	result := events.TestResult{
		NodeID:   report.NodeID,
		Outcome:  outcome,
		Duration: report.Duration,
		Location: location(report.Location),
	}
	if outcome.IsFailure() {
		result.Detail = report.LongReprText
	}
	p.emit(result)
	return nil
}

func (p *Plugin) SessionFinish(status engine.ExitStatus) {
	defer errors.Recover(p.onPanic("session_finish"))
	p.emit(events.SessionFinished{Status: events.ExitCode(int(status))})
}

func (p *Plugin) onPanic(hook string) func(error) {
	return func(cause error) {
		p.log.WithField("hook", hook).Error(errors.PrintErrorWithStackTrace(cause))
	}
}

func location(loc engine.Location) events.Location {
	return events.Location{File: loc.File, Line: loc.Line, Name: loc.Name}
}
