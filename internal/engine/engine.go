// Package engine runs test sessions and reports their lifecycle through a
// narrow set of hooks.
package engine

import (
	"context"
	"strconv"
	"time"

	"github.com/Morrolan/testr/internal/errors"
)

// ExitStatus is the status a session finishes with.
type ExitStatus int

const (
	OK ExitStatus = iota
	TestsFailed
	Interrupted
	InternalError
	UsageError
	NoTestsCollected
)

func (s ExitStatus) String() string {
	switch s {
	case OK:
		return "ok"
	case TestsFailed:
		return "tests failed"
	case Interrupted:
		return "interrupted"
	case InternalError:
		return "internal error"
	case UsageError:
		return "usage error"
	case NoTestsCollected:
		return "no tests collected"
	default:
		return "status " + strconv.Itoa(int(s))
	}
}

// ErrSessionAborted is returned by a hook to end the session early. The
// session then finishes with Interrupted.
var ErrSessionAborted = errors.New("test session aborted")

// Phase is the part of a test a report describes.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseCall     Phase = "call"
	PhaseTeardown Phase = "teardown"
)

// Location points at the source of a test.
type Location struct {
	File string
	Line int
	Name string
}

// Report describes one finished phase of one test.
type Report struct {
	NodeID       string
	When         Phase
	Outcome      string
	Duration     time.Duration
	Location     Location
	LongReprText string
}

// Failed reports whether the outcome counts as a failure.
func (r *Report) Failed() bool {
	return r.Outcome == "failed" || r.Outcome == "error"
}

// CollectReport describes the collection of one target.
type CollectReport struct {
	Failed       bool
	NodeID       string
	Path         string
	LongReprText string
}

// Hooks receives session lifecycle callbacks. All calls for one session are
// made from a single goroutine, and SessionFinish is always the last one.
type Hooks interface {
	CollectionFinish(total int)
	CollectReport(report CollectReport)
	LogStart(nodeID string, loc Location)
	// Setup runs before a test body executes.
	Setup(nodeID string) error
	LogReport(report *Report) error
	SessionFinish(status ExitStatus)
}

// Engine runs one session over args, blocking until it finishes.
type Engine interface {
	Main(ctx context.Context, args []string, hooks Hooks) ExitStatus
}
