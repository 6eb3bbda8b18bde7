// Package events defines the lifecycle events a test session produces and the
// hand-off that carries them from the worker goroutine to the UI loop.
package events

import (
	"fmt"
	"strconv"
	"time"
)

// Outcome is the terminal classification of one executed test.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeError   Outcome = "error"
	OutcomeSkipped Outcome = "skipped"
)

// Outcomes lists every outcome in display order.
var Outcomes = []Outcome{OutcomePassed, OutcomeFailed, OutcomeError, OutcomeSkipped}

// ParseOutcome maps an engine outcome string onto an Outcome.
func ParseOutcome(s string) (Outcome, bool) {
	switch Outcome(s) {
	case OutcomePassed, OutcomeFailed, OutcomeError, OutcomeSkipped:
		return Outcome(s), true
	default:
		return "", false
	}
}

// IsFailure reports whether the outcome belongs in the failure registry.
func (o Outcome) IsFailure() bool {
	return o == OutcomeFailed || o == OutcomeError
}

// Location points at the source of a test.
type Location struct {
	File string
	Line int
	Name string
}

func (l Location) String() string {
	if l.Line > 0 {
		return fmt.Sprintf("%s:%d %s", l.File, l.Line, l.Name)
	}
	if l.Name == "" {
		return l.File
	}
	return l.File + " " + l.Name
}

// SessionStatus is either an engine exit code or the distinct "stopped"
// value used when the user cancels a run.
type SessionStatus struct {
	code    int
	stopped bool
}

// ExitCode wraps an engine exit code.
func ExitCode(code int) SessionStatus {
	return SessionStatus{code: code}
}

// StatusStopped is the status injected when a run is stopped by the user.
func StatusStopped() SessionStatus {
	return SessionStatus{stopped: true}
}

// Stopped reports whether this is the user-stop status.
func (s SessionStatus) Stopped() bool { return s.stopped }

// Code returns the exit code; ok is false for the stopped status.
func (s SessionStatus) Code() (code int, ok bool) {
	if s.stopped {
		return 0, false
	}
	return s.code, true
}

func (s SessionStatus) String() string {
	if s.stopped {
		return "stopped"
	}
	return strconv.Itoa(s.code)
}

// Event is a lifecycle event. The set of implementations is closed.
type Event interface {
	Kind() string
	isEvent()
}

// Collected reports how many tests the session will run.
type Collected struct {
	Total int
}

// CollectStart marks the beginning of collection.
type CollectStart struct{}

// TestStarted reports that a test began executing.
type TestStarted struct {
	NodeID   string
	Location Location
}

// TestResult reports a finished test. Detail is set only for failures, or
// when the result was forced by a stop.
type TestResult struct {
	NodeID   string
	Outcome  Outcome
	Duration time.Duration
	Location Location
	Detail   string
}

// CollectError reports a target that could not even be collected.
type CollectError struct {
	NodeID string
	Detail string
}

// ArgsEcho echoes the argument list the engine was started with.
type ArgsEcho struct {
	Args []string
}

// SessionFinished is always the last event of a session.
type SessionFinished struct {
	Status SessionStatus
}

func (Collected) Kind() string       { return "collected" }
func (CollectStart) Kind() string    { return "collect_start" }
func (TestStarted) Kind() string     { return "start" }
func (TestResult) Kind() string      { return "result" }
func (CollectError) Kind() string    { return "collect_error" }
func (ArgsEcho) Kind() string        { return "args" }
func (SessionFinished) Kind() string { return "finished" }

func (Collected) isEvent()       {}
func (CollectStart) isEvent()    {}
func (TestStarted) isEvent()     {}
func (TestResult) isEvent()      {}
func (CollectError) isEvent()    {}
func (ArgsEcho) isEvent()        {}
func (SessionFinished) isEvent() {}
