// Package dashboard owns run state for the test dashboard. It launches
// sessions, consumes their events on the UI loop and exposes the user actions.
// Rendering is delegated to a Presenter.
package dashboard

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Morrolan/testr/internal/config"
	"github.com/Morrolan/testr/internal/engine"
	"github.com/Morrolan/testr/internal/errors"
	"github.com/Morrolan/testr/internal/events"
)

const (
	msgRunActive      = "A run is already active; ignoring new request."
	msgNoActiveRun    = "No active run to stop."
	msgNothingToRerun = "No failed tests to rerun."
	msgNoSelection    = "No failure row selected; rerunning all failures instead."
	msgStopRequested  = "Stop requested; attempting to cancel current run…"
	msgStoppedSummary = "Run stopped by user."

	// StopModalTitle and StopModalBody make up the stop acknowledgment.
	StopModalTitle = "Test run stopped by user."
	StopModalBody  = "The current go test run was halted. You can start a new run anytime."

	detailRule = 40
)

// Phase is the run lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCollecting
	PhaseRunning
	PhaseFinishing
	PhaseStopping
)

func (p Phase) String() string {
	switch p {
	case PhaseCollecting:
		return "collecting"
	case PhaseRunning:
		return "running"
	case PhaseFinishing:
		return "finishing"
	case PhaseStopping:
		return "stopping"
	default:
		return "idle"
	}
}

var titleCaser = cases.Title(language.English)

// Label is the phase name for display.
func (p Phase) Label() string {
	return titleCaser.String(p.String())
}

// Presenter renders controller output. All calls happen on the UI loop.
type Presenter interface {
	WriteLine(line string)
	ClearLog()
	SetProgress(total *int, completed int)
	SetSummary(s Summary)
	ReplaceFailureRows(rows []FailureRow)
	ShowDetails(lines []string)
	ShowModal(title string, body []string)
}

// Options configures a Controller.
type Options struct {
	Config config.RunConfig
	Engine engine.Engine
	Log    logrus.FieldLogger
	Clock  func() time.Time
}

// Controller is the run state machine. Every method must be called from the
// UI loop; the worker goroutine only reaches it through the event queue.
type Controller struct {
	cfg    config.RunConfig
	engine engine.Engine
	view   Presenter
	log    logrus.FieldLogger
	clock  func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	phase       Phase
	gen         int
	queue       *events.Queue
	stop        *atomic.Bool
	workerAlive bool

	total      *int
	completed  int
	counts     map[events.Outcome]int
	failures   registry
	lastFailed []string
	selected   []string
	startedAt  time.Time

	rows        []FailureRow
	selectedKey string
}

// New returns an idle controller rendering into view.
func New(opts Options, view Presenter) *Controller {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	eng := opts.Engine
	if eng == nil {
		eng = &engine.GoTest{Log: log.WithField("component", "engine")}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		cfg:      opts.Config.Clone(),
		engine:   eng,
		view:     view,
		log:      log,
		clock:    clock,
		ctx:      ctx,
		cancel:   cancel,
		stop:     &atomic.Bool{},
		counts:   map[events.Outcome]int{},
		failures: newRegistry(),
	}
}

// Init starts the first full run.
func (c *Controller) Init() tea.Cmd {
	c.view.SetSummary(c.summary("Waiting to collect tests…"))
	return c.StartRun(false)
}

// Phase returns the current lifecycle state.
func (c *Controller) Phase() Phase { return c.phase }

// Config returns the run configuration.
func (c *Controller) Config() config.RunConfig { return c.cfg.Clone() }

// Active reports whether a run is in progress or its worker has not exited.
func (c *Controller) Active() bool {
	return c.phase != PhaseIdle || c.workerAlive
}

// State returns a copy of the run state.
func (c *Controller) State() RunState {
	var total *int
	if c.total != nil {
		n := *c.total
		total = &n
	}
	counts := make(map[events.Outcome]int, len(c.counts))
	for k, v := range c.counts {
		counts[k] = v
	}
	return RunState{
		Total:      total,
		Completed:  c.completed,
		Counts:     counts,
		Failures:   c.failures.list(),
		LastFailed: slices.Clone(c.lastFailed),
		Selected:   slices.Clone(c.selected),
		StartedAt:  c.startedAt,
	}
}

// Summary returns the current summary with an optional extra annotation.
func (c *Controller) Summary(extra string) Summary {
	return c.summary(extra)
}

// StartRun launches a full run, or a rerun of the remembered failures when
// failedOnly is set. It is rejected while another run is active.
func (c *Controller) StartRun(failedOnly bool) tea.Cmd {
	if c.Active() {
		c.log.Warn("run requested while another is active")
		c.view.WriteLine(msgRunActive)
		return nil
	}

	var targets []string
	if failedOnly {
		targets = slices.Clone(c.lastFailed)
	} else {
		c.lastFailed = nil
	}
	c.failures.clear()
	c.rows = nil
	c.selectedKey = ""
	c.selected = nil
	c.completed = 0
	c.total = nil
	c.counts = map[events.Outcome]int{}

	c.view.ClearLog()
	c.view.ReplaceFailureRows(nil)
	c.view.ShowDetails(nil)
	c.view.SetProgress(nil, 0)
	label := "full suite"
	if failedOnly {
		label = "failed tests"
	}
	c.view.WriteLine(fmt.Sprintf("Starting %s run…", label))
	c.startedAt = c.clock()
	c.view.SetSummary(c.summary("Collecting tests…"))

	c.gen++
	c.queue = events.NewQueue()
	c.stop = &atomic.Bool{}
	c.phase = PhaseCollecting
	c.workerAlive = true

	args := c.cfg.BuildArgs(targets)
	c.log.WithFields(logrus.Fields{"gen": c.gen, "args": strings.Join(args, " ")}).Info("starting run")

	return tea.Batch(
		workerCmd(c.ctx, c.gen, c.engine, args, c.queue, c.stop, c.log.WithField("gen", c.gen)),
		c.listen(),
	)
}

// RerunFailed reruns the failures of the most recent run.
func (c *Controller) RerunFailed() tea.Cmd {
	if len(c.lastFailed) == 0 {
		c.view.WriteLine(msgNothingToRerun)
		return nil
	}
	return c.StartRun(true)
}

// RerunSelected reruns the node ids of the selected failure row, falling back
// to all remembered failures when no row is selected.
func (c *Controller) RerunSelected() tea.Cmd {
	if len(c.selected) == 0 {
		c.view.WriteLine(msgNoSelection)
		return c.RerunFailed()
	}
	if c.Active() {
		c.view.WriteLine(msgRunActive)
		return nil
	}
	c.lastFailed = slices.Clone(c.selected)
	return c.StartRun(true)
}

// RerunAll starts a full run.
func (c *Controller) RerunAll() tea.Cmd {
	return c.StartRun(false)
}

// Stop requests cancellation of the active run. The worker observes the flag
// at its next checkpoint; the UI finishes immediately.
func (c *Controller) Stop() tea.Cmd {
	if c.phase != PhaseCollecting && c.phase != PhaseRunning {
		c.view.WriteLine(msgNoActiveRun)
		return nil
	}

	c.stop.Store(true)
	dropped := c.queue.Purge()
	c.log.WithFields(logrus.Fields{"gen": c.gen, "dropped": dropped}).Info("stop requested")
	c.view.WriteLine(msgStopRequested)
	c.view.SetSummary(c.summary("Stopping run…"))
	c.queue.Put(events.SessionFinished{Status: events.StatusStopped()})
	c.phase = PhaseStopping
	c.view.ShowModal(StopModalTitle, []string{StopModalBody})
	return nil
}

// Select makes the failure row with key the current selection.
func (c *Controller) Select(key string) {
	c.selectedKey = key
	c.selected = nil
	for _, row := range c.rows {
		if row.Key == key {
			c.selected = slices.Clone(row.NodeIDs)
			break
		}
	}
	c.view.ShowDetails(c.details(c.selected))
}

// RerunCommand returns a go test command line for the selected row, or for
// the whole configuration when nothing is selected. Selections spanning
// packages chain one command per package with &&.
func (c *Controller) RerunCommand() (string, error) {
	lines, err := engine.CommandLines(c.cfg.BuildArgs(c.selected))
	if err != nil {
		return "", errors.WithStackTrace(err)
	}
	cmds := make([]string, 0, len(lines))
	for _, args := range lines {
		words := []string{"go"}
		for _, arg := range args {
			if arg != "-json" {
				words = append(words, arg)
			}
		}
		cmds = append(cmds, shellquote.Join(words...))
	}
	return strings.Join(cmds, " && "), nil
}

// Shutdown cancels any running session.
func (c *Controller) Shutdown() {
	c.stop.Store(true)
	c.cancel()
}

// Update handles controller messages and ignores everything else.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case EventMsg:
		return c.consume(msg)
	case WorkerDoneMsg:
		if msg.Gen == c.gen {
			c.workerAlive = false
		}
		c.log.WithFields(logrus.Fields{"gen": msg.Gen, "status": msg.Status.String()}).Debug("worker exited")
	case consumerStoppedMsg:
		c.log.WithField("gen", msg.gen).Debug("consumer stopped")
	}
	return nil
}

func (c *Controller) listen() tea.Cmd {
	return listenQueue(c.ctx, c.gen, c.queue)
}

// consume applies one event and re-arms the consumer until the session
// finishes.
func (c *Controller) consume(msg EventMsg) tea.Cmd {
	if msg.Gen != c.gen {
		c.log.WithField("gen", msg.Gen).Debug("dropping event from a previous run")
		return nil
	}

	finished := c.applySafely(msg.Event)
	if finished {
		return nil
	}
	return c.listen()
}

func (c *Controller) applySafely(ev events.Event) (finished bool) {
	defer errors.Recover(func(cause error) {
		c.log.Error(errors.PrintErrorWithStackTrace(cause))
		finished = false
	})
	return c.apply(ev)
}

// apply mutates run state for ev and reports whether the session finished.
func (c *Controller) apply(ev events.Event) bool {
	if c.phase == PhaseStopping {
		if _, ok := ev.(events.SessionFinished); !ok {
			return false
		}
	}

	switch ev := ev.(type) {
	case events.Collected:
		total := ev.Total
		c.total = &total
		c.phase = PhaseRunning
		c.view.SetProgress(c.total, 0)
		c.view.SetSummary(c.summary("Collected tests, running…"))
		c.view.WriteLine(fmt.Sprintf("Collected %d tests.", total))
	case events.CollectStart:
	case events.TestStarted:
		c.view.WriteLine("▶ " + ev.NodeID)
	case events.TestResult:
		c.applyResult(ev)
	case events.CollectError:
		nodeID := ev.NodeID
		if nodeID == "" {
			nodeID = "collection"
		}
		c.view.WriteLine("[!] Collection error in " + nodeID)
		c.failures.put(Failure{NodeID: nodeID, Outcome: events.OutcomeFailed, Detail: ev.Detail})
		c.lastFailed = c.failures.keys()
		c.refreshFailures()
	case events.ArgsEcho:
		c.view.WriteLine("go test " + strings.Join(ev.Args, " "))
	case events.SessionFinished:
		c.finish(ev.Status)
		return true
	default:
		c.log.Debugf("ignoring unknown event %T", ev)
	}
	return false
}

func (c *Controller) applyResult(ev events.TestResult) {
	// completed never passes a known total
	if c.total != nil && c.completed >= *c.total {
		c.log.WithFields(logrus.Fields{"node": ev.NodeID, "total": *c.total}).Warn("result beyond collected total")
	} else {
		c.completed++
	}
	c.counts[ev.Outcome]++
	c.view.SetProgress(c.total, c.completed)
	ms := float64(ev.Duration) / float64(time.Millisecond)
	c.view.WriteLine(fmt.Sprintf("%s [%s] (%.1f ms)", ev.NodeID, ev.Outcome, ms))

	if ev.Outcome.IsFailure() {
		c.failures.put(Failure{
			NodeID:   ev.NodeID,
			Outcome:  ev.Outcome,
			Detail:   ev.Detail,
			Duration: ev.Duration,
			Location: ev.Location,
		})
		c.lastFailed = c.failures.keys()
		c.refreshFailures()
	}
	c.view.SetSummary(c.summary(""))
}

func (c *Controller) finish(status events.SessionStatus) {
	c.phase = PhaseFinishing
	if c.failures.len() == 0 {
		c.lastFailed = nil
	}

	text := msgStoppedSummary
	if code, ok := status.Code(); ok {
		text = fmt.Sprintf("Run complete (exit status %d).", code)
	}
	c.view.SetSummary(c.summary(text))
	c.view.WriteLine(text)
	c.queue.Close()
	c.phase = PhaseIdle
	c.log.WithFields(logrus.Fields{"gen": c.gen, "status": status.String()}).Info("run finished")
}

// refreshFailures regroups the registry, keeping the selected row when it
// still exists.
func (c *Controller) refreshFailures() {
	c.rows = GroupFailures(c.failures.keys())
	c.view.ReplaceFailureRows(c.rows)
	if len(c.rows) == 0 {
		return
	}
	key := c.rows[0].Key
	for _, row := range c.rows {
		if row.Key == c.selectedKey {
			key = row.Key
			break
		}
	}
	c.Select(key)
}

func (c *Controller) details(nodeIDs []string) []string {
	if len(nodeIDs) == 0 {
		return []string{"No details available for this row."}
	}
	var lines []string
	for _, nodeID := range nodeIDs {
		lines = append(lines, nodeID)
		if f, ok := c.failures.get(nodeID); ok && f.Detail != "" {
			lines = append(lines, strings.Split(f.Detail, "\n")...)
		} else {
			lines = append(lines, "No traceback recorded.")
		}
		lines = append(lines, strings.Repeat("-", detailRule))
	}
	return lines
}

func (c *Controller) summary(extra string) Summary {
	return summarize(RunState{
		Total:     c.total,
		Completed: c.completed,
		Counts:    c.counts,
		StartedAt: c.startedAt,
	}, c.clock(), extra)
}
