package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Morrolan/testr/internal/errors"
)

// EnvGoBinary overrides the go binary used by GoTest.
const EnvGoBinary = "TESTR_GO"

const waitDelay = 2 * time.Second

// test2json actions.
const (
	actionRun         = "run"
	actionPass        = "pass"
	actionFail        = "fail"
	actionSkip        = "skip"
	actionOutput      = "output"
	actionBuildOutput = "build-output"
)

var listedName = regexp.MustCompile(`^(Test|Example|Fuzz)\w*$`)

// testEvent is one line of `go test -json` output.
type testEvent struct {
	Time        time.Time
	Action      string
	Package     string
	Test        string
	Elapsed     float64
	Output      string
	ImportPath  string
	FailedBuild string
}

// GoTest runs sessions with `go test -json`: a list phase counts the tests
// that will run, then a run phase streams their results.
type GoTest struct {
	Binary string
	Dir    string
	Env    []string
	Log    logrus.FieldLogger
}

var _ Engine = (*GoTest)(nil)

var execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}

// Main runs one session. SessionFinish is always called before it returns.
func (g *GoTest) Main(ctx context.Context, args []string, hooks Hooks) (status ExitStatus) {
	log := g.logger()
	defer func() {
		hooks.SessionFinish(status)
		log.WithField("status", status.String()).Debug("session finished")
	}()

	p, err := parseArgs(args)
	if err != nil {
		log.WithError(err).Warn("invalid go test arguments")
		return UsageError
	}
	for _, w := range p.warnings {
		log.Warn(w)
	}

	total, collectFailed := 0, false
	for _, ps := range p.passes {
		n, failed, err := g.list(ctx, p, ps, hooks)
		switch {
		case ctx.Err() != nil:
			return Interrupted
		case err != nil:
			log.Error(errors.PrintErrorWithStackTrace(err))
			hooks.CollectReport(CollectReport{
				Failed:       true,
				NodeID:       strings.Join(ps.packages, " "),
				LongReprText: err.Error(),
			})
			return InternalError
		}
		total += n
		collectFailed = collectFailed || failed
	}
	hooks.CollectionFinish(total)
	if total == 0 {
		if collectFailed {
			return TestsFailed
		}
		return NoTestsCollected
	}

	status = OK
	for _, ps := range p.passes {
		passStatus, err := g.run(ctx, p, ps, hooks)
		if err != nil {
			log.Error(errors.PrintErrorWithStackTrace(err))
		}
		switch passStatus {
		case OK:
		case TestsFailed:
			status = TestsFailed
		default:
			return passStatus
		}
	}
	if status == OK && collectFailed {
		status = TestsFailed
	}
	return status
}

func (g *GoTest) binary() string {
	if g.Binary != "" {
		return g.Binary
	}
	if env := os.Getenv(EnvGoBinary); env != "" {
		return env
	}
	return "go"
}

func (g *GoTest) logger() logrus.FieldLogger {
	if g.Log != nil {
		return g.Log
	}
	return logrus.StandardLogger()
}

func (g *GoTest) command(ctx context.Context, args []string) *exec.Cmd {
	cmd := execCommandContext(ctx, g.binary(), args...)
	cmd.Dir = g.Dir
	if len(g.Env) > 0 {
		cmd.Env = append(os.Environ(), g.Env...)
	}
	cmd.WaitDelay = waitDelay
	return cmd
}

// list counts the tests one pass will execute and reports packages that fail
// to build.
func (g *GoTest) list(ctx context.Context, p plan, ps pass, hooks Hooks) (total int, failed bool, err error) {
	args := p.listArgs(ps)
	g.logger().WithField("args", strings.Join(args, " ")).Debug("listing tests")

	cmd := g.command(ctx, args)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	buildOutput := map[string]*strings.Builder{}
	pkgOutput := map[string]*strings.Builder{}
	appendTo := func(m map[string]*strings.Builder, key, text string) {
		b, ok := m[key]
		if !ok {
			b = &strings.Builder{}
			m[key] = b
		}
		b.WriteString(text)
	}

	events := 0
	err = decodeEvents(&stdout, func(ev testEvent) error {
		events++
		switch ev.Action {
		case actionBuildOutput:
			appendTo(buildOutput, importPath(ev.ImportPath), ev.Output)
		case actionOutput:
			if name := strings.TrimSpace(ev.Output); listedName.MatchString(name) {
				if !p.skips(name) {
					total++
				}
				return nil
			}
			appendTo(pkgOutput, ev.Package, ev.Output)
		case actionFail:
			if ev.Test != "" {
				return nil
			}
			failed = true
			text := ""
			if b, ok := buildOutput[importPath(ev.FailedBuild)]; ok {
				text = b.String()
			} else if b, ok := pkgOutput[ev.Package]; ok {
				text = b.String()
			}
			if strings.TrimSpace(text) == "" {
				text = stderr.String()
			}
			hooks.CollectReport(CollectReport{
				Failed:       true,
				NodeID:       ev.Package,
				Path:         ev.Package,
				LongReprText: strings.TrimRight(text, "\n"),
			})
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	if runErr != nil && events == 0 {
		return 0, false, errors.WithStackTraceAndPrefix(runErr, "go %s: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return total, failed, nil
}

// run executes one pass and streams top-level results into hooks.
func (g *GoTest) run(ctx context.Context, p plan, ps pass, hooks Hooks) (ExitStatus, error) {
	args := p.runArgs(ps)
	g.logger().WithField("args", strings.Join(args, " ")).Debug("running tests")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := g.command(runCtx, args)
	pr, pw := io.Pipe()
	var stderr bytes.Buffer
	cmd.Stdout = pw
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return InternalError, errors.WithStackTraceAndPrefix(err, "start go test")
	}

	s := newStream(hooks)
	var waitErr error
	var grp errgroup.Group
	grp.Go(func() error {
		waitErr = cmd.Wait()
		return pw.Close()
	})
	grp.Go(func() error {
		err := decodeEvents(pr, s.handle)
		if err != nil {
			cancel()
			_, _ = io.Copy(io.Discard, pr)
		}
		return err
	})
	streamErr := grp.Wait()

	switch {
	case errors.Is(streamErr, ErrSessionAborted):
		return Interrupted, nil
	case ctx.Err() != nil:
		return Interrupted, nil
	case streamErr != nil:
		return InternalError, streamErr
	}

	s.finish()
	if s.failed {
		return TestsFailed, nil
	}
	if waitErr != nil {
		return InternalError, errors.WithStackTraceAndPrefix(waitErr, "go test: %s", strings.TrimSpace(stderr.String()))
	}
	return OK, nil
}

// decodeEvents feeds each decodable line of r to fn. Lines that are not
// test2json events are skipped.
func decodeEvents(r io.Reader, fn func(testEvent) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var ev testEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil || ev.Action == "" {
			continue
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// importPath strips the " [pkg.test]" variant suffix go adds to test builds.
func importPath(s string) string {
	path, _, _ := strings.Cut(s, " ")
	return path
}

// topLevel returns the top-level test a test2json test name belongs to.
func topLevel(test string) string {
	name, _, _ := strings.Cut(test, "/")
	return name
}

// pendingTest is a started top-level test awaiting its result.
type pendingTest struct {
	pkg    string
	name   string
	output strings.Builder
}

// stream turns run-phase test2json events into hook calls. Only top-level
// tests are reported; subtest output is folded into the parent.
type stream struct {
	hooks   Hooks
	pending map[string]*pendingTest
	order   []string
	pkgOut  map[string]*strings.Builder
	failed  bool
}

func newStream(hooks Hooks) *stream {
	return &stream{
		hooks:   hooks,
		pending: map[string]*pendingTest{},
		pkgOut:  map[string]*strings.Builder{},
	}
}

func (s *stream) handle(ev testEvent) error {
	if ev.Test == "" {
		return s.handlePackage(ev)
	}

	top := topLevel(ev.Test)
	nodeID := NodeID(ev.Package, top)
	isTop := top == ev.Test

	switch ev.Action {
	case actionRun:
		if !isTop {
			return nil
		}
		s.pending[nodeID] = &pendingTest{pkg: ev.Package, name: top}
		s.order = append(s.order, nodeID)
		s.hooks.LogStart(nodeID, Location{File: ev.Package, Name: top})
		return s.hooks.Setup(nodeID)
	case actionOutput:
		if t, ok := s.pending[nodeID]; ok && !isFraming(ev.Output) {
			t.output.WriteString(ev.Output)
		}
		return nil
	case actionPass, actionFail, actionSkip:
		if !isTop {
			return nil
		}
		t, ok := s.pending[nodeID]
		if !ok {
			return nil
		}
		return s.report(nodeID, t, ev.Action, time.Duration(ev.Elapsed*float64(time.Second)), "")
	}
	return nil
}

func (s *stream) handlePackage(ev testEvent) error {
	switch ev.Action {
	case actionOutput:
		b, ok := s.pkgOut[ev.Package]
		if !ok {
			b = &strings.Builder{}
			s.pkgOut[ev.Package] = b
		}
		b.WriteString(ev.Output)
	case actionPass, actionFail, actionSkip:
		// Tests still pending when their package ends never reported a result,
		// which happens when the test binary crashes.
		extra := ""
		if b, ok := s.pkgOut[ev.Package]; ok {
			extra = b.String()
		}
		for _, nodeID := range s.order {
			t, ok := s.pending[nodeID]
			if !ok || t.pkg != ev.Package {
				continue
			}
			if err := s.report(nodeID, t, actionFail, 0, extra); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *stream) report(nodeID string, t *pendingTest, action string, elapsed time.Duration, extra string) error {
	delete(s.pending, nodeID)

	outcome := "passed"
	text := ""
	switch action {
	case actionSkip:
		outcome = "skipped"
	case actionFail:
		s.failed = true
		text = strings.TrimRight(t.output.String()+extra, "\n")
		outcome = "failed"
		if extra != "" || strings.Contains(text, "panic: ") {
			outcome = "error"
		}
	}

	return s.hooks.LogReport(&Report{
		NodeID:       nodeID,
		When:         PhaseCall,
		Outcome:      outcome,
		Duration:     elapsed,
		Location:     Location{File: t.pkg, Name: t.name},
		LongReprText: text,
	})
}

// finish reports tests that never finished because the stream ended early.
func (s *stream) finish() {
	for _, nodeID := range s.order {
		if t, ok := s.pending[nodeID]; ok {
			_ = s.report(nodeID, t, actionFail, 0, fmt.Sprintf("%s did not report a result\n", t.name))
		}
	}
}

// isFraming reports whether a test2json output line is test framework
// chatter rather than test output.
func isFraming(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "=== RUN") ||
		strings.HasPrefix(trimmed, "=== PAUSE") ||
		strings.HasPrefix(trimmed, "=== CONT") ||
		strings.HasPrefix(trimmed, "=== NAME")
}
