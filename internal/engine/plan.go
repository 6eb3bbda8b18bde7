package engine

import (
	"regexp"
	"slices"
	"strings"

	"github.com/Morrolan/testr/internal/errors"
)

// NodeSeparator joins the segments of a node id.
const NodeSeparator = "::"

var errNoTargets = errors.New("no test targets given")

// plan is the go test invocation derived from an argument list.
type plan struct {
	packages []string
	// passes are run in order; each is one list and one run invocation.
	passes []pass
	tags   string
	flags  []string
	// skip holds the -skip alternatives that drop whole top-level tests.
	skip []*regexp.Regexp
	// warnings are non-fatal notes about how the arguments were interpreted.
	warnings []string
}

// pass is one go test invocation over packages filtered by run.
type pass struct {
	packages []string
	// run is the effective -run expression, empty for none.
	run string
}

// NodeID builds the node id of a test, mapping subtest separators.
func NodeID(pkg, test string) string {
	if test == "" {
		return pkg
	}
	return pkg + NodeSeparator + strings.ReplaceAll(test, "/", NodeSeparator)
}

// SplitNodeID splits a node id into its package and test segments.
func SplitNodeID(nodeID string) (pkg string, segments []string) {
	parts := strings.Split(nodeID, NodeSeparator)
	return parts[0], parts[1:]
}

// parseArgs splits args into leading targets and trailing flags. Node id
// targets are grouped by package, each group getting its own anchored -run
// pattern so a test name never matches in a package it was not picked from.
func parseArgs(args []string) (plan, error) {
	var p plan

	i := 0
	for ; i < len(args) && !strings.HasPrefix(args[i], "-"); i++ {
	}
	targets, rest := args[:i], args[i:]
	if len(targets) == 0 {
		return p, errNoTargets
	}

	userRun := ""
	for j := 0; j < len(rest); j++ {
		arg := rest[j]
		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "-"), "=")
		switch name {
		case "run", "tags", "skip":
			if !hasValue {
				if j+1 >= len(rest) {
					return p, errors.New("flag -" + name + " needs a value")
				}
				j++
				value = rest[j]
			}
			switch name {
			case "run":
				userRun = value
			case "tags":
				p.tags = value
			default:
				skip, err := compileSkip(value)
				if err != nil {
					return p, err
				}
				p.skip = skip
				p.flags = append(p.flags, "-skip", value)
			}
		case "json":
		default:
			p.flags = append(p.flags, arg)
		}
	}

	segments := map[string][][]string{}
	plain := 0
	for _, target := range targets {
		pkg, segs := SplitNodeID(target)
		if !slices.Contains(p.packages, pkg) {
			p.packages = append(p.packages, pkg)
		}
		if len(segs) == 0 {
			plain++
			continue
		}
		segments[pkg] = append(segments[pkg], segs)
	}

	switch {
	case len(segments) == 0:
		p.passes = []pass{{packages: p.packages, run: userRun}}
	case plain > 0:
		p.passes = []pass{{packages: p.packages, run: userRun}}
		p.warnings = append(p.warnings, "package targets mixed with test ids; running the named packages in full")
	default:
		if userRun != "" {
			p.warnings = append(p.warnings, "test id targets replace the -run filter "+userRun)
		}
		for _, pkg := range p.packages {
			run := runPattern(segments[pkg])
			k := slices.IndexFunc(p.passes, func(ps pass) bool { return ps.run == run })
			if k < 0 {
				p.passes = append(p.passes, pass{run: run})
				k = len(p.passes) - 1
			}
			p.passes[k].packages = append(p.passes[k].packages, pkg)
		}
	}

	return p, nil
}

// runPattern builds a -run expression matching the given test paths, one
// anchored alternation per subtest level.
func runPattern(paths [][]string) string {
	depth := len(paths[0])
	for _, segs := range paths[1:] {
		depth = min(depth, len(segs))
	}

	levels := make([]string, 0, depth)
	for level := range depth {
		var names []string
		for _, segs := range paths {
			name := regexp.QuoteMeta(segs[level])
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
		if len(names) == 1 {
			levels = append(levels, "^"+names[0]+"$")
		} else {
			levels = append(levels, "^("+strings.Join(names, "|")+")$")
		}
	}
	return strings.Join(levels, "/")
}

// splitTopLevel splits expr at sep outside brackets and parentheses, the way
// go test splits -run and -skip expressions.
func splitTopLevel(expr string, sep rune) []string {
	var parts []string
	depth, from := 0, 0
	for i, r := range expr {
		switch r {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, expr[from:i])
				from = i + 1
			}
		}
	}
	return append(parts, expr[from:])
}

// topLevelPattern returns the part of a -run expression that applies to
// top-level tests.
func topLevelPattern(expr string) string {
	return splitTopLevel(expr, '/')[0]
}

// compileSkip compiles the alternatives of a -skip expression that name
// top-level tests only. Alternatives reaching into subtests still run the
// parent, so they never drop a listed test.
func compileSkip(expr string) ([]*regexp.Regexp, error) {
	var out []*regexp.Regexp
	for _, alt := range splitTopLevel(expr, '|') {
		if alt == "" || len(splitTopLevel(alt, '/')) > 1 {
			continue
		}
		re, err := regexp.Compile(alt)
		if err != nil {
			return nil, errors.WithStackTraceAndPrefix(err, "invalid -skip expression %q", expr)
		}
		out = append(out, re)
	}
	return out, nil
}

// skips reports whether the run phase skips the top-level test name.
func (p plan) skips(name string) bool {
	return slices.ContainsFunc(p.skip, func(re *regexp.Regexp) bool { return re.MatchString(name) })
}

func (p plan) listArgs(ps pass) []string {
	pattern := topLevelPattern(ps.run)
	if pattern == "" {
		pattern = "."
	}
	args := []string{"test", "-json", "-list", pattern}
	if p.tags != "" {
		args = append(args, "-tags", p.tags)
	}
	return append(args, ps.packages...)
}

func (p plan) runArgs(ps pass) []string {
	args := []string{"test", "-json"}
	if ps.run != "" {
		args = append(args, "-run", ps.run)
	}
	if p.tags != "" {
		args = append(args, "-tags", p.tags)
	}
	args = append(args, p.flags...)
	return append(args, ps.packages...)
}

// CommandLines returns the go arguments GoTest runs for args, one entry per
// invocation.
func CommandLines(args []string) ([][]string, error) {
	p, err := parseArgs(args)
	if err != nil {
		return nil, err
	}
	lines := make([][]string, 0, len(p.passes))
	for _, ps := range p.passes {
		lines = append(lines, p.runArgs(ps))
	}
	return lines, nil
}
