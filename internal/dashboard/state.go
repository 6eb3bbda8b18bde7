package dashboard

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Morrolan/testr/internal/engine"
	"github.com/Morrolan/testr/internal/events"
)

// Failure is one entry of the failure registry.
type Failure struct {
	NodeID   string
	Outcome  events.Outcome
	Detail   string
	Duration time.Duration
	Location events.Location
}

// RunState is the controller's view of the current run. It is only touched
// from the UI loop.
type RunState struct {
	// Total is nil until the session reports how many tests it collected.
	Total      *int
	Completed  int
	Counts     map[events.Outcome]int
	Failures   []Failure
	LastFailed []string
	Selected   []string
	StartedAt  time.Time
}

// registry maps node ids to failures, remembering discovery order.
type registry struct {
	order []string
	byID  map[string]Failure
}

func newRegistry() registry {
	return registry{byID: map[string]Failure{}}
}

func (r *registry) put(f Failure) {
	if _, ok := r.byID[f.NodeID]; !ok {
		r.order = append(r.order, f.NodeID)
	}
	r.byID[f.NodeID] = f
}

func (r *registry) get(nodeID string) (Failure, bool) {
	f, ok := r.byID[nodeID]
	return f, ok
}

func (r *registry) keys() []string {
	return slices.Clone(r.order)
}

func (r *registry) len() int {
	return len(r.order)
}

func (r *registry) clear() {
	r.order = nil
	r.byID = map[string]Failure{}
}

func (r *registry) list() []Failure {
	out := make([]Failure, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// FailureRow is one row of the grouped failure table.
type FailureRow struct {
	Key     string
	Group   string
	Count   int
	Tests   string
	NodeIDs []string
}

// GroupFailures groups node ids by file and first scope segment. Rows keep
// first-discovery order; members within a row are sorted.
func GroupFailures(nodeIDs []string) []FailureRow {
	var rows []FailureRow
	index := map[string]int{}
	members := map[string][]string{}

	for _, nodeID := range nodeIDs {
		file, segments := engine.SplitNodeID(nodeID)
		feature := file
		member := file
		if len(segments) > 0 {
			feature = segments[0]
			member = strings.Join(segments, engine.NodeSeparator)
		}
		key := file + " :: " + feature

		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, FailureRow{Key: key, Group: key})
		}
		rows[i].NodeIDs = append(rows[i].NodeIDs, nodeID)
		members[key] = append(members[key], member)
	}

	for i := range rows {
		m := members[rows[i].Key]
		slices.Sort(m)
		rows[i].Count = len(m)
		rows[i].Tests = strings.Join(m, ", ")
	}
	return rows
}

// Summary is the derived run summary.
type Summary struct {
	Passed    int
	Failed    int
	Skipped   int
	Completed int
	Total     *int
	Elapsed   string
	ETA       string
	Coverage  string
	Extra     string
}

func (s Summary) String() string {
	total := "?"
	if s.Total != nil {
		total = fmt.Sprint(*s.Total)
	}
	base := fmt.Sprintf("Passed: %d   Failed: %d   Skipped: %d   Progress: %d/%s   Elapsed: %s   ETA: %s   Coverage: %s",
		s.Passed, s.Failed, s.Skipped, s.Completed, total, s.Elapsed, s.ETA, s.Coverage)
	if s.Extra != "" {
		base += "\n" + s.Extra
	}
	return base
}

// summarize derives the summary of st at now.
func summarize(st RunState, now time.Time, extra string) Summary {
	s := Summary{
		Passed:    st.Counts[events.OutcomePassed],
		Failed:    st.Counts[events.OutcomeFailed] + st.Counts[events.OutcomeError],
		Skipped:   st.Counts[events.OutcomeSkipped],
		Completed: st.Completed,
		Total:     st.Total,
		Elapsed:   "0s",
		ETA:       "…",
		Coverage:  "?",
		Extra:     extra,
	}
	if st.StartedAt.IsZero() {
		return s
	}

	elapsed := now.Sub(st.StartedAt)
	s.Elapsed = FormatDuration(elapsed)
	if st.Total == nil || *st.Total <= 0 {
		return s
	}
	if st.Completed > 0 {
		remaining := max(*st.Total-st.Completed, 0)
		perTest := elapsed / time.Duration(st.Completed)
		s.ETA = FormatDuration(perTest * time.Duration(remaining))
	}
	s.Coverage = fmt.Sprintf("%.0f%%", float64(s.Passed)/float64(*st.Total)*100)
	return s
}

// FormatDuration renders d as 1h02m03s, 4m05s or 7s.
func FormatDuration(d time.Duration) string {
	secs := max(int(d.Seconds()), 0)
	hours, rem := secs/3600, secs%3600
	minutes, secs := rem/60, rem%60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh%02dm%02ds", hours, minutes, secs)
	case minutes > 0:
		return fmt.Sprintf("%dm%02ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
