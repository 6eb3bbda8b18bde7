package engine

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
)

// recordingHooks records every hook call in order.
type recordingHooks struct {
	mu      sync.Mutex
	calls   []string
	reports []Report
	collect []CollectReport
	total   int
	status  ExitStatus
	abortAt string
}

func (h *recordingHooks) record(call string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, call)
}

func (h *recordingHooks) CollectionFinish(total int) {
	h.record("collected")
	h.total = total
}

func (h *recordingHooks) CollectReport(r CollectReport) {
	h.record("collect_report")
	h.collect = append(h.collect, r)
}

func (h *recordingHooks) LogStart(nodeID string, _ Location) {
	h.record("start " + nodeID)
}

func (h *recordingHooks) Setup(nodeID string) error {
	h.record("setup " + nodeID)
	if nodeID == h.abortAt {
		return ErrSessionAborted
	}
	return nil
}

func (h *recordingHooks) LogReport(r *Report) error {
	h.record("report " + r.NodeID + " " + r.Outcome)
	h.reports = append(h.reports, *r)
	return nil
}

func (h *recordingHooks) SessionFinish(status ExitStatus) {
	h.record("finish")
	h.status = status
}

func (h *recordingHooks) snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func jsonLines(t *testing.T, evs ...testEvent) string {
	t.Helper()

	var b strings.Builder
	for _, ev := range evs {
		line, err := json.Marshal(ev)
		if err != nil {
			t.Fatalf("marshal event: %v", err)
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String()
}
