package canvasgraph

import (
	"sync"
	"time"
)

// PendingOp classifies an optimistic mutation the canvas applied locally
// before the external layer confirmed it.
type PendingOp string

// Pending operation kinds.
const (
	PendingEdgeCreate PendingOp = "edge.create"
	PendingEdgeRemove PendingOp = "edge.remove"
	PendingNodeDelete PendingOp = "node.delete"
	PendingUICommit   PendingOp = "ui.commit"
)

// PendingMutation is one optimistic change awaiting reconciliation.
// Entries survive until the next structural sync, which replaces the
// visual state with the authoritative graph. The chosen policy
// for failed dispatches is rely-on-resync, not rollback, so a Failed
// entry is how a host observes that the visuals may be ahead of the
// server until that sync lands.
type PendingMutation struct {
	Op     PendingOp `json:"op"`
	NodeID string    `json:"node_id,omitempty"`
	Edge   EdgeKey   `json:"edge,omitempty"`
	At     time.Time `json:"at"`
	Failed bool      `json:"failed"`
	Err    error     `json:"-"`
}

// pendingLedger tracks optimistic mutations between structural syncs.
type pendingLedger struct {
	mu      sync.Mutex
	entries []PendingMutation
}

// record appends one entry.
func (l *pendingLedger) record(m PendingMutation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, m)
}

// clear drops all entries. Called when a structural sync resets the
// visual state from the authoritative graph.
func (l *pendingLedger) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// snapshot returns a copy of the current entries.
func (l *pendingLedger) snapshot() []PendingMutation {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]PendingMutation, len(l.entries))
	copy(out, l.entries)
	return out
}
