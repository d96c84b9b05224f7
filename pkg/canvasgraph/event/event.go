// Package event provides the canvas change-event bus: a local pub/sub
// channel through which the controller announces selection changes,
// structural rebuilds, optimistic edge mutations and viewport moves to
// interested host components (minimaps, inspectors, persistence hooks).
//
// Delivery is asynchronous per subscription: slow handlers never stall
// a gesture.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies a canvas event.
type Type string

// Canvas event types.
const (
	TypeRebuilt          Type = "canvas.rebuilt"
	TypeNodeSelected     Type = "node.selected"
	TypeEdgeSelected     Type = "edge.selected"
	TypeSelectionCleared Type = "selection.cleared"
	TypeEdgeCreated      Type = "edge.created"
	TypeEdgeRemoved      Type = "edge.removed"
	TypeNodeDeleted      Type = "node.deleted"
	TypeLockChanged      Type = "lock.changed"
	TypeViewportChanged  Type = "viewport.changed"
)

// Event is one canvas occurrence. Events are immutable once published.
type Event struct {
	// ID uniquely identifies this event.
	ID string `json:"id"`

	// Type is the event type.
	Type Type `json:"type"`

	// ProjectID is the project the event belongs to.
	ProjectID string `json:"project_id"`

	// NodeID or EdgeID identify the subject, depending on the type.
	NodeID string `json:"node_id,omitempty"`
	EdgeID string `json:"edge_id,omitempty"`

	// At is when the event occurred.
	At time.Time `json:"at"`

	// Payload carries type-specific extras (counts, positions, flags).
	Payload map[string]any `json:"payload,omitempty"`
}

// New creates an event with a fresh ID and the current time.
func New(t Type, projectID string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		ProjectID: projectID,
		At:        time.Now().UTC(),
	}
}

// WithNode returns a copy of the event carrying the given node ID.
func (e Event) WithNode(nodeID string) Event {
	e.NodeID = nodeID
	return e
}

// WithEdge returns a copy of the event carrying the given edge ID.
func (e Event) WithEdge(edgeID string) Event {
	e.EdgeID = edgeID
	return e
}

// WithPayload returns a copy of the event with one payload entry added.
func (e Event) WithPayload(key string, value any) Event {
	next := make(map[string]any, len(e.Payload)+1)
	for k, v := range e.Payload {
		next[k] = v
	}
	next[key] = value
	e.Payload = next
	return e
}
