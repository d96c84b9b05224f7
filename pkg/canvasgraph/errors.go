package canvasgraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for canvas gestures.
var (
	// ErrControllerClosed indicates a gesture arrived after Close().
	ErrControllerClosed = errors.New("controller closed")

	// ErrLocked indicates a drag or resize was attempted while the
	// canvas is locked or read-only.
	ErrLocked = errors.New("canvas is locked")

	// ErrNodeNotFound indicates a gesture referenced a node that is not
	// in the visible node set.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound indicates a gesture referenced an edge that is not
	// in the visible edge set.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrNodeDisabled indicates an interaction targeted a node that is
	// currently disabled (loading, read-only, or generating).
	ErrNodeDisabled = errors.New("node is disabled")

	// ErrNotAFolder indicates a folder operation targeted a node that is
	// not a folder.
	ErrNotAFolder = errors.New("target node is not a folder")

	// ErrEmptyDrop indicates a drop carried no payload the engine knows
	// how to route.
	ErrEmptyDrop = errors.New("drop payload empty or unrecognized")
)

// DispatchError wraps a failed callback dispatch with gesture context.
// Failures are logged at the call site and, for batch operations,
// isolated per item so one failure never aborts its siblings.
type DispatchError struct {
	// NodeID is the node the dispatch targeted, if any.
	NodeID string
	// Op is the callback that failed (e.g. "create_edge", "delete_node").
	Op string
	// Err is the underlying error from the external layer.
	Err error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("dispatch %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("dispatch %s for node %s: %v", e.Op, e.NodeID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DispatchError) Unwrap() error {
	return e.Err
}

// DropError wraps a drop-payload parse failure. The gesture is aborted
// with no partial mutation.
type DropError struct {
	// Kind is the payload kind that failed to parse.
	Kind string
	// Err is the underlying parse error.
	Err error
}

// Error implements the error interface.
func (e *DropError) Error() string {
	return fmt.Sprintf("drop payload %s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DropError) Unwrap() error {
	return e.Err
}
