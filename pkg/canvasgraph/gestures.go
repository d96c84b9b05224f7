package canvasgraph

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/canvasgraph/canvasgraph/pkg/canvasgraph/event"
	"github.com/canvasgraph/canvasgraph/pkg/canvasgraph/observability"
	"github.com/canvasgraph/canvasgraph/pkg/canvasgraph/schedule"
)

// DropZone is a folder card's registered drop target, used for the
// release-point check at drag end.
type DropZone struct {
	FolderID string
	Rect     Rect
}

// AppendChild is the MoveNodeToFolder index meaning "append at the end".
const AppendChild = -1

// BeginDrag starts dragging a node. Fails with ErrLocked while the
// canvas is locked or read-only, and with ErrNodeDisabled for nodes that
// are loading or generating.
func (c *Controller) BeginDrag(nodeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrControllerClosed
	}
	if c.locked || c.readOnly {
		return ErrLocked
	}
	node, ok := c.elements.NodeByID(nodeID)
	if !ok {
		return ErrNodeNotFound
	}
	if !node.Draggable {
		return ErrNodeDisabled
	}

	c.drags[nodeID] = &dragState{start: node.Position, size: node.Size}
	return nil
}

// CancelDrag abandons an in-progress drag without committing anything.
func (c *Controller) CancelDrag(nodeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.drags, nodeID)
}

// EndDrag finishes a drag at the release point. If the point overlaps a
// folder's drop zone the node moves into that folder; otherwise the new
// position commits as a bbox patch built from the release point and the
// node's last known size.
func (c *Controller) EndDrag(ctx context.Context, nodeID string, release Point, zones []DropZone) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	drag, ok := c.drags[nodeID]
	if !ok {
		c.mu.Unlock()
		return ErrNodeNotFound
	}
	delete(c.drags, nodeID)

	node, ok := c.elements.NodeByID(nodeID)
	if !ok {
		c.mu.Unlock()
		return ErrNodeNotFound
	}

	// Folders cannot nest: containment is one level deep.
	var folderID string
	if !node.Node.IsFolder() {
		for _, z := range zones {
			if z.FolderID != nodeID && z.Rect.Contains(release) {
				if target, ok := c.elements.NodeByID(z.FolderID); ok && target.Node.IsFolder() {
					folderID = z.FolderID
					break
				}
			}
		}
	}

	size := drag.size
	bounds := c.cfg.Bounds
	c.mu.Unlock()

	if folderID != "" {
		if c.cb.MoveNodeToFolder == nil {
			return c.unwired("move_node_to_folder")
		}
		return c.dispatch(ctx, "move_node_to_folder", nodeID, func(ctx context.Context) error {
			return c.cb.MoveNodeToFolder(ctx, nodeID, folderID, AppendChild)
		})
	}

	// Position commit: release point plus last known dimensions.
	c.mu.Lock()
	for i := range c.elements.Nodes {
		if c.elements.Nodes[i].ID == nodeID {
			c.elements.Nodes[i].Position = release
			break
		}
	}
	c.mu.Unlock()

	if c.cb.ChangeNodeUI == nil {
		return c.unwired("change_node_ui")
	}
	bbox := BBoxAt(release, size, bounds)
	err := c.dispatch(ctx, "change_node_ui", nodeID, func(ctx context.Context) error {
		return c.cb.ChangeNodeUI(ctx, nodeID, UIPatch{BBox: &bbox})
	})
	c.pending.record(PendingMutation{
		Op:     PendingUICommit,
		NodeID: nodeID,
		At:     c.clock.Now(),
		Failed: err != nil,
		Err:    err,
	})
	return err
}

// BeginResize starts a corner-handle resize.
func (c *Controller) BeginResize(nodeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrControllerClosed
	}
	if c.locked || c.readOnly {
		return ErrLocked
	}
	node, ok := c.elements.NodeByID(nodeID)
	if !ok {
		return ErrNodeNotFound
	}
	if node.Disabled {
		return ErrNodeDisabled
	}

	c.resizes[nodeID] = &resizeState{pos: node.Position, size: node.Size}
	return nil
}

// ResizeTo applies one intermediate resize step. The size clamps into
// bounds at every step, not just on commit, and lands in the
// observed-size map so a structural rebuild mid-resize cannot snap the
// card back to its stale persisted size.
func (c *Controller) ResizeTo(nodeID string, width, height float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrControllerClosed
	}
	rs, ok := c.resizes[nodeID]
	if !ok {
		return ErrNodeNotFound
	}

	rs.size = c.cfg.Bounds.ClampSize(width, height)
	c.observedSizes[nodeID] = rs.size
	for i := range c.elements.Nodes {
		if c.elements.Nodes[i].ID == nodeID {
			c.elements.Nodes[i].Size = rs.size
			break
		}
	}
	return nil
}

// EndResize commits the final size as a bbox patch.
func (c *Controller) EndResize(ctx context.Context, nodeID string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	rs, ok := c.resizes[nodeID]
	if !ok {
		c.mu.Unlock()
		return ErrNodeNotFound
	}
	delete(c.resizes, nodeID)
	bbox := BBoxAt(rs.pos, rs.size, c.cfg.Bounds)
	c.mu.Unlock()

	if c.cb.ChangeNodeUI == nil {
		return c.unwired("change_node_ui")
	}
	err := c.dispatch(ctx, "change_node_ui", nodeID, func(ctx context.Context) error {
		return c.cb.ChangeNodeUI(ctx, nodeID, UIPatch{BBox: &bbox})
	})
	c.pending.record(PendingMutation{
		Op:     PendingUICommit,
		NodeID: nodeID,
		At:     c.clock.Now(),
		Failed: err != nil,
		Err:    err,
	})
	return err
}

// Connect creates an edge between two visible nodes. If an identical
// edge (same endpoints and handles) already exists in the authoritative
// graph or the visual set, the call is a silent no-op: no dispatch, no
// visual change. Otherwise the edge appears optimistically and
// CreateEdge dispatches to the external layer. Fails with ErrLocked in
// read-only mode; the user lock pins layout only and does not gate
// edge edits.
func (c *Controller) Connect(ctx context.Context, key EdgeKey) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	if c.readOnly {
		c.mu.Unlock()
		return ErrLocked
	}

	from, fromOK := c.elements.NodeByID(key.From)
	_, toOK := c.elements.NodeByID(key.To)
	if !fromOK || !toOK {
		c.mu.Unlock()
		return ErrNodeNotFound
	}

	if c.project.HasEdge(key) {
		c.mu.Unlock()
		return nil
	}
	id := EdgeID(key)
	for _, e := range c.elements.Edges {
		if e.ID == id {
			c.mu.Unlock()
			return nil
		}
	}

	color := from.Node.UI.Color
	if color == "" {
		color = c.cfg.EdgeColor
	}
	c.elements.Edges = append(c.elements.Edges, VisualEdge{
		ID:           id,
		From:         key.From,
		To:           key.To,
		SourceHandle: key.SourceHandle,
		TargetHandle: key.TargetHandle,
		Color:        color,
	})
	projectID := c.projectIDLocked()
	c.mu.Unlock()

	var err error
	if c.cb.CreateEdge == nil {
		err = c.unwired("create_edge")
	} else {
		err = c.dispatch(ctx, "create_edge", key.From, func(ctx context.Context) error {
			return c.cb.CreateEdge(ctx, key)
		})
	}
	c.pending.record(PendingMutation{
		Op:     PendingEdgeCreate,
		Edge:   key,
		At:     c.clock.Now(),
		Failed: err != nil,
		Err:    err,
	})
	c.bus.Publish(event.New(event.TypeEdgeCreated, projectID).WithEdge(id))
	return err
}

// RemoveEdge removes an edge optimistically and dispatches the removal.
// A failed dispatch is logged, not rolled back: the next structural sync
// resynchronizes the visual state from the authoritative graph. Fails
// with ErrLocked in read-only mode.
func (c *Controller) RemoveEdge(ctx context.Context, key EdgeKey) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	if c.readOnly {
		c.mu.Unlock()
		return ErrLocked
	}

	id := EdgeID(key)
	idx := -1
	for i, e := range c.elements.Edges {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return ErrEdgeNotFound
	}
	c.elements.Edges = append(c.elements.Edges[:idx], c.elements.Edges[idx+1:]...)
	if c.activeEdgeID == id {
		c.activeEdgeID = ""
	}
	projectID := c.projectIDLocked()
	c.mu.Unlock()

	var err error
	if c.cb.RemoveEdges == nil {
		err = c.unwired("remove_edges")
	} else {
		err = c.dispatch(ctx, "remove_edges", key.From, func(ctx context.Context) error {
			return c.cb.RemoveEdges(ctx, []EdgeKey{key})
		})
	}
	c.pending.record(PendingMutation{
		Op:     PendingEdgeRemove,
		Edge:   key,
		At:     c.clock.Now(),
		Failed: err != nil,
		Err:    err,
	})
	c.bus.Publish(event.New(event.TypeEdgeRemoved, projectID).WithEdge(id))
	return err
}

// ReterminateEdge drags an existing edge's endpoint to a new node: a
// removal of the old edge and a creation of the new one, dispatched as
// two independent idempotent operations, never an atomic move.
func (c *Controller) ReterminateEdge(ctx context.Context, oldKey, newKey EdgeKey) error {
	removeErr := c.RemoveEdge(ctx, oldKey)
	if errors.Is(removeErr, ErrControllerClosed) {
		return removeErr
	}
	connectErr := c.Connect(ctx, newKey)
	return errors.Join(removeErr, connectErr)
}

// DeleteNodes deletes the given nodes, removing them from the visual
// state immediately and dispatching one DeleteNode call per node,
// staggered by the configured delay so concurrent deletes don't race the
// external layer's edge-cleanup side effects. Each dispatch fails
// independently; one failure never blocks the others.
//
// The returned Run reports completion and supports cancellation of
// not-yet-dispatched deletes.
func (c *Controller) DeleteNodes(ctx context.Context, nodeIDs []string) (*schedule.Run, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrControllerClosed
	}
	if c.readOnly {
		c.mu.Unlock()
		return nil, ErrLocked
	}

	// Optimistic removal of the nodes and every edge touching them.
	doomed := make(map[string]bool, len(nodeIDs))
	targets := make([]string, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if _, ok := c.elements.NodeByID(id); ok && !doomed[id] {
			doomed[id] = true
			targets = append(targets, id)
		}
	}
	if len(targets) == 0 {
		c.mu.Unlock()
		return nil, ErrNodeNotFound
	}

	nodes := c.elements.Nodes[:0]
	for _, n := range c.elements.Nodes {
		if !doomed[n.ID] {
			nodes = append(nodes, n)
		}
	}
	c.elements.Nodes = nodes
	edges := c.elements.Edges[:0]
	for _, e := range c.elements.Edges {
		if !doomed[e.From] && !doomed[e.To] {
			edges = append(edges, e)
		}
	}
	c.elements.Edges = edges
	if doomed[c.selectedNodeID] {
		c.selectedNodeID = ""
	}
	projectID := c.projectIDLocked()
	c.mu.Unlock()

	tasks := make([]schedule.Task, 0, len(targets))
	for _, id := range targets {
		id := id
		tasks = append(tasks, schedule.Task{
			ID: id,
			Do: func(ctx context.Context) error {
				if c.cb.DeleteNode == nil {
					return c.unwired("delete_node")
				}
				err := c.dispatch(ctx, "delete_node", id, func(ctx context.Context) error {
					return c.cb.DeleteNode(ctx, id)
				})
				c.pending.record(PendingMutation{
					Op:     PendingNodeDelete,
					NodeID: id,
					At:     c.clock.Now(),
					Failed: err != nil,
					Err:    err,
				})
				if err == nil {
					c.bus.Publish(event.New(event.TypeNodeDeleted, projectID).WithNode(id))
				}
				return err
			},
		})
	}

	stagger := schedule.NewStagger(c.clock, c.cfg.DeleteStagger)
	run := stagger.Dispatch(ctx, tasks, nil)

	c.mu.Lock()
	c.deleteRun = run
	c.mu.Unlock()
	return run, nil
}

// RunNode triggers generation for a node. Fire-and-forget: completion is
// observed through SetGenerating.
func (c *Controller) RunNode(ctx context.Context, nodeID string) error {
	return c.triggerGeneration(ctx, "run_node", nodeID, c.cb.RunNode)
}

// RegenerateNode re-triggers generation for a node.
func (c *Controller) RegenerateNode(ctx context.Context, nodeID string) error {
	return c.triggerGeneration(ctx, "regenerate_node", nodeID, c.cb.RegenerateNode)
}

func (c *Controller) triggerGeneration(ctx context.Context, op, nodeID string, fn func(context.Context, string) error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	node, ok := c.elements.NodeByID(nodeID)
	if !ok {
		c.mu.Unlock()
		return ErrNodeNotFound
	}
	if node.Disabled {
		c.mu.Unlock()
		return ErrNodeDisabled
	}
	c.mu.Unlock()

	if fn == nil {
		return c.unwired(op)
	}
	return c.dispatch(ctx, op, nodeID, func(ctx context.Context) error {
		return fn(ctx, nodeID)
	})
}

// dispatch invokes one callback with tracing, metrics and logging.
// Errors come back wrapped in DispatchError.
func (c *Controller) dispatch(ctx context.Context, op, nodeID string, fn func(context.Context) error) error {
	done := observability.TimedOperation()
	dctx, span := c.spans.StartDispatchSpan(ctx, op, nodeID)

	err := fn(dctx)

	ms := done()
	c.spans.EndSpanWithError(span, err)
	c.metrics.RecordDispatch(dctx, op, durationFromMs(ms), err)
	if err != nil {
		observability.LogDispatchError(c.logger, op, nodeID, err)
		return &DispatchError{NodeID: nodeID, Op: op, Err: err}
	}
	observability.LogDispatch(c.logger, op, nodeID, ms)
	return nil
}

// unwired logs a gesture whose callback the host didn't provide.
func (c *Controller) unwired(op string) error {
	if c.logger != nil {
		c.logger.Debug("callback not wired", slog.String("op", op))
	}
	return nil
}

// durationFromMs converts a float millisecond reading to a Duration.
func durationFromMs(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
