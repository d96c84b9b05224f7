package canvasgraph

// BuildArgs are the inputs to one builder run. Everything the projection
// depends on is passed explicitly; the builder holds no state of its own.
type BuildArgs struct {
	// Project is the authoritative graph. Nil or partially populated
	// projects degrade to empty output, never an error.
	Project *Project

	// SelectedNodeID marks the node rendered as selected, if any.
	SelectedNodeID string

	// ActiveEdgeID marks the edge rendered as active, if any.
	ActiveEdgeID string

	// Loading disables all nodes while the project is being fetched.
	Loading bool

	// Locked disables dragging canvas-wide (user lock).
	Locked bool

	// ReadOnly disables both dragging and edits (external flag).
	ReadOnly bool

	// Generating holds the IDs of nodes with an in-flight generation
	// run. Generating nodes are disabled and not draggable.
	Generating map[string]bool

	// ObservedSizes maps node ID to the latest user-visible pixel size.
	// When present it always wins over the bbox-derived size: bbox
	// commits are debounced, and snapping a card back to a stale size
	// mid-resize is exactly the flicker this engine exists to avoid.
	ObservedSizes map[string]Size

	// Bounds are the size limits applied to every node. The zero value
	// means DefaultBounds.
	Bounds Bounds

	// EdgeColor is the fallback color for edges whose source node has
	// none set. Empty means DefaultEdgeColor.
	EdgeColor string
}

// BuildGraphElements projects a persisted project graph into the visible
// node and edge sets for the canvas.
//
// The projection is pure and total: the same arguments always produce
// structurally identical output, and malformed input (nil project,
// dangling edges, non-finite bbox numbers) degrades to defaults rather
// than failing. That purity is what allows the controller to re-run it
// freely behind the structural-signature gate.
//
// Rules, in order:
//  1. Nodes listed in any folder's folder_children are excluded from the
//     top-level node set; folder contents render inside the folder card.
//  2. Position resolves from ui.bbox {x1,y1}, size from x2-x1/y2-y1
//     clamped into bounds, with ObservedSizes overriding when present.
//  3. Each node carries Sources/Targets chips derived from the edge list.
//  4. Disabled = loading || readOnly || generating;
//     Draggable = none of loading, locked, readOnly, generating.
//  5. Edges appear only between two visible nodes. An edge with an
//     endpoint hidden inside a folder disappears from view entirely;
//     it is never rendered dangling.
//  6. Edge color comes from the source node's ui.color, falling back to
//     DefaultEdgeColor.
func BuildGraphElements(args BuildArgs) GraphElements {
	bounds := args.Bounds
	if !bounds.valid() {
		bounds = DefaultBounds()
	}

	fallbackColor := args.EdgeColor
	if fallbackColor == "" {
		fallbackColor = DefaultEdgeColor
	}

	if args.Project == nil || len(args.Project.Nodes) == 0 {
		return GraphElements{Nodes: []VisualNode{}, Edges: []VisualEdge{}}
	}

	nodes := args.Project.Nodes
	edges := args.Project.Edges

	// Index nodes and collect folder children in one pass.
	byID := make(map[string]Node, len(nodes))
	hidden := make(map[string]bool)
	for _, n := range nodes {
		byID[n.ID] = n
		if n.IsFolder() {
			for _, child := range n.Meta.FolderChildren {
				hidden[child] = true
			}
		}
	}

	visible := func(id string) bool {
		_, ok := byID[id]
		return ok && !hidden[id]
	}

	// Connection chips, keyed by the node they belong to. Dangling edge
	// endpoints are filtered here: a chip only references a real node.
	sources := make(map[string][]NodeRef)
	targets := make(map[string][]NodeRef)
	for _, e := range edges {
		from, fromOK := byID[e.From]
		to, toOK := byID[e.To]
		if !fromOK || !toOK {
			continue
		}
		sources[e.To] = append(sources[e.To], NodeRef{ID: from.ID, Title: from.Title, Type: from.Type})
		targets[e.From] = append(targets[e.From], NodeRef{ID: to.ID, Title: to.Title, Type: to.Type})
	}

	visualNodes := make([]VisualNode, 0, len(nodes))
	for _, n := range nodes {
		if hidden[n.ID] {
			continue
		}

		pos, size := ResolveBBox(n.UI.BBox, bounds)
		if observed, ok := args.ObservedSizes[n.ID]; ok {
			size = bounds.ClampSize(observed.Width, observed.Height)
		}

		generating := args.Generating[n.ID]
		visualNodes = append(visualNodes, VisualNode{
			ID:         n.ID,
			Node:       n,
			Position:   pos,
			Size:       size,
			Sources:    sources[n.ID],
			Targets:    targets[n.ID],
			Selected:   n.ID == args.SelectedNodeID,
			Generating: generating,
			Disabled:   args.Loading || args.ReadOnly || generating,
			Draggable:  !args.Loading && !args.Locked && !args.ReadOnly && !generating,
		})
	}

	visualEdges := make([]VisualEdge, 0, len(edges))
	for _, e := range edges {
		if !visible(e.From) || !visible(e.To) {
			continue
		}

		color := byID[e.From].UI.Color
		if color == "" {
			color = fallbackColor
		}

		id := EdgeID(e.Key())
		visualEdges = append(visualEdges, VisualEdge{
			ID:           id,
			From:         e.From,
			To:           e.To,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
			Label:        e.Label,
			Color:        color,
			Active:       id == args.ActiveEdgeID,
		})
	}

	return GraphElements{Nodes: visualNodes, Edges: visualEdges}
}
