package canvasgraph

import "strings"

// DefaultEdgeColor is used when an edge's source node has no color set.
const DefaultEdgeColor = "#94a3b8"

// NodeRef is a lightweight reference to a neighboring node, rendered as
// an incoming/outgoing connection chip on a card. It carries display
// data only.
type NodeRef struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Type  NodeType `json:"type"`
}

// VisualNode is the render-ready projection of a Node. Visual nodes are
// ephemeral: the builder throws the whole set away and rebuilds it on
// every structural change, relying on ID-keyed reconciliation in the
// rendering layer rather than field-by-field diffing.
type VisualNode struct {
	// ID equals the underlying node's ID.
	ID string `json:"id"`

	// Node is a copy of the domain node for the card renderer.
	Node Node `json:"node"`

	Position Point `json:"position"`
	Size     Size  `json:"size"`

	// Sources and Targets summarize incoming and outgoing connections
	// for display chips. Derived read projection, never stored.
	Sources []NodeRef `json:"sources,omitempty"`
	Targets []NodeRef `json:"targets,omitempty"`

	// Selected mirrors the controller's current node selection.
	Selected bool `json:"selected"`

	// Generating is set while the external layer reports the node as
	// having an in-flight generation run.
	Generating bool `json:"generating"`

	// Disabled blocks all edits on the card.
	Disabled bool `json:"disabled"`

	// Draggable permits canvas drag. Lock, read-only mode, loading and
	// generation all clear it.
	Draggable bool `json:"draggable"`
}

// VisualEdge is the render-ready projection of an Edge. Its color and
// marker derive from the source node's UI color: edges are visually
// owned by their origin node's color identity.
type VisualEdge struct {
	ID           string `json:"id"`
	From         string `json:"from"`
	To           string `json:"to"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
	Label        string `json:"label,omitempty"`
	Color        string `json:"color"`

	// Active mirrors the controller's current edge selection.
	Active bool `json:"active"`
}

// Key returns the visual edge's identity key.
func (e VisualEdge) Key() EdgeKey {
	return EdgeKey{
		From:         e.From,
		To:           e.To,
		SourceHandle: e.SourceHandle,
		TargetHandle: e.TargetHandle,
	}
}

// GraphElements is the output of one builder run: the complete visible
// node and edge sets for the canvas.
type GraphElements struct {
	Nodes []VisualNode `json:"nodes"`
	Edges []VisualEdge `json:"edges"`
}

// clone returns a copy whose node and edge slices are detached from the
// receiver's backing arrays. Chip slices and the embedded domain nodes
// are shared; they are never mutated after a build.
func (g GraphElements) clone() GraphElements {
	out := GraphElements{
		Nodes: make([]VisualNode, len(g.Nodes)),
		Edges: make([]VisualEdge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	return out
}

// NodeByID returns the visual node with the given ID, if present.
func (g GraphElements) NodeByID(id string) (VisualNode, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return VisualNode{}, false
}

// EdgeID derives the deterministic visual-edge identifier for a key.
// Identical inputs always produce identical IDs, which is what lets the
// controller add an optimistic edge that the next builder run will
// reproduce rather than duplicate.
func EdgeID(key EdgeKey) string {
	var b strings.Builder
	b.WriteString("edge:")
	b.WriteString(key.From)
	if key.SourceHandle != "" {
		b.WriteString("#")
		b.WriteString(key.SourceHandle)
	}
	b.WriteString("->")
	b.WriteString(key.To)
	if key.TargetHandle != "" {
		b.WriteString("#")
		b.WriteString(key.TargetHandle)
	}
	return b.String()
}
