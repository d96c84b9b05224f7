package canvasgraph

import "time"

// NodeType identifies the semantic kind of a node. The type determines
// which content renderer a host application mounts inside the node's card;
// the engine itself only cares about a handful of structural types
// (NodeFolder in particular).
type NodeType string

// Known node types.
const (
	NodeText       NodeType = "text"
	NodeAI         NodeType = "ai"
	NodeImage      NodeType = "image"
	NodeVideo      NodeType = "video"
	NodeFile       NodeType = "file"
	NodeFolder     NodeType = "folder"
	NodeHTML       NodeType = "html"
	NodeHTMLEditor NodeType = "html_editor"
	NodeTable      NodeType = "table"
	NodePDF        NodeType = "pdf"
	NodeMarkdown   NodeType = "markdown"
)

// BBox is a node's bounding box in canvas pixel units.
// Position is the top-left corner {X1,Y1}; width and height derive as
// X2-X1 and Y2-Y1. The box is the single source of truth for a node's
// placement in the persisted graph.
type BBox struct {
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
	X2 float64 `json:"x2" yaml:"x2"`
	Y2 float64 `json:"y2" yaml:"y2"`
}

// UISettings holds the per-node presentation state persisted with the graph.
type UISettings struct {
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
	BBox  *BBox  `json:"bbox,omitempty" yaml:"bbox,omitempty"`
}

// Meta carries node-type-specific settings. Known fields are typed;
// anything genuinely extensible (custom attachments, renderer flags)
// lives in Extra.
type Meta struct {
	// FolderChildren lists the node IDs owned by a folder node.
	// Children are excluded from the top-level canvas and rendered
	// inside the folder's own card. One level of containment only.
	FolderChildren []string `json:"folder_children,omitempty" yaml:"folder_children,omitempty"`

	// Collapsed records whether the node's card body is collapsed.
	Collapsed bool `json:"ui_collapsed,omitempty" yaml:"ui_collapsed,omitempty"`

	// Extra holds open-ended metadata the engine passes through untouched.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// PortDecl declares a dynamic connection port on an AI node.
type PortDecl struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// AIConfig is present only on AI nodes.
type AIConfig struct {
	Provider    string     `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model       string     `json:"model,omitempty" yaml:"model,omitempty"`
	Prompt      string     `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	System      string     `json:"system,omitempty" yaml:"system,omitempty"`
	Temperature float64    `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Ports       []PortDecl `json:"ports,omitempty" yaml:"ports,omitempty"`
}

// Node is one visual+semantic unit of the project graph.
// Nodes are owned by the external persistence layer; the engine treats
// them as read-only and expresses all intended changes through the
// Callbacks contract as partial patches.
type Node struct {
	ID          string     `json:"node_id" yaml:"node_id"`
	Type        NodeType   `json:"type" yaml:"type"`
	Title       string     `json:"title,omitempty" yaml:"title,omitempty"`
	Content     string     `json:"content,omitempty" yaml:"content,omitempty"`
	ContentType string     `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Meta        Meta       `json:"meta,omitempty" yaml:"meta,omitempty"`
	AI          *AIConfig  `json:"ai,omitempty" yaml:"ai,omitempty"`
	UI          UISettings `json:"ui,omitempty" yaml:"ui,omitempty"`
}

// IsFolder reports whether the node is a folder container.
func (n Node) IsFolder() bool {
	return n.Type == NodeFolder
}

// Edge is a directed connection between two nodes. Edges exist only as
// entries in the project's edge list; the canvas never invents persistent
// edges, only transient visual placeholders confirmed against the
// external API.
type Edge struct {
	From         string `json:"from" yaml:"from"`
	To           string `json:"to" yaml:"to"`
	SourceHandle string `json:"source_handle,omitempty" yaml:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty" yaml:"target_handle,omitempty"`
	Label        string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Key returns the edge's identity key.
func (e Edge) Key() EdgeKey {
	return EdgeKey{
		From:         e.From,
		To:           e.To,
		SourceHandle: e.SourceHandle,
		TargetHandle: e.TargetHandle,
	}
}

// EdgeKey identifies an edge by endpoints and handles. Two edges with the
// same key are the same connection; attempting to create a second one is
// a no-op.
type EdgeKey struct {
	From         string `json:"from"`
	To           string `json:"to"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
}

// Project is the authoritative, externally-persisted graph for one
// workflow document. UpdatedAt acts as the version marker for the
// structural signature.
type Project struct {
	ID        string    `json:"project_id" yaml:"project_id"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
	Nodes     []Node    `json:"nodes" yaml:"nodes"`
	Edges     []Edge    `json:"edges" yaml:"edges"`
}

// NodeByID returns the node with the given ID, if present.
func (p *Project) NodeByID(id string) (Node, bool) {
	if p == nil {
		return Node{}, false
	}
	for _, n := range p.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// HasEdge reports whether an edge with the given key exists in the
// authoritative edge list.
func (p *Project) HasEdge(key EdgeKey) bool {
	if p == nil {
		return false
	}
	for _, e := range p.Edges {
		if e.Key() == key {
			return true
		}
	}
	return false
}

// Provider describes one AI provider available for AI-node option
// rendering. The list is read-only from the engine's perspective.
type Provider struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Models []string `json:"models,omitempty" yaml:"models,omitempty"`
}

// Point is a position in canvas pixel units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair in canvas pixel units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle in canvas pixel units, used for
// folder drop-zone hit testing.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether the point falls inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Viewport is the camera state reported to the host for persistence.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}
