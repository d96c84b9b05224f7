package canvasgraph

import "context"

// UIPatch is a partial update to a node's UI settings. Nil fields are
// left untouched, so concurrent edits to different facets (a resize and
// a color change, say) never clobber each other.
type UIPatch struct {
	Color *string `json:"color,omitempty"`
	BBox  *BBox   `json:"bbox,omitempty"`
}

// MetaPatch is a partial update to a node's metadata.
type MetaPatch struct {
	Collapsed      *bool          `json:"ui_collapsed,omitempty"`
	FolderChildren *[]string      `json:"folder_children,omitempty"`
	Extra          map[string]any `json:"extra,omitempty"`
}

// AIPatch is a partial update to an AI node's configuration.
type AIPatch struct {
	Provider    *string  `json:"provider,omitempty"`
	Model       *string  `json:"model,omitempty"`
	Prompt      *string  `json:"prompt,omitempty"`
	System      *string  `json:"system,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// ImportFile is one file carried by an external drop.
type ImportFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type,omitempty"`
	Data        []byte `json:"-"`
}

// Callbacks is the narrow contract between the canvas engine and the
// external persistence/generation layer. Every structural edit the
// canvas mediates flows through exactly one of these functions; the
// engine never mutates the project graph it is handed.
//
// All callbacks should return promptly: long-running work (network
// round-trips, generation) belongs behind the callback, with completion
// communicated back via the next Sync or the Generating set. A returned
// error is logged and recorded against the gesture's pending entry; the
// engine does not retry.
//
// Nil callbacks are tolerated: the corresponding gesture becomes a no-op
// and is logged at debug level. This lets hosts wire only the surface
// they support (a read-only embed wires nothing).
type Callbacks struct {
	// RunNode and RegenerateNode trigger generation. Fire-and-forget:
	// completion is observed through the Generating set changing.
	RunNode        func(ctx context.Context, nodeID string) error
	RegenerateNode func(ctx context.Context, nodeID string) error

	// DeleteNode removes one node and cascades its edge cleanup. In
	// batch deletes each call must resolve or fail independently.
	DeleteNode func(ctx context.Context, nodeID string) error

	// AddNodeFromPalette creates a node of the given palette slug at a
	// canvas position. CopyNode duplicates an existing node snapshot.
	AddNodeFromPalette func(ctx context.Context, slug string, pos Point) error
	CopyNode           func(ctx context.Context, snapshot Node, pos Point) error

	// Facet setters. Each is a partial patch, never a full replace.
	ChangeNodeMeta    func(ctx context.Context, nodeID string, patch MetaPatch) error
	ChangeNodeContent func(ctx context.Context, nodeID string, content string) error
	ChangeNodeTitle   func(ctx context.Context, nodeID string, title string) error
	ChangeNodeAI      func(ctx context.Context, nodeID string, patch AIPatch) error
	ChangeNodeUI      func(ctx context.Context, nodeID string, patch UIPatch) error

	// Edge mutations. CreateEdge is never called for a key that already
	// exists in the authoritative edge list.
	CreateEdge  func(ctx context.Context, key EdgeKey) error
	RemoveEdges func(ctx context.Context, keys []EdgeKey) error

	// Folder containment.
	MoveNodeToFolder     func(ctx context.Context, nodeID, folderID string, index int) error
	RemoveNodeFromFolder func(ctx context.Context, nodeID, folderID string, pos Point) error
	ImportFilesToFolder  func(ctx context.Context, folderID string, files []ImportFile, pos Point) error

	// ViewportChanged is informational, for external persistence of
	// camera state. Errors are ignored.
	ViewportChanged func(ctx context.Context, vp Viewport)
}
