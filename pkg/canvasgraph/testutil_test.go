package canvasgraph

import (
	"context"
	"sync"
	"time"
)

// Shared fixtures and recording callbacks used across tests.

// bboxAt builds a box from position and size without clamping, for
// constructing fixtures directly.
func bboxAt(x, y, w, h float64) *BBox {
	return &BBox{X1: x, Y1: y, X2: x + w, Y2: y + h}
}

// testProject builds a small two-node project with one edge.
func testProject() *Project {
	return &Project{
		ID:        "p1",
		UpdatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Nodes: []Node{
			{ID: "n1", Type: NodeText, Title: "Brief", UI: UISettings{Color: "#ff0000", BBox: bboxAt(0, 0, 240, 160)}},
			{ID: "n2", Type: NodeAI, Title: "Writer", UI: UISettings{BBox: bboxAt(400, 0, 320, 240)}},
		},
		Edges: []Edge{
			{From: "n1", To: "n2"},
		},
	}
}

// folderProject builds a project where n2 is hidden inside folder f1.
func folderProject() *Project {
	return &Project{
		ID:        "p2",
		UpdatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Nodes: []Node{
			{ID: "n1", Type: NodeText, UI: UISettings{BBox: bboxAt(0, 0, 240, 160)}},
			{ID: "n2", Type: NodeImage},
			{ID: "f1", Type: NodeFolder, Meta: Meta{FolderChildren: []string{"n2"}}, UI: UISettings{BBox: bboxAt(600, 0, 300, 300)}},
		},
		Edges: []Edge{
			{From: "n1", To: "n2"},
		},
	}
}

// callRecorder records every callback invocation for assertions.
type callRecorder struct {
	mu    sync.Mutex
	calls []recordedCall

	// failOps maps op name to the error its callback should return.
	failOps map[string]error
}

type recordedCall struct {
	op     string
	nodeID string
	edge   EdgeKey
	edges  []EdgeKey
	value  any
	at     time.Time
}

func newCallRecorder() *callRecorder {
	return &callRecorder{failOps: make(map[string]error)}
}

func (r *callRecorder) record(c recordedCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.at = time.Now()
	r.calls = append(r.calls, c)
	return r.failOps[c.op]
}

// ops returns the op names in invocation order.
func (r *callRecorder) ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.op
	}
	return out
}

// count returns how many times an op was invoked.
func (r *callRecorder) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

// last returns the most recent call for an op.
func (r *callRecorder) last(op string) (recordedCall, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.calls) - 1; i >= 0; i-- {
		if r.calls[i].op == op {
			return r.calls[i], true
		}
	}
	return recordedCall{}, false
}

// callbacks builds a full Callbacks contract backed by the recorder.
func (r *callRecorder) callbacks() Callbacks {
	return Callbacks{
		RunNode: func(_ context.Context, nodeID string) error {
			return r.record(recordedCall{op: "run_node", nodeID: nodeID})
		},
		RegenerateNode: func(_ context.Context, nodeID string) error {
			return r.record(recordedCall{op: "regenerate_node", nodeID: nodeID})
		},
		DeleteNode: func(_ context.Context, nodeID string) error {
			return r.record(recordedCall{op: "delete_node", nodeID: nodeID})
		},
		AddNodeFromPalette: func(_ context.Context, slug string, pos Point) error {
			return r.record(recordedCall{op: "add_node_from_palette", value: slug})
		},
		CopyNode: func(_ context.Context, snapshot Node, pos Point) error {
			return r.record(recordedCall{op: "copy_node", nodeID: snapshot.ID, value: snapshot})
		},
		ChangeNodeMeta: func(_ context.Context, nodeID string, patch MetaPatch) error {
			return r.record(recordedCall{op: "change_node_meta", nodeID: nodeID, value: patch})
		},
		ChangeNodeContent: func(_ context.Context, nodeID string, content string) error {
			return r.record(recordedCall{op: "change_node_content", nodeID: nodeID, value: content})
		},
		ChangeNodeTitle: func(_ context.Context, nodeID string, title string) error {
			return r.record(recordedCall{op: "change_node_title", nodeID: nodeID, value: title})
		},
		ChangeNodeAI: func(_ context.Context, nodeID string, patch AIPatch) error {
			return r.record(recordedCall{op: "change_node_ai", nodeID: nodeID, value: patch})
		},
		ChangeNodeUI: func(_ context.Context, nodeID string, patch UIPatch) error {
			return r.record(recordedCall{op: "change_node_ui", nodeID: nodeID, value: patch})
		},
		CreateEdge: func(_ context.Context, key EdgeKey) error {
			return r.record(recordedCall{op: "create_edge", edge: key})
		},
		RemoveEdges: func(_ context.Context, keys []EdgeKey) error {
			return r.record(recordedCall{op: "remove_edges", edges: keys})
		},
		MoveNodeToFolder: func(_ context.Context, nodeID, folderID string, index int) error {
			return r.record(recordedCall{op: "move_node_to_folder", nodeID: nodeID, value: folderID})
		},
		RemoveNodeFromFolder: func(_ context.Context, nodeID, folderID string, pos Point) error {
			return r.record(recordedCall{op: "remove_node_from_folder", nodeID: nodeID, value: folderID})
		},
		ImportFilesToFolder: func(_ context.Context, folderID string, files []ImportFile, pos Point) error {
			return r.record(recordedCall{op: "import_files_to_folder", nodeID: folderID, value: files})
		},
		ViewportChanged: func(_ context.Context, vp Viewport) {
			r.record(recordedCall{op: "viewport_changed", value: vp})
		},
	}
}
