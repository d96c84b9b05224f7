package canvasgraph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildGraphElementsBasic projects a simple two-node project and
// checks positions, sizes and the connecting edge.
func TestBuildGraphElementsBasic(t *testing.T) {
	p := testProject()
	el := BuildGraphElements(BuildArgs{Project: p})

	require.Len(t, el.Nodes, 2)
	require.Len(t, el.Edges, 1)

	n1, ok := el.NodeByID("n1")
	require.True(t, ok)
	assert.Equal(t, Point{X: 0, Y: 0}, n1.Position)
	assert.Equal(t, Size{Width: 240, Height: 160}, n1.Size)
	assert.True(t, n1.Draggable)
	assert.False(t, n1.Disabled)

	e := el.Edges[0]
	assert.Equal(t, "n1", e.From)
	assert.Equal(t, "n2", e.To)
	// Edge colour comes from the source node's configured colour.
	assert.Equal(t, "#ff0000", e.Color)
}

// TestBuildGraphElementsPure verifies that building twice from the same
// inputs yields identical results and never mutates the project.
func TestBuildGraphElementsPure(t *testing.T) {
	p := testProject()
	before := *p

	a := BuildGraphElements(BuildArgs{Project: p})
	b := BuildGraphElements(BuildArgs{Project: p})

	assert.Equal(t, a, b)
	assert.Equal(t, before.ID, p.ID)
	assert.Len(t, p.Nodes, len(before.Nodes))
	assert.Len(t, p.Edges, len(before.Edges))
}

// TestBuildGraphElementsNilProject returns empty slices, never nil.
func TestBuildGraphElementsNilProject(t *testing.T) {
	el := BuildGraphElements(BuildArgs{})
	assert.NotNil(t, el.Nodes)
	assert.NotNil(t, el.Edges)
	assert.Empty(t, el.Nodes)
	assert.Empty(t, el.Edges)
}

// TestBuildGraphElementsFolderContainment hides folder children and
// suppresses any edge touching a hidden node.
func TestBuildGraphElementsFolderContainment(t *testing.T) {
	p := folderProject()
	el := BuildGraphElements(BuildArgs{Project: p})

	require.Len(t, el.Nodes, 2)
	_, ok := el.NodeByID("n2")
	assert.False(t, ok)
	_, ok = el.NodeByID("n1")
	assert.True(t, ok)
	_, ok = el.NodeByID("f1")
	assert.True(t, ok)

	// n1 -> n2 edge must be suppressed because n2 is hidden.
	assert.Empty(t, el.Edges)
}

// TestBuildGraphElementsDanglingEdges skips edges whose endpoints do not
// exist, and never emits a chip referencing a missing node.
func TestBuildGraphElementsDanglingEdges(t *testing.T) {
	p := testProject()
	p.Edges = append(p.Edges, Edge{From: "n1", To: "ghost"}, Edge{From: "ghost", To: "n2"})

	el := BuildGraphElements(BuildArgs{Project: p})
	require.Len(t, el.Edges, 1)

	n1, ok := el.NodeByID("n1")
	require.True(t, ok)
	require.Len(t, n1.Targets, 1)
	assert.Equal(t, "n2", n1.Targets[0].ID)
}

// TestBuildGraphElementsMissingBBox falls back to the default position
// and size when a node has no stored box.
func TestBuildGraphElementsMissingBBox(t *testing.T) {
	p := &Project{
		ID:        "p3",
		UpdatedAt: time.Now(),
		Nodes:     []Node{{ID: "n1", Type: NodeText}},
	}
	el := BuildGraphElements(BuildArgs{Project: p})
	require.Len(t, el.Nodes, 1)
	assert.Equal(t, Point{}, el.Nodes[0].Position)
	assert.Equal(t, Size{Width: DefaultWidth, Height: DefaultHeight}, el.Nodes[0].Size)
}

// TestBuildGraphElementsClamping clamps undersized and oversized boxes
// into the configured bounds.
func TestBuildGraphElementsClamping(t *testing.T) {
	tests := []struct {
		name string
		bbox *BBox
		want Size
	}{
		{"undersized", bboxAt(0, 0, 50, 50), Size{Width: MinWidth, Height: MinHeight}},
		{"oversized", bboxAt(0, 0, 5000, 5000), Size{Width: MaxWidth, Height: MaxHeight}},
		{"in range", bboxAt(0, 0, 240, 160), Size{Width: 240, Height: 160}},
		{"inverted", &BBox{X1: 100, Y1: 100, X2: 0, Y2: 0}, Size{Width: DefaultWidth, Height: DefaultHeight}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Project{ID: "p", UpdatedAt: time.Now(), Nodes: []Node{{ID: "n1", Type: NodeText, UI: UISettings{BBox: tt.bbox}}}}
			el := BuildGraphElements(BuildArgs{Project: p})
			require.Len(t, el.Nodes, 1)
			assert.Equal(t, tt.want, el.Nodes[0].Size)
		})
	}
}

// TestBuildGraphElementsObservedSizeOverride prefers a live measured
// size over the stored box, still clamped.
func TestBuildGraphElementsObservedSizeOverride(t *testing.T) {
	p := testProject()
	el := BuildGraphElements(BuildArgs{
		Project:       p,
		ObservedSizes: map[string]Size{"n1": {Width: 5000, Height: 90}},
	})
	n1, ok := el.NodeByID("n1")
	require.True(t, ok)
	assert.Equal(t, Size{Width: MaxWidth, Height: MinHeight}, n1.Size)
}

// TestBuildGraphElementsFlags exercises selection, generating, loading
// and read-only flag propagation.
func TestBuildGraphElementsFlags(t *testing.T) {
	p := testProject()

	t.Run("selected", func(t *testing.T) {
		el := BuildGraphElements(BuildArgs{Project: p, SelectedNodeID: "n2"})
		n1, _ := el.NodeByID("n1")
		n2, _ := el.NodeByID("n2")
		assert.False(t, n1.Selected)
		assert.True(t, n2.Selected)
	})

	t.Run("generating disables and pins", func(t *testing.T) {
		el := BuildGraphElements(BuildArgs{Project: p, Generating: map[string]bool{"n2": true}})
		n1, _ := el.NodeByID("n1")
		n2, _ := el.NodeByID("n2")
		assert.True(t, n2.Generating)
		assert.True(t, n2.Disabled)
		assert.False(t, n2.Draggable)
		assert.False(t, n1.Disabled)
		assert.True(t, n1.Draggable)
	})

	t.Run("loading disables all", func(t *testing.T) {
		el := BuildGraphElements(BuildArgs{Project: p, Loading: true})
		for _, n := range el.Nodes {
			assert.True(t, n.Disabled)
			assert.False(t, n.Draggable)
		}
	})

	t.Run("locked pins but does not disable", func(t *testing.T) {
		el := BuildGraphElements(BuildArgs{Project: p, Locked: true})
		for _, n := range el.Nodes {
			assert.False(t, n.Disabled)
			assert.False(t, n.Draggable)
		}
	})

	t.Run("read-only disables and pins", func(t *testing.T) {
		el := BuildGraphElements(BuildArgs{Project: p, ReadOnly: true})
		for _, n := range el.Nodes {
			assert.True(t, n.Disabled)
			assert.False(t, n.Draggable)
		}
	})
}

// TestBuildGraphElementsEdgeColorFallback walks the colour fallback
// chain: node colour, configured colour, package default.
func TestBuildGraphElementsEdgeColorFallback(t *testing.T) {
	p := testProject()
	p.Nodes[0].UI.Color = ""

	el := BuildGraphElements(BuildArgs{Project: p, EdgeColor: "#123456"})
	require.Len(t, el.Edges, 1)
	assert.Equal(t, "#123456", el.Edges[0].Color)

	el = BuildGraphElements(BuildArgs{Project: p})
	require.Len(t, el.Edges, 1)
	assert.Equal(t, DefaultEdgeColor, el.Edges[0].Color)
}

// TestBuildGraphElementsActiveEdge marks the matching edge active.
func TestBuildGraphElementsActiveEdge(t *testing.T) {
	p := testProject()
	id := EdgeID(EdgeKey{From: "n1", To: "n2"})
	el := BuildGraphElements(BuildArgs{Project: p, ActiveEdgeID: id})
	require.Len(t, el.Edges, 1)
	assert.True(t, el.Edges[0].Active)
}

// TestEdgeIDDeterministic verifies the identifier is stable and encodes
// handles only when present.
func TestEdgeIDDeterministic(t *testing.T) {
	a := EdgeID(EdgeKey{From: "n1", To: "n2"})
	b := EdgeID(EdgeKey{From: "n1", To: "n2"})
	assert.Equal(t, a, b)

	h := EdgeID(EdgeKey{From: "n1", To: "n2", SourceHandle: "out", TargetHandle: "in"})
	assert.NotEqual(t, a, h)
}
