package canvasgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleDropFolderNode(t *testing.T) {
	rec := newCallRecorder()
	c := NewController(rec.callbacks())
	defer c.Close()
	c.Sync(folderProject())

	drop := Drop{Payloads: map[string][]byte{
		PayloadFolderNode: []byte(`{"node_id":"n2","folder_id":"f1"}`),
	}}
	require.NoError(t, c.HandleDrop(context.Background(), drop, Point{X: 100, Y: 100}, nil))

	call, ok := rec.last("remove_node_from_folder")
	require.True(t, ok)
	assert.Equal(t, "n2", call.nodeID)
	assert.Equal(t, "f1", call.value)
}

func TestHandleDropFilesIntoFolder(t *testing.T) {
	rec := newCallRecorder()
	c := NewController(rec.callbacks())
	defer c.Close()
	c.Sync(folderProject())

	drop := Drop{Files: []ImportFile{{Name: "notes.txt", Data: []byte("hello")}}}
	zones := []DropZone{{FolderID: "f1", Rect: Rect{X: 600, Y: 0, Width: 300, Height: 300}}}
	require.NoError(t, c.HandleDrop(context.Background(), drop, Point{X: 700, Y: 100}, zones))

	call, ok := rec.last("import_files_to_folder")
	require.True(t, ok)
	assert.Equal(t, "f1", call.nodeID)
}

// TestHandleDropFilesOutsideZone leaves files with no folder target
// unmatched.
func TestHandleDropFilesOutsideZone(t *testing.T) {
	rec := newCallRecorder()
	c := NewController(rec.callbacks())
	defer c.Close()
	c.Sync(folderProject())

	drop := Drop{Files: []ImportFile{{Name: "notes.txt"}}}
	err := c.HandleDrop(context.Background(), drop, Point{X: 5, Y: 5}, nil)
	assert.ErrorIs(t, err, ErrEmptyDrop)
	assert.Zero(t, rec.count("import_files_to_folder"))
}

func TestHandleDropPalette(t *testing.T) {
	rec := newCallRecorder()
	c := NewController(rec.callbacks())
	defer c.Close()
	c.Sync(testProject())

	drop := Drop{Payloads: map[string][]byte{
		PayloadPalette: []byte(`{"slug":"text"}`),
	}}
	require.NoError(t, c.HandleDrop(context.Background(), drop, Point{X: 50, Y: 50}, nil))

	call, ok := rec.last("add_node_from_palette")
	require.True(t, ok)
	assert.Equal(t, "text", call.value)
}

func TestHandleDropNodeCopy(t *testing.T) {
	rec := newCallRecorder()
	c := NewController(rec.callbacks())
	defer c.Close()
	c.Sync(testProject())

	drop := Drop{Payloads: map[string][]byte{
		PayloadNodeCopy: []byte(`{"node_id":"n9","type":"text","title":"copied"}`),
	}}
	require.NoError(t, c.HandleDrop(context.Background(), drop, Point{X: 50, Y: 50}, nil))

	call, ok := rec.last("copy_node")
	require.True(t, ok)
	assert.Equal(t, "n9", call.nodeID)
}

// TestHandleDropPriority checks the fixed branch order: a folder-node
// payload wins over everything else riding along in the same drop.
func TestHandleDropPriority(t *testing.T) {
	rec := newCallRecorder()
	c := NewController(rec.callbacks())
	defer c.Close()
	c.Sync(folderProject())

	drop := Drop{
		Payloads: map[string][]byte{
			PayloadFolderNode: []byte(`{"node_id":"n2","folder_id":"f1"}`),
			PayloadPalette:    []byte(`{"slug":"text"}`),
			PayloadNodeCopy:   []byte(`{"node_id":"n9","type":"text"}`),
		},
		Files: []ImportFile{{Name: "notes.txt"}},
	}
	zones := []DropZone{{FolderID: "f1", Rect: Rect{X: 600, Y: 0, Width: 300, Height: 300}}}
	require.NoError(t, c.HandleDrop(context.Background(), drop, Point{X: 700, Y: 100}, zones))

	assert.Equal(t, []string{"remove_node_from_folder"}, rec.ops())
}

// TestHandleDropMalformedAborts verifies a bad payload fails the whole
// gesture; lower-priority branches never run as fallbacks.
func TestHandleDropMalformedAborts(t *testing.T) {
	rec := newCallRecorder()
	c := NewController(rec.callbacks())
	defer c.Close()
	c.Sync(testProject())

	drop := Drop{Payloads: map[string][]byte{
		PayloadPalette:  []byte(`{not json`),
		PayloadNodeCopy: []byte(`{"node_id":"n9","type":"text"}`),
	}}
	err := c.HandleDrop(context.Background(), drop, Point{}, nil)

	var dropErr *DropError
	require.ErrorAs(t, err, &dropErr)
	assert.Equal(t, PayloadPalette, dropErr.Kind)
	assert.Empty(t, rec.ops())
}

func TestHandleDropEmpty(t *testing.T) {
	rec := newCallRecorder()
	c := NewController(rec.callbacks())
	defer c.Close()
	c.Sync(testProject())

	err := c.HandleDrop(context.Background(), Drop{}, Point{}, nil)
	assert.ErrorIs(t, err, ErrEmptyDrop)
}

func TestHandleDropReadOnly(t *testing.T) {
	rec := newCallRecorder()
	c := NewController(rec.callbacks(), WithReadOnly(true))
	defer c.Close()
	c.Sync(testProject())

	drop := Drop{Payloads: map[string][]byte{PayloadPalette: []byte(`{"slug":"text"}`)}}
	err := c.HandleDrop(context.Background(), drop, Point{}, nil)
	assert.ErrorIs(t, err, ErrLocked)
	assert.Empty(t, rec.ops())
}
