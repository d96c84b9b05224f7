package canvasgraph

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/canvasgraph/canvasgraph/pkg/canvasgraph/observability"
)

// Drag payload kinds, in the order they are checked. A drop carries a
// map of kind to raw bytes (the transport analog of drag-and-drop MIME
// types); exactly one branch fires per drop.
const (
	PayloadFolderNode = "application/x-canvas-folder-node"
	PayloadPalette    = "application/x-canvas-palette"
	PayloadNodeCopy   = "application/x-canvas-node"
)

// Drop is one drop gesture from outside the canvas: typed payloads
// plus any raw files that came with it.
type Drop struct {
	// Payloads maps payload kind to its serialized data.
	Payloads map[string][]byte

	// Files are raw files dragged in from the host environment.
	Files []ImportFile
}

// folderNodePayload is the wire form of a drag out of a folder.
type folderNodePayload struct {
	NodeID   string `json:"node_id"`
	FolderID string `json:"folder_id"`
}

// palettePayload is the wire form of a palette item drag.
type palettePayload struct {
	Slug string `json:"slug"`
}

// HandleDrop routes a drop gesture to exactly one external handler.
// The checks run in fixed priority order:
//
//  1. folder-node payload → RemoveNodeFromFolder at the drop position
//  2. raw files over a folder drop zone → ImportFilesToFolder
//  3. palette slug → AddNodeFromPalette
//  4. node-copy payload → CopyNode
//
// A malformed payload aborts the gesture with a DropError and no partial
// mutation; lower-priority branches do not run as fallbacks. A drop
// matching no branch returns ErrEmptyDrop.
func (c *Controller) HandleDrop(ctx context.Context, drop Drop, pos Point, zones []DropZone) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	if c.readOnly {
		c.mu.Unlock()
		return ErrLocked
	}
	c.mu.Unlock()

	if raw, ok := drop.Payloads[PayloadFolderNode]; ok {
		var p folderNodePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return c.dropAbort(PayloadFolderNode, err)
		}
		if p.NodeID == "" {
			return c.dropAbort(PayloadFolderNode, fmt.Errorf("missing node_id"))
		}
		if c.cb.RemoveNodeFromFolder == nil {
			return c.unwired("remove_node_from_folder")
		}
		return c.dispatch(ctx, "remove_node_from_folder", p.NodeID, func(ctx context.Context) error {
			return c.cb.RemoveNodeFromFolder(ctx, p.NodeID, p.FolderID, pos)
		})
	}

	if len(drop.Files) > 0 {
		if folderID := c.folderZoneAt(pos, zones); folderID != "" {
			if c.cb.ImportFilesToFolder == nil {
				return c.unwired("import_files_to_folder")
			}
			return c.dispatch(ctx, "import_files_to_folder", folderID, func(ctx context.Context) error {
				return c.cb.ImportFilesToFolder(ctx, folderID, drop.Files, pos)
			})
		}
	}

	if raw, ok := drop.Payloads[PayloadPalette]; ok {
		var p palettePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return c.dropAbort(PayloadPalette, err)
		}
		if p.Slug == "" {
			return c.dropAbort(PayloadPalette, fmt.Errorf("missing slug"))
		}
		if c.cb.AddNodeFromPalette == nil {
			return c.unwired("add_node_from_palette")
		}
		return c.dispatch(ctx, "add_node_from_palette", "", func(ctx context.Context) error {
			return c.cb.AddNodeFromPalette(ctx, p.Slug, pos)
		})
	}

	if raw, ok := drop.Payloads[PayloadNodeCopy]; ok {
		var snapshot Node
		if err := json.Unmarshal(raw, &snapshot); err != nil {
			return c.dropAbort(PayloadNodeCopy, err)
		}
		if snapshot.ID == "" {
			return c.dropAbort(PayloadNodeCopy, fmt.Errorf("missing node_id"))
		}
		if c.cb.CopyNode == nil {
			return c.unwired("copy_node")
		}
		return c.dispatch(ctx, "copy_node", snapshot.ID, func(ctx context.Context) error {
			return c.cb.CopyNode(ctx, snapshot, pos)
		})
	}

	return ErrEmptyDrop
}

// folderZoneAt returns the folder whose drop zone contains the point, if
// that folder is a visible folder node.
func (c *Controller) folderZoneAt(pos Point, zones []DropZone) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, z := range zones {
		if !z.Rect.Contains(pos) {
			continue
		}
		if n, ok := c.elements.NodeByID(z.FolderID); ok && n.Node.IsFolder() {
			return z.FolderID
		}
	}
	return ""
}

// dropAbort logs and wraps a payload parse failure.
func (c *Controller) dropAbort(kind string, err error) error {
	dropErr := &DropError{Kind: kind, Err: err}
	observability.LogDropIgnored(c.logger, kind, err)
	return dropErr
}
