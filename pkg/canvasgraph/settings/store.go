// Package settings provides local-only persistence for per-project
// canvas preferences: the lock flag and the last viewport. These are
// deliberately never written to the project itself; locking a canvas
// is a per-workstation choice, not a property of the document.
package settings

import (
	"errors"
	"time"
)

// Settings is the per-project local state.
type Settings struct {
	// Locked disables dragging and resizing canvas-wide.
	Locked bool

	// ViewportX, ViewportY and Zoom restore the camera between sessions.
	ViewportX float64
	ViewportY float64
	Zoom      float64

	// UpdatedAt is set by the store on save.
	UpdatedAt time.Time
}

// Store persists canvas settings per project.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores settings for a project, overwriting any previous value.
	Save(projectID string, s Settings) error

	// Load retrieves settings for a project.
	// Returns ErrNotFound if the project has no saved settings.
	Load(projectID string) (Settings, error)

	// Delete removes a project's settings.
	// Returns nil if the project has no saved settings.
	Delete(projectID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for settings operations.
var (
	// ErrNotFound indicates no settings exist for the project.
	ErrNotFound = errors.New("settings not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("settings store closed")
)
