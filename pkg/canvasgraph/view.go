package canvasgraph

import (
	"time"

	"github.com/canvasgraph/canvasgraph/pkg/canvasgraph/config"
)

// Default timing tunables.
const (
	// DefaultContentDebounce governs auto-commit of free-text drafts.
	DefaultContentDebounce = 600 * time.Millisecond

	// DefaultDeleteStagger spaces out batch delete dispatches so they
	// don't race the external layer's edge-cleanup side effects.
	DefaultDeleteStagger = 100 * time.Millisecond
)

// ViewConfig collects the engine's tunables: node size limits, debounce
// windows and the batch-delete stagger delay.
type ViewConfig struct {
	Bounds          Bounds
	ContentDebounce time.Duration
	DeleteStagger   time.Duration
	EdgeColor       string
}

// DefaultViewConfig returns the package defaults.
func DefaultViewConfig() ViewConfig {
	return ViewConfig{
		Bounds:          DefaultBounds(),
		ContentDebounce: DefaultContentDebounce,
		DeleteStagger:   DefaultDeleteStagger,
		EdgeColor:       DefaultEdgeColor,
	}
}

// ViewConfigFrom builds a ViewConfig from loaded configuration, filling
// any missing key with the package default. Recognized keys:
//
//	min_width, max_width, min_height, max_height,
//	default_width, default_height   (pixels)
//	content_debounce, delete_stagger (duration string or milliseconds)
//	edge_color                       (CSS color string)
func ViewConfigFrom(c config.Config) ViewConfig {
	def := DefaultViewConfig()
	return ViewConfig{
		Bounds: Bounds{
			MinWidth:      c.Float("min_width", def.Bounds.MinWidth),
			MaxWidth:      c.Float("max_width", def.Bounds.MaxWidth),
			MinHeight:     c.Float("min_height", def.Bounds.MinHeight),
			MaxHeight:     c.Float("max_height", def.Bounds.MaxHeight),
			DefaultWidth:  c.Float("default_width", def.Bounds.DefaultWidth),
			DefaultHeight: c.Float("default_height", def.Bounds.DefaultHeight),
		},
		ContentDebounce: c.Duration("content_debounce", def.ContentDebounce),
		DeleteStagger:   c.Duration("delete_stagger", def.DeleteStagger),
		EdgeColor:       c.String("edge_color", def.EdgeColor),
	}
}

// normalized returns the config with invalid values replaced by defaults.
func (v ViewConfig) normalized() ViewConfig {
	def := DefaultViewConfig()
	if !v.Bounds.valid() {
		v.Bounds = def.Bounds
	}
	if v.ContentDebounce <= 0 {
		v.ContentDebounce = def.ContentDebounce
	}
	if v.DeleteStagger < 0 {
		v.DeleteStagger = def.DeleteStagger
	}
	if v.EdgeColor == "" {
		v.EdgeColor = def.EdgeColor
	}
	return v
}
