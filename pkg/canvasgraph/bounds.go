package canvasgraph

import "math"

// Default node size limits in canvas pixel units. Every bbox write and
// every intermediate resize step is clamped to these, so a persisted box
// can never imply a degenerate card.
const (
	MinWidth  = 200.0
	MaxWidth  = 1200.0
	MinHeight = 120.0
	MaxHeight = 1600.0

	DefaultWidth  = 320.0
	DefaultHeight = 240.0
)

// Bounds holds the size limits and defaults used when resolving a node's
// visual dimensions. The zero value is not usable; call DefaultBounds or
// derive one from a ViewConfig.
type Bounds struct {
	MinWidth      float64
	MaxWidth      float64
	MinHeight     float64
	MaxHeight     float64
	DefaultWidth  float64
	DefaultHeight float64
}

// DefaultBounds returns the package default size limits.
func DefaultBounds() Bounds {
	return Bounds{
		MinWidth:      MinWidth,
		MaxWidth:      MaxWidth,
		MinHeight:     MinHeight,
		MaxHeight:     MaxHeight,
		DefaultWidth:  DefaultWidth,
		DefaultHeight: DefaultHeight,
	}
}

// valid reports whether the bounds carry usable limits.
func (b Bounds) valid() bool {
	return b.MinWidth > 0 && b.MaxWidth >= b.MinWidth &&
		b.MinHeight > 0 && b.MaxHeight >= b.MinHeight
}

// ClampSize clamps a width/height pair into the bounds. Non-finite or
// non-positive dimensions fall back to the defaults before clamping.
func (b Bounds) ClampSize(w, h float64) Size {
	if !finite(w) || w <= 0 {
		w = b.DefaultWidth
	}
	if !finite(h) || h <= 0 {
		h = b.DefaultHeight
	}
	return Size{
		Width:  clamp(w, b.MinWidth, b.MaxWidth),
		Height: clamp(h, b.MinHeight, b.MaxHeight),
	}
}

// ResolveBBox converts a stored bounding box into a position and a
// clamped size. A nil box, or one with non-finite coordinates, degrades
// to the origin and the default size. The function is total: it never
// fails on bad input.
func ResolveBBox(bbox *BBox, b Bounds) (Point, Size) {
	if bbox == nil {
		return Point{}, b.ClampSize(b.DefaultWidth, b.DefaultHeight)
	}

	pos := Point{X: bbox.X1, Y: bbox.Y1}
	if !finite(pos.X) {
		pos.X = 0
	}
	if !finite(pos.Y) {
		pos.Y = 0
	}

	return pos, b.ClampSize(bbox.X2-bbox.X1, bbox.Y2-bbox.Y1)
}

// BBoxAt builds a bounding box from a position and a size, clamping the
// size into bounds first. This is the only way the engine produces boxes
// for commit, which keeps the clamping invariant on every write path.
func BBoxAt(pos Point, size Size, b Bounds) BBox {
	if !finite(pos.X) {
		pos.X = 0
	}
	if !finite(pos.Y) {
		pos.Y = 0
	}
	clamped := b.ClampSize(size.Width, size.Height)
	return BBox{
		X1: pos.X,
		Y1: pos.Y,
		X2: pos.X + clamped.Width,
		Y2: pos.Y + clamped.Height,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
