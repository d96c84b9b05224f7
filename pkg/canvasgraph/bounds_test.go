package canvasgraph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampSize(t *testing.T) {
	b := DefaultBounds()

	tests := []struct {
		name string
		w, h float64
		want Size
	}{
		{"in range", 240, 160, Size{Width: 240, Height: 160}},
		{"below min", 50, 50, Size{Width: MinWidth, Height: MinHeight}},
		{"above max", 9999, 9999, Size{Width: MaxWidth, Height: MaxHeight}},
		{"zero defaults", 0, 0, Size{Width: DefaultWidth, Height: DefaultHeight}},
		{"negative defaults", -10, -10, Size{Width: DefaultWidth, Height: DefaultHeight}},
		{"nan defaults", math.NaN(), math.NaN(), Size{Width: DefaultWidth, Height: DefaultHeight}},
		{"inf defaults", math.Inf(1), math.Inf(-1), Size{Width: DefaultWidth, Height: DefaultHeight}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.ClampSize(tt.w, tt.h))
		})
	}
}

func TestResolveBBox(t *testing.T) {
	b := DefaultBounds()

	t.Run("nil box", func(t *testing.T) {
		pos, size := ResolveBBox(nil, b)
		assert.Equal(t, Point{}, pos)
		assert.Equal(t, Size{Width: DefaultWidth, Height: DefaultHeight}, size)
	})

	t.Run("normal box", func(t *testing.T) {
		pos, size := ResolveBBox(&BBox{X1: 10, Y1: 20, X2: 250, Y2: 180}, b)
		assert.Equal(t, Point{X: 10, Y: 20}, pos)
		assert.Equal(t, Size{Width: 240, Height: 160}, size)
	})

	t.Run("non-finite origin", func(t *testing.T) {
		pos, size := ResolveBBox(&BBox{X1: math.NaN(), Y1: math.Inf(1), X2: 240, Y2: 160}, b)
		assert.Equal(t, Point{}, pos)
		// NaN/Inf dimensions fall through to defaults.
		assert.Equal(t, Size{Width: DefaultWidth, Height: DefaultHeight}, size)
	})
}

func TestBBoxAt(t *testing.T) {
	b := DefaultBounds()

	t.Run("clamps before writing", func(t *testing.T) {
		box := BBoxAt(Point{X: 100, Y: 50}, Size{Width: 10, Height: 10}, b)
		assert.Equal(t, BBox{X1: 100, Y1: 50, X2: 100 + MinWidth, Y2: 50 + MinHeight}, box)
	})

	t.Run("round trips through resolve", func(t *testing.T) {
		box := BBoxAt(Point{X: 5, Y: 7}, Size{Width: 300, Height: 200}, b)
		pos, size := ResolveBBox(&box, b)
		assert.Equal(t, Point{X: 5, Y: 7}, pos)
		assert.Equal(t, Size{Width: 300, Height: 200}, size)
	})
}

func TestBoundsValid(t *testing.T) {
	assert.True(t, DefaultBounds().valid())
	assert.False(t, Bounds{}.valid())
	assert.False(t, Bounds{MinWidth: 300, MaxWidth: 100, MinHeight: 100, MaxHeight: 200}.valid())
}
