package canvasgraph

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/canvasgraph/canvasgraph/pkg/canvasgraph/observability"
	"github.com/canvasgraph/canvasgraph/pkg/canvasgraph/schedule"
)

// Card is the shell state for one node's rendered card: header with
// editable title and color, a collapsible body delegated to an external
// per-type renderer, and a footer with the character count.
//
// Edit buffers are uncommitted until blur or explicit save. Typing never
// writes to the server per keystroke: free-text content auto-commits
// through a debounce window, while structural fields (color, collapse
// flag) commit immediately. This draft/commit split decouples
// high-frequency local edits from low-frequency persisted mutations.
type Card struct {
	cb            Callbacks
	clock         schedule.Clock
	bounds        Bounds
	debounceDelay time.Duration
	logger        *slog.Logger
	metrics       observability.MetricsRecorder

	mu           sync.Mutex
	node         Node
	titleDraft   string
	titleDirty   bool
	contentDraft string
	contentDirty bool
	closed       bool

	contentDebounce *schedule.Debouncer

	// resize is the corner-handle drag state. The hot path (every
	// pointer-move) only writes this struct; nothing is committed and
	// no events fire until EndResize, so the card doesn't churn on
	// every pixel of movement.
	resize struct {
		active bool
		pos    Point
		size   Size
	}
}

// CardOption configures a Card.
type CardOption func(*Card)

// WithCardClock replaces the card's clock; tests pass a FakeClock.
func WithCardClock(clock schedule.Clock) CardOption {
	return func(c *Card) { c.clock = clock }
}

// WithCardLogger sets the card's logger.
func WithCardLogger(logger *slog.Logger) CardOption {
	return func(c *Card) { c.logger = logger }
}

// WithCardMetrics sets the card's metrics recorder.
func WithCardMetrics(m observability.MetricsRecorder) CardOption {
	return func(c *Card) { c.metrics = m }
}

// WithCardConfig applies the engine tunables (bounds, debounce window).
func WithCardConfig(cfg ViewConfig) CardOption {
	return func(c *Card) {
		cfg = cfg.normalized()
		c.bounds = cfg.Bounds
		c.debounceDelay = cfg.ContentDebounce
	}
}

// NewCard creates the shell state for one node.
func NewCard(node Node, cb Callbacks, opts ...CardOption) *Card {
	c := &Card{
		cb:            cb,
		clock:         schedule.NewClock(),
		bounds:        DefaultBounds(),
		metrics:       observability.NoopMetrics{},
		node:          node,
		titleDraft:    node.Title,
		contentDraft:  node.Content,
		debounceDelay: DefaultContentDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.contentDebounce = schedule.NewDebouncer(c.clock, c.debounceDelay)
	return c
}

// NodeID returns the node this card renders.
func (c *Card) NodeID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.node.ID
}

// Collapsed reports whether the card body is collapsed.
func (c *Card) Collapsed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.node.Meta.Collapsed
}

// Title returns the current title draft.
func (c *Card) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.titleDraft
}

// Content returns the current content draft.
func (c *Card) Content() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contentDraft
}

// CharCount returns the content draft's character count for the footer.
func (c *Card) CharCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return utf8.RuneCountInString(c.contentDraft)
}

// SetTitleDraft updates the local title buffer without committing.
func (c *Card) SetTitleDraft(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || title == c.titleDraft {
		return
	}
	c.titleDraft = title
	c.titleDirty = title != c.node.Title
}

// CommitTitle writes the title draft on blur. Clean drafts are a no-op.
func (c *Card) CommitTitle(ctx context.Context) error {
	c.mu.Lock()
	if c.closed || !c.titleDirty {
		c.mu.Unlock()
		return nil
	}
	title := c.titleDraft
	c.titleDirty = false
	c.node.Title = title
	nodeID := c.node.ID
	c.mu.Unlock()

	if c.cb.ChangeNodeTitle == nil {
		return nil
	}
	done := observability.TimedOperation()
	err := c.cb.ChangeNodeTitle(ctx, nodeID, title)
	c.metrics.RecordCommit(ctx, "title", durationFromMs(done()))
	if err != nil {
		observability.LogDispatchError(c.logger, "change_node_title", nodeID, err)
		return &DispatchError{NodeID: nodeID, Op: "change_node_title", Err: err}
	}
	return nil
}

// SetContentDraft updates the local content buffer and schedules the
// debounced auto-commit. Rapid edits inside the window coalesce into one
// commit carrying the final value.
func (c *Card) SetContentDraft(content string) {
	c.mu.Lock()
	if c.closed || content == c.contentDraft {
		c.mu.Unlock()
		return
	}
	c.contentDraft = content
	c.contentDirty = content != c.node.Content
	dirty := c.contentDirty
	c.mu.Unlock()

	if dirty {
		c.contentDebounce.Trigger(func() {
			c.commitContent(context.Background())
		})
	}
}

// FlushContent forces any pending content commit immediately. Hosts call
// this before a dependent action such as running the node, so generation
// always sees the latest draft.
func (c *Card) FlushContent(ctx context.Context) error {
	c.contentDebounce.Flush()
	return c.commitContent(ctx)
}

// commitContent writes the content draft if it is dirty.
func (c *Card) commitContent(ctx context.Context) error {
	c.mu.Lock()
	if c.closed || !c.contentDirty {
		c.mu.Unlock()
		return nil
	}
	content := c.contentDraft
	c.contentDirty = false
	c.node.Content = content
	nodeID := c.node.ID
	c.mu.Unlock()

	if c.cb.ChangeNodeContent == nil {
		return nil
	}
	done := observability.TimedOperation()
	err := c.cb.ChangeNodeContent(ctx, nodeID, content)
	c.metrics.RecordCommit(ctx, "content", durationFromMs(done()))
	if err != nil {
		observability.LogDispatchError(c.logger, "change_node_content", nodeID, err)
		return &DispatchError{NodeID: nodeID, Op: "change_node_content", Err: err}
	}
	return nil
}

// SetColor commits a color change immediately. Color is structural, not
// free text: there is nothing to coalesce.
func (c *Card) SetColor(ctx context.Context, color string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.node.UI.Color = color
	nodeID := c.node.ID
	c.mu.Unlock()

	if c.cb.ChangeNodeUI == nil {
		return nil
	}
	if err := c.cb.ChangeNodeUI(ctx, nodeID, UIPatch{Color: &color}); err != nil {
		observability.LogDispatchError(c.logger, "change_node_ui", nodeID, err)
		return &DispatchError{NodeID: nodeID, Op: "change_node_ui", Err: err}
	}
	return nil
}

// ToggleCollapsed flips the collapse state and commits it immediately:
// it is small and low-frequency, so there is no reason to debounce.
func (c *Card) ToggleCollapsed(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.node.Meta.Collapsed = !c.node.Meta.Collapsed
	collapsed := c.node.Meta.Collapsed
	nodeID := c.node.ID
	c.mu.Unlock()

	if c.cb.ChangeNodeMeta == nil {
		return nil
	}
	if err := c.cb.ChangeNodeMeta(ctx, nodeID, MetaPatch{Collapsed: &collapsed}); err != nil {
		observability.LogDispatchError(c.logger, "change_node_meta", nodeID, err)
		return &DispatchError{NodeID: nodeID, Op: "change_node_meta", Err: err}
	}
	return nil
}

// BeginResize starts a corner-handle resize from the node's current box.
func (c *Card) BeginResize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	pos, size := ResolveBBox(c.node.UI.BBox, c.bounds)
	c.resize.active = true
	c.resize.pos = pos
	c.resize.size = size
}

// ResizeBy applies one pointer-move delta. Clamping happens at every
// step; the intermediate size never leaves the configured bounds.
func (c *Card) ResizeBy(dx, dy float64) Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.resize.active {
		return Size{}
	}
	c.resize.size = c.bounds.ClampSize(c.resize.size.Width+dx, c.resize.size.Height+dy)
	return c.resize.size
}

// CurrentSize returns the size mid-resize, or the resolved stored size.
func (c *Card) CurrentSize() Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resize.active {
		return c.resize.size
	}
	_, size := ResolveBBox(c.node.UI.BBox, c.bounds)
	return size
}

// EndResize commits the final box and leaves the resize state.
func (c *Card) EndResize(ctx context.Context) error {
	c.mu.Lock()
	if c.closed || !c.resize.active {
		c.mu.Unlock()
		return nil
	}
	c.resize.active = false
	bbox := BBoxAt(c.resize.pos, c.resize.size, c.bounds)
	c.node.UI.BBox = &bbox
	nodeID := c.node.ID
	c.mu.Unlock()

	if c.cb.ChangeNodeUI == nil {
		return nil
	}
	if err := c.cb.ChangeNodeUI(ctx, nodeID, UIPatch{BBox: &bbox}); err != nil {
		observability.LogDispatchError(c.logger, "change_node_ui", nodeID, err)
		return &DispatchError{NodeID: nodeID, Op: "change_node_ui", Err: err}
	}
	return nil
}

// Refresh adopts a fresh authoritative node after a structural sync.
// Dirty drafts win: a server refresh never clobbers text the user is
// still editing.
func (c *Card) Refresh(node Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || node.ID != c.node.ID {
		return
	}
	c.node = node
	if !c.titleDirty {
		c.titleDraft = node.Title
	}
	if !c.contentDirty {
		c.contentDraft = node.Content
	}
}

// Close cancels pending timers. A closed card ignores all edits, which
// prevents a stale debounced commit from writing to a deleted node.
func (c *Card) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.contentDebounce.Stop()
}
