package canvasgraph

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/canvasgraph/canvasgraph/pkg/canvasgraph/event"
	"github.com/canvasgraph/canvasgraph/pkg/canvasgraph/observability"
	"github.com/canvasgraph/canvasgraph/pkg/canvasgraph/registry"
	"github.com/canvasgraph/canvasgraph/pkg/canvasgraph/schedule"
	"github.com/canvasgraph/canvasgraph/pkg/canvasgraph/settings"
)

// Controller owns the interactive canvas state. It decides when to
// re-run the builder, holds the transient interaction state (selection,
// lock, in-progress drags and resizes), and mediates every gesture into
// the Callbacks contract.
//
// Controller is safe for concurrent use, but the expected usage is a
// single UI event loop feeding it gestures while an external fetcher
// feeds it Sync calls.
type Controller struct {
	cfg     ViewConfig
	cb      Callbacks
	clock   schedule.Clock
	store   settings.Store
	bus     *event.Bus
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	providers *registry.Registry[string, Provider]

	mu             sync.Mutex
	project        *Project
	signature      string
	elements       GraphElements
	selectedNodeID string
	activeEdgeID   string
	locked         bool
	readOnly       bool
	loading        bool
	minimapVisible bool
	generating     map[string]bool
	observedSizes  map[string]Size
	viewport       Viewport
	drags          map[string]*dragState
	resizes        map[string]*resizeState
	deleteRun      *schedule.Run
	closed         bool

	pending pendingLedger
}

// dragState tracks one node's in-progress drag.
type dragState struct {
	start Point
	size  Size
}

// resizeState tracks one node's in-progress resize.
type resizeState struct {
	pos  Point
	size Size
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the real clock; tests pass a schedule.FakeClock.
func WithClock(clock schedule.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithViewConfig sets the engine tunables. Invalid fields fall back to
// defaults.
func WithViewConfig(cfg ViewConfig) Option {
	return func(c *Controller) { c.cfg = cfg.normalized() }
}

// WithSettingsStore wires the local-only settings store used to persist
// the lock flag and viewport per project. Store failures are logged and
// otherwise ignored.
func WithSettingsStore(store settings.Store) Option {
	return func(c *Controller) { c.store = store }
}

// WithLogger sets the structured logger. Nil disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithSpanManager sets the trace span manager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *Controller) { c.spans = s }
}

// WithProviders seeds the read-only provider list for AI-node option
// rendering.
func WithProviders(providers []Provider) Option {
	return func(c *Controller) {
		for _, p := range providers {
			c.providers.Register(p.ID, p)
		}
	}
}

// WithReadOnly starts the controller in read-only mode.
func WithReadOnly(readOnly bool) Option {
	return func(c *Controller) { c.readOnly = readOnly }
}

// NewController creates a canvas controller with the given callback
// contract. The zero Callbacks value is valid: unwired gestures become
// logged no-ops.
func NewController(cb Callbacks, opts ...Option) *Controller {
	c := &Controller{
		cfg:           DefaultViewConfig(),
		cb:            cb,
		clock:         schedule.NewClock(),
		bus:           event.NewBus(event.BusConfig{}),
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
		providers:     registry.New[string, Provider](),
		generating:    make(map[string]bool),
		observedSizes: make(map[string]Size),
		drags:         make(map[string]*dragState),
		resizes:       make(map[string]*resizeState),
		elements:      GraphElements{Nodes: []VisualNode{}, Edges: []VisualEdge{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Events returns the canvas change-event bus. Subscribe before the first
// Sync to observe the initial rebuild.
func (c *Controller) Events() *event.Bus {
	return c.bus
}

// Providers returns the registered provider list. Order is unspecified.
func (c *Controller) Providers() []Provider {
	return c.providers.Values()
}

// Sync hands the controller a fresh authoritative project. The builder
// re-runs only when the structural signature changed; otherwise the call
// is a cheap no-op, which is what keeps in-progress drags alive across
// unrelated prop churn.
func (c *Controller) Sync(project *Project) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	sig := StructuralSignature(project)
	if sig == c.signature && c.project != nil {
		c.project = project
		c.mu.Unlock()
		return
	}

	c.project = project
	c.signature = sig
	c.pending.clear()
	// Observed sizes exist to bridge uncommitted resizes across a
	// rebuild; once the authoritative graph moves on, stale entries for
	// nodes with no active resize would pin cards to dead sizes.
	for id := range c.observedSizes {
		if _, active := c.resizes[id]; !active {
			delete(c.observedSizes, id)
		}
	}
	c.rebuildLocked()
	projectID := ""
	if project != nil {
		projectID = project.ID
	}
	nodes, edges := len(c.elements.Nodes), len(c.elements.Edges)
	c.mu.Unlock()

	c.bus.Publish(event.New(event.TypeRebuilt, projectID).
		WithPayload("nodes", nodes).
		WithPayload("edges", edges))
}

// rebuildLocked re-runs the builder from current state. Caller holds mu.
func (c *Controller) rebuildLocked() {
	done := observability.TimedOperation()
	ctx, span := c.spans.StartSyncSpan(context.Background(), c.projectIDLocked(), c.signature)

	c.elements = BuildGraphElements(BuildArgs{
		Project:        c.project,
		SelectedNodeID: c.selectedNodeID,
		ActiveEdgeID:   c.activeEdgeID,
		Loading:        c.loading,
		Locked:         c.locked,
		ReadOnly:       c.readOnly,
		Generating:     c.generating,
		ObservedSizes:  c.observedSizes,
		Bounds:         c.cfg.Bounds,
		EdgeColor:      c.cfg.EdgeColor,
	})

	ms := done()
	c.spans.EndSpanWithError(span, nil)
	c.metrics.RecordRebuild(ctx, len(c.elements.Nodes), len(c.elements.Edges), durationFromMs(ms))
	observability.LogRebuild(c.logger, c.projectIDLocked(), c.signature,
		len(c.elements.Nodes), len(c.elements.Edges), ms)
}

// Elements returns a snapshot of the current visual node and edge sets.
// The snapshot is detached from the controller's state: later gestures,
// selection changes and syncs never mutate a returned value.
func (c *Controller) Elements() GraphElements {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elements.clone()
}

// Signature returns the structural signature of the last synced project.
func (c *Controller) Signature() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signature
}

// PendingMutations returns the optimistic mutations recorded since the
// last structural sync.
func (c *Controller) PendingMutations() []PendingMutation {
	return c.pending.snapshot()
}

// SetLoading flips the loading flag, disabling all nodes while set.
func (c *Controller) SetLoading(loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.loading == loading {
		return
	}
	c.loading = loading
	c.rebuildLocked()
}

// SetReadOnly flips the external read-only flag.
func (c *Controller) SetReadOnly(readOnly bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.readOnly == readOnly {
		return
	}
	c.readOnly = readOnly
	c.rebuildLocked()
}

// SetGenerating replaces the set of nodes with in-flight generation
// runs. The builder re-runs because disabled/draggable flags depend on
// it.
func (c *Controller) SetGenerating(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	next := make(map[string]bool, len(ids))
	for _, id := range ids {
		next[id] = true
	}
	if sameSet(c.generating, next) {
		return
	}
	c.generating = next
	c.rebuildLocked()
}

// SetLocked toggles the canvas-wide lock. The flag persists to the local
// settings store only, never to the project. Selection and connection
// viewing stay available while locked.
func (c *Controller) SetLocked(locked bool) {
	c.mu.Lock()
	if c.closed || c.locked == locked {
		c.mu.Unlock()
		return
	}
	c.locked = locked
	c.rebuildLocked()
	projectID := c.projectIDLocked()
	vp := c.viewport
	c.mu.Unlock()

	c.persistSettings(projectID, locked, vp)
	c.bus.Publish(event.New(event.TypeLockChanged, projectID).
		WithPayload("locked", locked))
}

// Locked reports the current lock state (user lock or read-only).
func (c *Controller) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked || c.readOnly
}

// RestoreSettings loads the project's locally persisted lock flag and
// viewport from the settings store, if one is wired. Call after the
// first Sync.
func (c *Controller) RestoreSettings() {
	c.mu.Lock()
	projectID := c.projectIDLocked()
	c.mu.Unlock()
	if c.store == nil || projectID == "" {
		return
	}

	s, err := c.store.Load(projectID)
	if err != nil {
		if !errors.Is(err, settings.ErrNotFound) {
			observability.LogSettingsError(c.logger, projectID, "load", err)
		}
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.locked = s.Locked
	c.viewport = Viewport{X: s.ViewportX, Y: s.ViewportY, Zoom: s.Zoom}
	c.rebuildLocked()
	c.mu.Unlock()
}

// SelectNode marks a node as selected, clearing any active edge.
// Selection works even while locked. Selecting an unknown node clears
// the selection instead.
func (c *Controller) SelectNode(nodeID string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, ok := c.elements.NodeByID(nodeID); !ok {
		c.clearSelectionLocked()
		c.mu.Unlock()
		return
	}
	c.selectedNodeID = nodeID
	c.activeEdgeID = ""
	c.applySelectionLocked()
	projectID := c.projectIDLocked()
	c.mu.Unlock()

	c.bus.Publish(event.New(event.TypeNodeSelected, projectID).WithNode(nodeID))
}

// SelectEdge marks an edge as active, clearing any node selection.
func (c *Controller) SelectEdge(edgeID string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	found := false
	for _, e := range c.elements.Edges {
		if e.ID == edgeID {
			found = true
			break
		}
	}
	if !found {
		c.clearSelectionLocked()
		c.mu.Unlock()
		return
	}
	c.activeEdgeID = edgeID
	c.selectedNodeID = ""
	c.applySelectionLocked()
	projectID := c.projectIDLocked()
	c.mu.Unlock()

	c.bus.Publish(event.New(event.TypeEdgeSelected, projectID).WithEdge(edgeID))
}

// ClearSelection drops both selection modes, as a click on empty canvas
// does.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.clearSelectionLocked()
	projectID := c.projectIDLocked()
	c.mu.Unlock()

	c.bus.Publish(event.New(event.TypeSelectionCleared, projectID))
}

func (c *Controller) clearSelectionLocked() {
	c.selectedNodeID = ""
	c.activeEdgeID = ""
	c.applySelectionLocked()
}

// applySelectionLocked refreshes the Selected/Active flags in place.
// Selection is not a structural change; rewriting two booleans avoids a
// full rebuild that would reset an in-progress drag.
func (c *Controller) applySelectionLocked() {
	for i := range c.elements.Nodes {
		c.elements.Nodes[i].Selected = c.elements.Nodes[i].ID == c.selectedNodeID
	}
	for i := range c.elements.Edges {
		c.elements.Edges[i].Active = c.elements.Edges[i].ID == c.activeEdgeID
	}
}

// SelectedNodeID returns the selected node, or empty.
func (c *Controller) SelectedNodeID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedNodeID
}

// ActiveEdgeID returns the active edge, or empty.
func (c *Controller) ActiveEdgeID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeEdgeID
}

// ToggleMinimap flips minimap visibility and reports the new state.
func (c *Controller) ToggleMinimap() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.minimapVisible = !c.minimapVisible
	return c.minimapVisible
}

// MinimapVisible reports whether the minimap is shown.
func (c *Controller) MinimapVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minimapVisible
}

// SetViewport records the camera state, reports it to the host and
// persists it locally alongside the lock flag.
func (c *Controller) SetViewport(ctx context.Context, vp Viewport) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.viewport = vp
	projectID := c.projectIDLocked()
	locked := c.locked
	c.mu.Unlock()

	if c.cb.ViewportChanged != nil {
		c.cb.ViewportChanged(ctx, vp)
	}
	c.persistSettings(projectID, locked, vp)
	c.bus.Publish(event.New(event.TypeViewportChanged, projectID).
		WithPayload("x", vp.X).
		WithPayload("y", vp.Y).
		WithPayload("zoom", vp.Zoom))
}

// Viewport returns the last recorded camera state.
func (c *Controller) Viewport() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

// Placeholder returns the best-effort empty-state message for the
// current canvas, or empty when nodes are visible.
func (c *Controller) Placeholder() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return "Loading project…"
	}
	if len(c.elements.Nodes) == 0 {
		return "No nodes yet"
	}
	return ""
}

// Close cancels in-flight staggered work and shuts the event bus down.
// Gestures after Close return ErrControllerClosed.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	run := c.deleteRun
	c.deleteRun = nil
	c.mu.Unlock()

	if run != nil {
		run.Cancel()
	}
	return c.bus.Close()
}

// persistSettings writes the lock flag and viewport to the local store.
// Failures are logged and ignored: losing a lock preference is not worth
// surfacing.
func (c *Controller) persistSettings(projectID string, locked bool, vp Viewport) {
	if c.store == nil || projectID == "" {
		return
	}
	err := c.store.Save(projectID, settings.Settings{
		Locked:    locked,
		ViewportX: vp.X,
		ViewportY: vp.Y,
		Zoom:      vp.Zoom,
	})
	if err != nil {
		observability.LogSettingsError(c.logger, projectID, "save", err)
	}
}

// projectIDLocked returns the current project ID. Caller holds mu.
func (c *Controller) projectIDLocked() string {
	if c.project == nil {
		return ""
	}
	return c.project.ID
}

// sameSet reports whether two string sets hold the same members.
func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
