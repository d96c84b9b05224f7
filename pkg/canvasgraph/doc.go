/*
Package canvasgraph provides the state engine for a node-based visual
workflow canvas.

# Overview

canvasgraph is a headless Go library for driving an interactive graph
canvas: typed nodes (text, AI, image, video, file, folder, html, table,
pdf) connected by directed edges form a content pipeline, persisted by
an external layer and rendered by external components. The library owns
the hard part in between. It projects the persisted graph into
render-ready elements while keeping transient interaction state (drags,
resizes, selection, lock) coherent across asynchronous mutations, and
it translates every gesture into the host's mutation callbacks without
redundant writes or visual flicker.

The design rests on two devices:

  - Throwaway projection: BuildGraphElements rebuilds the whole visual
    node/edge set from the authoritative graph on every structural
    change. No field-by-field diffing; the rendering layer reconciles
    by ID.
  - Signature gating: the Controller re-runs the builder only when the
    project's structural signature (id, version, counts) changes, so
    unrelated prop churn never resets an in-progress drag.

# Basic Usage

Wire the callbacks your host supports, create a controller, and feed it
the authoritative project whenever it changes:

	cb := canvasgraph.Callbacks{
	    CreateEdge: func(ctx context.Context, key canvasgraph.EdgeKey) error {
	        return api.CreateEdge(ctx, key)
	    },
	    ChangeNodeUI: func(ctx context.Context, nodeID string, patch canvasgraph.UIPatch) error {
	        return api.PatchNodeUI(ctx, nodeID, patch)
	    },
	}

	ctrl := canvasgraph.NewController(cb)
	defer ctrl.Close()

	ctrl.Sync(project)
	for _, n := range ctrl.Elements().Nodes {
	    render(n)
	}

Gestures go through the controller:

	if err := ctrl.BeginDrag("n1"); err == nil {
	    ctrl.EndDrag(ctx, "n1", canvasgraph.Point{X: 480, Y: 120}, zones)
	}

	ctrl.Connect(ctx, canvasgraph.EdgeKey{From: "n1", To: "n2"})

# Node Cards

Each visible node renders as a card whose shell state lives in a Card:
uncommitted title/content drafts, debounced auto-commit for free text,
immediate commit for structural fields, and a non-reactive resize hot
path. Close a card on unmount to cancel its pending commits.

# Subpackages

  - schedule: clock abstraction, debouncer, stagger queue (virtual
    clock friendly)
  - settings: local-only lock/viewport persistence (memory, SQLite)
  - event: canvas change-event bus
  - config: YAML/JSON configuration loading
  - registry: thread-safe lookup tables
  - observability: slog helpers, OpenTelemetry metrics and tracing
*/
package canvasgraph
