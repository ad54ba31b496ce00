package services

import (
	"strings"

	"linkscope-backend/domain/core/aggregates"
	"linkscope-backend/domain/core/entities"
	"linkscope-backend/domain/core/valueobjects"
)

// InteractionMode is the single tagged state for pointer interaction.
// Mutually exclusive by construction: panning while dragging cannot be
// represented.
type InteractionMode string

const (
	ModeIdle         InteractionMode = "idle"
	ModePanning      InteractionMode = "panning"
	ModeDraggingNode InteractionMode = "dragging-node"
	ModeLinkPick     InteractionMode = "link-pick"
)

// PivotEvent is emitted when the user asks to investigate a non-root node.
// The host decides what to do with it; the engine performs no navigation.
type PivotEvent struct {
	Kind  valueobjects.NodeKind `json:"kind"`
	Value string                `json:"value"`
}

const (
	minZoom = 0.2
	maxZoom = 5.0

	// nodeHitRadius is the screen-space pick radius for pointer events.
	nodeHitRadius = 18.0
)

// Viewport owns the pan/zoom transform and the interaction state machine.
// It translates pointer events into either simulation mutations (drag,
// manual links) or transform changes (pan, zoom) that never touch node
// world coordinates. Hover and selection are independent highlight state.
type Viewport struct {
	zoom float64
	pan  valueobjects.Vec2

	mode         InteractionMode
	dragNodeID   string
	linkSourceID string
	lastPointer  valueobjects.Vec2

	hoveredID  string
	selectedID string
}

// NewViewport creates a viewport at identity transform.
func NewViewport() *Viewport {
	return &Viewport{zoom: 1, mode: ModeIdle}
}

// Zoom returns the current zoom factor.
func (v *Viewport) Zoom() float64 { return v.zoom }

// Pan returns the current pan offset in screen space.
func (v *Viewport) Pan() valueobjects.Vec2 { return v.pan }

// Mode returns the current interaction mode.
func (v *Viewport) Mode() InteractionMode { return v.mode }

// HoveredID returns the hovered node id, empty when none.
func (v *Viewport) HoveredID() string { return v.hoveredID }

// SelectedID returns the selected node id, empty when none.
func (v *Viewport) SelectedID() string { return v.selectedID }

// LinkSourceID returns the pending manual-link source while in LinkPick.
func (v *Viewport) LinkSourceID() string { return v.linkSourceID }

// ScreenToWorld converts a screen point through the inverse transform.
func (v *Viewport) ScreenToWorld(screen valueobjects.Vec2) valueobjects.Vec2 {
	return screen.Sub(v.pan).Scale(1 / v.zoom)
}

// WorldToScreen converts a world point through the transform.
func (v *Viewport) WorldToScreen(world valueobjects.Vec2) valueobjects.Vec2 {
	return world.Scale(v.zoom).Add(v.pan)
}

// ZoomBy scales the zoom factor around a focal screen point, keeping the
// world point under the cursor fixed. The resulting zoom is clamped to
// 0.2x-5x; a non-positive factor is ignored.
func (v *Viewport) ZoomBy(factor float64, focal valueobjects.Vec2) {
	if factor <= 0 {
		return
	}
	target := v.zoom * factor
	if target < minZoom {
		target = minZoom
	}
	if target > maxZoom {
		target = maxZoom
	}
	if target == v.zoom {
		return
	}
	world := v.ScreenToWorld(focal)
	v.zoom = target
	v.pan = focal.Sub(world.Scale(v.zoom))
}

// HitTest returns the id of the topmost node within pick radius of the
// screen point, or empty when the pointer is over open canvas.
func (v *Viewport) HitTest(snap *aggregates.Snapshot, screen valueobjects.Vec2) string {
	bestID := ""
	bestDist := nodeHitRadius
	for _, n := range snap.Nodes() {
		d := v.WorldToScreen(n.Position).DistanceTo(screen)
		if d <= bestDist {
			bestDist = d
			bestID = n.ID
		}
	}
	return bestID
}

// PointerDown starts a gesture. Over a node it begins a drag (locking the
// node); over empty canvas it begins a pan. In LinkPick mode clicks pick the
// link source and target instead, and no drag or pan can start.
func (v *Viewport) PointerDown(snap *aggregates.Snapshot, engine *Engine, screen valueobjects.Vec2) {
	v.lastPointer = screen

	if v.mode == ModeLinkPick {
		v.pickLinkEndpoint(snap, engine, screen)
		return
	}

	hit := v.HitTest(snap, screen)
	if hit == "" {
		v.mode = ModePanning
		return
	}

	// Starting a drag cancels any in-flight selection gesture.
	v.mode = ModeDraggingNode
	v.dragNodeID = hit
	v.selectedID = hit
	if node, ok := snap.Node(hit); ok {
		node.Locked = true
		node.Velocity = valueobjects.Zero()
	}
	engine.Wake()
}

// PointerMove advances the active gesture: pans the view, tracks the pointer
// with the dragged node through the inverse transform, or updates hover.
func (v *Viewport) PointerMove(snap *aggregates.Snapshot, screen valueobjects.Vec2) {
	delta := screen.Sub(v.lastPointer)
	v.lastPointer = screen

	switch v.mode {
	case ModePanning:
		v.pan = v.pan.Add(delta)
	case ModeDraggingNode:
		if node, ok := snap.Node(v.dragNodeID); ok {
			node.Position = v.ScreenToWorld(screen)
			node.Velocity = valueobjects.Zero()
		}
	default:
		v.hoveredID = v.HitTest(snap, screen)
	}
}

// PointerUp ends the active gesture. Releasing a dragged node unlocks it
// (the root stays locked) and kicks the simulation so the layout adapts to
// the dropped position rather than snapping back.
func (v *Viewport) PointerUp(snap *aggregates.Snapshot, engine *Engine) {
	switch v.mode {
	case ModePanning:
		v.mode = ModeIdle
	case ModeDraggingNode:
		if node, ok := snap.Node(v.dragNodeID); ok && !node.IsRoot() {
			node.Locked = false
		}
		v.dragNodeID = ""
		v.mode = ModeIdle
		engine.Wake()
	}
}

// DoubleClick resolves a pivot request. Non-root nodes produce a structured
// {kind, value} event for the host; anything else is a no-op.
func (v *Viewport) DoubleClick(snap *aggregates.Snapshot, screen valueobjects.Vec2) *PivotEvent {
	hit := v.HitTest(snap, screen)
	if hit == "" {
		return nil
	}
	node, ok := snap.Node(hit)
	if !ok || node.IsRoot() {
		return nil
	}
	value := node.ID
	if sep := strings.Index(node.ID, ":"); sep >= 0 {
		value = node.ID[sep+1:]
	}
	return &PivotEvent{Kind: node.Kind, Value: value}
}

// EnterLinkMode switches to the two-step manual linking gesture, cancelling
// any active drag first.
func (v *Viewport) EnterLinkMode(snap *aggregates.Snapshot, engine *Engine) {
	v.cancelDrag(snap, engine)
	v.mode = ModeLinkPick
	v.linkSourceID = ""
}

// CancelLinkMode abandons the linking gesture without effect.
func (v *Viewport) CancelLinkMode() {
	if v.mode == ModeLinkPick {
		v.mode = ModeIdle
		v.linkSourceID = ""
	}
}

// Select marks a node as selected for highlight and info display. It never
// affects world coordinates.
func (v *Viewport) Select(id string) {
	v.selectedID = id
}

// pickLinkEndpoint handles clicks while in LinkPick: first click chooses the
// source, a second click on a different node appends the manual edge, and a
// second click on the same node cancels without effect.
func (v *Viewport) pickLinkEndpoint(snap *aggregates.Snapshot, engine *Engine, screen valueobjects.Vec2) {
	hit := v.HitTest(snap, screen)
	if hit == "" {
		return
	}
	if v.linkSourceID == "" {
		v.linkSourceID = hit
		return
	}
	source := v.linkSourceID
	v.linkSourceID = ""
	v.mode = ModeIdle
	if hit == source {
		return
	}
	edge := newManualEdge(source, hit)
	if err := snap.AddEdge(edge); err != nil {
		return
	}
	engine.Wake()
}

// newManualEdge builds the edge appended by a completed linking gesture.
func newManualEdge(sourceID, targetID string) *entities.Edge {
	return entities.NewEdge(sourceID, targetID, "linked", 0.5)
}

// cancelDrag releases the dragged node when a mode switch interrupts the
// gesture mid-flight.
func (v *Viewport) cancelDrag(snap *aggregates.Snapshot, engine *Engine) {
	if v.mode != ModeDraggingNode {
		return
	}
	if node, ok := snap.Node(v.dragNodeID); ok && !node.IsRoot() {
		node.Locked = false
	}
	v.dragNodeID = ""
	v.mode = ModeIdle
	engine.Wake()
}
