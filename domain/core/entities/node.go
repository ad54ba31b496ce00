package entities

import (
	"linkscope-backend/domain/core/valueobjects"
)

// NodeMetadata carries optional provenance for a discovered entity.
type NodeMetadata struct {
	Source   string `json:"source,omitempty"`
	Verified bool   `json:"verified,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Node is a single entity in the investigation graph together with its live
// physics state. Position and velocity are simulation world-space values;
// screen-space conversion is a viewport concern and never stored here.
type Node struct {
	ID       string                `json:"id"`
	Kind     valueobjects.NodeKind `json:"kind"`
	Label    string                `json:"label"`
	Position valueobjects.Vec2     `json:"position"`
	Velocity valueobjects.Vec2     `json:"velocity"`

	// Locked excludes the node from force integration while it still exerts
	// forces on others. True while dragged, permanently true for the root.
	Locked bool `json:"locked"`

	// BirthTime is the logical timestamp (milliseconds) stamped when the node
	// first entered the simulation. It drives the entrance bloom animation
	// and survives rebuilds untouched.
	BirthTime int64 `json:"birthTime"`

	Metadata NodeMetadata `json:"metadata,omitempty"`
}

// NewNode creates a node for a derived entity. The id must come from
// valueobjects.DeriveNodeID so identity stays stable across rebuilds.
func NewNode(id string, kind valueobjects.NodeKind, label string) *Node {
	return &Node{
		ID:     id,
		Kind:   kind,
		Label:  label,
		Locked: kind == valueobjects.KindRoot,
	}
}

// NewRootNode creates the locked subject node anchoring the graph.
func NewRootNode(label string) *Node {
	return NewNode(valueobjects.DeriveNodeID(valueobjects.KindRoot, label), valueobjects.KindRoot, label)
}

// IsRoot reports whether this is the investigation subject.
func (n *Node) IsRoot() bool {
	return n.Kind == valueobjects.KindRoot
}

// Clone returns an independent copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	return &c
}

// BloomProgress returns the entrance animation progress in [0,1] for the
// given logical time and bloom duration. Newly born nodes ramp from 0; a
// zero or negative duration means the animation is disabled.
func (n *Node) BloomProgress(now, durationMillis int64) float64 {
	if durationMillis <= 0 {
		return 1
	}
	elapsed := now - n.BirthTime
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= durationMillis {
		return 1
	}
	return float64(elapsed) / float64(durationMillis)
}
