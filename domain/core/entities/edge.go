package entities

import (
	"linkscope-backend/domain/core/valueobjects"
)

// Edge is an attachment link between two nodes. Direction is semantic
// ("attached-to") and not necessarily rendered as directed. Edges carry no
// physics state of their own, which is what makes them cheap to regenerate
// wholesale on every rebuild.
type Edge struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Label    string  `json:"label,omitempty"`
	Strength float64 `json:"strength"`
}

// NewEdge creates an edge between two node ids with an optional relationship
// label. Strength outside [0,1] is clamped.
func NewEdge(sourceID, targetID, label string, strength float64) *Edge {
	if strength < 0 {
		strength = 0
	}
	if strength > 1 {
		strength = 1
	}
	return &Edge{
		ID:       valueobjects.DeriveEdgeID(sourceID, targetID, label),
		Source:   sourceID,
		Target:   targetID,
		Label:    label,
		Strength: strength,
	}
}

// Touches reports whether the edge has the given node as either endpoint.
func (e *Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// Other returns the opposite endpoint of the given node id, or empty if the
// node is not an endpoint.
func (e *Edge) Other(nodeID string) string {
	switch nodeID {
	case e.Source:
		return e.Target
	case e.Target:
		return e.Source
	}
	return ""
}
