package models

// FrameNode is one node prepared for drawing: world position already pushed
// through the session's pan/zoom transform into screen space, bloom progress
// resolved against the logical clock.
type FrameNode struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	Label    string  `json:"label"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Locked   bool    `json:"locked"`
	Selected bool    `json:"selected"`
	Hovered  bool    `json:"hovered"`
	Bloom    float64 `json:"bloom"`
	Source   string  `json:"source,omitempty"`
	Verified bool    `json:"verified,omitempty"`
	URL      string  `json:"url,omitempty"`
}

// FrameEdge is one edge as a screen-space endpoint coordinate pair.
type FrameEdge struct {
	ID       string  `json:"id"`
	Label    string  `json:"label,omitempty"`
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	X2       float64 `json:"x2"`
	Y2       float64 `json:"y2"`
	Strength float64 `json:"strength"`
}

// RenderFrame is the per-frame output consumed by a drawing layer. It is a
// plain read model: producing one never mutates simulation state.
type RenderFrame struct {
	InvestigationID string      `json:"investigationId"`
	Sequence        uint64      `json:"sequence"`
	Settled         bool        `json:"settled"`
	Zoom            float64     `json:"zoom"`
	PanX            float64     `json:"panX"`
	PanY            float64     `json:"panY"`
	Mode            string      `json:"mode"`
	Nodes           []FrameNode `json:"nodes"`
	Edges           []FrameEdge `json:"edges"`
}

// InvestigationSummary is the list read model for active sessions.
type InvestigationSummary struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	NodeCount int    `json:"nodeCount"`
	EdgeCount int    `json:"edgeCount"`
	Settled   bool   `json:"settled"`
}
