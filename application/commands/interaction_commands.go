package commands

import "errors"

// PointerAction discriminates the pointer events a client can deliver.
type PointerAction string

const (
	PointerDown        PointerAction = "down"
	PointerMove        PointerAction = "move"
	PointerUp          PointerAction = "up"
	PointerDoubleClick PointerAction = "double-click"
	PointerWheel       PointerAction = "wheel"
)

// PointerCommand feeds one pointer event into a session's interaction state
// machine. Coordinates are screen space; Factor is the zoom multiplier for
// wheel events.
type PointerCommand struct {
	InvestigationID string        `json:"investigation_id" validate:"required"`
	Action          PointerAction `json:"action" validate:"required"`
	X               float64       `json:"x"`
	Y               float64       `json:"y"`
	Factor          float64       `json:"factor,omitempty"`
}

// Validate checks the command's required fields.
func (c PointerCommand) Validate() error {
	if c.InvestigationID == "" {
		return errors.New("investigation id is required")
	}
	switch c.Action {
	case PointerDown, PointerMove, PointerUp, PointerDoubleClick:
		return nil
	case PointerWheel:
		if c.Factor <= 0 {
			return errors.New("wheel events require a positive zoom factor")
		}
		return nil
	}
	return errors.New("unknown pointer action")
}

// LinkModeCommand enters or leaves the two-step manual linking gesture.
type LinkModeCommand struct {
	InvestigationID string `json:"investigation_id" validate:"required"`
	Enable          bool   `json:"enable"`
}

// Validate checks the command's required fields.
func (c LinkModeCommand) Validate() error {
	if c.InvestigationID == "" {
		return errors.New("investigation id is required")
	}
	return nil
}

// ResizeViewportCommand updates the session's world bounds when the client
// canvas changes size.
type ResizeViewportCommand struct {
	InvestigationID string  `json:"investigation_id" validate:"required"`
	Width           float64 `json:"width" validate:"required,gt=0"`
	Height          float64 `json:"height" validate:"required,gt=0"`
}

// Validate checks the command's required fields.
func (c ResizeViewportCommand) Validate() error {
	if c.InvestigationID == "" {
		return errors.New("investigation id is required")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return errors.New("viewport dimensions must be positive")
	}
	return nil
}
