package handlers

import (
	"context"

	"linkscope-backend/application/commands"
	"linkscope-backend/application/commands/bus"
	"linkscope-backend/application/services"
	"linkscope-backend/pkg/errors"
)

// PointerHandler feeds pointer events into a session's viewport.
type PointerHandler struct {
	service *services.InvestigationService
}

// NewPointerHandler creates the handler.
func NewPointerHandler(service *services.InvestigationService) *PointerHandler {
	return &PointerHandler{service: service}
}

// Handle implements bus.CommandHandler.
func (h *PointerHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.PointerCommand)
	if !ok {
		return errors.NewInternalError("invalid command type for PointerHandler")
	}
	return h.service.Pointer(c.InvestigationID, string(c.Action), c.X, c.Y, c.Factor)
}

// LinkModeHandler toggles the manual linking gesture.
type LinkModeHandler struct {
	service *services.InvestigationService
}

// NewLinkModeHandler creates the handler.
func NewLinkModeHandler(service *services.InvestigationService) *LinkModeHandler {
	return &LinkModeHandler{service: service}
}

// Handle implements bus.CommandHandler.
func (h *LinkModeHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.LinkModeCommand)
	if !ok {
		return errors.NewInternalError("invalid command type for LinkModeHandler")
	}
	return h.service.SetLinkMode(c.InvestigationID, c.Enable)
}

// ResizeViewportHandler updates a session's world bounds.
type ResizeViewportHandler struct {
	service *services.InvestigationService
}

// NewResizeViewportHandler creates the handler.
func NewResizeViewportHandler(service *services.InvestigationService) *ResizeViewportHandler {
	return &ResizeViewportHandler{service: service}
}

// Handle implements bus.CommandHandler.
func (h *ResizeViewportHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.ResizeViewportCommand)
	if !ok {
		return errors.NewInternalError("invalid command type for ResizeViewportHandler")
	}
	return h.service.Resize(c.InvestigationID, c.Width, c.Height)
}
