package handlers

import (
	"context"

	"linkscope-backend/application/commands"
	"linkscope-backend/application/commands/bus"
	"linkscope-backend/application/services"
	"linkscope-backend/pkg/errors"
)

// StartInvestigationHandler opens a new session.
type StartInvestigationHandler struct {
	service *services.InvestigationService
}

// NewStartInvestigationHandler creates the handler.
func NewStartInvestigationHandler(service *services.InvestigationService) *StartInvestigationHandler {
	return &StartInvestigationHandler{service: service}
}

// Handle implements bus.CommandHandler.
func (h *StartInvestigationHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.StartInvestigationCommand)
	if !ok {
		return errors.NewInternalError("invalid command type for StartInvestigationHandler")
	}
	return h.service.Start(ctx, c.InvestigationID, c.Subject, c.ViewportWidth, c.ViewportHeight)
}

// CloseInvestigationHandler discards a session.
type CloseInvestigationHandler struct {
	service *services.InvestigationService
}

// NewCloseInvestigationHandler creates the handler.
func NewCloseInvestigationHandler(service *services.InvestigationService) *CloseInvestigationHandler {
	return &CloseInvestigationHandler{service: service}
}

// Handle implements bus.CommandHandler.
func (h *CloseInvestigationHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.CloseInvestigationCommand)
	if !ok {
		return errors.NewInternalError("invalid command type for CloseInvestigationHandler")
	}
	return h.service.Close(c.InvestigationID)
}

// IngestFindingsHandler appends findings to the configured sink.
type IngestFindingsHandler struct {
	service *services.InvestigationService
}

// NewIngestFindingsHandler creates the handler.
func NewIngestFindingsHandler(service *services.InvestigationService) *IngestFindingsHandler {
	return &IngestFindingsHandler{service: service}
}

// Handle implements bus.CommandHandler.
func (h *IngestFindingsHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.IngestFindingsCommand)
	if !ok {
		return errors.NewInternalError("invalid command type for IngestFindingsHandler")
	}
	return h.service.Ingest(ctx, c.InvestigationID, c.Findings)
}

// RebuildGraphHandler forces an immediate rebuild.
type RebuildGraphHandler struct {
	service *services.InvestigationService
}

// NewRebuildGraphHandler creates the handler.
func NewRebuildGraphHandler(service *services.InvestigationService) *RebuildGraphHandler {
	return &RebuildGraphHandler{service: service}
}

// Handle implements bus.CommandHandler.
func (h *RebuildGraphHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.RebuildGraphCommand)
	if !ok {
		return errors.NewInternalError("invalid command type for RebuildGraphHandler")
	}
	return h.service.Rebuild(ctx, c.InvestigationID)
}
