package handlers

import (
	"context"

	"linkscope-backend/application/queries"
	"linkscope-backend/application/queries/bus"
	"linkscope-backend/application/services"
	"linkscope-backend/pkg/errors"
)

// GetFrameHandler renders a session's current frame on demand.
type GetFrameHandler struct {
	service *services.InvestigationService
}

// NewGetFrameHandler creates the handler.
func NewGetFrameHandler(service *services.InvestigationService) *GetFrameHandler {
	return &GetFrameHandler{service: service}
}

// Handle implements bus.QueryHandler.
func (h *GetFrameHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetFrameQuery)
	if !ok {
		return nil, errors.NewInternalError("invalid query type for GetFrameHandler")
	}
	return h.service.Frame(q.InvestigationID)
}

// ListInvestigationsHandler lists the open sessions.
type ListInvestigationsHandler struct {
	service *services.InvestigationService
}

// NewListInvestigationsHandler creates the handler.
func NewListInvestigationsHandler(service *services.InvestigationService) *ListInvestigationsHandler {
	return &ListInvestigationsHandler{service: service}
}

// Handle implements bus.QueryHandler.
func (h *ListInvestigationsHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	if _, ok := query.(queries.ListInvestigationsQuery); !ok {
		return nil, errors.NewInternalError("invalid query type for ListInvestigationsHandler")
	}
	return h.service.List(), nil
}

// GetGraphStatsHandler reads simulation statistics for one session.
type GetGraphStatsHandler struct {
	service *services.InvestigationService
}

// NewGetGraphStatsHandler creates the handler.
func NewGetGraphStatsHandler(service *services.InvestigationService) *GetGraphStatsHandler {
	return &GetGraphStatsHandler{service: service}
}

// Handle implements bus.QueryHandler.
func (h *GetGraphStatsHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetGraphStatsQuery)
	if !ok {
		return nil, errors.NewInternalError("invalid query type for GetGraphStatsHandler")
	}
	summary, state, energy, err := h.service.Stats(q.InvestigationID)
	if err != nil {
		return nil, err
	}
	return queries.GraphStatsResult{
		InvestigationID: summary.ID,
		Subject:         summary.Subject,
		NodeCount:       summary.NodeCount,
		EdgeCount:       summary.EdgeCount,
		EngineState:     state,
		KineticEnergy:   energy,
	}, nil
}
