package handlers

import (
	"encoding/json"
	"net/http"

	"linkscope-backend/application/commands"
	"linkscope-backend/application/commands/bus"
	"linkscope-backend/application/queries"
	querybus "linkscope-backend/application/queries/bus"
	"linkscope-backend/domain/core/entities"
	apperrors "linkscope-backend/pkg/errors"
	"linkscope-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvestigationHandler handles the investigation lifecycle and interaction
// HTTP requests.
type InvestigationHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewInvestigationHandler creates a new investigation handler.
func NewInvestigationHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *InvestigationHandler {
	return &InvestigationHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// StartInvestigationRequest is the request body for opening an investigation.
type StartInvestigationRequest struct {
	ID      string  `json:"id,omitempty"`
	Subject string  `json:"subject" validate:"required,min=1,max=200"`
	Width   float64 `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height  float64 `json:"height,omitempty" validate:"omitempty,gt=0"`
}

// Start handles POST /investigations.
func (h *InvestigationHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartInvestigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	cmd := commands.StartInvestigationCommand{
		InvestigationID: req.ID,
		Subject:         req.Subject,
		ViewportWidth:   req.Width,
		ViewportHeight:  req.Height,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to start investigation",
			zap.String("investigationID", req.ID),
			zap.Error(err),
		)
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      req.ID,
		"subject": req.Subject,
	})
}

// List handles GET /investigations.
func (h *InvestigationHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListInvestigationsQuery{})
	if err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"investigations": result})
}

// Close handles DELETE /investigations/{investigationID}.
func (h *InvestigationHandler) Close(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "investigationID")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "Investigation ID is required")
		return
	}

	cmd := commands.CloseInvestigationCommand{InvestigationID: id}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// IngestFindingsRequest is the request body for appending findings.
type IngestFindingsRequest struct {
	Findings []entities.Finding `json:"findings" validate:"required,min=1"`
}

// IngestFindings handles POST /investigations/{investigationID}/findings.
func (h *InvestigationHandler) IngestFindings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "investigationID")

	var req IngestFindingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Findings) == 0 {
		h.respondError(w, http.StatusBadRequest, "At least one finding is required")
		return
	}

	cmd := commands.IngestFindingsCommand{
		InvestigationID: id,
		Findings:        req.Findings,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to ingest findings",
			zap.String("investigationID", id),
			zap.Int("count", len(req.Findings)),
			zap.Error(err),
		)
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"accepted": len(req.Findings),
	})
}

// Rebuild handles POST /investigations/{investigationID}/rebuild.
func (h *InvestigationHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "investigationID")

	cmd := commands.RebuildGraphCommand{InvestigationID: id}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PointerRequest is the request body for one pointer event.
type PointerRequest struct {
	Action string  `json:"action" validate:"required,oneof=down move up double-click wheel"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Factor float64 `json:"factor,omitempty"`
}

// Pointer handles POST /investigations/{investigationID}/pointer.
func (h *InvestigationHandler) Pointer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "investigationID")

	var req PointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if req.Action == "wheel" && req.Factor <= 0 {
		h.respondError(w, http.StatusBadRequest, "Validation error: factor must be greater than 0 for wheel events")
		return
	}

	cmd := commands.PointerCommand{
		InvestigationID: id,
		Action:          commands.PointerAction(req.Action),
		X:               req.X,
		Y:               req.Y,
		Factor:          req.Factor,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LinkModeRequest is the request body for toggling the linking gesture.
type LinkModeRequest struct {
	Enable bool `json:"enable"`
}

// LinkMode handles POST /investigations/{investigationID}/link-mode.
func (h *InvestigationHandler) LinkMode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "investigationID")

	var req LinkModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cmd := commands.LinkModeCommand{InvestigationID: id, Enable: req.Enable}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResizeRequest is the request body for viewport resizes.
type ResizeRequest struct {
	Width  float64 `json:"width" validate:"required,gt=0"`
	Height float64 `json:"height" validate:"required,gt=0"`
}

// Resize handles POST /investigations/{investigationID}/viewport.
func (h *InvestigationHandler) Resize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "investigationID")

	var req ResizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	cmd := commands.ResizeViewportCommand{
		InvestigationID: id,
		Width:           req.Width,
		Height:          req.Height,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Frame handles GET /investigations/{investigationID}/frame.
func (h *InvestigationHandler) Frame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "investigationID")

	result, err := h.queryBus.Ask(r.Context(), queries.GetFrameQuery{InvestigationID: id})
	if err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// Stats handles GET /investigations/{investigationID}/stats.
func (h *InvestigationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "investigationID")

	result, err := h.queryBus.Ask(r.Context(), queries.GetGraphStatsQuery{InvestigationID: id})
	if err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// Helper methods

func (h *InvestigationHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *InvestigationHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}

// respondAppError maps a typed application error onto its HTTP status,
// falling back to 500 for anything untyped.
func (h *InvestigationHandler) respondAppError(w http.ResponseWriter, err error) {
	if appErr := apperrors.GetAppError(err); appErr != nil && appErr.HTTPStatus != 0 {
		h.respondError(w, appErr.HTTPStatus, appErr.Message)
		return
	}
	h.respondError(w, http.StatusInternalServerError, err.Error())
}
