package queries

import "errors"

// GetFrameQuery reads the current render frame for an investigation.
type GetFrameQuery struct {
	InvestigationID string `json:"investigation_id" validate:"required"`
}

// Validate checks the query's required fields.
func (q GetFrameQuery) Validate() error {
	if q.InvestigationID == "" {
		return errors.New("investigation id is required")
	}
	return nil
}

// ListInvestigationsQuery lists the active sessions.
type ListInvestigationsQuery struct{}

// Validate always succeeds; the query has no parameters.
func (q ListInvestigationsQuery) Validate() error {
	return nil
}

// GetGraphStatsQuery reads simulation statistics for an investigation:
// node/edge counts, engine state and kinetic energy.
type GetGraphStatsQuery struct {
	InvestigationID string `json:"investigation_id" validate:"required"`
}

// Validate checks the query's required fields.
func (q GetGraphStatsQuery) Validate() error {
	if q.InvestigationID == "" {
		return errors.New("investigation id is required")
	}
	return nil
}

// GraphStatsResult is the read model for GetGraphStatsQuery.
type GraphStatsResult struct {
	InvestigationID string  `json:"investigationId"`
	Subject         string  `json:"subject"`
	NodeCount       int     `json:"nodeCount"`
	EdgeCount       int     `json:"edgeCount"`
	EngineState     string  `json:"engineState"`
	KineticEnergy   float64 `json:"kineticEnergy"`
}
