package commands

import (
	"errors"

	"linkscope-backend/domain/core/entities"
)

// StartInvestigationCommand opens a new investigation session for a subject.
type StartInvestigationCommand struct {
	InvestigationID string `json:"investigation_id" validate:"required"`
	Subject         string `json:"subject" validate:"required,min=1,max=200"`
	ViewportWidth   float64
	ViewportHeight  float64
}

// Validate checks the command's required fields.
func (c StartInvestigationCommand) Validate() error {
	if c.InvestigationID == "" {
		return errors.New("investigation id is required")
	}
	if c.Subject == "" {
		return errors.New("subject is required")
	}
	return nil
}

// CloseInvestigationCommand discards a session and its simulation state.
// Used when the investigation context changes to a different subject.
type CloseInvestigationCommand struct {
	InvestigationID string `json:"investigation_id" validate:"required"`
}

// Validate checks the command's required fields.
func (c CloseInvestigationCommand) Validate() error {
	if c.InvestigationID == "" {
		return errors.New("investigation id is required")
	}
	return nil
}

// IngestFindingsCommand appends raw findings to the investigation's finding
// source. The source's change notification then drives the rebuild.
type IngestFindingsCommand struct {
	InvestigationID string `json:"investigation_id" validate:"required"`
	Findings        []entities.Finding
}

// Validate checks the command's required fields. Finding payloads are
// deliberately not validated here: malformed records are skipped during
// extraction, never rejected at the boundary.
func (c IngestFindingsCommand) Validate() error {
	if c.InvestigationID == "" {
		return errors.New("investigation id is required")
	}
	if len(c.Findings) == 0 {
		return errors.New("at least one finding is required")
	}
	return nil
}

// RebuildGraphCommand forces an immediate rebuild from the source's current
// finding list, the "rebuild now" entry point for push updates.
type RebuildGraphCommand struct {
	InvestigationID string `json:"investigation_id" validate:"required"`
}

// Validate checks the command's required fields.
func (c RebuildGraphCommand) Validate() error {
	if c.InvestigationID == "" {
		return errors.New("investigation id is required")
	}
	return nil
}
