package ports

import (
	"context"

	"linkscope-backend/application/queries/models"
	"linkscope-backend/domain/core/entities"
	"linkscope-backend/domain/services"
)

// Clock supplies the logical time reconciliation and bloom animation run on.
// Injecting it keeps entrance-animation progress a pure function of
// (now - birthTime), deterministically testable without real time passing.
type Clock interface {
	NowMillis() int64
}

// ChangeNotification announces that an investigation's finding set changed
// and the graph should rebuild. Back-to-back notifications are safe: the
// rebuild always reads the full current finding list, so the last one wins.
type ChangeNotification struct {
	InvestigationID string
}

// FindingSource is the external service that owns finding persistence and
// querying. This core never stores findings itself.
type FindingSource interface {
	// List returns the full current finding list for an investigation.
	List(ctx context.Context, investigationID string) ([]entities.Finding, error)

	// Changes returns the push-update stream. The channel closes when the
	// context is cancelled.
	Changes(ctx context.Context) (<-chan ChangeNotification, error)
}

// FindingSink is the ingestion side offered by sources that accept writes,
// such as the in-memory development source. Appending triggers a change
// notification.
type FindingSink interface {
	Append(ctx context.Context, investigationID string, findings []entities.Finding) error
}

// FramePublisher delivers render frames and pivot events to whatever
// drawing layer is attached. The core is agnostic to the transport.
type FramePublisher interface {
	PublishFrame(investigationID string, frame *models.RenderFrame)
	PublishPivot(investigationID string, pivot services.PivotEvent)
}
