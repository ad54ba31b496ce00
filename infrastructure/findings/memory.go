package findings

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"linkscope-backend/application/ports"
	"linkscope-backend/domain/core/entities"
)

// MemorySource is the in-process finding store used in development and
// tests. It is both a FindingSource and a FindingSink: appends are kept per
// investigation and fan out as change notifications to every subscriber.
type MemorySource struct {
	mu       sync.RWMutex
	byInvest map[string][]entities.Finding
	subs     map[int]chan ports.ChangeNotification
	nextSub  int
	logger   *zap.Logger
}

// NewMemorySource creates an empty in-memory source.
func NewMemorySource(logger *zap.Logger) *MemorySource {
	return &MemorySource{
		byInvest: make(map[string][]entities.Finding),
		subs:     make(map[int]chan ports.ChangeNotification),
		logger:   logger,
	}
}

// List returns a copy of the full finding list for an investigation.
func (m *MemorySource) List(ctx context.Context, investigationID string) ([]entities.Finding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.byInvest[investigationID]
	out := make([]entities.Finding, len(stored))
	copy(out, stored)
	return out, nil
}

// Append stores findings and notifies subscribers. Notification is
// best-effort: a subscriber with a full buffer is skipped, which is safe
// because rebuilds always read the full current list.
func (m *MemorySource) Append(ctx context.Context, investigationID string, findings []entities.Finding) error {
	m.mu.Lock()
	m.byInvest[investigationID] = append(m.byInvest[investigationID], findings...)
	total := len(m.byInvest[investigationID])
	subs := make([]chan ports.ChangeNotification, 0, len(m.subs))
	for _, ch := range m.subs {
		subs = append(subs, ch)
	}
	m.mu.Unlock()

	m.logger.Debug("Appended findings",
		zap.String("investigationID", investigationID),
		zap.Int("appended", len(findings)),
		zap.Int("total", total),
	)

	note := ports.ChangeNotification{InvestigationID: investigationID}
	for _, ch := range subs {
		select {
		case ch <- note:
		default:
		}
	}
	return nil
}

// Changes subscribes to append notifications. The channel closes when the
// context is cancelled.
func (m *MemorySource) Changes(ctx context.Context) (<-chan ports.ChangeNotification, error) {
	ch := make(chan ports.ChangeNotification, 16)

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}
