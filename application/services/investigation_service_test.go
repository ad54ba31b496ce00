package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkscope-backend/application/queries/models"
	"linkscope-backend/domain/core/entities"
	domain "linkscope-backend/domain/services"
	"linkscope-backend/infrastructure/findings"
	"linkscope-backend/pkg/errors"
	"linkscope-backend/pkg/observability"
)

type fixedClock struct {
	mu sync.Mutex
	ms int64
}

func (c *fixedClock) NowMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ms
}

func (c *fixedClock) Advance(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ms += ms
}

type capturePublisher struct {
	mu     sync.Mutex
	frames []*models.RenderFrame
	pivots []domain.PivotEvent
}

func (p *capturePublisher) PublishFrame(investigationID string, frame *models.RenderFrame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, frame)
}

func (p *capturePublisher) PublishPivot(investigationID string, pivot domain.PivotEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pivots = append(p.pivots, pivot)
}

func (p *capturePublisher) frameCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

func (p *capturePublisher) lastPivot() (domain.PivotEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pivots) == 0 {
		return domain.PivotEvent{}, false
	}
	return p.pivots[len(p.pivots)-1], true
}

type serviceFixture struct {
	service   *InvestigationService
	source    *findings.MemorySource
	publisher *capturePublisher
	clock     *fixedClock
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	logger := zap.NewNop()
	source := findings.NewMemorySource(logger)
	publisher := &capturePublisher{}
	clock := &fixedClock{ms: 1000}

	service := NewInvestigationService(
		domain.NewBuilder(logger),
		domain.NewReconciler(60, logger),
		domain.DefaultTuning(),
		source,
		source,
		publisher,
		clock,
		observability.NewMetrics(prometheus.NewRegistry()),
		logger,
		Options{
			FrameInterval: 5 * time.Millisecond,
			BloomMillis:   400,
			DefaultWidth:  800,
			DefaultHeight: 600,
		},
	)
	return &serviceFixture{service: service, source: source, publisher: publisher, clock: clock}
}

func usernameFinding(username string) entities.Finding {
	return entities.Finding{
		ID:      "f-" + username,
		Kind:    entities.FindingUsernameScan,
		Payload: map[string]any{"username": username},
	}
}

func TestStartAndFrame(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Start(ctx, "inv-1", "Jane Doe", 800, 600))

	frame, err := f.service.Frame("inv-1")
	require.NoError(t, err)
	assert.Equal(t, "inv-1", frame.InvestigationID)
	require.Len(t, frame.Nodes, 1)
	assert.Equal(t, "root", frame.Nodes[0].Kind)
	assert.True(t, frame.Nodes[0].Locked)
	assert.Equal(t, "idle", frame.Mode)
	assert.Equal(t, 1.0, frame.Zoom)
}

func TestStartDuplicateConflicts(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Start(ctx, "inv-1", "Jane Doe", 0, 0))
	err := f.service.Start(ctx, "inv-1", "Jane Doe", 0, 0)
	assert.True(t, errors.IsConflict(err))
}

func TestUnknownInvestigation(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Frame("missing")
	assert.True(t, errors.IsNotFound(err))

	assert.True(t, errors.IsNotFound(f.service.Close("missing")))
	assert.True(t, errors.IsNotFound(f.service.Resize("missing", 100, 100)))
}

func TestIngestAndRebuild(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Start(ctx, "inv-1", "Jane Doe", 800, 600))
	require.NoError(t, f.service.Ingest(ctx, "inv-1", []entities.Finding{usernameFinding("jdoe42")}))
	require.NoError(t, f.service.Rebuild(ctx, "inv-1"))

	frame, err := f.service.Frame("inv-1")
	require.NoError(t, err)
	assert.Len(t, frame.Nodes, 2)
	assert.Len(t, frame.Edges, 1)
}

func TestRebuildPreservesExistingPositions(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Start(ctx, "inv-1", "Jane Doe", 800, 600))
	require.NoError(t, f.service.Ingest(ctx, "inv-1", []entities.Finding{usernameFinding("jdoe42")}))
	require.NoError(t, f.service.Rebuild(ctx, "inv-1"))

	before, err := f.service.Frame("inv-1")
	require.NoError(t, err)
	positions := make(map[string][2]float64)
	for _, n := range before.Nodes {
		positions[n.ID] = [2]float64{n.X, n.Y}
	}

	// A second ingest adds a node without moving the existing ones.
	require.NoError(t, f.service.Ingest(ctx, "inv-1", []entities.Finding{usernameFinding("other99")}))
	require.NoError(t, f.service.Rebuild(ctx, "inv-1"))

	after, err := f.service.Frame("inv-1")
	require.NoError(t, err)
	assert.Len(t, after.Nodes, 3)
	for _, n := range after.Nodes {
		if prev, ok := positions[n.ID]; ok {
			assert.Equal(t, prev, [2]float64{n.X, n.Y}, n.ID)
		}
	}
}

func TestBloomProgressUsesLogicalClock(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Start(ctx, "inv-1", "Jane Doe", 800, 600))
	require.NoError(t, f.service.Ingest(ctx, "inv-1", []entities.Finding{usernameFinding("jdoe42")}))
	require.NoError(t, f.service.Rebuild(ctx, "inv-1"))

	frame, err := f.service.Frame("inv-1")
	require.NoError(t, err)
	for _, n := range frame.Nodes {
		if n.Kind == "username" {
			assert.Equal(t, 0.0, n.Bloom, "just-born node starts its bloom")
		}
	}

	f.clock.Advance(1000)
	frame, err = f.service.Frame("inv-1")
	require.NoError(t, err)
	for _, n := range frame.Nodes {
		assert.Equal(t, 1.0, n.Bloom, "bloom completes after the duration")
	}
}

func TestPointerPivotPublishes(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Start(ctx, "inv-1", "Jane Doe", 800, 600))
	require.NoError(t, f.service.Ingest(ctx, "inv-1", []entities.Finding{usernameFinding("jdoe42")}))
	require.NoError(t, f.service.Rebuild(ctx, "inv-1"))

	frame, err := f.service.Frame("inv-1")
	require.NoError(t, err)

	var x, y float64
	for _, n := range frame.Nodes {
		if n.Kind == "username" {
			x, y = n.X, n.Y
		}
	}
	require.NoError(t, f.service.Pointer("inv-1", "double-click", x, y, 0))

	pivot, ok := f.publisher.lastPivot()
	require.True(t, ok)
	assert.Equal(t, "jdoe42", pivot.Value)
}

func TestPointerRejectsUnknownAction(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Start(ctx, "inv-1", "Jane Doe", 800, 600))
	err := f.service.Pointer("inv-1", "triple-click", 0, 0, 0)
	assert.True(t, errors.IsValidation(err))
}

func TestListAndClose(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Start(ctx, "inv-a", "Subject A", 0, 0))
	require.NoError(t, f.service.Start(ctx, "inv-b", "Subject B", 0, 0))

	list := f.service.List()
	require.Len(t, list, 2)
	assert.Equal(t, "inv-a", list[0].ID, "stable id ordering")

	require.NoError(t, f.service.Close("inv-a"))
	assert.Len(t, f.service.List(), 1)
}

func TestApplyTuningPropagates(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Start(ctx, "inv-1", "Jane Doe", 800, 600))

	tuning := domain.DefaultTuning()
	tuning.RestLength = 250
	f.service.ApplyTuning(tuning)

	_, _, state, _ := mustStats(t, f.service, "inv-1")
	assert.Equal(t, string(domain.StateStepping), state)
}

func mustStats(t *testing.T, s *InvestigationService, id string) (int, int, string, float64) {
	t.Helper()
	summary, state, energy, err := s.Stats(id)
	require.NoError(t, err)
	return summary.NodeCount, summary.EdgeCount, state, energy
}

func TestRunPublishesFramesAndReactsToChanges(t *testing.T) {
	f := newServiceFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, f.service.Start(ctx, "inv-1", "Jane Doe", 800, 600))

	done := make(chan error, 1)
	go func() { done <- f.service.Run(ctx) }()

	// The frame loop publishes continuously.
	require.Eventually(t, func() bool {
		return f.publisher.frameCount() > 0
	}, 2*time.Second, 10*time.Millisecond)

	// An append through the sink triggers a rebuild via the change stream.
	require.NoError(t, f.service.Ingest(ctx, "inv-1", []entities.Finding{usernameFinding("jdoe42")}))
	require.Eventually(t, func() bool {
		nodes, _, _, err := f.service.Stats("inv-1")
		return err == nil && nodes.NodeCount == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
