package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"linkscope-backend/application/ports"
	"linkscope-backend/application/queries/models"
	"linkscope-backend/domain/core/entities"
	domain "linkscope-backend/domain/services"
	"linkscope-backend/pkg/errors"
	"linkscope-backend/pkg/observability"
)

// Options tunes the service's frame loop and animation timing.
type Options struct {
	// FrameInterval is the render cadence. 33ms approximates 30fps.
	FrameInterval time.Duration

	// BloomMillis is the entrance animation duration for new nodes.
	BloomMillis int64

	// DefaultWidth and DefaultHeight size sessions whose start command
	// carries no viewport dimensions.
	DefaultWidth  float64
	DefaultHeight float64
}

// DefaultOptions returns the production frame loop settings.
func DefaultOptions() Options {
	return Options{
		FrameInterval: 33 * time.Millisecond,
		BloomMillis:   400,
		DefaultWidth:  1280,
		DefaultHeight: 800,
	}
}

// InvestigationService owns the session registry and the two background
// loops: the frame ticker that steps every engine and publishes render
// frames, and the change subscription that rebuilds graphs when the finding
// source reports new data.
type InvestigationService struct {
	sessions *sessionRegistry

	builder    *domain.Builder
	reconciler *domain.Reconciler
	tuning     domain.Tuning

	source    ports.FindingSource
	sink      ports.FindingSink
	publisher ports.FramePublisher
	clock     ports.Clock

	metrics *observability.Metrics
	logger  *zap.Logger
	opts    Options
}

// NewInvestigationService wires the service. sink may be nil when the
// configured finding source is read-only.
func NewInvestigationService(
	builder *domain.Builder,
	reconciler *domain.Reconciler,
	tuning domain.Tuning,
	source ports.FindingSource,
	sink ports.FindingSink,
	publisher ports.FramePublisher,
	clock ports.Clock,
	metrics *observability.Metrics,
	logger *zap.Logger,
	opts Options,
) *InvestigationService {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultOptions().FrameInterval
	}
	if opts.DefaultWidth <= 0 || opts.DefaultHeight <= 0 {
		opts.DefaultWidth = DefaultOptions().DefaultWidth
		opts.DefaultHeight = DefaultOptions().DefaultHeight
	}
	return &InvestigationService{
		sessions:   newSessionRegistry(),
		builder:    builder,
		reconciler: reconciler,
		tuning:     tuning,
		source:     source,
		sink:       sink,
		publisher:  publisher,
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
		opts:       opts,
	}
}

// Run drives the background loops until the context is cancelled.
func (s *InvestigationService) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.frameLoop(ctx) })
	g.Go(func() error { return s.changeLoop(ctx) })
	return g.Wait()
}

// Start opens a session and performs an initial rebuild from whatever
// findings the source already holds for the investigation.
func (s *InvestigationService) Start(ctx context.Context, investigationID, subject string, width, height float64) error {
	if width <= 0 || height <= 0 {
		width, height = s.opts.DefaultWidth, s.opts.DefaultHeight
	}

	session, err := NewSession(investigationID, subject, s.tuning, width, height, s.clock.NowMillis())
	if err != nil {
		return err
	}
	if err := s.sessions.add(session); err != nil {
		return err
	}
	s.metrics.ActiveSessions.Inc()
	s.logger.Info("Investigation started",
		zap.String("investigationID", investigationID),
		zap.String("subject", subject),
	)

	if err := s.rebuild(ctx, session); err != nil {
		s.logger.Warn("Initial rebuild failed, session starts with root only",
			zap.String("investigationID", investigationID),
			zap.Error(err),
		)
	}
	return nil
}

// Close discards a session and its simulation state.
func (s *InvestigationService) Close(investigationID string) error {
	if err := s.sessions.remove(investigationID); err != nil {
		return err
	}
	s.metrics.ActiveSessions.Dec()
	s.metrics.ForgetSession(investigationID)
	s.logger.Info("Investigation closed", zap.String("investigationID", investigationID))
	return nil
}

// Ingest appends findings through the sink. The sink's change notification
// then drives the rebuild, the same path push updates take.
func (s *InvestigationService) Ingest(ctx context.Context, investigationID string, findings []entities.Finding) error {
	if _, err := s.sessions.get(investigationID); err != nil {
		return err
	}
	if s.sink == nil {
		return errors.NewUnavailableError("finding ingestion")
	}
	if err := s.sink.Append(ctx, investigationID, findings); err != nil {
		return errors.Wrap(err, "append findings")
	}
	return nil
}

// Rebuild forces an immediate rebuild from the source's current finding list.
func (s *InvestigationService) Rebuild(ctx context.Context, investigationID string) error {
	session, err := s.sessions.get(investigationID)
	if err != nil {
		return err
	}
	return s.rebuild(ctx, session)
}

// Pointer dispatches a pointer event to the session. Pivot requests are
// published rather than acted on; navigation stays with the host.
func (s *InvestigationService) Pointer(investigationID, action string, x, y, factor float64) error {
	session, err := s.sessions.get(investigationID)
	if err != nil {
		return err
	}
	pivot, err := session.Pointer(action, x, y, factor)
	if err != nil {
		return err
	}
	if pivot != nil {
		s.publisher.PublishPivot(investigationID, *pivot)
		s.logger.Info("Pivot requested",
			zap.String("investigationID", investigationID),
			zap.String("kind", string(pivot.Kind)),
			zap.String("value", pivot.Value),
		)
	}
	return nil
}

// SetLinkMode enters or leaves the manual linking gesture.
func (s *InvestigationService) SetLinkMode(investigationID string, enable bool) error {
	session, err := s.sessions.get(investigationID)
	if err != nil {
		return err
	}
	session.SetLinkMode(enable)
	return nil
}

// Resize updates a session's world bounds.
func (s *InvestigationService) Resize(investigationID string, width, height float64) error {
	session, err := s.sessions.get(investigationID)
	if err != nil {
		return err
	}
	session.Resize(width, height)
	return nil
}

// Frame renders the current state of a session on demand, the pull-based
// counterpart to the published frame stream.
func (s *InvestigationService) Frame(investigationID string) (*models.RenderFrame, error) {
	session, err := s.sessions.get(investigationID)
	if err != nil {
		return nil, err
	}
	return session.Frame(s.clock.NowMillis(), s.opts.BloomMillis), nil
}

// List returns summaries of all open sessions.
func (s *InvestigationService) List() []models.InvestigationSummary {
	sessions := s.sessions.all()
	out := make([]models.InvestigationSummary, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, session.Summary())
	}
	return out
}

// Stats returns simulation statistics for one session.
func (s *InvestigationService) Stats(investigationID string) (models.InvestigationSummary, string, float64, error) {
	session, err := s.sessions.get(investigationID)
	if err != nil {
		return models.InvestigationSummary{}, "", 0, err
	}
	nodes, edges, state, energy := session.Stats()
	summary := models.InvestigationSummary{
		ID:        session.ID(),
		Subject:   session.Subject(),
		NodeCount: nodes,
		EdgeCount: edges,
		Settled:   state == string(domain.StateSettled),
	}
	return summary, state, energy, nil
}

// ApplyTuning pushes hot-reloaded force constants into every open session.
func (s *InvestigationService) ApplyTuning(t domain.Tuning) {
	s.tuning = t
	for _, session := range s.sessions.all() {
		session.ApplyTuning(t)
	}
	s.logger.Info("Applied new simulation tuning")
}

// rebuild fetches the full finding list and reconciles it into the session.
func (s *InvestigationService) rebuild(ctx context.Context, session *Session) error {
	started := time.Now()
	findings, err := s.source.List(ctx, session.ID())
	if err != nil {
		return errors.Wrap(err, "list findings")
	}
	if err := session.Rebuild(s.builder, s.reconciler, findings, s.clock.NowMillis()); err != nil {
		return err
	}

	s.metrics.RebuildTotal.Inc()
	s.metrics.RebuildDuration.Observe(time.Since(started).Seconds())
	summary := session.Summary()
	s.metrics.ObserveGraphSize(session.ID(), summary.NodeCount, summary.EdgeCount)
	s.logger.Debug("Graph rebuilt",
		zap.String("investigationID", session.ID()),
		zap.Int("findings", len(findings)),
		zap.Int("nodes", summary.NodeCount),
		zap.Int("edges", summary.EdgeCount),
	)
	return nil
}

// frameLoop steps every engine and publishes a frame per session per tick.
func (s *InvestigationService) frameLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := s.clock.NowMillis()
			for _, session := range s.sessions.all() {
				stepStart := time.Now()
				_, justSettled := session.Step()
				s.metrics.StepDuration.Observe(time.Since(stepStart).Seconds())
				s.metrics.StepsTotal.Inc()
				if justSettled {
					s.metrics.SettleTotal.Inc()
					s.logger.Debug("Layout settled", zap.String("investigationID", session.ID()))
				}
				s.publisher.PublishFrame(session.ID(), session.Frame(now, s.opts.BloomMillis))
				s.metrics.FramesPublished.Inc()
			}
		}
	}
}

// changeLoop rebuilds sessions as the finding source reports changes.
// Notifications for closed sessions are dropped; back-to-back notifications
// are harmless because every rebuild reads the full current list.
func (s *InvestigationService) changeLoop(ctx context.Context) error {
	changes, err := s.source.Changes(ctx)
	if err != nil {
		return errors.Wrap(err, "subscribe to finding changes")
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			session, err := s.sessions.get(change.InvestigationID)
			if err != nil {
				continue
			}
			if err := s.rebuild(ctx, session); err != nil {
				s.logger.Error("Rebuild after change notification failed",
					zap.String("investigationID", change.InvestigationID),
					zap.Error(err),
				)
			}
		}
	}
}
