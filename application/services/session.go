package services

import (
	"math/rand"
	"strings"
	"sync"

	"linkscope-backend/application/queries/models"
	"linkscope-backend/domain/core/aggregates"
	"linkscope-backend/domain/core/entities"
	"linkscope-backend/domain/core/valueobjects"
	domain "linkscope-backend/domain/services"
	"linkscope-backend/pkg/errors"
)

// Session is one live investigation: the snapshot, its simulation engine and
// its viewport, guarded by a single mutex. Every mutation passes through that
// mutex, so rebuilds, pointer gestures and physics steps interleave atomically
// between frames and never observe each other half-applied.
type Session struct {
	mu sync.Mutex

	id      string
	subject string

	snapshot *aggregates.Snapshot
	engine   *domain.Engine
	viewport *domain.Viewport
	rng      *rand.Rand

	seq uint64
}

// NewSession opens a session for a subject. The graph starts as the locked
// root node centered in the world, no edges.
func NewSession(id, subject string, tuning domain.Tuning, width, height float64, seed int64) (*Session, error) {
	root := entities.NewRootNode(subject)
	root.Position = valueobjects.NewVec2(width/2, height/2)

	snap, err := aggregates.NewSnapshot(root)
	if err != nil {
		return nil, errors.Wrap(err, "create session snapshot")
	}

	return &Session{
		id:       id,
		subject:  subject,
		snapshot: snap,
		engine:   domain.NewEngine(tuning, width, height),
		viewport: domain.NewViewport(),
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// ID returns the investigation id.
func (s *Session) ID() string { return s.id }

// Subject returns the investigation subject.
func (s *Session) Subject() string { return s.subject }

// Rebuild derives a candidate set from the full finding list and reconciles
// it into the live snapshot.
func (s *Session) Rebuild(builder *domain.Builder, reconciler *domain.Reconciler, findings []entities.Finding, now int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := builder.Build(s.snapshot.Root(), findings, s.snapshot.SelectorIndex())
	if err := reconciler.Reconcile(s.snapshot, set, now, s.rng); err != nil {
		return errors.Wrap(err, "reconcile snapshot")
	}
	s.engine.Wake()
	return nil
}

// Step advances the simulation one tick. It returns whether the engine is
// still moving and whether this particular step crossed into settled.
func (s *Session) Step() (stepping, justSettled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasStepping := !s.engine.Settled()
	stepping = s.engine.Step(s.snapshot)
	justSettled = wasStepping && !stepping
	return stepping, justSettled
}

// Pointer feeds one pointer event into the viewport state machine. A returned
// pivot event means the user double-clicked a non-root node.
func (s *Session) Pointer(action string, x, y, factor float64) (*domain.PivotEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	screen := valueobjects.NewVec2(x, y)
	switch action {
	case "down":
		s.viewport.PointerDown(s.snapshot, s.engine, screen)
	case "move":
		s.viewport.PointerMove(s.snapshot, screen)
	case "up":
		s.viewport.PointerUp(s.snapshot, s.engine)
	case "double-click":
		return s.viewport.DoubleClick(s.snapshot, screen), nil
	case "wheel":
		s.viewport.ZoomBy(factor, screen)
	default:
		return nil, errors.NewValidationError("unknown pointer action '" + action + "'")
	}
	return nil, nil
}

// SetLinkMode enters or leaves the manual linking gesture.
func (s *Session) SetLinkMode(enable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if enable {
		s.viewport.EnterLinkMode(s.snapshot, s.engine)
	} else {
		s.viewport.CancelLinkMode()
	}
}

// Resize updates the world bounds to the new canvas size.
func (s *Session) Resize(width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Resize(width, height)
}

// ApplyTuning swaps in hot-reloaded force constants.
func (s *Session) ApplyTuning(t domain.Tuning) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetTuning(t)
}

// Frame renders the current state into a screen-space read model. now drives
// the bloom animation of recently born nodes.
func (s *Session) Frame(now, bloomMillis int64) *models.RenderFrame {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	frame := &models.RenderFrame{
		InvestigationID: s.id,
		Sequence:        s.seq,
		Settled:         s.engine.Settled(),
		Zoom:            s.viewport.Zoom(),
		PanX:            s.viewport.Pan().X,
		PanY:            s.viewport.Pan().Y,
		Mode:            string(s.viewport.Mode()),
		Nodes:           make([]models.FrameNode, 0, s.snapshot.NodeCount()),
		Edges:           make([]models.FrameEdge, 0, s.snapshot.EdgeCount()),
	}

	positions := make(map[string]valueobjects.Vec2, s.snapshot.NodeCount())
	for _, n := range s.snapshot.Nodes() {
		screen := s.viewport.WorldToScreen(n.Position)
		positions[n.ID] = screen
		frame.Nodes = append(frame.Nodes, models.FrameNode{
			ID:       n.ID,
			Kind:     string(n.Kind),
			Label:    n.Label,
			X:        screen.X,
			Y:        screen.Y,
			Locked:   n.Locked,
			Selected: n.ID == s.viewport.SelectedID(),
			Hovered:  n.ID == s.viewport.HoveredID(),
			Bloom:    n.BloomProgress(now, bloomMillis),
			Source:   n.Metadata.Source,
			Verified: n.Metadata.Verified,
			URL:      n.Metadata.URL,
		})
	}
	for _, e := range s.snapshot.Edges() {
		src, ok := positions[e.Source]
		if !ok {
			continue
		}
		tgt, ok := positions[e.Target]
		if !ok {
			continue
		}
		frame.Edges = append(frame.Edges, models.FrameEdge{
			ID:       e.ID,
			Label:    e.Label,
			X1:       src.X,
			Y1:       src.Y,
			X2:       tgt.X,
			Y2:       tgt.Y,
			Strength: e.Strength,
		})
	}
	return frame
}

// Summary returns the list read model for this session.
func (s *Session) Summary() models.InvestigationSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.InvestigationSummary{
		ID:        s.id,
		Subject:   s.subject,
		NodeCount: s.snapshot.NodeCount(),
		EdgeCount: s.snapshot.EdgeCount(),
		Settled:   s.engine.Settled(),
	}
}

// Stats returns simulation statistics for diagnostics.
func (s *Session) Stats() (nodeCount, edgeCount int, state string, energy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot.NodeCount(), s.snapshot.EdgeCount(),
		string(s.engine.State()), s.snapshot.TotalKineticEnergy()
}

// Select marks a node as selected by id or by its raw selector value.
func (s *Session) Select(idOrSelector string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshot.Node(idOrSelector); ok {
		s.viewport.Select(idOrSelector)
		return true
	}
	needle := strings.ToLower(strings.TrimSpace(idOrSelector))
	if id, ok := s.snapshot.SelectorIndex()[needle]; ok {
		s.viewport.Select(id)
		return true
	}
	return false
}
