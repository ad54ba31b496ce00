package services

import (
	"math"
	"math/rand"

	"go.uber.org/zap"

	"linkscope-backend/domain/core/aggregates"
	"linkscope-backend/domain/core/entities"
	"linkscope-backend/domain/core/valueobjects"
)

// Reconciler merges a freshly built candidate set into the live snapshot
// without disturbing settled nodes: anything already present keeps its
// position, velocity, lock state and birth time, so pre-existing nodes never
// visibly jump when new data arrives.
type Reconciler struct {
	seedRadius float64
	logger     *zap.Logger
}

// NewReconciler creates a reconciler. seedRadius controls how far from their
// parent new nodes are spawned.
func NewReconciler(seedRadius float64, logger *zap.Logger) *Reconciler {
	if seedRadius <= 0 {
		seedRadius = 60
	}
	return &Reconciler{seedRadius: seedRadius, logger: logger}
}

// Reconcile applies the candidate set to the snapshot atomically. now is the
// logical clock reading stamped onto genuinely new nodes; rng drives the
// angular offset of their seed position so siblings fan out instead of
// stacking. The caller is responsible for waking the simulation afterwards.
func (r *Reconciler) Reconcile(snap *aggregates.Snapshot, set *CandidateSet, now int64, rng *rand.Rand) error {
	existing := make(map[string]*entities.Node, snap.NodeCount())
	for _, n := range snap.Nodes() {
		existing[n.ID] = n
	}

	merged := make([]*entities.Node, 0, len(set.Nodes))
	mergedByID := make(map[string]*entities.Node, len(set.Nodes))
	born := 0

	for _, candidate := range set.Nodes {
		node := candidate.Clone()
		if prev, ok := existing[candidate.ID]; ok {
			// The candidate's placeholder physics state is discarded; live
			// state carries over untouched.
			node.Position = prev.Position
			node.Velocity = prev.Velocity
			node.Locked = prev.Locked
			node.BirthTime = prev.BirthTime
		} else {
			node.Position = r.seedPosition(candidate.ID, set, existing, mergedByID, rng)
			node.Velocity = valueobjects.Zero()
			node.BirthTime = now
			node.Locked = node.IsRoot()
			born++
		}
		merged = append(merged, node)
		mergedByID[node.ID] = node
	}

	if err := snap.Replace(merged, set.Edges); err != nil {
		return err
	}

	if born > 0 {
		r.logger.Debug("Reconciled snapshot",
			zap.Int("nodes", snap.NodeCount()),
			zap.Int("edges", snap.EdgeCount()),
			zap.Int("born", born),
		)
	}
	return nil
}

// seedPosition places a new node near its resolved parent with a small
// random angular offset. Parents are resolved against the live snapshot
// first, then against nodes merged earlier in this same pass; a parentless
// node lands at the origin neighborhood.
func (r *Reconciler) seedPosition(
	id string,
	set *CandidateSet,
	existing map[string]*entities.Node,
	mergedByID map[string]*entities.Node,
	rng *rand.Rand,
) valueobjects.Vec2 {
	anchor := valueobjects.Zero()
	if parentID, ok := set.Parents[id]; ok {
		if p, ok := existing[parentID]; ok {
			anchor = p.Position
		} else if p, ok := mergedByID[parentID]; ok {
			anchor = p.Position
		}
	}
	angle := rng.Float64() * 2 * math.Pi
	radius := r.seedRadius * (0.5 + rng.Float64()*0.5)
	return anchor.Add(valueobjects.NewVec2(math.Cos(angle)*radius, math.Sin(angle)*radius))
}
