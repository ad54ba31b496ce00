package services

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkscope-backend/domain/core/aggregates"
	"linkscope-backend/domain/core/entities"
	"linkscope-backend/domain/core/valueobjects"
)

// populatedSnapshot builds a snapshot with a root, a person and two emails
// hanging off the person, seeded at deterministic positions.
func populatedSnapshot(t *testing.T) *aggregates.Snapshot {
	t.Helper()
	snap, err := aggregates.NewSnapshot(entities.NewRootNode("subject"))
	require.NoError(t, err)
	snap.Root().Position = valueobjects.NewVec2(400, 300)

	findings := []entities.Finding{
		{
			ID:   "f1",
			Kind: entities.FindingPersonRecord,
			Payload: map[string]any{
				"name":   "Jane Doe",
				"emails": []any{"jane@example.com", "j.doe@work.example"},
			},
		},
	}
	b := NewBuilder(zap.NewNop())
	r := NewReconciler(60, zap.NewNop())
	require.NoError(t, r.Reconcile(snap, b.Build(snap.Root(), findings, snap.SelectorIndex()), 0, rand.New(rand.NewSource(3))))
	require.Greater(t, snap.NodeCount(), 2)
	return snap
}

func TestEngineConvergesWithinStepLimit(t *testing.T) {
	snap := populatedSnapshot(t)
	engine := NewEngine(DefaultTuning(), 800, 600)

	steps := engine.StepUntilSettled(snap, 500)

	assert.True(t, engine.Settled(), "engine settles")
	assert.Less(t, steps, 500, "settles before the step limit")
	assert.Less(t, snap.TotalKineticEnergy(), DefaultTuning().SettleThreshold)
}

func TestSettledEngineIsNoOp(t *testing.T) {
	snap := populatedSnapshot(t)
	engine := NewEngine(DefaultTuning(), 800, 600)
	engine.StepUntilSettled(snap, 500)
	require.True(t, engine.Settled())

	before := make(map[string]valueobjects.Vec2)
	for _, n := range snap.Nodes() {
		before[n.ID] = n.Position
	}

	assert.False(t, engine.Step(snap))
	for _, n := range snap.Nodes() {
		assert.Equal(t, before[n.ID], n.Position)
	}
}

func TestLockedNodeNeverMoves(t *testing.T) {
	snap := populatedSnapshot(t)
	engine := NewEngine(DefaultTuning(), 800, 600)

	node, ok := snap.Node("person:jane doe")
	require.True(t, ok)
	node.Locked = true
	pinned := node.Position

	engine.StepUntilSettled(snap, 500)

	assert.Equal(t, pinned, node.Position)
	assert.Equal(t, snap.Root().Position, valueobjects.NewVec2(400, 300), "root stays pinned")
}

func TestRepulsionSeparatesCoincidentNodes(t *testing.T) {
	snap := populatedSnapshot(t)
	engine := NewEngine(DefaultTuning(), 800, 600)

	// Force two nodes onto the same point.
	a, _ := snap.Node("email:jane@example.com")
	b, _ := snap.Node("email:j.doe@work.example")
	a.Position = valueobjects.NewVec2(200, 200)
	b.Position = valueobjects.NewVec2(200, 200)

	engine.StepUntilSettled(snap, 500)

	assert.Greater(t, a.Position.DistanceTo(b.Position), DefaultTuning().MinDistance)
}

func TestPositionsStayInsideBounds(t *testing.T) {
	snap := populatedSnapshot(t)
	tuning := DefaultTuning()
	engine := NewEngine(tuning, 800, 600)

	engine.StepUntilSettled(snap, 500)

	for _, n := range snap.Nodes() {
		if n.IsRoot() {
			continue
		}
		assert.GreaterOrEqual(t, n.Position.X, tuning.BoundsPadding)
		assert.GreaterOrEqual(t, n.Position.Y, tuning.BoundsPadding)
		assert.LessOrEqual(t, n.Position.X, 800-tuning.BoundsPadding)
		assert.LessOrEqual(t, n.Position.Y, 600-tuning.BoundsPadding)
	}
}

func TestWakeAfterMutation(t *testing.T) {
	snap := populatedSnapshot(t)
	engine := NewEngine(DefaultTuning(), 800, 600)
	engine.StepUntilSettled(snap, 500)
	require.True(t, engine.Settled())

	// Dropping a node far from equilibrium and waking restarts stepping.
	node, _ := snap.Node("person:jane doe")
	node.Position = valueobjects.NewVec2(50, 50)
	engine.Wake()

	assert.Equal(t, StateStepping, engine.State())
	assert.True(t, engine.Step(snap))
}

func TestSetTuningWakesEngine(t *testing.T) {
	snap := populatedSnapshot(t)
	engine := NewEngine(DefaultTuning(), 800, 600)
	engine.StepUntilSettled(snap, 500)
	require.True(t, engine.Settled())

	tuning := DefaultTuning()
	tuning.RestLength = 200
	engine.SetTuning(tuning)

	assert.Equal(t, StateStepping, engine.State())
	assert.Equal(t, tuning, engine.Tuning())
}

func TestResizeWakesEngine(t *testing.T) {
	snap := populatedSnapshot(t)
	engine := NewEngine(DefaultTuning(), 800, 600)
	engine.StepUntilSettled(snap, 500)

	engine.Resize(1200, 900)
	assert.Equal(t, StateStepping, engine.State())
}

func TestEmptySnapshotSettlesImmediately(t *testing.T) {
	snap, err := aggregates.NewSnapshot(entities.NewRootNode("subject"))
	require.NoError(t, err)
	engine := NewEngine(DefaultTuning(), 800, 600)

	// Only the locked root: nothing can move, so a single step settles.
	assert.False(t, engine.Step(snap))
	assert.True(t, engine.Settled())
}
