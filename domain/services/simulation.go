package services

import (
	"linkscope-backend/domain/core/aggregates"
	"linkscope-backend/domain/core/valueobjects"
)

// EngineState is the simulation lifecycle: Stepping while the layout is
// still moving, Settled once total kinetic energy drops below the threshold.
type EngineState string

const (
	StateStepping EngineState = "stepping"
	StateSettled  EngineState = "settled"
)

// Tuning holds the force model constants. Values are hot-reloadable at
// runtime; the zero value is unusable, use DefaultTuning as the baseline.
type Tuning struct {
	Repulsion         float64 `yaml:"repulsion" json:"repulsion"`
	MinDistance       float64 `yaml:"min_distance" json:"minDistance"`
	SpringConstant    float64 `yaml:"spring_constant" json:"springConstant"`
	RestLength        float64 `yaml:"rest_length" json:"restLength"`
	CenteringStrength float64 `yaml:"centering_strength" json:"centeringStrength"`
	Damping           float64 `yaml:"damping" json:"damping"`
	SettleThreshold   float64 `yaml:"settle_threshold" json:"settleThreshold"`
	BoundsPadding     float64 `yaml:"bounds_padding" json:"boundsPadding"`
}

// DefaultTuning returns force constants that settle a graph of around a
// hundred nodes in well under five hundred steps.
func DefaultTuning() Tuning {
	return Tuning{
		Repulsion:         8000,
		MinDistance:       12,
		SpringConstant:    0.04,
		RestLength:        110,
		CenteringStrength: 0.005,
		Damping:           0.85,
		SettleThreshold:   0.05,
		BoundsPadding:     40,
	}
}

// Engine advances node positions toward force equilibrium. Step is purely
// computational: no clock, no randomness, no I/O. Forces are accumulated
// against a read-phase copy of all positions so iteration order cannot
// introduce asymmetry, then applied in a separate write phase.
type Engine struct {
	tuning Tuning
	state  EngineState
	width  float64
	height float64
}

// NewEngine creates an engine for a canvas of the given world size.
func NewEngine(tuning Tuning, width, height float64) *Engine {
	return &Engine{
		tuning: tuning,
		state:  StateStepping,
		width:  width,
		height: height,
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() EngineState {
	return e.state
}

// Settled reports whether the layout has converged.
func (e *Engine) Settled() bool {
	return e.state == StateSettled
}

// Wake transitions back to Stepping. Called after any mutation that changes
// positions or locks: reconciliation, drag start or release, manual links.
func (e *Engine) Wake() {
	e.state = StateStepping
}

// SetTuning swaps in new force constants and wakes the engine so the layout
// re-converges under them.
func (e *Engine) SetTuning(t Tuning) {
	e.tuning = t
	e.Wake()
}

// Tuning returns the active force constants.
func (e *Engine) Tuning() Tuning {
	return e.tuning
}

// Resize updates the world bounds to match the viewport and wakes the
// engine so clamping and centering adjust.
func (e *Engine) Resize(width, height float64) {
	if width > 0 {
		e.width = width
	}
	if height > 0 {
		e.height = height
	}
	e.Wake()
}

// Step advances the simulation one tick and returns true while more
// stepping is needed. A settled engine is a no-op until woken.
func (e *Engine) Step(snap *aggregates.Snapshot) bool {
	if e.state == StateSettled {
		return false
	}

	nodes := snap.Nodes()
	n := len(nodes)
	if n == 0 {
		e.state = StateSettled
		return false
	}

	// Read phase: one consistent view of all positions.
	positions := make([]valueobjects.Vec2, n)
	for i, node := range nodes {
		positions[i] = node.Position
	}
	indexByID := make(map[string]int, n)
	for i, node := range nodes {
		indexByID[node.ID] = i
	}

	forces := make([]valueobjects.Vec2, n)
	e.accumulateRepulsion(positions, forces)
	e.accumulateSprings(snap, positions, indexByID, forces)
	e.accumulateCentering(positions, forces)

	// Write phase: integrate unlocked nodes only. Locked nodes contributed
	// forces above but never move themselves.
	minX, minY := e.tuning.BoundsPadding, e.tuning.BoundsPadding
	maxX, maxY := e.width-e.tuning.BoundsPadding, e.height-e.tuning.BoundsPadding
	var energy float64
	for i, node := range nodes {
		if node.Locked {
			continue
		}
		node.Velocity = node.Velocity.Add(forces[i]).Scale(e.tuning.Damping)
		node.Position = node.Position.Add(node.Velocity).Clamp(minX, minY, maxX, maxY)
		energy += node.Velocity.LengthSquared()
	}

	if energy < e.tuning.SettleThreshold {
		e.state = StateSettled
		return false
	}
	return true
}

// accumulateRepulsion adds the pairwise inverse-square charge force. The
// distance floor guards the division when two nodes sit on top of each
// other; coincident nodes get a deterministic axis-aligned nudge apart.
func (e *Engine) accumulateRepulsion(positions []valueobjects.Vec2, forces []valueobjects.Vec2) {
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			delta := positions[i].Sub(positions[j])
			dist := delta.Length()
			if dist < e.tuning.MinDistance {
				if dist == 0 {
					delta = valueobjects.NewVec2(1, 0)
				}
				dist = e.tuning.MinDistance
			}
			magnitude := e.tuning.Repulsion / (dist * dist)
			push := delta.Scale(magnitude / dist)
			forces[i] = forces[i].Add(push)
			forces[j] = forces[j].Sub(push)
		}
	}
}

// accumulateSprings adds the per-edge spring force pulling connected pairs
// toward rest length, scaled by edge strength.
func (e *Engine) accumulateSprings(
	snap *aggregates.Snapshot,
	positions []valueobjects.Vec2,
	indexByID map[string]int,
	forces []valueobjects.Vec2,
) {
	for _, edge := range snap.Edges() {
		si, ok := indexByID[edge.Source]
		if !ok {
			continue
		}
		ti, ok := indexByID[edge.Target]
		if !ok {
			continue
		}
		delta := positions[ti].Sub(positions[si])
		dist := delta.Length()
		if dist < e.tuning.MinDistance {
			dist = e.tuning.MinDistance
		}
		displacement := dist - e.tuning.RestLength
		magnitude := displacement * e.tuning.SpringConstant * edge.Strength
		pull := delta.Scale(magnitude / dist)
		forces[si] = forces[si].Add(pull)
		forces[ti] = forces[ti].Sub(pull)
	}
}

// accumulateCentering adds the weak gravity pulling every node toward the
// canvas center, proportional to displacement.
func (e *Engine) accumulateCentering(positions []valueobjects.Vec2, forces []valueobjects.Vec2) {
	center := valueobjects.NewVec2(e.width/2, e.height/2)
	for i := range positions {
		forces[i] = forces[i].Add(center.Sub(positions[i]).Scale(e.tuning.CenteringStrength))
	}
}

// StepUntilSettled drives the engine up to maxSteps and returns the number
// taken. Used by callers that want a synchronously converged layout, such
// as the initial frame of a freshly created session.
func (e *Engine) StepUntilSettled(snap *aggregates.Snapshot, maxSteps int) int {
	steps := 0
	for steps < maxSteps && e.Step(snap) {
		steps++
	}
	return steps
}
