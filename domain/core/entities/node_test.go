package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"linkscope-backend/domain/core/valueobjects"
)

func TestNewRootNode(t *testing.T) {
	root := NewRootNode("Jane Doe")

	assert.Equal(t, "root:jane doe", root.ID)
	assert.True(t, root.IsRoot())
	assert.True(t, root.Locked, "root must start locked")
}

func TestNewNodeLockState(t *testing.T) {
	n := NewNode(valueobjects.DeriveNodeID(valueobjects.KindEmail, "a@b.c"), valueobjects.KindEmail, "a@b.c")
	assert.False(t, n.Locked)
	assert.False(t, n.IsRoot())
}

func TestCloneIsIndependent(t *testing.T) {
	n := NewRootNode("subject")
	n.Position = valueobjects.NewVec2(10, 20)

	c := n.Clone()
	c.Position = valueobjects.NewVec2(99, 99)

	assert.Equal(t, valueobjects.NewVec2(10, 20), n.Position)
}

func TestBloomProgress(t *testing.T) {
	n := NewRootNode("subject")
	n.BirthTime = 1000

	assert.Equal(t, float64(0), n.BloomProgress(1000, 400))
	assert.InDelta(t, 0.5, n.BloomProgress(1200, 400), 1e-9)
	assert.Equal(t, float64(1), n.BloomProgress(1400, 400))
	assert.Equal(t, float64(1), n.BloomProgress(5000, 400))

	// Disabled animation is always complete.
	assert.Equal(t, float64(1), n.BloomProgress(1000, 0))
}
