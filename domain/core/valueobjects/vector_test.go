package valueobjects

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec2Arithmetic(t *testing.T) {
	a := NewVec2(3, 4)
	b := NewVec2(1, -2)

	assert.Equal(t, NewVec2(4, 2), a.Add(b))
	assert.Equal(t, NewVec2(2, 6), a.Sub(b))
	assert.Equal(t, NewVec2(6, 8), a.Scale(2))
	assert.InDelta(t, 5, a.Length(), 1e-9)
	assert.InDelta(t, 25, a.LengthSquared(), 1e-9)
	assert.InDelta(t, math.Sqrt(4+36), a.DistanceTo(b), 1e-9)
}

func TestNewVec2SanitizesNonFinite(t *testing.T) {
	assert.Equal(t, Zero(), NewVec2(math.NaN(), math.Inf(1)))
	assert.Equal(t, NewVec2(1, 0), NewVec2(1, math.NaN()))
}

func TestVec2Clamp(t *testing.T) {
	v := NewVec2(-10, 500)
	clamped := v.Clamp(0, 0, 100, 100)
	assert.Equal(t, NewVec2(0, 100), clamped)

	inside := NewVec2(50, 50)
	assert.Equal(t, inside, inside.Clamp(0, 0, 100, 100))
}

func TestVec2ZeroChecks(t *testing.T) {
	assert.True(t, Zero().IsZero())
	assert.False(t, NewVec2(0.001, 0).IsZero())
	assert.True(t, NewVec2(1, 2).Equals(NewVec2(1, 2)))
}
