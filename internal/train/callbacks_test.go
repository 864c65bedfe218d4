package train

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEarlyStopping_StopsAfterPatience(t *testing.T) {
	e := newEarlyStopping(3)

	assert.False(t, e.observe(1.0, map[string][]float64{"w": {1}}))
	assert.False(t, e.observe(0.8, map[string][]float64{"w": {2}}))
	assert.False(t, e.observe(0.9, nil))
	assert.False(t, e.observe(0.85, nil))
	assert.True(t, e.observe(0.81, nil))

	assert.Equal(t, []float64{2}, e.bestState()["w"])
	assert.Equal(t, 0.8, e.best)
}

func TestEarlyStopping_ImprovementResetsCounter(t *testing.T) {
	e := newEarlyStopping(2)
	assert.False(t, e.observe(1.0, nil))
	assert.False(t, e.observe(1.1, nil))
	assert.False(t, e.observe(0.9, nil)) // improvement, counter resets
	assert.False(t, e.observe(0.95, nil))
	assert.True(t, e.observe(0.92, nil))
}

func TestPlateauScheduler_HalvesAfterPatience(t *testing.T) {
	s := newPlateauScheduler(0.5, 2, 1e-6)

	lr := 0.001
	lr = s.observe(1.0, lr)
	assert.Equal(t, 0.001, lr)
	lr = s.observe(1.2, lr)
	assert.Equal(t, 0.001, lr)
	lr = s.observe(1.1, lr)
	assert.Equal(t, 0.0005, lr)
}

func TestPlateauScheduler_ImprovementResets(t *testing.T) {
	s := newPlateauScheduler(0.5, 2, 1e-6)
	lr := 0.001
	lr = s.observe(1.0, lr)
	lr = s.observe(1.2, lr)
	lr = s.observe(0.9, lr) // improvement
	lr = s.observe(1.0, lr)
	assert.Equal(t, 0.001, lr)
	lr = s.observe(1.0, lr)
	assert.Equal(t, 0.0005, lr)
}

func TestPlateauScheduler_RespectsFloor(t *testing.T) {
	s := newPlateauScheduler(0.5, 1, 1e-6)
	lr := 2e-6
	lr = s.observe(1.0, lr)
	lr = s.observe(1.1, lr)
	assert.Equal(t, 1e-6, lr)
	lr = s.observe(1.2, lr)
	assert.Equal(t, 1e-6, lr)
}
