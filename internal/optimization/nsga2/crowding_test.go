package nsga2

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrowdingDistanceBoundariesInfinite(t *testing.T) {
	pop := popFromObjectives([][]float64{
		{1, 9}, {2, 7}, {3, 5}, {4, 2},
	})
	front := []int{0, 1, 2, 3}

	CrowdingDistance(pop, front)

	assert.True(t, math.IsInf(pop[0].Crowding, 1))
	assert.True(t, math.IsInf(pop[3].Crowding, 1))
	assert.False(t, math.IsInf(pop[1].Crowding, 1))
	assert.False(t, math.IsInf(pop[2].Crowding, 1))
}

func TestCrowdingDistanceTinyFronts(t *testing.T) {
	pop := popFromObjectives([][]float64{
		{1, 2}, {3, 4}, {5, 6},
	})

	CrowdingDistance(pop, []int{0})
	assert.True(t, math.IsInf(pop[0].Crowding, 1))

	CrowdingDistance(pop, []int{1, 2})
	assert.True(t, math.IsInf(pop[1].Crowding, 1))
	assert.True(t, math.IsInf(pop[2].Crowding, 1))
}

func TestCrowdingDistanceIsolationOrdering(t *testing.T) {
	// Interior point 1 sits in a sparse region, point 2 in a dense one.
	pop := popFromObjectives([][]float64{
		{0, 10},
		{5, 5},
		{8.9, 1.1},
		{9, 1},
		{10, 0},
	})
	front := []int{0, 1, 2, 3, 4}

	CrowdingDistance(pop, front)

	assert.Greater(t, pop[1].Crowding, pop[2].Crowding,
		"isolated individuals should have larger crowding distance")
}

func TestCrowdingDistanceConstantObjectiveSkipped(t *testing.T) {
	// The second objective has zero range and must not produce NaN.
	pop := popFromObjectives([][]float64{
		{1, 7}, {2, 7}, {3, 7}, {4, 7},
	})
	front := []int{0, 1, 2, 3}

	CrowdingDistance(pop, front)

	for _, in := range pop {
		assert.False(t, math.IsNaN(in.Crowding), "crowding must never be NaN")
	}
	assert.True(t, math.IsInf(pop[0].Crowding, 1))
	assert.True(t, math.IsInf(pop[3].Crowding, 1))
}
