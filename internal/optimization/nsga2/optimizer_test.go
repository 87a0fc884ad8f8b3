package nsga2

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/routeforce/routeforce/internal/geo"
	"github.com/routeforce/routeforce/internal/optimization"
)

// planar treats Lat/Lon as plane coordinates so tour lengths are exact.
func planar(a, b geo.Stop) float64 {
	dx := a.Lat - b.Lat
	dy := a.Lon - b.Lon
	return math.Sqrt(dx*dx + dy*dy)
}

func squareStops() []geo.Stop {
	return []geo.Stop{
		{ID: "a", Lat: 0, Lon: 0},
		{ID: "b", Lat: 1, Lon: 1},
		{ID: "c", Lat: 0, Lon: 1},
		{ID: "d", Lat: 1, Lon: 0},
	}
}

func testConfig(objs ...string) optimization.Config {
	cfg := optimization.DefaultConfig()
	cfg.PopulationSize = 20
	cfg.Generations = 50
	cfg.Objectives = objs
	cfg.Seed = 42
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig("distance")
	cfg.PopulationSize = 2

	_, err := New(cfg, planar, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "population_size")
}

func TestOptimizeFindsSquarePerimeter(t *testing.T) {
	// The input order crosses the square diagonally (length 2+2*sqrt(2));
	// the optimal tour is the perimeter of length 4.
	opt, err := New(testConfig("distance"), planar, zap.NewNop())
	require.NoError(t, err)

	out := opt.Optimize(context.Background(), squareStops())
	require.False(t, out.Degraded)
	require.NoError(t, out.Err)

	assert.InDelta(t, 4.0, out.Metrics.BestCompromise["distance"], 1e-9)
	assert.Equal(t, optimization.AlgorithmName, out.Metrics.Algorithm)
	assert.Equal(t, 50, out.Metrics.TotalGenerations)
	assert.GreaterOrEqual(t, out.Metrics.ProcessingTime, 0.0)
}

func TestOptimizeBestRouteIsPermutationOfInput(t *testing.T) {
	stops := squareStops()
	opt, err := New(testConfig("distance", "time", "priority"), planar, zap.NewNop())
	require.NoError(t, err)

	out := opt.Optimize(context.Background(), stops)
	require.False(t, out.Degraded)
	require.Len(t, out.BestRoute, len(stops))

	want := make(map[string]bool, len(stops))
	for _, s := range stops {
		want[s.ID] = true
	}
	for _, s := range out.BestRoute {
		assert.True(t, want[s.ID], "unexpected stop %q in route", s.ID)
		delete(want, s.ID)
	}
	assert.Empty(t, want, "every input stop must appear exactly once")
}

func TestOptimizeDeterministicWithSeed(t *testing.T) {
	stops := squareStops()
	cfg := testConfig("distance", "priority")

	run := func() *optimization.Outcome {
		opt, err := New(cfg, planar, zap.NewNop())
		require.NoError(t, err)
		return opt.Optimize(context.Background(), stops)
	}

	first, second := run(), run()
	require.False(t, first.Degraded)
	require.False(t, second.Degraded)

	for i := range first.BestRoute {
		assert.Equal(t, first.BestRoute[i].ID, second.BestRoute[i].ID)
	}
	assert.Equal(t, first.Metrics.BestCompromise, second.Metrics.BestCompromise)
	assert.Equal(t, first.Metrics.Hypervolume, second.Metrics.Hypervolume)
}

func TestOptimizeTooFewStops(t *testing.T) {
	opt, err := New(testConfig("distance"), planar, zap.NewNop())
	require.NoError(t, err)

	for _, stops := range [][]geo.Stop{
		nil,
		{{ID: "only", Lat: 40.0, Lon: -74.0}},
	} {
		out := opt.Optimize(context.Background(), stops)
		assert.True(t, out.Degraded)
		assert.ErrorIs(t, out.Err, optimization.ErrInsufficientStops)
		assert.Equal(t, stops, out.BestRoute, "degraded runs return the input unchanged")
		assert.NotEmpty(t, out.Metrics.Error)
		assert.Equal(t, optimization.AlgorithmName, out.Metrics.Algorithm)
		assert.GreaterOrEqual(t, out.Metrics.ProcessingTime, 0.0)
	}
}

func TestOptimizeCancelledContext(t *testing.T) {
	opt, err := New(testConfig("distance"), planar, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := opt.Optimize(ctx, squareStops())
	assert.True(t, out.Degraded)
	assert.ErrorIs(t, out.Err, context.Canceled)
}

func TestOptimizeTriangle(t *testing.T) {
	// With a single objective every tour of a triangle has the same length,
	// so the whole population collapses into one front.
	stops := []geo.Stop{
		{ID: "p", Lat: 0, Lon: 0},
		{ID: "q", Lat: 3, Lon: 0},
		{ID: "r", Lat: 0, Lon: 4},
	}

	opt, err := New(testConfig("distance"), planar, zap.NewNop())
	require.NoError(t, err)

	out := opt.Optimize(context.Background(), stops)
	require.False(t, out.Degraded)

	assert.Equal(t, 20, out.Metrics.ParetoFrontSize)
	assert.InDelta(t, 12.0, out.Metrics.BestCompromise["distance"], 1e-9)
}

func TestOptimizeTwoColocatedStops(t *testing.T) {
	stops := []geo.Stop{
		{ID: "w1", Lat: 40.7128, Lon: -74.0060},
		{ID: "w2", Lat: 40.7128, Lon: -74.0060},
	}

	opt, err := New(testConfig("distance"), nil, zap.NewNop())
	require.NoError(t, err)

	out := opt.Optimize(context.Background(), stops)
	require.False(t, out.Degraded)
	require.Len(t, out.BestRoute, 2)
	assert.Zero(t, out.Metrics.BestCompromise["distance"])
}

func TestOptimizeColocatedStops(t *testing.T) {
	// All stops at the same point: every objective that depends on distance
	// is zero and nothing may degenerate into NaN.
	stops := []geo.Stop{
		{ID: "w1", Lat: 40.7128, Lon: -74.0060},
		{ID: "w2", Lat: 40.7128, Lon: -74.0060},
		{ID: "w3", Lat: 40.7128, Lon: -74.0060},
	}

	opt, err := New(testConfig("distance", "time", "priority"), nil, zap.NewNop())
	require.NoError(t, err)

	out := opt.Optimize(context.Background(), stops)
	require.False(t, out.Degraded)

	assert.Zero(t, out.Metrics.BestCompromise["distance"])
	for name, v := range out.Metrics.BestCompromise {
		assert.False(t, math.IsNaN(v), "objective %q is NaN", name)
	}
	assert.False(t, math.IsNaN(out.Metrics.Hypervolume))
}

func TestOptimizeAllObjectives(t *testing.T) {
	stops := []geo.Stop{
		{ID: "a", Lat: 40.7128, Lon: -74.0060, Priority: 3, Demand: 120},
		{ID: "b", Lat: 40.7306, Lon: -73.9352, Priority: 1, Demand: 40},
		{ID: "c", Lat: 40.6782, Lon: -73.9442, Priority: 2, Demand: 80},
		{ID: "d", Lat: 40.7580, Lon: -73.9855, Priority: 5, Demand: 200},
	}
	names := []string{"distance", "time", "priority", "fuel_cost", "delivery_windows", "vehicle_capacity"}

	opt, err := New(testConfig(names...), nil, zap.NewNop())
	require.NoError(t, err)

	out := opt.Optimize(context.Background(), stops)
	require.False(t, out.Degraded)

	assert.Equal(t, names, out.Metrics.ObjectivesOptimized)
	assert.Len(t, out.Metrics.BestCompromise, len(names))
	assert.GreaterOrEqual(t, out.Metrics.ParetoFrontSize, 1)
	assert.GreaterOrEqual(t, out.Metrics.Hypervolume, 0.0)
}

func TestCompromiseIndexPicksClosestToIdeal(t *testing.T) {
	pop := popFromObjectives([][]float64{
		{0, 10},
		{1, 1}, // closest to the ideal (0,0)
		{10, 0},
	})
	front := []int{0, 1, 2}

	ideal := idealPoint(pop, front)
	assert.Equal(t, []float64{0, 0}, ideal)
	assert.Equal(t, 1, compromiseIndex(pop, front, ideal))
}

func TestApproximateHypervolume(t *testing.T) {
	// Single point at (1,1), nadir at (1.1,1.1): volume 0.1*0.1.
	pop := popFromObjectives([][]float64{{1, 1}})
	assert.InDelta(t, 0.01, approximateHypervolume(pop, []int{0}), 1e-12)

	assert.Zero(t, approximateHypervolume(nil, nil))
}
