package nsga2

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routeforce/routeforce/internal/optimization"
)

func assertPermutation(t *testing.T, route []int, n int) {
	t.Helper()
	require.Len(t, route, n)
	seen := make([]bool, n)
	for _, v := range route {
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, n)
		require.False(t, seen[v], "duplicate index %d in route %v", v, route)
		seen[v] = true
	}
}

func TestRandomPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for n := 1; n <= 12; n++ {
		assertPermutation(t, RandomPermutation(n, rng), n)
	}
}

func TestOrderCrossoverPreservesPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	n := 10
	for i := 0; i < 200; i++ {
		p1 := RandomPermutation(n, rng)
		p2 := RandomPermutation(n, rng)
		c1, c2 := OrderCrossover(p1, p2, rng)
		assertPermutation(t, c1, n)
		assertPermutation(t, c2, n)
	}
}

func TestOrderCrossoverDegenerateCuts(t *testing.T) {
	// Exhaust small routes so the empty and full-length segments both occur.
	rng := rand.New(rand.NewSource(7))
	for n := 2; n <= 4; n++ {
		for i := 0; i < 100; i++ {
			p1 := RandomPermutation(n, rng)
			p2 := RandomPermutation(n, rng)
			c1, c2 := OrderCrossover(p1, p2, rng)
			assertPermutation(t, c1, n)
			assertPermutation(t, c2, n)
		}
	}
}

func TestOrderCrossoverKeepsSegmentOrder(t *testing.T) {
	// Identical parents must reproduce themselves whatever the cut points.
	rng := rand.New(rand.NewSource(3))
	p := []int{3, 1, 4, 0, 2}
	for i := 0; i < 50; i++ {
		c1, c2 := OrderCrossover(p, p, rng)
		assert.Equal(t, p, c1)
		assert.Equal(t, p, c2)
	}
}

func TestSwapMutateSwapsExactlyTwo(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		route := RandomPermutation(8, rng)
		before := append([]int(nil), route...)

		SwapMutate(route, rng)
		assertPermutation(t, route, 8)

		diff := 0
		for j := range route {
			if route[j] != before[j] {
				diff++
			}
		}
		assert.Equal(t, 2, diff, "swap must change exactly two positions")
	}
}

func TestSwapMutateSingleStopNoop(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	route := []int{0}
	SwapMutate(route, rng)
	assert.Equal(t, []int{0}, route)
}

func TestTournamentSelectPrefersLowerRank(t *testing.T) {
	pop := []*optimization.Individual{
		{Route: []int{0, 1}, Rank: 3, Crowding: 1},
		{Route: []int{1, 0}, Rank: 0, Crowding: 0.5},
		{Route: []int{0, 1}, Rank: 2, Crowding: 9},
	}

	// Tournament over the whole population always yields the rank-0 individual.
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 20; i++ {
		winner := TournamentSelect(pop, len(pop), rng)
		assert.Same(t, pop[1], winner)
	}
}

func TestTournamentSelectBreaksTiesByCrowding(t *testing.T) {
	pop := []*optimization.Individual{
		{Route: []int{0, 1}, Rank: 0, Crowding: 0.2},
		{Route: []int{1, 0}, Rank: 0, Crowding: math.Inf(1)},
	}

	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 20; i++ {
		winner := TournamentSelect(pop, 2, rng)
		assert.Same(t, pop[1], winner)
	}
}
