package nsga2

import (
	"math/rand"

	"github.com/routeforce/routeforce/internal/optimization"
)

// RandomPermutation returns a uniform random permutation of 0..n-1.
func RandomPermutation(n int, rng *rand.Rand) []int {
	return rng.Perm(n)
}

// TournamentSelect samples k distinct individuals uniformly and returns the
// winner: lowest front rank, ties broken by highest crowding distance.
func TournamentSelect(pop []*optimization.Individual, k int, rng *rand.Rand) *optimization.Individual {
	if k > len(pop) {
		k = len(pop)
	}
	picks := rng.Perm(len(pop))[:k]

	best := pop[picks[0]]
	for _, idx := range picks[1:] {
		c := pop[idx]
		if c.Rank < best.Rank || (c.Rank == best.Rank && c.Crowding > best.Crowding) {
			best = c
		}
	}
	return best
}

// OrderCrossover applies OX1 to two parent permutations: a random segment
// [start,end) is copied verbatim from one parent, and the remaining positions
// are filled, in order, with the other parent's values not already present.
// Degenerate cuts (start==end, start==0, end==n) all yield valid
// permutations. Both children are always fresh slices.
func OrderCrossover(p1, p2 []int, rng *rand.Rand) ([]int, []int) {
	n := len(p1)
	start := rng.Intn(n + 1)
	end := rng.Intn(n + 1)
	if start > end {
		start, end = end, start
	}

	return oxChild(p1, p2, start, end), oxChild(p2, p1, start, end)
}

// oxChild builds one OX1 child: segment [start,end) from a, remainder from b.
func oxChild(a, b []int, start, end int) []int {
	n := len(a)
	child := make([]int, n)
	used := make([]bool, n)

	for i := start; i < end; i++ {
		child[i] = a[i]
		used[a[i]] = true
	}

	pos := 0
	for _, v := range b {
		if used[v] {
			continue
		}
		if pos == start {
			pos = end
		}
		child[pos] = v
		pos++
	}
	return child
}

// SwapMutate exchanges two uniformly-chosen distinct positions in place.
// Routes shorter than two stops are left untouched.
func SwapMutate(route []int, rng *rand.Rand) {
	n := len(route)
	if n < 2 {
		return
	}
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}
	route[i], route[j] = route[j], route[i]
}
