// Package nsga2 implements the NSGA-II search over stop permutations:
// fast non-dominated sorting, crowding-distance diversity, permutation-safe
// genetic operators, and the generational loop with elitism.
package nsga2

import (
	"github.com/routeforce/routeforce/internal/optimization"
)

// Dominates reports whether objective vector a Pareto-dominates b under
// strict minimization: a is no worse in every component and strictly better
// in at least one.
func Dominates(a, b []float64) bool {
	better := false
	for i := range a {
		if a[i] > b[i] {
			return false
		}
		if a[i] < b[i] {
			better = true
		}
	}
	return better
}

// NonDominatedSort partitions the population into Pareto fronts and assigns
// each individual's Rank. The result is a list of index lists, front 0 first.
func NonDominatedSort(pop []*optimization.Individual) [][]int {
	n := len(pop)
	dominates := make([][]int, n)
	domCount := make([]int, n)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if Dominates(pop[i].Objectives, pop[j].Objectives) {
				dominates[i] = append(dominates[i], j)
			} else if Dominates(pop[j].Objectives, pop[i].Objectives) {
				domCount[i]++
			}
		}
	}

	var fronts [][]int
	var current []int
	for i := 0; i < n; i++ {
		if domCount[i] == 0 {
			pop[i].Rank = 0
			current = append(current, i)
		}
	}
	fronts = append(fronts, current)

	for rank := 0; len(current) > 0; rank++ {
		var next []int
		for _, i := range current {
			for _, j := range dominates[i] {
				domCount[j]--
				if domCount[j] == 0 {
					pop[j].Rank = rank + 1
					next = append(next, j)
				}
			}
		}
		if len(next) > 0 {
			fronts = append(fronts, next)
		}
		current = next
	}

	return fronts
}
