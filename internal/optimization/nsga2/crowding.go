package nsga2

import (
	"math"
	"sort"

	"github.com/routeforce/routeforce/internal/optimization"
)

// CrowdingDistance computes the crowding distance of every member of one
// front and stores it on the individuals. Fronts of size ≤2 get +Inf for all
// members; otherwise boundary members per objective get +Inf and interior
// members accumulate normalized neighbor gaps. Objectives with zero range in
// the front are skipped, which keeps co-located populations free of
// divide-by-zero.
func CrowdingDistance(pop []*optimization.Individual, front []int) {
	if len(front) <= 2 {
		for _, i := range front {
			pop[i].Crowding = math.Inf(1)
		}
		return
	}

	for _, i := range front {
		pop[i].Crowding = 0
	}

	numObjectives := len(pop[front[0]].Objectives)
	order := make([]int, len(front))

	for m := 0; m < numObjectives; m++ {
		copy(order, front)
		sort.SliceStable(order, func(a, b int) bool {
			return pop[order[a]].Objectives[m] < pop[order[b]].Objectives[m]
		})

		lo := pop[order[0]].Objectives[m]
		hi := pop[order[len(order)-1]].Objectives[m]
		pop[order[0]].Crowding = math.Inf(1)
		pop[order[len(order)-1]].Crowding = math.Inf(1)

		objRange := hi - lo
		if objRange == 0 {
			continue
		}

		for k := 1; k < len(order)-1; k++ {
			gap := pop[order[k+1]].Objectives[m] - pop[order[k-1]].Objectives[m]
			pop[order[k]].Crowding += gap / objRange
		}
	}
}
