package nsga2

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/routeforce/routeforce/internal/optimization"
)

// nadirScale pushes the hypervolume reference point past the worst observed
// value so boundary solutions still contribute volume.
const nadirScale = 1.1

// idealPoint returns the component-wise minimum over the given front. It is
// the utopian solution against which compromises are measured; it usually
// does not correspond to any real individual.
func idealPoint(pop []*optimization.Individual, front []int) []float64 {
	ideal := append([]float64(nil), pop[front[0]].Objectives...)
	for _, idx := range front[1:] {
		for k, v := range pop[idx].Objectives {
			if v < ideal[k] {
				ideal[k] = v
			}
		}
	}
	return ideal
}

// compromiseIndex picks the front member closest to the ideal point by
// Euclidean distance in raw objective space. Objectives are not normalized
// first, so large-magnitude objectives such as distance dominate the choice;
// callers wanting balanced trade-offs should scale their objective weights
// accordingly.
func compromiseIndex(pop []*optimization.Individual, front []int, ideal []float64) int {
	best := front[0]
	bestDist := math.Inf(1)
	for _, idx := range front {
		d := floats.Distance(pop[idx].Objectives, ideal, 2)
		if d < bestDist {
			bestDist = d
			best = idx
		}
	}
	return best
}

// approximateHypervolume sums, per front member, the volume of the
// hyper-rectangle spanned between it and a nadir reference point set at
// nadirScale times the per-objective worst. Overlapping rectangles are
// counted multiply, so the value is an upper bound on the true hypervolume;
// it is still monotone enough to compare runs of the same problem.
func approximateHypervolume(pop []*optimization.Individual, front []int) float64 {
	if len(front) == 0 {
		return 0
	}

	dims := len(pop[front[0]].Objectives)
	nadir := make([]float64, dims)
	for k := 0; k < dims; k++ {
		worst := math.Inf(-1)
		for _, idx := range front {
			if v := pop[idx].Objectives[k]; v > worst {
				worst = v
			}
		}
		nadir[k] = worst * nadirScale
	}

	total := 0.0
	for _, idx := range front {
		vol := 1.0
		for k, v := range pop[idx].Objectives {
			vol *= math.Max(0, nadir[k]-v)
		}
		total += vol
	}
	return total
}
