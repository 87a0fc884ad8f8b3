// Package optimization defines the shared types of the multi-objective route
// optimizer: individuals, configuration, and run outcomes.
package optimization

import (
	"fmt"

	"github.com/routeforce/routeforce/internal/geo"
)

// AlgorithmName identifies the optimizer in metrics and API responses.
const AlgorithmName = "multi_objective"

// Individual is one candidate solution: a visiting order over the stops.
// Route is always a permutation of 0..n-1; every operator that produces a
// new individual preserves that.
type Individual struct {
	// Route holds stop indices in visiting order.
	Route []int
	// Objectives holds one value per configured objective, oriented so that
	// lower is always better.
	Objectives []float64
	// Rank is the Pareto front index assigned by non-dominated sorting
	// (0 = non-dominated).
	Rank int
	// Crowding is the NSGA-II crowding distance within the individual's front.
	Crowding float64
}

// Clone returns a deep copy of the individual.
func (in *Individual) Clone() *Individual {
	cp := &Individual{
		Route:    append([]int(nil), in.Route...),
		Rank:     in.Rank,
		Crowding: in.Crowding,
	}
	if in.Objectives != nil {
		cp.Objectives = append([]float64(nil), in.Objectives...)
	}
	return cp
}

// Config controls one optimization run.
type Config struct {
	// PopulationSize is the number of individuals per generation (min 10).
	PopulationSize int `json:"population_size"`
	// Generations is the fixed number of generations to run.
	Generations int `json:"generations"`
	// MutationRate is the per-child swap mutation probability, in (0,1).
	MutationRate float64 `json:"mutation_rate"`
	// CrossoverRate is the per-pair order crossover probability, in (0,1).
	CrossoverRate float64 `json:"crossover_rate"`
	// TournamentSize is the number of candidates per selection tournament.
	TournamentSize int `json:"tournament_size"`
	// Objectives names the objectives to optimize, in order.
	Objectives []string `json:"objectives"`
	// Seed seeds the run's random source. Zero selects a time-based seed.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		PopulationSize: 50,
		Generations:    100,
		MutationRate:   0.1,
		CrossoverRate:  0.8,
		TournamentSize: 3,
		Objectives:     []string{"distance", "time"},
	}
}

// Validate rejects malformed configuration before any population work begins.
func (c Config) Validate() error {
	if c.PopulationSize < 10 {
		return NewErrorf("population_size must be at least 10, got %d", c.PopulationSize)
	}
	if c.Generations < 1 {
		return NewErrorf("generations must be at least 1, got %d", c.Generations)
	}
	if c.MutationRate <= 0 || c.MutationRate >= 1 {
		return NewErrorf("mutation_rate must be in (0,1), got %v", c.MutationRate)
	}
	if c.CrossoverRate <= 0 || c.CrossoverRate >= 1 {
		return NewErrorf("crossover_rate must be in (0,1), got %v", c.CrossoverRate)
	}
	if c.TournamentSize < 2 || c.TournamentSize > c.PopulationSize {
		return NewErrorf("tournament_size must be in [2, population_size], got %d", c.TournamentSize)
	}
	if len(c.Objectives) == 0 {
		return NewError("objectives must be non-empty")
	}
	return nil
}

// Metrics summarizes a completed (or degraded) optimization run.
type Metrics struct {
	Algorithm           string             `json:"algorithm"`
	ParetoFrontSize     int                `json:"pareto_front_size,omitempty"`
	ProcessingTime      float64            `json:"processing_time"`
	TotalGenerations    int                `json:"total_generations,omitempty"`
	ObjectivesOptimized []string           `json:"objectives_optimized,omitempty"`
	BestCompromise      map[string]float64 `json:"best_compromise_solution,omitempty"`
	Hypervolume         float64            `json:"hypervolume,omitempty"`
	Error               string             `json:"error,omitempty"`
}

// Outcome is the result of an optimization run. Optimize never propagates a
// failure to the caller: a failed run yields Degraded=true, the original stop
// order in BestRoute, and an error message inside Metrics.
type Outcome struct {
	// BestRoute holds the stops reordered per the compromise solution, or the
	// original input order when Degraded.
	BestRoute []geo.Stop
	// Metrics carries the run summary, including the error on degraded runs.
	Metrics Metrics
	// Degraded reports whether the run fell back to the original stop order.
	Degraded bool
	// Err is the structured cause of a degraded run, nil otherwise.
	Err error
}

func (o *Outcome) String() string {
	if o.Degraded {
		return fmt.Sprintf("degraded outcome: %v", o.Err)
	}
	return fmt.Sprintf("outcome: %d stops, front size %d", len(o.BestRoute), o.Metrics.ParetoFrontSize)
}
