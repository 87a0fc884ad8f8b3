package nsga2

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/routeforce/routeforce/internal/geo"
	"github.com/routeforce/routeforce/internal/optimization"
	"github.com/routeforce/routeforce/internal/optimization/objectives"
)

// Optimizer runs the NSGA-II search. One Optimizer serves one configuration;
// each Optimize call builds its own distance matrix and population, so
// independent calls may run concurrently on separate Optimizers.
type Optimizer struct {
	cfg      optimization.Config
	eval     *objectives.Evaluator
	distance geo.DistanceFunc
	rng      *rand.Rand
	logger   *zap.Logger
}

// New creates an Optimizer for the given configuration. A nil distance
// function selects haversine. The configuration seed makes runs reproducible;
// a zero seed falls back to the current time.
func New(cfg optimization.Config, distance geo.DistanceFunc, logger *zap.Logger) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, optimization.WrapError(err, "invalid configuration").WithComponent("nsga2")
	}
	if distance == nil {
		distance = geo.Haversine
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Optimizer{
		cfg:      cfg,
		eval:     objectives.NewEvaluator(cfg.Objectives, logger),
		distance: distance,
		rng:      rand.New(rand.NewSource(seed)),
		logger:   logger,
	}, nil
}

// Optimize searches for Pareto-optimal visiting orders over the stops and
// returns the compromise solution plus run metrics. It never returns an
// error: any failure (too few stops, cancellation, a panic inside the
// generational loop) yields a degraded outcome carrying the original stop
// order and the error inside Metrics, so a long-running caller is never
// crashed by a single bad request.
func (o *Optimizer) Optimize(ctx context.Context, stops []geo.Stop) *optimization.Outcome {
	start := time.Now()

	outcome, err := o.run(ctx, stops)
	if err != nil {
		o.logger.Error("optimization degraded, returning original stop order",
			zap.Error(err),
			zap.Int("stops", len(stops)))
		return &optimization.Outcome{
			BestRoute: stops,
			Degraded:  true,
			Err:       err,
			Metrics: optimization.Metrics{
				Algorithm:      optimization.AlgorithmName,
				ProcessingTime: time.Since(start).Seconds(),
				Error:          err.Error(),
			},
		}
	}

	outcome.Metrics.ProcessingTime = time.Since(start).Seconds()
	o.logger.Info("optimization completed",
		zap.Int("stops", len(stops)),
		zap.Int("pareto_front_size", outcome.Metrics.ParetoFrontSize),
		zap.Int("generations", outcome.Metrics.TotalGenerations),
		zap.Float64("processing_time_s", outcome.Metrics.ProcessingTime))
	return outcome
}

func (o *Optimizer) run(ctx context.Context, input []geo.Stop) (outcome *optimization.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = nil
			err = optimization.NewErrorf("internal error: %v", r).WithComponent("nsga2")
		}
	}()

	if len(input) < 2 {
		return nil, optimization.ErrInsufficientStops
	}

	stops := geo.NormalizeStops(input)
	matrix := geo.NewMatrix(stops, o.distance)
	n := len(stops)

	pop := make([]*optimization.Individual, o.cfg.PopulationSize)
	for i := range pop {
		pop[i] = &optimization.Individual{Route: RandomPermutation(n, o.rng)}
	}

	for gen := 0; gen < o.cfg.Generations; gen++ {
		select {
		case <-ctx.Done():
			return nil, optimization.WrapErrorf(ctx.Err(), "cancelled at generation %d", gen)
		default:
		}

		o.evaluate(pop, stops, matrix)
		fronts := NonDominatedSort(pop)
		for _, front := range fronts {
			CrowdingDistance(pop, front)
		}

		pop = o.nextGeneration(pop)
	}

	o.evaluate(pop, stops, matrix)
	fronts := NonDominatedSort(pop)
	front0 := fronts[0]

	ideal := idealPoint(pop, front0)
	best := pop[compromiseIndex(pop, front0, ideal)]

	route := make([]geo.Stop, n)
	for pos, idx := range best.Route {
		route[pos] = stops[idx]
	}

	compromise := make(map[string]float64, o.eval.Len())
	for i, name := range o.eval.Names() {
		compromise[name] = best.Objectives[i]
	}

	return &optimization.Outcome{
		BestRoute: route,
		Metrics: optimization.Metrics{
			Algorithm:           optimization.AlgorithmName,
			ParetoFrontSize:     len(front0),
			TotalGenerations:    o.cfg.Generations,
			ObjectivesOptimized: o.eval.Names(),
			BestCompromise:      compromise,
			Hypervolume:         approximateHypervolume(pop, front0),
		},
	}, nil
}

// evaluate recomputes the objective vector of every individual. Elites are
// re-evaluated along with offspring each generation; their vectors cannot
// change, so a fitness cache would be a pure performance optimization.
func (o *Optimizer) evaluate(pop []*optimization.Individual, stops []geo.Stop, m *geo.Matrix) {
	for _, in := range pop {
		in.Objectives = o.eval.Vector(in.Route, stops, m)
	}
}

// nextGeneration applies elitism then refills the population with offspring.
// The top quarter by (front rank, crowding distance) is copied unchanged;
// the remainder comes from tournament selection, order crossover, and swap
// mutation. The result is truncated to exactly the configured size.
func (o *Optimizer) nextGeneration(pop []*optimization.Individual) []*optimization.Individual {
	byRank := make([]int, len(pop))
	for i := range byRank {
		byRank[i] = i
	}
	sort.SliceStable(byRank, func(a, b int) bool {
		ia, ib := pop[byRank[a]], pop[byRank[b]]
		if ia.Rank != ib.Rank {
			return ia.Rank < ib.Rank
		}
		return ia.Crowding > ib.Crowding
	})

	size := o.cfg.PopulationSize
	next := make([]*optimization.Individual, 0, size+1)
	for _, idx := range byRank[:size/4] {
		next = append(next, pop[idx].Clone())
	}

	for len(next) < size {
		p1 := TournamentSelect(pop, o.cfg.TournamentSize, o.rng)
		p2 := TournamentSelect(pop, o.cfg.TournamentSize, o.rng)

		var c1, c2 []int
		if o.rng.Float64() < o.cfg.CrossoverRate {
			c1, c2 = OrderCrossover(p1.Route, p2.Route, o.rng)
		} else {
			c1 = append([]int(nil), p1.Route...)
			c2 = append([]int(nil), p2.Route...)
		}

		if o.rng.Float64() < o.cfg.MutationRate {
			SwapMutate(c1, o.rng)
		}
		if o.rng.Float64() < o.cfg.MutationRate {
			SwapMutate(c2, o.rng)
		}

		next = append(next, &optimization.Individual{Route: c1})
		if len(next) < size {
			next = append(next, &optimization.Individual{Route: c2})
		}
	}

	return next[:size]
}
