// Package objectives implements the objective functions of the route
// optimizer. Every function maps a closed tour (a permutation of stop
// indices), the stops, and a precomputed distance matrix to a scalar where
// lower is better. All functions are pure; nothing here holds mutable state.
package objectives

import (
	"go.uber.org/zap"

	"github.com/routeforce/routeforce/internal/geo"
)

// Domain constants shared by the evaluators.
const (
	// SpeedKmh is the assumed travel speed used to convert distance to time.
	SpeedKmh = 50.0
	// ServiceTimeHours is the fixed per-stop service time used by the time
	// objective.
	ServiceTimeHours = 0.5
	// FuelCostPerKm converts route distance to fuel cost (currency per km).
	FuelCostPerKm = 0.12
	// RouteStartHour is the simulated departure time for the delivery-window
	// objective (fractional hours of day).
	RouteStartHour = 9.0
	// FleetCapacity is the default vehicle capacity used by the capacity
	// objective.
	FleetCapacity = 1000.0
)

// Kind identifies one objective function.
type Kind string

const (
	Distance        Kind = "distance"
	Time            Kind = "time"
	Priority        Kind = "priority"
	FuelCost        Kind = "fuel_cost"
	DeliveryWindows Kind = "delivery_windows"
	VehicleCapacity Kind = "vehicle_capacity"

	// Unknown marks an objective name outside the recognized set. Unknown
	// objectives contribute 0.0 instead of failing the run.
	Unknown Kind = "unknown"
)

// Kinds lists the recognized objective kinds in canonical order.
func Kinds() []Kind {
	return []Kind{Distance, Time, Priority, FuelCost, DeliveryWindows, VehicleCapacity}
}

// ParseKind maps an objective name to its Kind. The second return value is
// false for names outside the recognized set.
func ParseKind(name string) (Kind, bool) {
	switch Kind(name) {
	case Distance, Time, Priority, FuelCost, DeliveryWindows, VehicleCapacity:
		return Kind(name), true
	}
	return Unknown, false
}

// Evaluator computes the objective vector for routes over a fixed set of
// stops. Unknown objective names are logged once at construction and
// contribute 0.0 on every evaluation, so a typo in a request degrades one
// objective instead of aborting the run.
type Evaluator struct {
	names []string
	kinds []Kind
}

// NewEvaluator resolves objective names against the recognized set. Unknown
// names produce a warning on logger and are retained as Unknown kinds.
func NewEvaluator(names []string, logger *zap.Logger) *Evaluator {
	kinds := make([]Kind, len(names))
	for i, name := range names {
		k, ok := ParseKind(name)
		if !ok {
			logger.Warn("unknown objective, will contribute 0.0",
				zap.String("objective", name))
		}
		kinds[i] = k
	}
	return &Evaluator{names: append([]string(nil), names...), kinds: kinds}
}

// Names returns the configured objective names in order.
func (e *Evaluator) Names() []string { return e.names }

// Len returns the number of configured objectives.
func (e *Evaluator) Len() int { return len(e.kinds) }

// Vector evaluates all configured objectives for one route.
func (e *Evaluator) Vector(route []int, stops []geo.Stop, d *geo.Matrix) []float64 {
	out := make([]float64, len(e.kinds))
	for i, k := range e.kinds {
		out[i] = Evaluate(k, route, stops, d)
	}
	return out
}

// Evaluate computes a single objective value for a route. The Unknown branch
// preserves the soft-fail policy: it contributes 0.0 rather than erroring.
func Evaluate(k Kind, route []int, stops []geo.Stop, d *geo.Matrix) float64 {
	switch k {
	case Distance:
		return TourDistance(route, d)
	case Time:
		return TourTime(route, d)
	case Priority:
		return PriorityScore(route, stops)
	case FuelCost:
		return TourDistance(route, d) * FuelCostPerKm
	case DeliveryWindows:
		return WindowViolation(route, stops, d)
	case VehicleCapacity:
		return CapacityViolation(route, stops)
	default:
		return 0.0
	}
}

// TourDistance sums consecutive leg distances plus the return-to-origin leg,
// in kilometers.
func TourDistance(route []int, d *geo.Matrix) float64 {
	if len(route) < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < len(route)-1; i++ {
		total += d.At(route[i], route[i+1])
	}
	total += d.At(route[len(route)-1], route[0])
	return total
}

// TourTime estimates total route time in hours: travel at SpeedKmh plus a
// fixed service time per stop.
func TourTime(route []int, d *geo.Matrix) float64 {
	return TourDistance(route, d)/SpeedKmh + ServiceTimeHours*float64(len(route))
}

// PriorityScore rewards visiting high-priority stops early. The score is
// negated so that minimizing it matches the lower-is-better convention shared
// by all objectives.
func PriorityScore(route []int, stops []geo.Stop) float64 {
	n := len(route)
	score := 0.0
	for pos, idx := range route {
		score += stops[idx].Priority * float64(n-pos)
	}
	return -score
}

// WindowViolation simulates the route clock starting at RouteStartHour and
// accumulates, per stop, the hours outside its [earliest, latest] window.
// Arriving early forces a wait and the wait is counted as a violation;
// arriving late counts the overshoot.
func WindowViolation(route []int, stops []geo.Stop, d *geo.Matrix) float64 {
	clock := RouteStartHour
	violation := 0.0
	prev := -1
	for _, idx := range route {
		if prev >= 0 {
			clock += d.At(prev, idx) / SpeedKmh
		}
		s := stops[idx]
		if clock < s.EarliestTime {
			violation += s.EarliestTime - clock
			clock = s.EarliestTime
		} else if clock > s.LatestTime {
			violation += clock - s.LatestTime
		}
		clock += s.ServiceTime
		prev = idx
	}
	return violation
}

// CapacityViolation returns the total demand in excess of FleetCapacity,
// or 0 when the route fits.
func CapacityViolation(route []int, stops []geo.Stop) float64 {
	total := 0.0
	for _, idx := range route {
		total += stops[idx].Demand
	}
	if total > FleetCapacity {
		return total - FleetCapacity
	}
	return 0
}
