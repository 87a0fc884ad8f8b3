// Package geo provides the stop model and distance primitives consumed by
// the route optimizer.
package geo

// Default field values applied to stops that omit them.
const (
	DefaultPriority     = 1.0
	DefaultDemand       = 10.0
	DefaultEarliestTime = 8.0
	DefaultLatestTime   = 18.0
	DefaultServiceTime  = 0.5
)

// Stop is a delivery location with its scheduling attributes. Times are
// expressed as fractional hours of day (e.g. 8.5 = 08:30); service time is a
// duration in hours. A Stop is treated as immutable for the duration of one
// optimization run.
type Stop struct {
	ID           string  `json:"id"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Priority     float64 `json:"priority"`
	Demand       float64 `json:"demand"`
	EarliestTime float64 `json:"earliest_time"`
	LatestTime   float64 `json:"latest_time"`
	ServiceTime  float64 `json:"service_time"`
}

// Normalize returns a copy of the stop with zero-valued optional fields
// replaced by their documented defaults. Validation of malformed input
// happens once here, at the boundary, rather than mid-algorithm.
func (s Stop) Normalize() Stop {
	if s.Priority == 0 {
		s.Priority = DefaultPriority
	}
	if s.Demand == 0 {
		s.Demand = DefaultDemand
	}
	if s.EarliestTime == 0 {
		s.EarliestTime = DefaultEarliestTime
	}
	if s.LatestTime == 0 {
		s.LatestTime = DefaultLatestTime
	}
	if s.ServiceTime == 0 {
		s.ServiceTime = DefaultServiceTime
	}
	return s
}

// NormalizeStops applies Normalize to every stop, returning a fresh slice so
// the caller's input is never mutated.
func NormalizeStops(stops []Stop) []Stop {
	out := make([]Stop, len(stops))
	for i, s := range stops {
		out[i] = s.Normalize()
	}
	return out
}
