package geo

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const earthRadiusKm = 6371.0

// DistanceFunc computes the distance in kilometers between two stops. It must
// be symmetric, non-negative, and zero for identical coordinates.
type DistanceFunc func(a, b Stop) float64

// Haversine is the default DistanceFunc: great-circle distance in kilometers.
func Haversine(a, b Stop) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// Matrix is a precomputed symmetric stop-to-stop distance matrix. It is built
// once per optimization run and read-only afterward.
type Matrix struct {
	d *mat.SymDense
}

// NewMatrix builds the n×n distance matrix for the given stops using fn.
// The diagonal is zero; the provider is called O(n²/2) times and symmetry is
// supplied by the SymDense storage.
func NewMatrix(stops []Stop, fn DistanceFunc) *Matrix {
	n := len(stops)
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, fn(stops[i], stops[j]))
		}
	}
	return &Matrix{d: d}
}

// At returns the distance between stops i and j in kilometers.
func (m *Matrix) At(i, j int) float64 { return m.d.At(i, j) }

// Len returns the number of stops the matrix covers.
func (m *Matrix) Len() int { return m.d.SymmetricDim() }
