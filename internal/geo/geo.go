// Package geo holds point math and the proximity index used for matching.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean earth radius used by Distance.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate reports whether both coordinates are inside their ranges.
func (p Point) Validate() error {
	if math.IsNaN(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", p.Latitude)
	}
	if math.IsNaN(p.Longitude) || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", p.Longitude)
	}
	return nil
}

// Distance returns the great-circle distance between a and b in kilometers.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	sLat := math.Sin(dLat / 2)
	sLon := math.Sin(dLon / 2)
	h := sLat*sLat + math.Cos(lat1)*math.Cos(lat2)*sLon*sLon
	// rounding can push h a hair above 1 for antipodal points
	h = math.Min(1, h)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// Within reports whether b lies inside the circle of radiusKm around a.
// The boundary is inclusive.
func Within(a, b Point, radiusKm float64) (float64, bool) {
	d := Distance(a, b)
	return d, d <= radiusKm
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
