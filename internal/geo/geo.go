// Package geo provides the geographic primitives shared across the sorter.
package geo

import "github.com/golang/geo/s2"

// EarthRadiusKM is the fixed sphere radius used for all distances.
const EarthRadiusKM = 6371.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lon float64 `yaml:"lon" json:"lon"`
}

// Valid reports whether the point lies within WGS84 bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// DistanceKM returns the great-circle distance between two points in
// kilometers. Points are always compared this way, never by raw coordinate
// delta.
func DistanceKM(a, b Point) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lon)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return la.Distance(lb).Radians() * EarthRadiusKM
}
