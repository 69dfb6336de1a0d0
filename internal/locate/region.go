package locate

import (
	"math"

	"github.com/benjoevidal/photosort/internal/config"
	"github.com/benjoevidal/photosort/internal/geo"
)

// Match tests p against the configured regions and returns the name of the
// best match. Bounding boxes match on inclusive bounds, point regions when
// the great-circle distance to the center is within the region's radius
// (defaultRadiusKM when the region sets none). When several regions match,
// the one whose defining center is nearest wins; for a bounding box that
// center is the box centroid. Ties keep the earlier declaration.
func Match(p geo.Point, regions []config.Region, defaultRadiusKM float64) (string, bool) {
	bestName := ""
	bestDist := math.Inf(1)
	found := false

	for _, r := range regions {
		var d float64
		switch {
		case r.Bounds != nil:
			if !r.Bounds.Contains(p) {
				continue
			}
			d = geo.DistanceKM(p, r.Bounds.Centroid())
		case r.Center != nil:
			radius := r.RadiusKM
			if radius <= 0 {
				radius = defaultRadiusKM
			}
			d = geo.DistanceKM(p, *r.Center)
			if d > radius {
				continue
			}
		default:
			continue
		}

		if d < bestDist {
			bestDist = d
			bestName = r.Name
			found = true
		}
	}

	return bestName, found
}
