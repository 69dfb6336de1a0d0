package locate

import (
	"math"

	"github.com/benjoevidal/photosort/internal/geo"
)

// Sample pairs a photo identifier with its extracted coordinate.
type Sample struct {
	ID    string
	Point geo.Point
}

// Cluster is an automatically formed group of nearby points sharing one
// output bucket. Center is the running centroid of all members; RadiusKM
// never shrinks as members are absorbed.
type Cluster struct {
	Center   geo.Point
	Members  []string
	RadiusKM float64

	latSum, lonSum float64
}

func newCluster(s Sample) *Cluster {
	return &Cluster{
		Center:  s.Point,
		Members: []string{s.ID},
		latSum:  s.Point.Lat,
		lonSum:  s.Point.Lon,
	}
}

// add absorbs a member lying distKM from the current center and recomputes
// the centroid. Arithmetic mean of lat/lon is close enough at cluster scale.
func (c *Cluster) add(s Sample, distKM float64) {
	c.Members = append(c.Members, s.ID)
	c.latSum += s.Point.Lat
	c.lonSum += s.Point.Lon
	n := float64(len(c.Members))
	c.Center = geo.Point{Lat: c.latSum / n, Lon: c.lonSum / n}
	if distKM > c.RadiusKM {
		c.RadiusKM = distKM
	}
}

// BuildClusters greedily groups samples in arrival order. Each sample joins
// the nearest existing cluster whose *current* center is within radiusKM,
// otherwise it seeds a new cluster. Because the center drifts as members
// arrive, a point near an original seed can still fall outside the drifted
// center and open a nearby cluster; there is no merge-back pass. Clusters
// are returned in creation order.
func BuildClusters(samples []Sample, radiusKM float64) []*Cluster {
	var clusters []*Cluster

	for _, s := range samples {
		var best *Cluster
		bestDist := math.Inf(1)
		for _, c := range clusters {
			if d := geo.DistanceKM(s.Point, c.Center); d < bestDist {
				best = c
				bestDist = d
			}
		}

		if best != nil && bestDist <= radiusKM {
			best.add(s, bestDist)
			continue
		}
		clusters = append(clusters, newCluster(s))
	}

	return clusters
}
