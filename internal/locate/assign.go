// Package locate is the geo-clustering and location-resolution engine: it
// assigns each photo to a named bucket by matching configured regions or,
// without any, by clustering nearby coordinates and naming the clusters.
package locate

import (
	"context"

	"github.com/benjoevidal/photosort/internal/config"
	"github.com/benjoevidal/photosort/internal/geo"

	"github.com/rs/zerolog/log"
)

// NoGPSBucket is the fixed bucket for photos without a usable coordinate.
const NoGPSBucket = "Skipped"

// Reason records which resolution path produced a bucket assignment.
type Reason int

const (
	// Matched means the point fell inside a configured region.
	Matched Reason = iota
	// Clustered means the point was grouped by proximity in auto mode.
	Clustered
	// Unresolved covers photos without GPS data and points that matched
	// no configured region.
	Unresolved
)

func (r Reason) String() string {
	switch r {
	case Matched:
		return "matched"
	case Clustered:
		return "clustered"
	default:
		return "unresolved"
	}
}

// Item pairs a photo identifier with its extracted coordinate, if any.
type Item struct {
	ID    string
	Point *geo.Point
}

// Assignment is the bucket decision for one item.
type Assignment struct {
	Bucket string
	Reason Reason
}

// Summary aggregates per-outcome counts for the run report.
type Summary struct {
	Matched     int
	Clustered   int
	Unresolved  int
	NoGPS       int
	LeftInPlace int
}

// Assigner maps a batch of items to destination buckets. With regions
// configured it matches each point individually; without any it clusters the
// whole batch by proximity and names clusters via the Namer.
type Assigner struct {
	Config          *config.Config
	Namer           *Namer
	ClusterRadiusKM float64
}

// Assign resolves every item to exactly one bucket. The only items absent
// from the result are unmatched points under the leave-in-place behavior,
// which are excluded from any copy or move and counted separately.
func (a *Assigner) Assign(ctx context.Context, items []Item) (map[string]Assignment, Summary) {
	result := make(map[string]Assignment, len(items))
	var sum Summary

	var located []Sample
	for _, it := range items {
		if it.Point == nil || !it.Point.Valid() {
			result[it.ID] = Assignment{Bucket: NoGPSBucket, Reason: Unresolved}
			sum.NoGPS++
			continue
		}
		located = append(located, Sample{ID: it.ID, Point: *it.Point})
	}

	if len(a.Config.Locations) > 0 {
		a.assignByRegion(located, result, &sum)
	} else {
		a.assignByCluster(ctx, located, result, &sum)
	}

	return result, sum
}

func (a *Assigner) assignByRegion(located []Sample, result map[string]Assignment, sum *Summary) {
	leaveInPlace := a.Config.UncategorizedBehavior == config.BehaviorLeaveInPlace
	uncategorized := Sanitize(a.Config.UncategorizedName)

	for _, s := range located {
		name, ok := Match(s.Point, a.Config.Locations, a.Config.MatchRadiusKM)
		if ok {
			result[s.ID] = Assignment{Bucket: a.Namer.RegionName(name), Reason: Matched}
			sum.Matched++
			continue
		}

		if leaveInPlace {
			sum.LeftInPlace++
			log.Debug().Str("id", s.ID).Msg("No region match, left in place")
			continue
		}
		result[s.ID] = Assignment{Bucket: uncategorized, Reason: Unresolved}
		sum.Unresolved++
	}
}

func (a *Assigner) assignByCluster(ctx context.Context, located []Sample, result map[string]Assignment, sum *Summary) {
	clusters := BuildClusters(located, a.ClusterRadiusKM)
	if len(clusters) > 0 {
		log.Info().
			Int("photos", len(located)).
			Int("clusters", len(clusters)).
			Float64("radius_km", a.ClusterRadiusKM).
			Msg("Grouped photos by proximity")
	}

	for _, c := range clusters {
		bucket := a.Namer.ClusterName(ctx, c.Center)
		log.Debug().
			Str("bucket", bucket).
			Int("members", len(c.Members)).
			Float64("lat", c.Center.Lat).
			Float64("lon", c.Center.Lon).
			Msg("Resolved cluster")

		for _, id := range c.Members {
			result[id] = Assignment{Bucket: bucket, Reason: Clustered}
			sum.Clustered++
		}
	}
}
