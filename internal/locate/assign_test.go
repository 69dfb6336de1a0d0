package locate_test

import (
	"context"
	"strings"
	"testing"

	"github.com/benjoevidal/photosort/internal/config"
	"github.com/benjoevidal/photosort/internal/geo"
	"github.com/benjoevidal/photosort/internal/locate"
)

func regionConfig(behavior string) *config.Config {
	cfg := config.Default()
	cfg.UncategorizedBehavior = behavior
	cfg.Locations = []config.Region{
		{Name: "Taipei101", Center: pt(25.0339, 121.5645), RadiusKM: 0.3},
	}
	return cfg
}

func TestAssignWithRegions(t *testing.T) {
	a := &locate.Assigner{
		Config:          regionConfig(config.BehaviorFolder),
		Namer:           &locate.Namer{SingleWord: true},
		ClusterRadiusKM: 10,
	}

	items := []locate.Item{
		{ID: "tower.jpg", Point: pt(25.0340, 121.5646)},
		{ID: "elsewhere.jpg", Point: pt(24.0, 120.0)},
		{ID: "nogps.jpg"},
	}

	result, sum := a.Assign(context.Background(), items)

	if len(result) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(result))
	}
	if asg := result["tower.jpg"]; asg.Bucket != "Taipei101" || asg.Reason != locate.Matched {
		t.Errorf("tower.jpg = %+v, want Taipei101/Matched", asg)
	}
	if asg := result["elsewhere.jpg"]; asg.Bucket != "Uncategorized" || asg.Reason != locate.Unresolved {
		t.Errorf("elsewhere.jpg = %+v, want Uncategorized/Unresolved", asg)
	}
	if asg := result["nogps.jpg"]; asg.Bucket != locate.NoGPSBucket || asg.Reason != locate.Unresolved {
		t.Errorf("nogps.jpg = %+v, want %s/Unresolved", asg, locate.NoGPSBucket)
	}

	want := locate.Summary{Matched: 1, Unresolved: 1, NoGPS: 1}
	if sum != want {
		t.Errorf("summary = %+v, want %+v", sum, want)
	}
}

func TestAssignLeaveInPlace(t *testing.T) {
	a := &locate.Assigner{
		Config:          regionConfig(config.BehaviorLeaveInPlace),
		Namer:           &locate.Namer{SingleWord: true},
		ClusterRadiusKM: 10,
	}

	items := []locate.Item{
		{ID: "tower.jpg", Point: pt(25.0340, 121.5646)},
		{ID: "elsewhere.jpg", Point: pt(24.0, 120.0)},
	}

	result, sum := a.Assign(context.Background(), items)

	if _, ok := result["elsewhere.jpg"]; ok {
		t.Error("unmatched item should have no assignment under leave_in_place")
	}
	if asg := result["tower.jpg"]; asg.Bucket != "Taipei101" {
		t.Errorf("tower.jpg = %+v", asg)
	}
	if sum.LeftInPlace != 1 || sum.Matched != 1 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestAssignAutoModeCoordinateNames(t *testing.T) {
	a := &locate.Assigner{
		Config:          config.Default(),
		Namer:           &locate.Namer{SingleWord: true},
		ClusterRadiusKM: 10,
	}

	items := []locate.Item{
		{ID: "a.jpg", Point: pt(25.00, 121.50)},
		{ID: "b.jpg", Point: pt(25.05, 121.55)},
	}

	result, sum := a.Assign(context.Background(), items)

	ba, bb := result["a.jpg"], result["b.jpg"]
	if ba.Bucket != bb.Bucket {
		t.Errorf("nearby photos landed in different buckets: %q vs %q", ba.Bucket, bb.Bucket)
	}
	if !strings.HasPrefix(ba.Bucket, "Lat") {
		t.Errorf("bucket = %q, want coordinate-derived name", ba.Bucket)
	}
	if ba.Reason != locate.Clustered || bb.Reason != locate.Clustered {
		t.Errorf("reasons = %v, %v; want Clustered", ba.Reason, bb.Reason)
	}
	if sum.Clustered != 2 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestAssignAutoModeGeocodedNames(t *testing.T) {
	a := &locate.Assigner{
		Config: config.Default(),
		Namer: &locate.Namer{
			SingleWord: true,
			Geocoder: &stubGeocoder{
				placeNameFn: func(context.Context, geo.Point) (string, error) {
					return "Shifen Old Street", nil
				},
			},
		},
		ClusterRadiusKM: 10,
	}

	items := []locate.Item{
		{ID: "a.jpg", Point: pt(25.00, 121.50)},
		{ID: "b.jpg", Point: pt(25.01, 121.51)},
	}

	result, _ := a.Assign(context.Background(), items)
	for id, asg := range result {
		if asg.Bucket != "ShifenOldStreet" {
			t.Errorf("%s bucket = %q, want ShifenOldStreet", id, asg.Bucket)
		}
	}
}

func TestAssignCoversEveryItem(t *testing.T) {
	a := &locate.Assigner{
		Config:          config.Default(),
		Namer:           &locate.Namer{SingleWord: true},
		ClusterRadiusKM: 10,
	}

	items := []locate.Item{
		{ID: "a.jpg", Point: pt(25.00, 121.50)},
		{ID: "b.jpg", Point: pt(0.0, 0.0)},
		{ID: "c.jpg"},
		{ID: "d.jpg", Point: &geo.Point{Lat: 999, Lon: 999}}, // invalid, counts as no GPS
	}

	result, sum := a.Assign(context.Background(), items)

	for _, it := range items {
		if _, ok := result[it.ID]; !ok {
			t.Errorf("item %s missing from result", it.ID)
		}
	}
	if total := sum.Matched + sum.Clustered + sum.Unresolved + sum.NoGPS; total != len(items) {
		t.Errorf("summary accounts for %d items, want %d", total, len(items))
	}
}
