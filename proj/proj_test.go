package proj

import (
	"math"
	"testing"
)

func TestUTMProject(t *testing.T) {
	for _, tc := range []struct {
		utm       UTM
		long, lat float64
		x, y      float64
	}{
		{UTM{Zone: 18}, -75, 0, 500000, 0},
		{UTM{Zone: 18}, -73, 44, 660349.4106, 4873817.3334},
		{UTM{Zone: 18}, -72.5754, 44.2601, 693540.5005, 4903621.1093},
		{UTM{Zone: 18}, -71.5, 45.0, 775853.7290, 4988911.8385},
		{UTM{Zone: 56, South: true}, 151.2093, -33.8688, 334368.6337, 6250948.3454},
	} {
		x, y := tc.utm.Project(tc.long, tc.lat)
		if math.Abs(x-tc.x) > 1e-3 || math.Abs(y-tc.y) > 1e-3 {
			t.Errorf("%v %v/%v: got %.4f %.4f, expected %.4f %.4f",
				tc.utm, tc.long, tc.lat, x, y, tc.x, tc.y)
		}
	}
}

func TestUTMZone(t *testing.T) {
	for _, tc := range []struct {
		long float64
		zone int
	}{
		{-180, 1},
		{-73.2, 18},
		{-72, 19},
		{3, 31},
		{179.9, 60},
		{180, 60},
	} {
		if zone := UTMZone(tc.long); zone != tc.zone {
			t.Errorf("%v: got zone %d, expected %d", tc.long, zone, tc.zone)
		}
	}
	if code := (UTM{Zone: 18}).EPSG(); code != 32618 {
		t.Errorf("unexpected EPSG %d", code)
	}
	if code := (UTM{Zone: 56, South: true}).EPSG(); code != 32756 {
		t.Errorf("unexpected EPSG %d", code)
	}
}

func TestIdentity(t *testing.T) {
	x, y := Identity{}.Project(12.5, -3)
	if x != 12.5 || y != -3 {
		t.Fatalf("%v %v", x, y)
	}
}
