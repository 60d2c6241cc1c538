package proj

import (
	"math"
)

// Projection converts geographic coordinates into a planar frame.
// All metric operations (buffer, length, distance) are done in the
// projected frame.
type Projection interface {
	Project(long, lat float64) (x, y float64)
}

// Identity keeps coordinates unchanged, for input that is already in
// a planar, meter based frame.
type Identity struct{}

func (Identity) Project(x, y float64) (float64, float64) {
	return x, y
}

func (Identity) String() string {
	return "identity"
}

const (
	wgs84A  = 6378137.0
	wgs84F  = 1 / 298.257223563
	utmK0   = 0.9996
	utmE0   = 500000.0
	utmN0S  = 10000000.0
	deg2rad = math.Pi / 180
)

var (
	e2  = wgs84F * (2 - wgs84F)
	e4  = e2 * e2
	e6  = e4 * e2
	ep2 = e2 / (1 - e2)
)

// UTM is a Universal Transverse Mercator zone on WGS84
// (EPSG:326xx for the north, EPSG:327xx for the south).
type UTM struct {
	Zone  int
	South bool
}

// UTMZone returns the UTM zone for the longitude.
func UTMZone(long float64) int {
	zone := int(math.Floor((long+180)/6)) + 1
	if zone > 60 {
		zone = 60
	}
	if zone < 1 {
		zone = 1
	}
	return zone
}

// EPSG returns the EPSG code of the zone.
func (u UTM) EPSG() int {
	if u.South {
		return 32700 + u.Zone
	}
	return 32600 + u.Zone
}

func (u UTM) centralMeridian() float64 {
	return float64((u.Zone-1)*6-180+3) * deg2rad
}

// Project uses the series expansion from Snyder, Map Projections - A
// Working Manual (USGS PP 1395), accurate to a millimeter within the
// zone.
func (u UTM) Project(long, lat float64) (x, y float64) {
	phi := lat * deg2rad
	sin, cos, tan := math.Sin(phi), math.Cos(phi), math.Tan(phi)

	n := wgs84A / math.Sqrt(1-e2*sin*sin)
	t := tan * tan
	c := ep2 * cos * cos
	a := (long*deg2rad - u.centralMeridian()) * cos

	m := wgs84A * ((1-e2/4-3*e4/64-5*e6/256)*phi -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
		(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
		(35*e6/3072)*math.Sin(6*phi))

	a2 := a * a
	a3 := a2 * a
	a4 := a3 * a
	a5 := a4 * a
	a6 := a5 * a

	x = utmK0*n*(a+(1-t+c)*a3/6+(5-18*t+t*t+72*c-58*ep2)*a5/120) + utmE0
	y = utmK0 * (m + n*tan*(a2/2+(5-t+9*c+4*c*c)*a4/24+(61-58*t+t*t+600*c-330*ep2)*a6/720))
	if u.South {
		y += utmN0S
	}
	return x, y
}
