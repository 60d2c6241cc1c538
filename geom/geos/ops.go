package geos

/*
#cgo LDFLAGS: -lgeos_c
#include "geos_c.h"
#include <stdlib.h>
*/
import "C"

func (g *Geos) Intersects(a, b *Geom) bool {
	result := C.GEOSIntersects_r(g.v, a.v, b.v)
	if result == 1 {
		return true
	}
	// result == 2 -> exception (already logged to console)
	return false
}

func (g *Geos) Intersection(a, b *Geom) *Geom {
	result := C.GEOSIntersection_r(g.v, a.v, b.v)
	if result == nil {
		return nil
	}
	return &Geom{result}
}

const bufferQuadSegs = 16

func (g *Geos) Buffer(geom *Geom, size float64) *Geom {
	buffered := C.GEOSBuffer_r(g.v, geom.v, C.double(size), bufferQuadSegs)
	if buffered == nil {
		return nil
	}
	return &Geom{buffered}
}

// Length returns the length of (multi)linestrings and the perimeter
// of polygons.
func (g *Geos) Length(geom *Geom) (float64, error) {
	var length C.double
	if C.GEOSLength_r(g.v, geom.v, &length) != 1 {
		return 0, Error("unable to calculate length")
	}
	return float64(length), nil
}

func (g *Geos) Area(geom *Geom) (float64, error) {
	var area C.double
	if C.GEOSArea_r(g.v, geom.v, &area) != 1 {
		return 0, Error("unable to calculate area")
	}
	return float64(area), nil
}

// Distance returns the minimal cartesian distance between a and b.
func (g *Geos) Distance(a, b *Geom) (float64, error) {
	var dist C.double
	if C.GEOSDistance_r(g.v, a.v, b.v, &dist) != 1 {
		return 0, Error("unable to calculate distance")
	}
	return float64(dist), nil
}
