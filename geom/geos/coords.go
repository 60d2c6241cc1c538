package geos

/*
#cgo LDFLAGS: -lgeos_c
#include "geos_c.h"
#include <stdlib.h>
*/
import "C"

type CoordSeq struct {
	v *C.GEOSCoordSequence
}

func (g *Geos) CreateCoordSeq(size, dim uint32) (*CoordSeq, error) {
	result := C.GEOSCoordSeq_create_r(g.v, C.uint(size), C.uint(dim))
	if result == nil {
		return nil, CreateError("could not create CoordSeq")
	}
	return &CoordSeq{result}, nil
}

func (c *CoordSeq) SetXY(handle *Geos, i uint32, x, y float64) error {
	if C.GEOSCoordSeq_setX_r(handle.v, c.v, C.uint(i), C.double(x)) == 0 {
		return Error("unable to SetX")
	}
	if C.GEOSCoordSeq_setY_r(handle.v, c.v, C.uint(i), C.double(y)) == 0 {
		return Error("unable to SetY")
	}
	return nil
}

// AsPoint creates a Point. The CoordSeq is owned by the new geometry.
func (c *CoordSeq) AsPoint(handle *Geos) (*Geom, error) {
	geom := C.GEOSGeom_createPoint_r(handle.v, c.v)
	if geom == nil {
		return nil, CreateError("unable to create Point")
	}
	return &Geom{geom}, nil
}

// AsLineString creates a LineString. The CoordSeq is owned by the new
// geometry.
func (c *CoordSeq) AsLineString(handle *Geos) (*Geom, error) {
	geom := C.GEOSGeom_createLineString_r(handle.v, c.v)
	if geom == nil {
		return nil, CreateError("unable to create LineString")
	}
	return &Geom{geom}, nil
}

func (g *Geos) DestroyCoordSeq(coordSeq *CoordSeq) {
	if coordSeq.v != nil {
		C.GEOSCoordSeq_destroy_r(g.v, coordSeq.v)
		coordSeq.v = nil
	} else {
		panic("double free?")
	}
}

func (g *Geos) Point(x, y float64) *Geom {
	coordSeq, err := g.CreateCoordSeq(1, 2)
	if err != nil {
		return nil
	}
	// coordSeq inherited by Point
	if err := coordSeq.SetXY(g, 0, x, y); err != nil {
		g.DestroyCoordSeq(coordSeq)
		return nil
	}
	geom, err := coordSeq.AsPoint(g)
	if err != nil {
		g.DestroyCoordSeq(coordSeq)
		return nil
	}
	return geom
}

type Coord struct {
	X, Y float64
}

func (g *Geos) LineString(coords []Coord) (*Geom, error) {
	if len(coords) < 2 {
		return nil, CreateError("LineString requires at least two coordinates")
	}
	coordSeq, err := g.CreateCoordSeq(uint32(len(coords)), 2)
	if err != nil {
		return nil, err
	}
	for i, c := range coords {
		if err := coordSeq.SetXY(g, uint32(i), c.X, c.Y); err != nil {
			g.DestroyCoordSeq(coordSeq)
			return nil, err
		}
	}
	geom, err := coordSeq.AsLineString(g)
	if err != nil {
		g.DestroyCoordSeq(coordSeq)
		return nil, err
	}
	return geom, nil
}

// LinearRing creates a closed ring, e.g. for polygon shells.
func (g *Geos) LinearRing(coords []Coord) (*Geom, error) {
	if len(coords) < 4 {
		return nil, CreateError("LinearRing requires at least four coordinates")
	}
	coordSeq, err := g.CreateCoordSeq(uint32(len(coords)), 2)
	if err != nil {
		return nil, err
	}
	for i, c := range coords {
		if err := coordSeq.SetXY(g, uint32(i), c.X, c.Y); err != nil {
			g.DestroyCoordSeq(coordSeq)
			return nil, err
		}
	}
	ring := C.GEOSGeom_createLinearRing_r(g.v, coordSeq.v)
	if ring == nil {
		g.DestroyCoordSeq(coordSeq)
		return nil, CreateError("unable to create LinearRing")
	}
	return &Geom{ring}, nil
}

// Polygon creates a polygon and takes ownership of exterior and interiors.
func (g *Geos) Polygon(exterior *Geom, interiors []*Geom) *Geom {
	var geom *C.GEOSGeometry
	if len(interiors) == 0 {
		geom = C.GEOSGeom_createPolygon_r(g.v, exterior.v, nil, C.uint(0))
	} else {
		interiorPtr := make([]*C.GEOSGeometry, len(interiors))
		for i, ring := range interiors {
			interiorPtr[i] = ring.v
		}
		geom = C.GEOSGeom_createPolygon_r(g.v, exterior.v, &interiorPtr[0], C.uint(len(interiors)))
	}
	if geom == nil {
		return nil
	}
	return &Geom{geom}
}

func (g *Geos) collection(typeID C.int, geoms []*Geom) *Geom {
	if len(geoms) == 0 {
		return nil
	}
	ptrs := make([]*C.GEOSGeometry, len(geoms))
	for i, geom := range geoms {
		ptrs[i] = geom.v
	}
	geom := C.GEOSGeom_createCollection_r(g.v, typeID, &ptrs[0], C.uint(len(geoms)))
	if geom == nil {
		return nil
	}
	return &Geom{geom}
}

// MultiPoint takes ownership of points.
func (g *Geos) MultiPoint(points []*Geom) *Geom {
	return g.collection(C.GEOS_MULTIPOINT, points)
}

// MultiLineString takes ownership of lines.
func (g *Geos) MultiLineString(lines []*Geom) *Geom {
	return g.collection(C.GEOS_MULTILINESTRING, lines)
}

// MultiPolygon takes ownership of polygons.
func (g *Geos) MultiPolygon(polygons []*Geom) *Geom {
	return g.collection(C.GEOS_MULTIPOLYGON, polygons)
}

func (g *Geos) BoundsPolygon(bounds Bounds) *Geom {
	ring, err := g.LinearRing([]Coord{
		{bounds.MinX, bounds.MinY},
		{bounds.MaxX, bounds.MinY},
		{bounds.MaxX, bounds.MaxY},
		{bounds.MinX, bounds.MaxY},
		{bounds.MinX, bounds.MinY},
	})
	if err != nil {
		return nil
	}
	return g.Polygon(ring, nil)
}
