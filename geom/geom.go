// Package geom builds GEOS geometries from orb geometries in the
// projected working frame.
package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/geom/geos"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/proj"
)

var (
	ErrNullGeometry    = errors.New("null geometry")
	ErrEmptyGeometry   = errors.New("empty geometry")
	ErrOneNodeLine     = errors.New("line with less than two distinct coordinates")
	ErrInvalidCoord    = errors.New("invalid coordinate")
	ErrUnclosedRing    = errors.New("ring not closed")
	ErrUnsupportedType = errors.New("unsupported geometry type")
)

// Build projects geom with p and returns a new GEOS geometry. The
// caller owns the result.
func Build(g *geos.Geos, p proj.Projection, geom orb.Geometry) (*geos.Geom, error) {
	if geom == nil {
		return nil, ErrNullGeometry
	}
	switch geom := geom.(type) {
	case orb.Point:
		return point(g, p, geom)
	case orb.MultiPoint:
		if len(geom) == 0 {
			return nil, ErrEmptyGeometry
		}
		parts := make([]*geos.Geom, 0, len(geom))
		for _, pt := range geom {
			part, err := point(g, p, pt)
			if err != nil {
				destroyAll(g, parts)
				return nil, err
			}
			parts = append(parts, part)
		}
		return collection(g.MultiPoint(parts), g, parts, "MultiPoint")
	case orb.LineString:
		return lineString(g, p, geom)
	case orb.MultiLineString:
		if len(geom) == 0 {
			return nil, ErrEmptyGeometry
		}
		parts := make([]*geos.Geom, 0, len(geom))
		for _, ls := range geom {
			part, err := lineString(g, p, ls)
			if err == ErrOneNodeLine {
				// skip degenerated parts, as long as one part remains
				continue
			}
			if err != nil {
				destroyAll(g, parts)
				return nil, err
			}
			parts = append(parts, part)
		}
		if len(parts) == 0 {
			return nil, ErrOneNodeLine
		}
		return collection(g.MultiLineString(parts), g, parts, "MultiLineString")
	case orb.Polygon:
		return polygon(g, p, geom)
	case orb.MultiPolygon:
		if len(geom) == 0 {
			return nil, ErrEmptyGeometry
		}
		parts := make([]*geos.Geom, 0, len(geom))
		for _, poly := range geom {
			part, err := polygon(g, p, poly)
			if err != nil {
				destroyAll(g, parts)
				return nil, err
			}
			parts = append(parts, part)
		}
		return collection(g.MultiPolygon(parts), g, parts, "MultiPolygon")
	}
	return nil, errors.Wrap(ErrUnsupportedType, geom.GeoJSONType())
}

func collection(result *geos.Geom, g *geos.Geos, parts []*geos.Geom, typ string) (*geos.Geom, error) {
	if result == nil {
		destroyAll(g, parts)
		return nil, geos.CreateError("unable to create " + typ)
	}
	return result, nil
}

func destroyAll(g *geos.Geos, geoms []*geos.Geom) {
	for _, geom := range geoms {
		g.Destroy(geom)
	}
}

func project(p proj.Projection, pt orb.Point) (geos.Coord, error) {
	if math.IsNaN(pt[0]) || math.IsNaN(pt[1]) || math.IsInf(pt[0], 0) || math.IsInf(pt[1], 0) {
		return geos.Coord{}, ErrInvalidCoord
	}
	x, y := p.Project(pt[0], pt[1])
	if math.IsNaN(x) || math.IsNaN(y) {
		return geos.Coord{}, ErrInvalidCoord
	}
	return geos.Coord{X: x, Y: y}, nil
}

func point(g *geos.Geos, p proj.Projection, pt orb.Point) (*geos.Geom, error) {
	c, err := project(p, pt)
	if err != nil {
		return nil, err
	}
	geom := g.Point(c.X, c.Y)
	if geom == nil {
		return nil, geos.CreateError("unable to create Point")
	}
	return geom, nil
}

// unduplicateCoords removes consecutive duplicates.
func unduplicateCoords(coords []geos.Coord) []geos.Coord {
	if len(coords) < 2 {
		return coords
	}
	foundDup := false
	for i := 1; i < len(coords); i++ {
		if coords[i-1] == coords[i] {
			foundDup = true
			break
		}
	}
	if !foundDup {
		return coords
	}

	result := make([]geos.Coord, 0, len(coords))
	result = append(result, coords[0])
	for i := 1; i < len(coords); i++ {
		if coords[i-1] == coords[i] {
			continue
		}
		result = append(result, coords[i])
	}
	return result
}

func projectAll(p proj.Projection, pts []orb.Point) ([]geos.Coord, error) {
	coords := make([]geos.Coord, 0, len(pts))
	for _, pt := range pts {
		c, err := project(p, pt)
		if err != nil {
			return nil, err
		}
		coords = append(coords, c)
	}
	return unduplicateCoords(coords), nil
}

func lineString(g *geos.Geos, p proj.Projection, ls orb.LineString) (*geos.Geom, error) {
	if len(ls) == 0 {
		return nil, ErrEmptyGeometry
	}
	coords, err := projectAll(p, ls)
	if err != nil {
		return nil, err
	}
	if len(coords) < 2 {
		return nil, ErrOneNodeLine
	}
	return g.LineString(coords)
}

func ring(g *geos.Geos, p proj.Projection, r orb.Ring) (*geos.Geom, error) {
	coords, err := projectAll(p, r)
	if err != nil {
		return nil, err
	}
	if len(coords) < 4 {
		return nil, ErrUnclosedRing
	}
	if coords[0] != coords[len(coords)-1] {
		return nil, ErrUnclosedRing
	}
	return g.LinearRing(coords)
}

func polygon(g *geos.Geos, p proj.Projection, poly orb.Polygon) (*geos.Geom, error) {
	if len(poly) == 0 {
		return nil, ErrEmptyGeometry
	}
	shell, err := ring(g, p, poly[0])
	if err != nil {
		return nil, err
	}
	holes := make([]*geos.Geom, 0, len(poly)-1)
	for _, r := range poly[1:] {
		hole, err := ring(g, p, r)
		if err != nil {
			g.Destroy(shell)
			destroyAll(g, holes)
			return nil, err
		}
		holes = append(holes, hole)
	}
	geom := g.Polygon(shell, holes)
	if geom == nil {
		g.Destroy(shell)
		destroyAll(g, holes)
		return nil, geos.CreateError("unable to create Polygon")
	}
	return geom, nil
}

// IsLinear returns true for (multi)linestrings.
func IsLinear(geom orb.Geometry) bool {
	switch geom.(type) {
	case orb.LineString, orb.MultiLineString:
		return true
	}
	return false
}

// IsPuntal returns true for (multi)points.
func IsPuntal(geom orb.Geometry) bool {
	switch geom.(type) {
	case orb.Point, orb.MultiPoint:
		return true
	}
	return false
}
