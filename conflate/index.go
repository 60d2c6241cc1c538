package conflate

import (
	"sort"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/geom"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/geom/geos"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/log"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/proj"
)

// targetIndex is a read-only STRtree over the projected authoritative
// geometries. It is built once and then queried concurrently.
type targetIndex struct {
	index *geos.Index
	// geoms by position in the authoritative collection, nil for
	// records without usable geometry
	geoms   []*geos.Geom
	skipped int
}

func usableGeometry(kind Kind, rec *element.Record) bool {
	if rec.Geometry == nil {
		return false
	}
	if kind == Linear {
		return geom.IsLinear(rec.Geometry)
	}
	return geom.IsPuntal(rec.Geometry)
}

func newTargetIndex(g *geos.Geos, kind Kind, p proj.Projection, records []*element.Record) *targetIndex {
	idx := &targetIndex{
		index: g.CreateIndex(),
		geoms: make([]*geos.Geom, len(records)),
	}
	for i, rec := range records {
		if !usableGeometry(kind, rec) {
			idx.skipped++
			continue
		}
		built, err := geom.Build(g, p, rec.Geometry)
		if err != nil {
			log.Printf("[warn] skipping authoritative %s %d: %s", kind, rec.ID, err)
			idx.skipped++
			continue
		}
		idx.geoms[i] = built
		g.IndexAdd(idx.index, built, i)
	}
	return idx
}

// Len returns the number of indexed geometries.
func (idx *targetIndex) Len() int {
	return idx.index.Len()
}

// candidates returns the positions of all indexed geometries whose
// bounds intersect the bounds of query and that are accepted by the
// exact predicate, in ascending order.
func (idx *targetIndex) candidates(g *geos.Geos, query *geos.Geom, accept func(*geos.Geom) bool) []int {
	hits := g.IndexQuery(idx.index, query)
	if len(hits) == 0 {
		return nil
	}
	ids := make([]int, 0, len(hits))
	for _, hit := range hits {
		if accept(hit.Geom) {
			ids = append(ids, hit.ID)
		}
	}
	sort.Ints(ids)
	return ids
}

func (idx *targetIndex) destroy(g *geos.Geos) {
	g.IndexDestroy(idx.index)
	for _, built := range idx.geoms {
		if built != nil {
			g.Destroy(built)
		}
	}
	idx.geoms = nil
}
