package geos

/*
#cgo LDFLAGS: -lgeos_c
#include "geos_c.h"
#include <stdlib.h>
#include <stdint.h>

typedef struct {
	uint32_t *ids;
	uint32_t num;
	uint32_t cap;
} queryResult;

static void indexQueryCallback(void *item, void *userdata) {
	queryResult *r = (queryResult *)userdata;
	if (r->num == r->cap) {
		uint32_t newCap = r->cap ? r->cap * 2 : 16;
		uint32_t *ids = realloc(r->ids, newCap * sizeof(uint32_t));
		if (ids == NULL) {
			return;
		}
		r->ids = ids;
		r->cap = newCap;
	}
	// items are stored as id+1, NULL is not a valid item
	r->ids[r->num++] = (uint32_t)((uintptr_t)item - 1);
}

static uint32_t *IndexQuery(GEOSContextHandle_t handle, GEOSSTRtree *tree, const GEOSGeometry *g, uint32_t *num) {
	queryResult r = {NULL, 0, 0};
	GEOSSTRtree_query_r(handle, tree, g, indexQueryCallback, &r);
	*num = r.num;
	return r.ids;
}

static void IndexAdd(GEOSContextHandle_t handle, GEOSSTRtree *tree, const GEOSGeometry *g, size_t id) {
	GEOSSTRtree_insert_r(handle, tree, g, (void *)(uintptr_t)(id + 1));
}
*/
import "C"

import (
	"sync"
	"unsafe"
)

// IndexGeom is a struct for indexed geometries used by Index
// and returned by IndexQuery.
type IndexGeom struct {
	Geom *Geom
	// ID is the id passed to IndexAdd.
	ID int
}

// Index is a STRtree. The tree is built on the first query, no
// geometries can be added afterwards.
type Index struct {
	v     *C.GEOSSTRtree
	mu    *sync.Mutex
	geoms []IndexGeom
}

func (g *Geos) CreateIndex() *Index {
	tree := C.GEOSSTRtree_create_r(g.v, 10)
	if tree == nil {
		panic("unable to create tree")
	}
	return &Index{tree, &sync.Mutex{}, []IndexGeom{}}
}

// IndexAdd adds a geom with the id to the index. The geom must
// outlive the index.
func (g *Geos) IndexAdd(index *Index, geom *Geom, id int) {
	index.mu.Lock()
	defer index.mu.Unlock()
	pos := len(index.geoms)
	C.IndexAdd(g.v, index.v, geom.v, C.size_t(pos))
	index.geoms = append(index.geoms, IndexGeom{Geom: geom, ID: id})
}

// IndexQuery queries the index for geometries whose envelope
// intersects the envelope of geom.
func (g *Geos) IndexQuery(index *Index, geom *Geom) []IndexGeom {
	index.mu.Lock()
	defer index.mu.Unlock()
	var num C.uint32_t
	r := C.IndexQuery(g.v, index.v, geom.v, &num)
	if r == nil {
		return nil
	}
	defer C.free(unsafe.Pointer(r))
	hits := unsafe.Slice((*C.uint32_t)(unsafe.Pointer(r)), int(num))

	geoms := make([]IndexGeom, 0, len(hits))
	for _, pos := range hits {
		geoms = append(geoms, index.geoms[pos])
	}
	return geoms
}

func (index *Index) Len() int {
	index.mu.Lock()
	defer index.mu.Unlock()
	return len(index.geoms)
}

// IndexDestroy frees the tree. Indexed geometries are not destroyed.
func (g *Geos) IndexDestroy(index *Index) {
	index.mu.Lock()
	defer index.mu.Unlock()
	if index.v != nil {
		C.GEOSSTRtree_destroy_r(g.v, index.v)
		index.v = nil
	}
}
