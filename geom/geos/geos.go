package geos

/*
#cgo LDFLAGS: -lgeos_c
#include "geos_c.h"
#include <stdlib.h>

extern void goLogString(char *msg);
extern void debug_wrap(const char *fmt, ...);
extern GEOSContextHandle_t initGEOS_r_debug();
extern void initGEOS_debug();
*/
import "C"

import (
	"runtime"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/log"
)

//export goLogString
func goLogString(msg *C.char) {
	log.Printf("[debug] GEOS: %s", C.GoString(msg))
}

// Geos is a GEOS context handle. A handle must not be shared between
// goroutines; geometries can be shared as long as they are only read.
type Geos struct {
	v C.GEOSContextHandle_t
}

type Geom struct {
	v *C.GEOSGeometry
}

type CreateError string
type Error string

func (e Error) Error() string {
	return string(e)
}

func (e CreateError) Error() string {
	return string(e)
}

func NewGeos() *Geos {
	geos := &Geos{}
	geos.v = C.initGEOS_r_debug()
	return geos
}

func (g *Geos) Finish() {
	if g.v != nil {
		C.finishGEOS_r(g.v)
		g.v = nil
	}
}

func init() {
	/*
		Init global GEOS handle for non _r calls.
		In theory we need to always call the _r functions
		with a thread/goroutine-local GEOS instance to get thread
		safe behaviour. Some functions don't need a GEOS instance though
		and we can make use of that e.g. to call GEOSGeom_destroy in
		finalizer.
	*/
	C.initGEOS_debug()
}

func (g *Geos) Destroy(geom *Geom) {
	runtime.SetFinalizer(geom, nil)
	if geom.v != nil {
		C.GEOSGeom_destroy_r(g.v, geom.v)
		geom.v = nil
	} else {
		log.Printf("[warn] GEOS: double free?")
	}
}

func destroyGeom(geom *Geom) {
	C.GEOSGeom_destroy(geom.v)
	geom.v = nil
}

// DestroyLater registers a finalizer that frees the geometry once it
// is garbage collected. Use for geometries with an unclear lifetime,
// e.g. geometries stored in an Index.
func (g *Geos) DestroyLater(geom *Geom) {
	runtime.SetFinalizer(geom, destroyGeom)
}

func (g *Geos) Type(geom *Geom) string {
	geomType := C.GEOSGeomType_r(g.v, geom.v)
	if geomType == nil {
		return "Unknown"
	}
	defer C.GEOSFree_r(g.v, unsafePointer(geomType))
	return C.GoString(geomType)
}

func (g *Geos) NumGeoms(geom *Geom) int32 {
	count := int32(C.GEOSGetNumGeometries_r(g.v, geom.v))
	return count
}

type Bounds struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

var NilBounds = Bounds{1e20, 1e20, -1e20, -1e20}

func (g *Geos) Bounds(geom *Geom) Bounds {
	var minx, miny, maxx, maxy C.double
	if C.GEOSGeom_getXMin_r(g.v, geom.v, &minx) == 0 ||
		C.GEOSGeom_getYMin_r(g.v, geom.v, &miny) == 0 ||
		C.GEOSGeom_getXMax_r(g.v, geom.v, &maxx) == 0 ||
		C.GEOSGeom_getYMax_r(g.v, geom.v, &maxy) == 0 {
		return NilBounds
	}
	return Bounds{float64(minx), float64(miny), float64(maxx), float64(maxy)}
}
