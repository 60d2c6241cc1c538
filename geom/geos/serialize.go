package geos

/*
#cgo LDFLAGS: -lgeos_c
#include "geos_c.h"
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"
)

func (g *Geos) FromWkt(wkt string) *Geom {
	wktC := C.CString(wkt)
	defer C.free(unsafe.Pointer(wktC))
	geom := C.GEOSGeomFromWKT_r(g.v, wktC)
	if geom == nil {
		return nil
	}
	return &Geom{geom}
}

func (g *Geos) AsWkt(geom *Geom) string {
	str := C.GEOSGeomToWKT_r(g.v, geom.v)
	if str == nil {
		return ""
	}
	result := C.GoString(str)
	C.GEOSFree_r(g.v, unsafe.Pointer(str))
	return result
}
