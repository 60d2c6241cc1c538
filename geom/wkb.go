package geom

import (
	"encoding/hex"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"
	"github.com/pkg/errors"
)

// AsEWKBHex encodes geom as hex encoded EWKB with srid, the text
// format PostGIS accepts for geometry columns in COPY.
func AsEWKBHex(geom orb.Geometry, srid int) ([]byte, error) {
	if geom == nil {
		return nil, ErrNullGeometry
	}
	buf, err := ewkb.Marshal(geom, srid)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s as EWKB", geom.GeoJSONType())
	}
	dst := make([]byte, hex.EncodedLen(len(buf)))
	hex.Encode(dst, buf)
	return dst, nil
}
