package postgis

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/geom"
)

type ColumnType interface {
	Name() string
	// Value converts an attribute value into a COPY value.
	Value(v interface{}, spec *TableSpec) (interface{}, error)
}

type simpleColumnType struct {
	name string
}

func (t *simpleColumnType) Name() string {
	return t.name
}

func (t *simpleColumnType) Value(v interface{}, spec *TableSpec) (interface{}, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil
		}
		return v, nil
	case int64, bool, string:
		return v, nil
	case int:
		return int64(v), nil
	case json.Number:
		return v.String(), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// stringColumnType writes all values as text, for columns with mixed
// value types.
type stringColumnType struct {
	simpleColumnType
}

func (t *stringColumnType) Value(v interface{}, spec *TableSpec) (interface{}, error) {
	v, err := t.simpleColumnType.Value(v, spec)
	if err != nil || v == nil {
		return v, err
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}

type geometryColumnType struct {
	name string
}

func (t *geometryColumnType) Name() string {
	return t.name
}

func (t *geometryColumnType) Value(v interface{}, spec *TableSpec) (interface{}, error) {
	g, ok := v.(orb.Geometry)
	if !ok || g == nil {
		return nil, nil
	}
	wkb, err := geom.AsEWKBHex(g, spec.Srid)
	if err != nil {
		return nil, err
	}
	return string(wkb), nil
}

var pgTypes map[string]ColumnType

func init() {
	pgTypes = map[string]ColumnType{
		"string":   &stringColumnType{simpleColumnType{"VARCHAR"}},
		"bool":     &simpleColumnType{"BOOL"},
		"int64":    &simpleColumnType{"BIGINT"},
		"float64":  &simpleColumnType{"DOUBLE PRECISION"},
		"geometry": &geometryColumnType{"GEOMETRY"},
	}
}

func registerColumnType(name string, t ColumnType) {
	pgTypes[name] = t
}
