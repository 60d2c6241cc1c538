// Package element contains the record type shared by all feature kinds.
package element

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Record is a feature with geometry and attributes.
type Record struct {
	// ID is the position within the source collection, not a
	// persisted identity.
	ID         int
	Geometry   orb.Geometry
	Attributes *Attributes
}

func NewRecord(id int, geom orb.Geometry, attrs *Attributes) *Record {
	if attrs == nil {
		attrs = NewAttributes()
	}
	return &Record{ID: id, Geometry: geom, Attributes: attrs}
}

// Clone returns a copy with independent attributes. The geometry is
// shared as it is never modified.
func (r *Record) Clone() *Record {
	return &Record{ID: r.ID, Geometry: r.Geometry, Attributes: r.Attributes.Clone()}
}

// Get returns the attribute value, nil for missing fields.
func (r *Record) Get(field string) interface{} {
	if r.Attributes == nil {
		return nil
	}
	v, _ := r.Attributes.Get(field)
	return v
}

func (r *Record) String() string {
	geomType := "null"
	if r.Geometry != nil {
		geomType = r.Geometry.GeoJSONType()
	}
	return fmt.Sprintf("Record{%d %s %v}", r.ID, geomType, r.Attributes)
}

// Attributes is an ordered mapping of field names to scalar values
// (nil, string, int64, float64 or bool).
type Attributes struct {
	keys   []string
	values map[string]interface{}
}

func NewAttributes() *Attributes {
	return &Attributes{values: make(map[string]interface{})}
}

// AttributesOf builds attributes from alternating field/value pairs.
func AttributesOf(kv ...interface{}) *Attributes {
	if len(kv)%2 != 0 {
		panic("AttributesOf requires field/value pairs")
	}
	a := NewAttributes()
	for i := 0; i < len(kv); i += 2 {
		a.Set(kv[i].(string), kv[i+1])
	}
	return a
}

// Set sets the value. Existing fields keep their position, new fields
// are appended.
func (a *Attributes) Set(field string, value interface{}) {
	if _, ok := a.values[field]; !ok {
		a.keys = append(a.keys, field)
	}
	a.values[field] = value
}

func (a *Attributes) Get(field string) (interface{}, bool) {
	v, ok := a.values[field]
	return v, ok
}

func (a *Attributes) Has(field string) bool {
	_, ok := a.values[field]
	return ok
}

// Keys returns the fields in order.
func (a *Attributes) Keys() []string {
	keys := make([]string, len(a.keys))
	copy(keys, a.keys)
	return keys
}

func (a *Attributes) Len() int {
	return len(a.keys)
}

func (a *Attributes) Clone() *Attributes {
	if a == nil {
		return NewAttributes()
	}
	c := &Attributes{
		keys:   make([]string, len(a.keys)),
		values: make(map[string]interface{}, len(a.values)),
	}
	copy(c.keys, a.keys)
	for k, v := range a.values {
		c.values[k] = v
	}
	return c
}

func (a *Attributes) String() string {
	if a == nil {
		return "{}"
	}
	s := "{"
	for i, k := range a.keys {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s:%v", k, a.values[k])
	}
	return s + "}"
}
