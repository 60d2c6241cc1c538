package conflate

import (
	"fmt"
	"strings"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
)

// Projector converts unmatched source records into the authoritative
// schema.
type Projector struct {
	schema    Schema
	nextID    int64
	newGUID   func() string
	nullField map[string]struct{}
	valueMaps map[string]map[string]interface{}
}

// NewProjector returns a projector that assigns identifiers following
// the largest identifier in authoritative.
func NewProjector(schema Schema, authoritative []*element.Record, newGUID func() string) *Projector {
	p := &Projector{
		schema:    schema,
		nextID:    NextID(authoritative, schema.IDField),
		newGUID:   newGUID,
		nullField: make(map[string]struct{}, len(schema.NullFields)),
		valueMaps: make(map[string]map[string]interface{}, len(schema.ValueMaps)),
	}
	for _, f := range schema.NullFields {
		p.nullField[f] = struct{}{}
	}
	for field, m := range schema.ValueMaps {
		norm := make(map[string]interface{}, len(m))
		for k, v := range m {
			norm[normalizeCode(k)] = v
		}
		p.valueMaps[field] = norm
	}
	return p
}

// NextID returns the largest integer value of field plus one, or 1
// when no record has one.
func NextID(records []*element.Record, field string) int64 {
	var max int64
	found := false
	for _, rec := range records {
		id, ok := element.AsInt64(rec.Get(field))
		if !ok {
			continue
		}
		if !found || id > max {
			max = id
			found = true
		}
	}
	if !found {
		return 1
	}
	return max + 1
}

func normalizeCode(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Project returns a new record with exactly the schema fields, in
// schema order, and the unprojected geometry of src. id is the record
// ID of the new record.
func (p *Projector) Project(id int, src *element.Record) *element.Record {
	attrs := element.NewAttributes()
	for _, f := range p.schema.Fields {
		attrs.Set(f, p.value(f, src))
	}
	return element.NewRecord(id, src.Geometry, attrs)
}

func (p *Projector) value(field string, src *element.Record) interface{} {
	switch field {
	case p.schema.IDField:
		id := p.nextID
		p.nextID++
		return id
	case p.schema.GUIDField:
		if p.newGUID != nil {
			return p.newGUID()
		}
		return nil
	}
	if _, ok := p.nullField[field]; ok {
		return nil
	}

	v := src.Get(field)
	if m, ok := p.valueMaps[field]; ok && !element.IsNull(v) {
		var code string
		if s, ok := v.(string); ok {
			code = s
		} else {
			code = fmt.Sprint(v)
		}
		if mapped, ok := m[normalizeCode(code)]; ok {
			v = mapped
		}
	}
	if element.IsNull(v) {
		if def, ok := p.schema.Defaults[field]; ok {
			return def
		}
	}
	return v
}

// conform appends all missing schema fields as null.
func conform(rec *element.Record, fields []string) {
	if rec.Attributes == nil {
		rec.Attributes = element.NewAttributes()
	}
	for _, f := range fields {
		if !rec.Attributes.Has(f) {
			rec.Attributes.Set(f, nil)
		}
	}
}
