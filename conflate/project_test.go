package conflate

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
)

func TestNextID(t *testing.T) {
	assert.Equal(t, int64(1), NextID(nil, "OBJECTID"))
	assert.Equal(t, int64(1), NextID([]*element.Record{record(0, nil, "OBJECTID", "abc")}, "OBJECTID"))
	assert.Equal(t, int64(1), NextID([]*element.Record{record(0, nil, "OBJECTID", int64(0))}, "OBJECTID"))
	assert.Equal(t, int64(-4), NextID([]*element.Record{record(0, nil, "OBJECTID", int64(-5))}, "OBJECTID"))
	assert.Equal(t, int64(13), NextID([]*element.Record{
		record(0, nil, "OBJECTID", int64(3)),
		record(1, nil, "OBJECTID", "12"),
		record(2, nil, "OBJECTID", 7.0),
		record(3, nil),
	}, "OBJECTID"))
}

func TestProjector(t *testing.T) {
	schema := Schema{
		IDField:    "ID",
		GUIDField:  "GUID",
		Fields:     []string{"ID", "GUID", "Status", "Audience", "Owner", "Notes"},
		NullFields: []string{"Owner"},
		Defaults:   map[string]interface{}{"Audience": "Public", "Notes": "none"},
		ValueMaps:  map[string]map[string]interface{}{"Status": {" E ": "Existing", "A": "Abandoned"}},
	}
	guids := []string{"g1", "g2", "g3"}
	n := 0
	p := NewProjector(schema, []*element.Record{record(0, nil, "ID", int64(9))}, func() string {
		n++
		return guids[n-1]
	})

	tests := []struct {
		src      *element.Record
		expected []interface{}
	}{
		{
			record(0, orb.Point{1, 2}, "Status", "e", "Owner", "Town", "Audience", "Internal", "Notes", ""),
			[]interface{}{int64(10), "g1", "Existing", "Internal", nil, "none"},
		},
		{
			record(1, nil, "Status", "Proposed", "Audience", nil),
			[]interface{}{int64(11), "g2", "Proposed", "Public", nil, "none"},
		},
		{
			record(2, nil, "Status", "a", "ID", int64(1), "GUID", "keep"),
			[]interface{}{int64(12), "g3", "Abandoned", "Public", nil, "none"},
		},
	}
	for i, tc := range tests {
		rec := p.Project(100+i, tc.src)
		assert.Equal(t, 100+i, rec.ID)
		assert.Equal(t, tc.src.Geometry, rec.Geometry)
		assert.Equal(t, schema.Fields, rec.Attributes.Keys())
		for j, f := range schema.Fields {
			assert.Equal(t, tc.expected[j], rec.Get(f), "%d %s", i, f)
		}
	}
}

func TestProjectorWithoutGUIDs(t *testing.T) {
	schema := Schema{IDField: "ID", GUIDField: "GUID", Fields: []string{"ID", "GUID"}}
	p := NewProjector(schema, nil, nil)
	rec := p.Project(0, record(0, nil))
	assert.Equal(t, int64(1), rec.Get("ID"))
	assert.Nil(t, rec.Get("GUID"))
}
