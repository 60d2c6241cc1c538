package geojson

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
)

const sample = `{
  "type": "FeatureCollection",
  "name": "LinearFeatures",
  "crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:OGC:1.3:CRS84"}},
  "features": [
    {"type": "Feature", "properties": {"OBJECTID": 7, "Type": 3, "SystemType": "Wastewater", "Notes": null, "Width": 1.5},
     "geometry": {"type": "LineString", "coordinates": [[-73.1, 44.2], [-73.2, 44.3, 12.0]]}},
    {"type": "Feature", "properties": {"SystemType": "Stormwater", "OBJECTID": 8}, "geometry": null},
    {"type": "Feature", "properties": null, "geometry": {"type": "Point", "coordinates": [-73, 44]}}
  ]
}`

func TestRead(t *testing.T) {
	c, err := Read(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}

	if len(c.Members) != 2 || c.Members[0].Key != "name" || c.Members[1].Key != "crs" {
		t.Fatalf("unexpected members %v", c.Members)
	}
	if len(c.Records) != 3 {
		t.Fatalf("unexpected number of records %d", len(c.Records))
	}

	first := c.Records[0]
	if first.ID != 0 {
		t.Errorf("unexpected id %d", first.ID)
	}
	if keys := first.Attributes.Keys(); !reflect.DeepEqual(keys, []string{"OBJECTID", "Type", "SystemType", "Notes", "Width"}) {
		t.Errorf("unexpected property order %v", keys)
	}
	if v := first.Get("OBJECTID"); v != int64(7) {
		t.Errorf("unexpected OBJECTID %#v", v)
	}
	if v := first.Get("Width"); v != 1.5 {
		t.Errorf("unexpected Width %#v", v)
	}
	if !first.Attributes.Has("Notes") || first.Get("Notes") != nil {
		t.Errorf("Notes not kept as null")
	}
	ls, ok := first.Geometry.(orb.LineString)
	if !ok || len(ls) != 2 || ls[1] != (orb.Point{-73.2, 44.3}) {
		t.Errorf("unexpected geometry %#v", first.Geometry)
	}

	if c.Records[1].Geometry != nil {
		t.Errorf("expected null geometry")
	}
	if c.Records[2].Attributes.Len() != 0 {
		t.Errorf("expected empty properties")
	}
	if c.Records[2].ID != 2 {
		t.Errorf("unexpected id %d", c.Records[2].ID)
	}
}

func TestReadErrors(t *testing.T) {
	for _, doc := range []string{
		`{"type": "Feature", "features": []}`,
		`{"features": []}`,
		`{"type": "FeatureCollection", "features": [{"type": "Point"}]}`,
		`{"type": "FeatureCollection", "features": [{"type": "Feature", "properties": [1]}]}`,
		`[]`,
	} {
		if _, err := Read(strings.NewReader(doc)); err == nil {
			t.Errorf("expected error for %s", doc)
		}
	}
}

func TestWrite(t *testing.T) {
	c := &Collection{
		Members: []Member{{Key: "name", Value: []byte(`"points"`)}},
		Records: []*element.Record{
			element.NewRecord(0, orb.Point{1, 2}, element.AttributesOf("b", int64(1), "a", "x", "n", nil)),
			element.NewRecord(1, nil, nil),
		},
	}
	buf := &bytes.Buffer{}
	if err := Write(buf, c); err != nil {
		t.Fatal(err)
	}
	expected := `{"type":"FeatureCollection","name":"points","features":[` +
		`{"type":"Feature","properties":{"b":1,"a":"x","n":null},"geometry":{"type":"Point","coordinates":[1,2]}},` +
		`{"type":"Feature","properties":{},"geometry":null}]}` + "\n"
	if buf.String() != expected {
		t.Errorf("unexpected output\n%s\nexpected\n%s", buf.String(), expected)
	}
}

func TestFileRoundTrip(t *testing.T) {
	c, err := Read(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	for _, name := range []string{"out.geojson", "out.geojson.gz"} {
		path := filepath.Join(dir, name)
		if err := WriteFile(path, c); err != nil {
			t.Fatal(err)
		}
		read, err := ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(read.Records) != len(c.Records) {
			t.Fatalf("%s: unexpected number of records %d", name, len(read.Records))
		}
		for i := range c.Records {
			if !reflect.DeepEqual(read.Records[i].Attributes.Keys(), c.Records[i].Attributes.Keys()) {
				t.Errorf("%s: property order differs for %d", name, i)
			}
		}
		if !reflect.DeepEqual(read.Members, c.Members) {
			t.Errorf("%s: members differ %v", name, read.Members)
		}
	}
}
