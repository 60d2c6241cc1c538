package assign

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/proj"
)

func square(minx, miny, maxx, maxy float64) orb.Polygon {
	return orb.Polygon{{{minx, miny}, {maxx, miny}, {maxx, maxy}, {minx, maxy}, {minx, miny}}}
}

func town(name interface{}, g orb.Geometry) *element.Record {
	return element.NewRecord(0, g, element.AttributesOf("TOWNNAME", name))
}

func feature(id int, g orb.Geometry) *element.Record {
	return element.NewRecord(id, g, element.AttributesOf("Type", "Gravity Main"))
}

func TestAssign(t *testing.T) {
	borders := []*element.Record{
		town(" Hartford ", square(0, 0, 100, 100)),
		town("Norwich", square(100, 0, 200, 100)),
		town("", square(200, 0, 300, 100)),
		town(nil, square(200, 0, 300, 100)),
		town("Nowhere", nil),
	}
	features := []*element.Record{
		feature(0, orb.LineString{{10, 10}, {20, 10}}),
		// mostly in Norwich
		feature(1, orb.LineString{{90, 50}, {150, 50}}),
		feature(2, orb.LineString{{250, 50}, {260, 50}}),
		feature(3, nil),
		feature(4, orb.Point{150, 10}),
		// on the shared border, equal lengths
		feature(5, orb.LineString{{90, 50}, {110, 50}}),
	}
	res, err := Assign(borders, features, Config{
		BorderField: "TOWNNAME",
		TownField:   "TownName",
		Projection:  proj.Identity{},
	})
	if err != nil {
		t.Fatal(err)
	}

	expected := map[int]string{0: "Hartford", 1: "Norwich", 4: "Norwich", 5: "Hartford"}
	if len(res.Assigned) != len(expected) {
		t.Fatalf("unexpected assigned %v", res.Assigned)
	}
	for _, rec := range res.Assigned {
		if town := rec.Get("TownName"); town != expected[rec.ID] {
			t.Errorf("feature %d: expected %s, got %v", rec.ID, expected[rec.ID], town)
		}
		if rec.Get("Type") != "Gravity Main" {
			t.Errorf("feature %d lost attributes: %s", rec.ID, rec)
		}
	}
	if len(res.Unassigned) != 2 || res.Unassigned[0].ID != 2 || res.Unassigned[1].ID != 3 {
		t.Errorf("unexpected unassigned %v", res.Unassigned)
	}
	if features[0].Attributes.Has("TownName") {
		t.Error("input feature modified")
	}
	towns := res.Towns()
	if len(towns) != 2 || towns[0] != "Hartford" || towns[1] != "Norwich" {
		t.Errorf("unexpected towns %v", towns)
	}
	if len(res.ByTown["Norwich"]) != 2 {
		t.Errorf("unexpected Norwich features %v", res.ByTown["Norwich"])
	}
}

func TestAssignWithoutBorders(t *testing.T) {
	_, err := Assign(nil, nil, Config{BorderField: "TOWNNAME", TownField: "TownName", Projection: proj.Identity{}})
	if err == nil {
		t.Fatal("expected error")
	}
	_, err = Assign(nil, nil, Config{TownField: "TownName", Projection: proj.Identity{}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSafeFilename(t *testing.T) {
	for _, tc := range []struct {
		name     string
		expected string
	}{
		{"Hartford", "Hartford"},
		{"St. Johnsbury", "St._Johnsbury"},
		{"  Barre   Town ", "Barre_Town"},
		{"Wind/sor (V)", "Windsor_V"},
		{"???", "_EMPTY"},
		{"", "_EMPTY"},
	} {
		if got := SafeFilename(tc.name); got != tc.expected {
			t.Errorf("%q: expected %q, got %q", tc.name, tc.expected, got)
		}
	}
}
