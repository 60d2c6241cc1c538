package test

import (
	"os"
	"testing"

	"github.com/paulmach/orb"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/conflate"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
)

const linearTable = "ww_linear"

var linearFiles struct {
	auth, source string
}

func TestLinear_Prepare(t *testing.T) {
	ts.open(t)
	ts.dropSchemas(t)

	linearFiles.auth = ts.writeGeoJSON(t, "auth.geojson",
		element.NewRecord(0, orb.LineString{{0, 0}, {100, 0}}, element.AttributesOf(
			"OBJECTID", int64(1), "Type", "Gravity Main", "SystemType", "Sanitary", "Notes", nil)),
		element.NewRecord(1, orb.LineString{{0, 100}, {100, 100}}, element.AttributesOf(
			"OBJECTID", int64(2), "Type", "Force Main", "SystemType", "Sanitary", "Notes", "keep")),
	)
	linearFiles.source = ts.writeGeoJSON(t, "town.geojson",
		element.NewRecord(0, orb.LineString{{2, 0}, {98, 0}}, element.AttributesOf(
			"Type", "Gravity Main", "SystemType", "Sanitary", "Notes", "relined", "TownName", "Hartford")),
		element.NewRecord(1, orb.LineString{{0, 100}, {100, 100}}, element.AttributesOf(
			"Type", "Force Main", "SystemType", "Sanitary", "Notes", "other", "TownName", "Hartford")),
		element.NewRecord(2, orb.LineString{{0, 50}, {100, 50}}, element.AttributesOf(
			"Type", "Gravity Main", "SystemType", "Stormwater", "Status", "E", "TownName", "Hartford")),
	)
}

func TestLinear_Import(t *testing.T) {
	ts.requireDB(t)
	if ts.tableExists(t, dbschemaImport, linearTable) {
		t.Fatalf("table %s exists in schema %s", linearTable, dbschemaImport)
	}
	res := ts.conflate(t, conflate.Linear,
		"-authoritative", linearFiles.auth, "-source", linearFiles.source, "-table", linearTable)
	if len(res.Matches) != 2 || len(res.New) != 1 {
		t.Fatalf("unexpected result %+v", res.Report)
	}
	if !ts.tableExists(t, dbschemaImport, linearTable) {
		t.Fatalf("table %s does not exists in schema %s", linearTable, dbschemaImport)
	}
	if n := ts.count(t, dbschemaImport, linearTable); n != 3 {
		t.Errorf("expected 3 rows, got %d", n)
	}
}

func TestLinear_Deploy(t *testing.T) {
	ts.requireDB(t)
	ts.conflate(t, conflate.Linear,
		"-authoritative", linearFiles.auth, "-source", linearFiles.source, "-table", linearTable,
		"-deployproduction")
	if ts.tableExists(t, dbschemaImport, linearTable) {
		t.Fatalf("table %s exists in schema %s", linearTable, dbschemaImport)
	}
	if !ts.tableExists(t, dbschemaProduction, linearTable) {
		t.Fatalf("table %s does not exists in schema %s", linearTable, dbschemaProduction)
	}
}

func TestLinear_Enriched(t *testing.T) {
	ts.requireDB(t)
	if v := ts.queryString(t, linearTable, "Notes", 1); v.String != "relined" {
		t.Errorf("unexpected Notes %v", v)
	}
	if v := ts.queryString(t, linearTable, "Notes", 2); v.String != "keep" {
		t.Errorf("unexpected Notes %v", v)
	}
	if v := ts.queryString(t, linearTable, "TownName", 2); v.String != "Hartford" {
		t.Errorf("unexpected TownName %v", v)
	}
}

func TestLinear_NewRecord(t *testing.T) {
	ts.requireDB(t)
	if v := ts.queryString(t, linearTable, "Status", 3); v.String != "Existing" {
		t.Errorf("unexpected Status %v", v)
	}
	if v := ts.queryString(t, linearTable, "Audience", 3); v.String != "Public" {
		t.Errorf("unexpected Audience %v", v)
	}
	if v := ts.queryString(t, linearTable, "Owner", 3); v.Valid {
		t.Errorf("unexpected Owner %v", v)
	}
	if wkt := ts.queryWKT(t, linearTable, 3); wkt != "LINESTRING(0 50,100 50)" {
		t.Errorf("unexpected geometry %s", wkt)
	}
}

func TestLinear_DeployAgain(t *testing.T) {
	ts.requireDB(t)
	ts.conflate(t, conflate.Linear,
		"-authoritative", linearFiles.auth, "-source", linearFiles.source, "-table", linearTable,
		"-deployproduction")
	if !ts.tableExists(t, dbschemaBackup, linearTable) {
		t.Fatalf("table %s does not exists in schema %s", linearTable, dbschemaBackup)
	}
	if !ts.tableExists(t, dbschemaProduction, linearTable) {
		t.Fatalf("table %s does not exists in schema %s", linearTable, dbschemaProduction)
	}
}

func TestLinear_Cleanup(t *testing.T) {
	ts.requireDB(t)
	ts.dropSchemas(t)
	ts.db.Close()
	os.RemoveAll(ts.dir)
}
