package postgis

import (
	"strings"
	"testing"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/database"
)

func TestSchemasFromConnectionParams(t *testing.T) {
	params, schema, backup := schemasFromConnectionParams("host=localhost schema='imp' backupschema=bak dbname=ww")
	if params != "host=localhost dbname=ww" || schema != "imp" || backup != "bak" {
		t.Errorf("unexpected %q %q %q", params, schema, backup)
	}
}

func TestConnectionParams(t *testing.T) {
	conf := database.Config{ConnectionParams: "postgis://ww@localhost/water?schema=staging"}
	params, err := ConnectionParams(&conf)
	if err != nil {
		t.Fatal(err)
	}
	for _, part := range []string{"host=", "dbname=", "sslmode=disable"} {
		if !strings.Contains(params, part) {
			t.Errorf("%s missing in %q", part, params)
		}
	}
	if strings.Contains(params, "schema") {
		t.Errorf("schema not removed from %q", params)
	}
	if conf.ImportSchema != "staging" || conf.ProductionSchema != "public" || conf.BackupSchema != "backup" {
		t.Errorf("unexpected schemas %+v", conf)
	}

	conf = database.Config{ConnectionParams: "postgis://localhost/water?sslmode=require", ImportSchema: "imp"}
	params, err = ConnectionParams(&conf)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(params, "disable") {
		t.Errorf("sslmode overwritten in %q", params)
	}
	if conf.ImportSchema != "imp" {
		t.Errorf("unexpected import schema %s", conf.ImportSchema)
	}
}
