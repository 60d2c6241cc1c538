package test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/lib/pq"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/config"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/conflate"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/geom/geojson"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/import_"
)

const (
	dbschemaImport     = "wwtestimport"
	dbschemaProduction = "wwtestproduction"
	dbschemaBackup     = "wwtestbackup"
)

type importTestSuite struct {
	dir string
	db  *sql.DB
}

// ts is shared by the sequential system tests. The tests need a
// PostGIS database configured with the PG* environment variables.
var ts importTestSuite

func (s *importTestSuite) open(t *testing.T) {
	db, err := sql.Open("postgres", "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skip("no PostGIS database: ", err)
	}
	s.db = db
	s.dir, err = os.MkdirTemp("", "wwtest")
	if err != nil {
		t.Fatal(err)
	}
}

func (s *importTestSuite) requireDB(t *testing.T) {
	if s.db == nil {
		t.Skip("no PostGIS database")
	}
}

func (s *importTestSuite) writeGeoJSON(t *testing.T, name string, records ...*element.Record) string {
	path := filepath.Join(s.dir, name)
	if err := geojson.WriteFile(path, &geojson.Collection{Records: records}); err != nil {
		t.Fatal(err)
	}
	return path
}

func (s *importTestSuite) conflate(t *testing.T, kind conflate.Kind, args ...string) *conflate.Result {
	args = append([]string{
		"-connection", "postgis://",
		"-dbschema-import", dbschemaImport,
		"-dbschema-production", dbschemaProduction,
		"-dbschema-backup", dbschemaBackup,
		"-planar",
		"-quiet",
	}, args...)
	opts, errs := config.ParseConflate(kind, args)
	if len(errs) != 0 {
		t.Fatal(errs)
	}
	res, err := import_.Conflate(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func (s *importTestSuite) dropSchemas(t *testing.T) {
	for _, schema := range []string{dbschemaImport, dbschemaProduction, dbschemaBackup} {
		if _, err := s.db.Exec(fmt.Sprintf(`DROP SCHEMA IF EXISTS %s CASCADE`, schema)); err != nil {
			t.Fatal(err)
		}
	}
}

func (s *importTestSuite) tableExists(t *testing.T, schema, table string) bool {
	row := s.db.QueryRow(`SELECT EXISTS(SELECT * FROM information_schema.tables WHERE table_name=$1 AND table_schema=$2)`, table, schema)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		t.Error(err)
		return false
	}
	return exists
}

func (s *importTestSuite) count(t *testing.T, schema, table string) int {
	row := s.db.QueryRow(fmt.Sprintf(`SELECT count(*) FROM "%s"."%s"`, schema, table))
	var n int
	if err := row.Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func (s *importTestSuite) queryString(t *testing.T, table, column string, objectID int64) sql.NullString {
	row := s.db.QueryRow(fmt.Sprintf(`SELECT "%s" FROM "%s"."%s" WHERE "OBJECTID"=$1`, column, dbschemaProduction, table), objectID)
	var v sql.NullString
	if err := row.Scan(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func (s *importTestSuite) queryWKT(t *testing.T, table string, objectID int64) string {
	row := s.db.QueryRow(fmt.Sprintf(`SELECT ST_AsText(geometry) FROM "%s"."%s" WHERE "OBJECTID"=$1`, dbschemaProduction, table), objectID)
	var wkt sql.NullString
	if err := row.Scan(&wkt); err != nil {
		t.Fatal(err)
	}
	return wkt.String
}
