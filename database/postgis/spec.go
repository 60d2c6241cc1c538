package postgis

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
)

const geometryColumn = "geometry"

type ColumnSpec struct {
	Name string
	Type ColumnType
}

type TableSpec struct {
	Name         string
	Schema       string
	Columns      []ColumnSpec
	GeometryType string
	Srid         int
}

func (col *ColumnSpec) AsSQL() string {
	return fmt.Sprintf("\"%s\" %s", col.Name, col.Type.Name())
}

// NewTableSpec returns the table for records. Column types are
// inferred from the values of each field.
func NewTableSpec(schema, name string, srid int, fields []string, records []*element.Record) *TableSpec {
	spec := &TableSpec{
		Name:         name,
		Schema:       schema,
		Srid:         srid,
		GeometryType: geometryType(records),
	}
	for _, f := range fields {
		if f == geometryColumn {
			continue
		}
		spec.Columns = append(spec.Columns, ColumnSpec{Name: f, Type: pgTypes[columnType(f, records)]})
	}
	spec.Columns = append(spec.Columns, ColumnSpec{Name: geometryColumn, Type: pgTypes["geometry"]})
	return spec
}

// columnType returns int64 or float64 when all non-null values of the
// field are numbers, bool for booleans and string otherwise.
func columnType(field string, records []*element.Record) string {
	typ := ""
	for _, rec := range records {
		var vt string
		switch v := rec.Get(field).(type) {
		case nil:
			continue
		case int64, int:
			vt = "int64"
		case float64:
			vt = "float64"
		case bool:
			vt = "bool"
		case string:
			if strings.TrimSpace(v) == "" {
				continue
			}
			vt = "string"
		default:
			vt = "string"
		}
		switch {
		case typ == "" || typ == vt:
			typ = vt
		case (typ == "int64" && vt == "float64") || (typ == "float64" && vt == "int64"):
			typ = "float64"
		default:
			return "string"
		}
	}
	if typ == "" {
		return "string"
	}
	return typ
}

func geometryType(records []*element.Record) string {
	typ := ""
	for _, rec := range records {
		if rec.Geometry == nil {
			continue
		}
		gt := strings.ToUpper(rec.Geometry.GeoJSONType())
		if typ == "" {
			typ = gt
		} else if typ != gt {
			return "GEOMETRY"
		}
	}
	if typ == "" {
		return "GEOMETRY"
	}
	return typ
}

func (spec *TableSpec) CreateTableSQL() string {
	var cols []string
	for _, col := range spec.Columns {
		if col.Type.Name() == "GEOMETRY" {
			continue
		}
		cols = append(cols, col.AsSQL())
	}
	columnSQL := strings.Join(cols, ",\n            ")
	return fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS "%s"."%s" (
            %s
        );`,
		spec.Schema,
		spec.Name,
		columnSQL,
	)
}

func (spec *TableSpec) AddGeometryColumnSQL() string {
	return fmt.Sprintf("SELECT AddGeometryColumn('%s', '%s', '%s', '%d', '%s', 2);",
		spec.Schema, spec.Name, geometryColumn, spec.Srid, spec.GeometryType)
}

func (spec *TableSpec) CreateIndexSQL() string {
	return fmt.Sprintf(`CREATE INDEX "%s_geom" ON "%s"."%s" USING GIST ("%s")`,
		spec.Name, spec.Schema, spec.Name, geometryColumn)
}

func (spec *TableSpec) ColumnNames() []string {
	names := make([]string, 0, len(spec.Columns))
	for _, col := range spec.Columns {
		names = append(names, col.Name)
	}
	return names
}

// Row returns the COPY values of rec in column order.
func (spec *TableSpec) Row(rec *element.Record) ([]interface{}, error) {
	row := make([]interface{}, 0, len(spec.Columns))
	for _, col := range spec.Columns {
		var v interface{}
		if col.Name == geometryColumn {
			if rec.Geometry != nil {
				v = rec.Geometry
			}
		} else {
			v = rec.Get(col.Name)
		}
		value, err := col.Type.Value(v, spec)
		if err != nil {
			return nil, errors.Wrapf(err, "column %s of record %d", col.Name, rec.ID)
		}
		row = append(row, value)
	}
	return row, nil
}
