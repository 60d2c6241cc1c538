// Package postgis imports records into PostGIS tables.
package postgis

import (
	"database/sql"
	"fmt"
	"strings"

	pq "github.com/lib/pq"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/database"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/log"
)

type SQLError struct {
	query         string
	originalError error
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s", e.originalError.Error(), e.query)
}

func (e *SQLError) Unwrap() error {
	return e.originalError
}

type SQLInsertError struct {
	SQLError
	data interface{}
}

func (e *SQLInsertError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s (%+v)", e.originalError.Error(), e.query, e.data)
}

type PostGIS struct {
	Db     *sql.DB
	Params string
	Config database.Config
}

func (pg *PostGIS) createSchema(schema string) error {
	if schema == "public" {
		return nil
	}

	sql := `SELECT EXISTS(SELECT schema_name FROM information_schema.schemata WHERE schema_name = $1);`
	row := pg.Db.QueryRow(sql, schema)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return &SQLError{sql, err}
	}
	if exists {
		return nil
	}

	sql = fmt.Sprintf("CREATE SCHEMA \"%s\"", schema)
	if _, err := pg.Db.Exec(sql); err != nil {
		return &SQLError{sql, err}
	}
	return nil
}

func createTable(tx *sql.Tx, spec *TableSpec) error {
	if err := dropTableIfExists(tx, spec.Schema, spec.Name); err != nil {
		return err
	}

	sql := spec.CreateTableSQL()
	if _, err := tx.Exec(sql); err != nil {
		return &SQLError{sql, err}
	}

	sql = spec.AddGeometryColumnSQL()
	row := tx.QueryRow(sql)
	var void interface{}
	if err := row.Scan(&void); err != nil {
		return &SQLError{sql, err}
	}
	return nil
}

// Import replaces table in the import schema. The table is created,
// filled and indexed in a single transaction.
func (pg *PostGIS) Import(table string, fields []string, records []*element.Record) error {
	defer log.Step(fmt.Sprintf("Importing %d records into %s.%s", len(records), pg.Config.ImportSchema, table))()

	if err := pg.createSchema(pg.Config.ImportSchema); err != nil {
		return err
	}
	spec := NewTableSpec(pg.Config.ImportSchema, table, pg.Config.Srid, fields, records)

	tx, err := pg.Db.Begin()
	if err != nil {
		return err
	}
	defer rollbackIfTx(&tx)

	if err := createTable(tx, spec); err != nil {
		return err
	}

	copySQL := pq.CopyInSchema(spec.Schema, spec.Name, spec.ColumnNames()...)
	stmt, err := tx.Prepare(copySQL)
	if err != nil {
		return &SQLError{copySQL, err}
	}
	for _, rec := range records {
		row, err := spec.Row(rec)
		if err != nil {
			stmt.Close()
			return err
		}
		if _, err := stmt.Exec(row...); err != nil {
			stmt.Close()
			return &SQLInsertError{SQLError{copySQL, err}, rec.ID}
		}
	}
	// flush COPY
	if _, err := stmt.Exec(); err != nil {
		stmt.Close()
		return &SQLError{copySQL, err}
	}
	if err := stmt.Close(); err != nil {
		return &SQLError{copySQL, err}
	}

	indexSQL := spec.CreateIndexSQL()
	if _, err := tx.Exec(indexSQL); err != nil {
		return &SQLError{indexSQL, err}
	}

	err = tx.Commit()
	if err != nil {
		return err
	}
	tx = nil // set nil to prevent rollback
	return nil
}

func (pg *PostGIS) Open() error {
	var err error

	pg.Db, err = sql.Open("postgres", pg.Params)
	if err != nil {
		return err
	}
	// check that the connection actually works
	err = pg.Db.Ping()
	if err != nil {
		return err
	}
	return nil
}

func (pg *PostGIS) Close() error {
	return pg.Db.Close()
}

// ConnectionParams converts a postgis:// URL into pq connection
// parameters. schema and backupschema query options override the
// schemas of conf.
func ConnectionParams(conf *database.Config) (string, error) {
	params := conf.ConnectionParams
	if strings.HasPrefix(params, "postgis://") {
		params = strings.Replace(params, "postgis", "postgres", 1)
	}

	params, err := pq.ParseURL(params)
	if err != nil {
		return "", err
	}
	params = disableDefaultSsl(params)
	params, schema, backupSchema := schemasFromConnectionParams(params)
	if schema != "" {
		conf.ImportSchema = schema
	}
	if backupSchema != "" {
		conf.BackupSchema = backupSchema
	}
	if conf.ImportSchema == "" {
		conf.ImportSchema = "import"
	}
	if conf.ProductionSchema == "" {
		conf.ProductionSchema = "public"
	}
	if conf.BackupSchema == "" {
		conf.BackupSchema = "backup"
	}
	return params, nil
}

func New(conf database.Config) (database.DB, error) {
	db := &PostGIS{}

	params, err := ConnectionParams(&conf)
	if err != nil {
		return nil, err
	}
	db.Config = conf
	db.Params = params

	err = db.Open()
	if err != nil {
		return nil, err
	}
	return db, nil
}

func init() {
	database.Register("postgres", New)
	database.Register("postgis", New)
}
