package postgis

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/log"
)

func tableExists(tx *sql.Tx, schema, table string) (bool, error) {
	var exists bool
	sql := `SELECT EXISTS(SELECT * FROM information_schema.tables WHERE table_name=$1 AND table_schema=$2)`
	row := tx.QueryRow(sql, table, schema)
	err := row.Scan(&exists)
	if err != nil {
		return false, &SQLError{sql, err}
	}
	return exists, nil
}

func dropTableIfExists(tx *sql.Tx, schema, table string) error {
	sql := fmt.Sprintf(`DROP TABLE IF EXISTS "%s"."%s"`, schema, table)
	if _, err := tx.Exec(sql); err != nil {
		return &SQLError{sql, err}
	}
	return nil
}

func rollbackIfTx(tx **sql.Tx) {
	if *tx != nil {
		if err := (*tx).Rollback(); err != nil {
			log.Println("[error] rollback failed:", err)
		}
	}
}

// disableDefaultSsl adds sslmode=disable to params without sslmode.
func disableDefaultSsl(params string) string {
	if !strings.Contains(params, "sslmode=") {
		params += " sslmode=disable"
	}
	return params
}

// schemasFromConnectionParams returns the schema and backupschema
// options and removes them from params.
func schemasFromConnectionParams(params string) (string, string, string) {
	var schema, backupSchema string
	var rest []string
	for _, p := range strings.Fields(params) {
		if strings.HasPrefix(p, "schema=") {
			schema = strings.Trim(strings.TrimPrefix(p, "schema="), "'")
		} else if strings.HasPrefix(p, "backupschema=") {
			backupSchema = strings.Trim(strings.TrimPrefix(p, "backupschema="), "'")
		} else {
			rest = append(rest, p)
		}
	}
	return strings.Join(rest, " "), schema, backupSchema
}
