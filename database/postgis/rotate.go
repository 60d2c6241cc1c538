package postgis

import (
	"fmt"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/log"
)

func (pg *PostGIS) rotate(tables []string, source, dest, backup string) error {
	defer log.Step(fmt.Sprintf("Rotating tables %s -> %s -> %s", source, dest, backup))()

	if err := pg.createSchema(dest); err != nil {
		return err
	}
	if err := pg.createSchema(backup); err != nil {
		return err
	}

	tx, err := pg.Db.Begin()
	if err != nil {
		return err
	}
	defer rollbackIfTx(&tx)

	for _, tableName := range tables {
		log.Printf("[info] Rotating %s from %s -> %s -> %s", tableName, source, dest, backup)

		backupExists, err := tableExists(tx, backup, tableName)
		if err != nil {
			return err
		}
		sourceExists, err := tableExists(tx, source, tableName)
		if err != nil {
			return err
		}
		destExists, err := tableExists(tx, dest, tableName)
		if err != nil {
			return err
		}

		if !sourceExists {
			log.Printf("[warn] skipping rotate of %s, table does not exists in %s", tableName, source)
			continue
		}

		if destExists {
			log.Printf("[info] backup of %s, to %s", tableName, backup)
			if backupExists {
				if err := dropTableIfExists(tx, backup, tableName); err != nil {
					return err
				}
			}
			sql := fmt.Sprintf(`ALTER TABLE "%s"."%s" SET SCHEMA "%s"`, dest, tableName, backup)
			if _, err := tx.Exec(sql); err != nil {
				return &SQLError{sql, err}
			}
		}

		sql := fmt.Sprintf(`ALTER TABLE "%s"."%s" SET SCHEMA "%s"`, source, tableName, dest)
		if _, err := tx.Exec(sql); err != nil {
			return &SQLError{sql, err}
		}
	}

	err = tx.Commit()
	if err != nil {
		return err
	}
	tx = nil // set nil to prevent rollback
	return nil
}

// Deploy moves the tables from the import to the production schema. Existing
// production tables are moved to the backup schema.
func (pg *PostGIS) Deploy(tables []string) error {
	return pg.rotate(tables, pg.Config.ImportSchema, pg.Config.ProductionSchema, pg.Config.BackupSchema)
}

func (pg *PostGIS) RevertDeploy(tables []string) error {
	return pg.rotate(tables, pg.Config.BackupSchema, pg.Config.ProductionSchema, pg.Config.ImportSchema)
}

func (pg *PostGIS) RemoveBackup(tables []string) error {
	tx, err := pg.Db.Begin()
	if err != nil {
		return err
	}
	defer rollbackIfTx(&tx)

	backup := pg.Config.BackupSchema

	for _, tableName := range tables {
		backupExists, err := tableExists(tx, backup, tableName)
		if err != nil {
			return err
		}
		if backupExists {
			log.Printf("[info] removing backup of %s from %s", tableName, backup)
			if err := dropTableIfExists(tx, backup, tableName); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	if err != nil {
		return err
	}
	tx = nil // set nil to prevent rollback
	return nil
}
