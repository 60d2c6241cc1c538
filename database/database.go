// Package database writes conflated records to a database.
package database

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
)

type Config struct {
	ConnectionParams string
	Srid             int
	ImportSchema     string
	ProductionSchema string
	BackupSchema     string
}

type DB interface {
	// Import replaces table in the import schema with records. Fields
	// are the columns in output order.
	Import(table string, fields []string, records []*element.Record) error
	Close() error
}

type Deployer interface {
	Deploy(tables []string) error
	RevertDeploy(tables []string) error
	RemoveBackup(tables []string) error
}

var databases map[string]func(Config) (DB, error)

func init() {
	databases = make(map[string]func(Config) (DB, error))
}

func Register(name string, f func(Config) (DB, error)) {
	databases[name] = f
}

func Open(conf Config) (DB, error) {
	newFunc, ok := databases[ConnectionType(conf.ConnectionParams)]
	if !ok {
		return nil, errors.Errorf("unsupported database type: %s", ConnectionType(conf.ConnectionParams))
	}

	db, err := newFunc(conf)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func ConnectionType(param string) string {
	parts := strings.SplitN(param, ":", 2)
	return parts[0]
}

// NullDb discards all records.
type NullDb struct {
	Imported map[string]int
}

func (n *NullDb) Import(table string, fields []string, records []*element.Record) error {
	n.Imported[table] = len(records)
	return nil
}
func (n *NullDb) Close() error { return nil }

func NewNullDb(conf Config) (DB, error) {
	return &NullDb{Imported: make(map[string]int)}, nil
}

func init() {
	Register("null", NewNullDb)
}
