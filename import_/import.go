/*
Package import_ runs the conflation and town assignment commands.
*/
package import_

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/config"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/conflate"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/database"
	_ "github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/database/postgis"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/geom/geojson"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/log"
)

func readCollection(name, path string) (*geojson.Collection, error) {
	defer log.Step(fmt.Sprintf("Reading %s %s", name, path))()
	c, err := geojson.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	log.Printf("[info] %d %s records", len(c.Records), name)
	return c, nil
}

// Conflate reads the authoritative and source datasets, conflates them
// and writes the result to the output file and/or the database.
func Conflate(ctx context.Context, opts *config.Conflate) (*conflate.Result, error) {
	auth, err := readCollection("authoritative", opts.Authoritative)
	if err != nil {
		return nil, err
	}
	source, err := readCollection("source", opts.Source)
	if err != nil {
		return nil, err
	}

	cfg := opts.ConflateConfig()
	res, err := conflate.Conflate(ctx, opts.Kind, auth.Records, source.Records, cfg)
	if err != nil {
		return nil, err
	}
	res.Report.Log()

	if opts.Output != "" {
		step := log.Step(fmt.Sprintf("Writing %s", opts.Output))
		out := &geojson.Collection{Members: auth.Members, Records: res.Records}
		if err := geojson.WriteFile(opts.Output, out); err != nil {
			return nil, errors.Wrapf(err, "writing %s", opts.Output)
		}
		step()
	}

	if opts.Connection != "" {
		if err := writeDatabase(opts, OutputFields(res.Records, cfg.Schema.Fields), res.Records); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func writeDatabase(opts *config.Conflate, fields []string, records []*element.Record) error {
	conf := database.Config{
		ConnectionParams: opts.Connection,
		Srid:             opts.Srid,
		ImportSchema:     opts.Schemas.Import,
		ProductionSchema: opts.Schemas.Production,
		BackupSchema:     opts.Schemas.Backup,
	}
	db, err := database.Open(conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer db.Close()

	if err := db.Import(opts.Table, fields, records); err != nil {
		return errors.Wrapf(err, "importing %s", opts.Table)
	}

	if opts.DeployProduction {
		deployer, ok := db.(database.Deployer)
		if !ok {
			return errors.New("database does not support deployment")
		}
		if err := deployer.Deploy([]string{opts.Table}); err != nil {
			return errors.Wrap(err, "deploying")
		}
	}
	return nil
}

// OutputFields returns the schema fields followed by all other fields
// of records, in first seen order.
func OutputFields(records []*element.Record, schema []string) []string {
	seen := make(map[string]struct{}, len(schema))
	fields := make([]string, 0, len(schema))
	for _, f := range schema {
		if _, ok := seen[f]; !ok {
			seen[f] = struct{}{}
			fields = append(fields, f)
		}
	}
	for _, rec := range records {
		if rec.Attributes == nil {
			continue
		}
		for _, f := range rec.Attributes.Keys() {
			if _, ok := seen[f]; !ok {
				seen[f] = struct{}{}
				fields = append(fields, f)
			}
		}
	}
	return fields
}
