package import_

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/assign"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/config"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/geom/geojson"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/log"
)

// AssignTowns assigns town names to the input features. Assigned
// features are written to the output file and/or appended to the
// per-town files in the output directory.
func AssignTowns(opts *config.AssignTowns) (*assign.Result, error) {
	borders, err := readCollection("borders", opts.Borders)
	if err != nil {
		return nil, err
	}
	input, err := readCollection("unassigned", opts.Input)
	if err != nil {
		return nil, err
	}

	res, err := assign.Assign(borders.Records, input.Records, assign.Config{
		BorderField: opts.BorderField,
		TownField:   opts.TownField,
		Projection:  opts.Projection(),
	})
	if err != nil {
		return nil, err
	}

	if opts.Output != "" {
		if err := geojson.WriteFile(opts.Output, &geojson.Collection{Members: input.Members, Records: res.Assigned}); err != nil {
			return nil, errors.Wrapf(err, "writing %s", opts.Output)
		}
	}
	if opts.Unassigned != "" {
		if err := geojson.WriteFile(opts.Unassigned, &geojson.Collection{Members: input.Members, Records: res.Unassigned}); err != nil {
			return nil, errors.Wrapf(err, "writing %s", opts.Unassigned)
		}
	}
	if opts.OutDir != "" {
		if err := appendTowns(opts.OutDir, input.Members, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// appendTowns appends the assigned features to DIR/<town>.geojson.
// Missing files are created with the members of the input collection.
func appendTowns(dir string, members []geojson.Member, res *assign.Result) error {
	defer log.Step(fmt.Sprintf("Appending features to town files in %s", dir))()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, town := range res.Towns() {
		path := filepath.Join(dir, assign.SafeFilename(town)+".geojson")
		c := &geojson.Collection{Members: members}
		if _, err := os.Stat(path); err == nil {
			c, err = geojson.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "reading %s", path)
			}
		}
		c.Records = append(c.Records, res.ByTown[town]...)
		if err := geojson.WriteFile(path, c); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
		log.Printf("[info] appended %d features to %s", len(res.ByTown[town]), path)
	}
	return nil
}
