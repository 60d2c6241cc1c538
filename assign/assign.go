// Package assign sets the town name of features by intersecting them
// with town border polygons.
package assign

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/geom"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/geom/geos"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/log"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/proj"
)

type Config struct {
	// BorderField is the town name field of the border records.
	BorderField string
	// TownField is set on assigned features.
	TownField  string
	Projection proj.Projection
}

type Result struct {
	// Assigned features are copies of the input features with TownField set.
	Assigned   []*element.Record
	Unassigned []*element.Record
	// ByTown groups the assigned features.
	ByTown map[string][]*element.Record
}

// Towns returns the names of all towns with assigned features, sorted.
func (r *Result) Towns() []string {
	towns := make([]string, 0, len(r.ByTown))
	for t := range r.ByTown {
		towns = append(towns, t)
	}
	sort.Strings(towns)
	return towns
}

type border struct {
	name string
	geom *geos.Geom
}

// Assign assigns each feature to the border it intersects. Features
// that intersect more than one border are assigned to the border with
// the longest intersection, the first border wins on ties. Features
// without geometry or without intersecting border stay unassigned.
func Assign(borders, features []*element.Record, cfg Config) (*Result, error) {
	if cfg.BorderField == "" || cfg.TownField == "" {
		return nil, errors.New("missing border or town field")
	}
	if cfg.Projection == nil {
		return nil, errors.New("missing projection")
	}
	defer log.Step("Assigning towns")()

	g := geos.NewGeos()
	defer g.Finish()

	index := g.CreateIndex()
	defer g.IndexDestroy(index)

	var built []border
	defer func() {
		for _, b := range built {
			g.Destroy(b.geom)
		}
	}()
	for _, rec := range borders {
		name, ok := rec.Get(cfg.BorderField).(string)
		name = strings.TrimSpace(name)
		if !ok || name == "" || rec.Geometry == nil {
			continue
		}
		bg, err := geom.Build(g, cfg.Projection, rec.Geometry)
		if err != nil {
			log.Printf("[warn] skipping border %s: %s", name, err)
			continue
		}
		g.IndexAdd(index, bg, len(built))
		built = append(built, border{name: name, geom: bg})
	}
	if len(built) == 0 {
		return nil, errors.New("no usable town borders")
	}

	res := &Result{ByTown: make(map[string][]*element.Record)}
	for _, feature := range features {
		town, ok := assign(g, index, built, cfg.Projection, feature)
		if !ok {
			res.Unassigned = append(res.Unassigned, feature)
			continue
		}
		rec := feature.Clone()
		rec.Attributes.Set(cfg.TownField, town)
		res.Assigned = append(res.Assigned, rec)
		res.ByTown[town] = append(res.ByTown[town], rec)
	}
	log.Printf("[info] assigned %d features to %d towns, %d unassigned",
		len(res.Assigned), len(res.ByTown), len(res.Unassigned))
	return res, nil
}

func assign(g *geos.Geos, index *geos.Index, borders []border, p proj.Projection, feature *element.Record) (string, bool) {
	if feature.Geometry == nil {
		return "", false
	}
	fg, err := geom.Build(g, p, feature.Geometry)
	if err != nil {
		log.Printf("[debug] feature %d: %s", feature.ID, err)
		return "", false
	}
	defer g.Destroy(fg)

	var candidates []int
	for _, hit := range g.IndexQuery(index, fg) {
		if g.Intersects(fg, hit.Geom) {
			candidates = append(candidates, hit.ID)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Ints(candidates)
	if len(candidates) == 1 {
		return borders[candidates[0]].name, true
	}

	best := -1
	bestLength := -1.0
	for _, c := range candidates {
		length := 0.0
		if inter := g.Intersection(fg, borders[c].geom); inter != nil {
			length, _ = g.Length(inter)
			g.Destroy(inter)
		}
		if length > bestLength {
			best = c
			bestLength = length
		}
	}
	return borders[best].name, true
}

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._ -]+`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// SafeFilename returns the town name as file name, e.g. St._Johnsbury.
func SafeFilename(name string) string {
	cleaned := strings.TrimSpace(unsafeChars.ReplaceAllString(name, ""))
	cleaned = whitespace.ReplaceAllString(cleaned, "_")
	if cleaned == "" {
		return "_EMPTY"
	}
	return cleaned
}
