package conflate

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/geom"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/geom/geos"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/log"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/stats"
)

// Match pairs a source record with the authoritative record it
// enriches. Both are positions in the input collections.
type Match struct {
	Source int
	Target int
	// Score is the overlap ratio for linear features and the distance
	// for points.
	Score float64
}

type resolution struct {
	// skipped is set for source records without usable geometry
	skipped        bool
	candidates     int
	typeMismatches int
	unscorable     int
	matched        bool
	match          Match
}

// GatesEqual reports whether a and b have equal values for all gate
// fields. Null equals null.
func GatesEqual(fields []string, a, b *element.Record) bool {
	for _, f := range fields {
		if !element.ValuesEqual(a.Get(f), b.Get(f)) {
			return false
		}
	}
	return true
}

// resolver finds the best authoritative match for a source record. A
// resolver is bound to a single GEOS handle and is not safe for
// concurrent use.
type resolver struct {
	g             *geos.Geos
	cfg           *Config
	kind          Kind
	index         *targetIndex
	authoritative []*element.Record
}

func (r *resolver) resolve(pos int, src *element.Record) resolution {
	res := resolution{match: Match{Source: pos, Target: -1}}
	if !usableGeometry(r.kind, src) {
		res.skipped = true
		return res
	}
	g := r.g
	srcGeom, err := geom.Build(g, r.cfg.Projection, src.Geometry)
	if err != nil {
		log.Printf("[debug] source %s %d: %s", r.kind, src.ID, err)
		res.skipped = true
		return res
	}
	defer g.Destroy(srcGeom)

	if r.kind == Linear {
		r.resolveLinear(srcGeom, src, &res)
	} else {
		r.resolvePoint(srcGeom, src, &res)
	}
	return res
}

func (r *resolver) resolveLinear(srcGeom *geos.Geom, src *element.Record, res *resolution) {
	g := r.g
	buffered := g.Buffer(srcGeom, r.cfg.BufferRadius)
	if buffered == nil {
		res.skipped = true
		return
	}
	defer g.Destroy(buffered)
	prep := g.Prepare(buffered)
	if prep == nil {
		res.skipped = true
		return
	}
	defer g.PreparedDestroy(prep)

	ids := r.index.candidates(g, buffered, func(target *geos.Geom) bool {
		return g.PreparedIntersects(prep, target)
	})
	res.candidates = len(ids)

	srcLen, err := g.Length(srcGeom)
	if err != nil {
		srcLen = 0
	}

	found := false
	var best Match
	for _, id := range ids {
		if !GatesEqual(r.cfg.GateFields, src, r.authoritative[id]) {
			res.typeMismatches++
			continue
		}
		if srcLen <= 0 {
			res.unscorable++
			continue
		}
		overlap := g.Intersection(buffered, r.index.geoms[id])
		if overlap == nil {
			res.unscorable++
			continue
		}
		l, err := g.Length(overlap)
		g.Destroy(overlap)
		if err != nil {
			res.unscorable++
			continue
		}
		ratio := l / srcLen
		// strict comparison keeps the lowest authoritative position on ties
		if !found || ratio > best.Score {
			best = Match{Source: res.match.Source, Target: id, Score: ratio}
			found = true
		}
	}
	if found && best.Score >= r.cfg.OverlapThreshold {
		res.matched = true
		res.match = best
	}
}

func (r *resolver) resolvePoint(srcGeom *geos.Geom, src *element.Record, res *resolution) {
	g := r.g
	radius := r.cfg.ProximityRadius
	b := g.Bounds(srcGeom)
	if b == geos.NilBounds {
		res.skipped = true
		return
	}
	b.MinX -= radius
	b.MinY -= radius
	b.MaxX += radius
	b.MaxY += radius
	query := g.BoundsPolygon(b)
	if query == nil {
		res.skipped = true
		return
	}
	defer g.Destroy(query)

	ids := r.index.candidates(g, query, func(target *geos.Geom) bool {
		d, err := g.Distance(srcGeom, target)
		if err != nil {
			return false
		}
		return d <= radius
	})
	res.candidates = len(ids)

	found := false
	var best Match
	for _, id := range ids {
		if !GatesEqual(r.cfg.GateFields, src, r.authoritative[id]) {
			res.typeMismatches++
			continue
		}
		d, err := g.Distance(srcGeom, r.index.geoms[id])
		if err != nil {
			res.unscorable++
			continue
		}
		if !found || d < best.Score {
			best = Match{Source: res.match.Source, Target: id, Score: d}
			found = true
		}
	}
	if found && best.Score <= radius {
		res.matched = true
		res.match = best
	}
}

// resolveAll resolves all source records with cfg.Workers goroutines.
// Each worker uses its own GEOS handle and the shared read-only index.
// Results are stored by source position, the outcome does not depend
// on the number of workers.
func resolveAll(ctx context.Context, kind Kind, index *targetIndex, authoritative, source []*element.Record, cfg *Config) ([]resolution, error) {
	results := make([]resolution, len(source))
	if len(source) == 0 {
		return results, nil
	}

	counter := stats.NewRpsCounter(len(source))
	if cfg.Progress {
		reporter := stats.StartReporter("matched "+kind.String(), counter, time.Second)
		defer reporter.Stop()
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(source) {
		workers = len(source)
	}
	chunk := (len(source) + workers - 1) / workers

	eg, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(source); start += chunk {
		start := start
		end := start + chunk
		if end > len(source) {
			end = len(source)
		}
		eg.Go(func() error {
			g := geos.NewGeos()
			defer g.Finish()
			r := resolver{
				g:             g,
				cfg:           cfg,
				kind:          kind,
				index:         index,
				authoritative: authoritative,
			}
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				results[i] = r.resolve(i, source[i])
				counter.Add(1)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
