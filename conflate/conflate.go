// Package conflate merges a town dataset into an authoritative dataset
// of the same feature kind.
//
// Each source record is matched against the authoritative records near
// it. Matched source records enrich null attributes of their
// authoritative match, unmatched source records are converted into the
// authoritative schema and appended.
package conflate

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/geom/geos"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/log"
)

type Result struct {
	// Records are the enriched authoritative records followed by the
	// new records.
	Records []*element.Record
	New     []*element.Record
	Matches []Match
	Updates Updates
	Report  *Report
}

// Conflate matches source against authoritative. The input records
// are not modified.
func Conflate(ctx context.Context, kind Kind, authoritative, source []*element.Record, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid conflation config")
	}
	defer log.Step(fmt.Sprintf("Conflating %d %s source records with %d authoritative records",
		len(source), kind, len(authoritative)))()

	report := newReport(kind, len(authoritative), len(source))

	g := geos.NewGeos()
	defer g.Finish()

	step := log.Step(fmt.Sprintf("Indexing authoritative %s records", kind))
	index := newTargetIndex(g, kind, cfg.Projection, authoritative)
	defer index.destroy(g)
	report.AuthoritativeSkipped = index.skipped
	step()

	step = log.Step(fmt.Sprintf("Matching %s records", kind))
	resolutions, err := resolveAll(ctx, kind, index, authoritative, source, &cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "matching %s records", kind)
	}
	step()

	var matches []Match
	var unmatched []int
	for i, res := range resolutions {
		report.CandidatePairs += res.candidates
		report.TypeMismatches += res.typeMismatches
		report.Unscorable += res.unscorable
		if res.skipped {
			report.SourceSkipped++
		}
		if res.matched {
			matches = append(matches, res.match)
			report.MatchedSources.Add(uint32(i))
			continue
		}
		if source[i].Geometry == nil && cfg.NullGeometry == DropNullGeometry {
			report.Dropped++
			continue
		}
		unmatched = append(unmatched, i)
	}
	report.ScoredPairs = report.CandidatePairs - report.TypeMismatches
	report.Matched = len(matches)
	if report.Dropped > 0 {
		log.Printf("[warn] dropped %d %s source records without geometry", report.Dropped, kind)
	}

	updates, enriching := Merge(matches, authoritative, source, cfg)
	report.EnrichingMatches = enriching

	records := make([]*element.Record, 0, len(authoritative)+len(unmatched))
	for _, rec := range authoritative {
		c := rec.Clone()
		conform(c, cfg.Schema.Fields)
		records = append(records, c)
	}
	report.Fills = updates.Apply(records)
	for _, t := range updates.Targets() {
		report.EnrichedTargetSet.Add(uint32(t))
	}
	report.EnrichedTargets = int(report.EnrichedTargetSet.GetCardinality())

	projector := NewProjector(cfg.Schema, authoritative, cfg.NewGUID)
	newRecords := make([]*element.Record, 0, len(unmatched))
	for _, i := range unmatched {
		rec := projector.Project(len(records), source[i])
		records = append(records, rec)
		newRecords = append(newRecords, rec)
	}
	report.New = len(newRecords)
	report.Output = len(records)

	return &Result{
		Records: records,
		New:     newRecords,
		Matches: matches,
		Updates: updates,
		Report:  report,
	}, nil
}
