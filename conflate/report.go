package conflate

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/log"
)

// Report summarizes a conflation run.
type Report struct {
	Kind          Kind
	Authoritative int
	Source        int
	// AuthoritativeSkipped records have no usable geometry and were
	// not indexed, they are still part of the output.
	AuthoritativeSkipped int
	// SourceSkipped records have no usable geometry and are never
	// matched.
	SourceSkipped int
	// CandidatePairs before the type gate.
	CandidatePairs int
	TypeMismatches int
	// ScoredPairs passed the type gate.
	ScoredPairs int
	Unscorable  int
	Matched     int
	New         int
	// Dropped source records without geometry.
	Dropped int
	// EnrichingMatches contributed at least one field update.
	EnrichingMatches int
	EnrichedTargets  int
	Fills            map[string]int
	Output           int

	// MatchedSources contains the positions of all matched source records.
	MatchedSources *roaring.Bitmap
	// EnrichedTargetSet contains the positions of all updated authoritative
	// records.
	EnrichedTargetSet *roaring.Bitmap
}

func newReport(kind Kind, authoritative, source int) *Report {
	return &Report{
		Kind:              kind,
		Authoritative:     authoritative,
		Source:            source,
		Fills:             make(map[string]int),
		MatchedSources:    roaring.New(),
		EnrichedTargetSet: roaring.New(),
	}
}

// Log writes the report.
func (r *Report) Log() {
	log.Printf("[info] %s: %d authoritative records (%d without usable geometry)",
		r.Kind, r.Authoritative, r.AuthoritativeSkipped)
	log.Printf("[info] %s: %d source records (%d without usable geometry)",
		r.Kind, r.Source, r.SourceSkipped)
	log.Printf("[info] %s: %d candidate pairs, %d after type filter (%d type mismatches, %d unscorable)",
		r.Kind, r.CandidatePairs, r.ScoredPairs, r.TypeMismatches, r.Unscorable)
	log.Printf("[info] %s: %d matched, %d new, %d dropped",
		r.Kind, r.Matched, r.New, r.Dropped)
	log.Printf("[info] %s: %d matches enriched %d authoritative records",
		r.Kind, r.EnrichingMatches, r.EnrichedTargets)

	fields := make([]string, 0, len(r.Fills))
	for f := range r.Fills {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		log.Printf("[info] %s: filled %-12s %d", r.Kind, f, r.Fills[f])
	}
	log.Printf("[info] %s: %d output records", r.Kind, r.Output)
}
