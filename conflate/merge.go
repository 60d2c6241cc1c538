package conflate

import (
	"sort"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
)

type FieldUpdate struct {
	Field string
	Value interface{}
}

// Updates are the pending field updates by authoritative position.
type Updates map[int][]FieldUpdate

// Targets returns the updated authoritative positions in ascending order.
func (u Updates) Targets() []int {
	targets := make([]int, 0, len(u))
	for t := range u {
		targets = append(targets, t)
	}
	sort.Ints(targets)
	return targets
}

func (u Updates) has(target int, field string) bool {
	for _, fu := range u[target] {
		if fu.Field == field {
			return true
		}
	}
	return false
}

// Merge collects the updates of all matches. Enrichable fields are
// only filled when the original authoritative value is null, provenance
// fields are copied whenever the source value is not null. When more
// than one source record updates the same field of an authoritative
// record, the first source in input order wins. The inputs are not
// modified.
//
// Merge returns the updates and the number of matches that contributed
// at least one update.
func Merge(matches []Match, authoritative, source []*element.Record, cfg Config) (Updates, int) {
	sorted := make([]Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Source < sorted[j].Source })

	updates := make(Updates)
	contributing := 0
	for _, m := range sorted {
		src := source[m.Source]
		dst := authoritative[m.Target]

		var pending []FieldUpdate
		add := func(field string, value interface{}) {
			for _, p := range pending {
				if p.Field == field {
					return
				}
			}
			pending = append(pending, FieldUpdate{Field: field, Value: value})
		}
		for _, f := range cfg.EnrichableFields {
			if v := src.Get(f); !element.IsNull(v) && element.IsNull(dst.Get(f)) {
				add(f, v)
			}
		}
		for _, f := range cfg.ProvenanceFields {
			if v := src.Get(f); !element.IsNull(v) {
				add(f, v)
			}
		}
		if len(pending) == 0 {
			continue
		}
		contributing++
		for _, p := range pending {
			if !updates.has(m.Target, p.Field) {
				updates[m.Target] = append(updates[m.Target], p)
			}
		}
	}
	return updates, contributing
}

// Apply writes the updates to records, which are indexed like the
// authoritative collection the updates were merged for. Returns the
// number of filled values per field.
func (u Updates) Apply(records []*element.Record) map[string]int {
	fills := make(map[string]int)
	for _, t := range u.Targets() {
		rec := records[t]
		if rec.Attributes == nil {
			rec.Attributes = element.NewAttributes()
		}
		for _, fu := range u[t] {
			rec.Attributes.Set(fu.Field, fu.Value)
			fills[fu.Field]++
		}
	}
	return fills
}
