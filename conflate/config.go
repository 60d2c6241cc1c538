package conflate

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/proj"
)

// Kind is the feature kind of a conflation run.
type Kind int

const (
	Linear Kind = iota
	Point
)

func (k Kind) String() string {
	switch k {
	case Linear:
		return "linear"
	case Point:
		return "point"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "line", "lines":
		return Linear, nil
	case "point", "points":
		return Point, nil
	}
	return 0, errors.Errorf("unknown feature kind %q", s)
}

// NullGeometryPolicy decides what happens with source records without
// geometry.
type NullGeometryPolicy string

const (
	// CarryNullGeometry appends them as new records.
	CarryNullGeometry NullGeometryPolicy = "carry"
	// DropNullGeometry excludes them from the output.
	DropNullGeometry NullGeometryPolicy = "drop"
)

// Schema is the authoritative attribute schema for new records.
type Schema struct {
	// IDField receives sequential numeric identifiers.
	IDField string
	// GUIDField receives a random UUID, optional.
	GUIDField string
	// Fields is the output field order. Every output record carries
	// all of these fields.
	Fields []string
	// NullFields have no source equivalent and are always null for
	// new records.
	NullFields []string
	// Defaults are used when the source value is null.
	Defaults map[string]interface{}
	// ValueMaps translate coded source values, e.g. Status E to
	// Existing. Keys are compared trimmed and case insensitive.
	ValueMaps map[string]map[string]interface{}
}

type Config struct {
	// BufferRadius is the match radius for linear features.
	BufferRadius float64
	// ProximityRadius is the maximum distance of matching points.
	ProximityRadius float64
	// OverlapThreshold is the minimum fraction of the source line
	// length that needs to be covered by the authoritative line.
	OverlapThreshold float64
	// GateFields need to be equal for a match.
	GateFields []string
	// EnrichableFields are filled where the authoritative value is null.
	EnrichableFields []string
	// ProvenanceFields are always copied from non-null source values.
	ProvenanceFields []string
	Schema           Schema
	Projection       proj.Projection
	NullGeometry     NullGeometryPolicy
	// Workers for the matching phase, GOMAXPROCS if 0.
	Workers int
	// NewGUID returns identifiers for Schema.GUIDField.
	NewGUID func() string
	// Progress logs the matching progress every second.
	Progress bool
}

var (
	DefaultGateFields       = []string{"Type", "SystemType"}
	DefaultEnrichableFields = []string{
		"Notes", "Source", "SourceDate", "SourceNotes", "Creator",
		"CreateDate", "Status", "GEOIDTXT", "Owner",
	}
	DefaultProvenanceFields = []string{"TownName", "SourceFile"}
	DefaultFields           = []string{
		"OBJECTID", "GlobalID", "GEOIDTXT", "SystemType", "Type", "Status",
		"Owner", "PermitNo", "Audience", "Source", "SourceDate", "SourceNotes",
		"Notes", "Creator", "CreateDate", "Editor", "EditDate",
		"TownName", "SourceFile",
	}
	DefaultNullFields = []string{"Owner", "PermitNo", "SourceNotes", "Editor", "EditDate"}
)

const (
	DefaultBufferRadius     = 5.0
	DefaultProximityRadius  = 10.0
	DefaultOverlapThreshold = 0.80
	DefaultUTMZone          = 18
)

// DefaultConfig returns the configuration for the Vermont water
// infrastructure datasets, projected to UTM zone 18N.
func DefaultConfig() Config {
	return Config{
		BufferRadius:     DefaultBufferRadius,
		ProximityRadius:  DefaultProximityRadius,
		OverlapThreshold: DefaultOverlapThreshold,
		GateFields:       append([]string(nil), DefaultGateFields...),
		EnrichableFields: append([]string(nil), DefaultEnrichableFields...),
		ProvenanceFields: append([]string(nil), DefaultProvenanceFields...),
		Schema: Schema{
			IDField:    "OBJECTID",
			GUIDField:  "GlobalID",
			Fields:     append([]string(nil), DefaultFields...),
			NullFields: append([]string(nil), DefaultNullFields...),
			Defaults:   map[string]interface{}{"Audience": "Public"},
			ValueMaps: map[string]map[string]interface{}{
				"Status": {"E": "Existing"},
			},
		},
		Projection:   proj.UTM{Zone: DefaultUTMZone},
		NullGeometry: CarryNullGeometry,
		NewGUID:      uuid.NewString,
	}
}

// Validate checks the configuration and sets defaults for Workers and
// NewGUID.
func (c *Config) Validate() error {
	var errs []string
	if !(c.BufferRadius > 0) {
		errs = append(errs, "buffer radius must be > 0")
	}
	if !(c.ProximityRadius > 0) {
		errs = append(errs, "proximity radius must be > 0")
	}
	if !(c.OverlapThreshold > 0) {
		errs = append(errs, "overlap threshold must be > 0")
	}
	if len(c.GateFields) == 0 {
		errs = append(errs, "missing type gate fields")
	}
	if len(c.Schema.Fields) == 0 {
		errs = append(errs, "missing schema fields")
	}
	if c.Schema.IDField == "" {
		errs = append(errs, "missing schema id field")
	} else if !contains(c.Schema.Fields, c.Schema.IDField) {
		errs = append(errs, fmt.Sprintf("id field %s not in schema fields", c.Schema.IDField))
	}
	if c.Schema.GUIDField != "" && !contains(c.Schema.Fields, c.Schema.GUIDField) {
		errs = append(errs, fmt.Sprintf("guid field %s not in schema fields", c.Schema.GUIDField))
	}
	if c.Projection == nil {
		errs = append(errs, "missing projection")
	}
	switch c.NullGeometry {
	case CarryNullGeometry, DropNullGeometry:
	case "":
		c.NullGeometry = CarryNullGeometry
	default:
		errs = append(errs, fmt.Sprintf("unknown null geometry policy %q", c.NullGeometry))
	}
	if c.Workers < 0 {
		errs = append(errs, "workers must be >= 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.NewGUID == nil {
		c.NewGUID = uuid.NewString
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}
