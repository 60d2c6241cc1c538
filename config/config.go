// Package config parses the command line options and the YAML config
// file of wwconflate.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/conflate"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/log"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/proj"
)

// Config is the config file. Options given on the command line win over
// the values of the config file.
type Config struct {
	Connection       string        `yaml:"connection"`
	Table            string        `yaml:"table"`
	Srid             int           `yaml:"srid"`
	Schemas          Schemas       `yaml:"schemas"`
	BufferRadius     float64       `yaml:"buffer_radius"`
	ProximityRadius  float64       `yaml:"proximity_radius"`
	OverlapThreshold float64       `yaml:"overlap_threshold"`
	UTMZone          int           `yaml:"utm_zone"`
	UTMSouth         bool          `yaml:"utm_south"`
	Planar           bool          `yaml:"planar"`
	NullGeometry     string        `yaml:"null_geometry"`
	Workers          int           `yaml:"workers"`
	Fields           Fields        `yaml:"fields"`
	Schema           *SchemaConfig `yaml:"schema"`
}

type Schemas struct {
	Import     string `yaml:"import"`
	Production string `yaml:"production"`
	Backup     string `yaml:"backup"`
}

type Fields struct {
	Gate       []string `yaml:"gate"`
	Enrichable []string `yaml:"enrichable"`
	Provenance []string `yaml:"provenance"`
}

type SchemaConfig struct {
	IDField    string                            `yaml:"id_field"`
	GUIDField  string                            `yaml:"guid_field"`
	Fields     []string                          `yaml:"fields"`
	NullFields []string                          `yaml:"null_fields"`
	Defaults   map[string]interface{}            `yaml:"defaults"`
	ValueMaps  map[string]map[string]interface{} `yaml:"value_maps"`
}

const (
	defaultSrid             = 4326
	defaultSchemaImport     = "import"
	defaultSchemaProduction = "public"
	defaultSchemaBackup     = "backup"
)

// LoadConfig reads a YAML config file.
func LoadConfig(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadConfig(f)
}

func ReadConfig(r io.Reader) (*Config, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	conf := &Config{}
	if err := yaml.UnmarshalStrict(b, conf); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	return conf, nil
}

type Base struct {
	ConfigFile  string
	Httpprofile string
	MemProfile  string
	Quiet       bool
	LogLevel    string
	Workers     int
	UTMZone     int
	UTMSouth    bool
	Planar      bool
}

func addBaseFlags(opts *Base, flags *flag.FlagSet) {
	flags.StringVar(&opts.ConfigFile, "config", "", "config (YAML)")
	flags.StringVar(&opts.Httpprofile, "httpprofile", "", "bind address for profile server")
	flags.StringVar(&opts.MemProfile, "memprofile", "", "write heap profiles to this directory")
	flags.BoolVar(&opts.Quiet, "quiet", false, "quiet log output")
	flags.StringVar(&opts.LogLevel, "loglevel", "", "minimal log level (debug, progress, step, info, warn)")
	flags.IntVar(&opts.Workers, "workers", 0, "number of matching workers (default GOMAXPROCS)")
	flags.IntVar(&opts.UTMZone, "utm-zone", conflate.DefaultUTMZone, "UTM zone for metric calculations")
	flags.BoolVar(&opts.UTMSouth, "utm-south", false, "use southern UTM zone")
	flags.BoolVar(&opts.Planar, "planar", false, "input coordinates are already metric")
}

// Projection returns the projection for metric calculations.
func (o *Base) Projection() proj.Projection {
	if o.Planar {
		return proj.Identity{}
	}
	return proj.UTM{Zone: o.UTMZone, South: o.UTMSouth}
}

// SetupLog applies the quiet and loglevel options.
func (o *Base) SetupLog() error {
	if o.Quiet {
		log.SetMinLevel(log.LWarn)
	}
	if o.LogLevel != "" {
		lvl, err := log.ParseLevel(o.LogLevel)
		if err != nil {
			return err
		}
		log.SetMinLevel(lvl)
	}
	return nil
}

func (o *Base) check() []error {
	errs := []error{}
	if !o.Planar && (o.UTMZone < 1 || o.UTMZone > 60) {
		errs = append(errs, errors.New("-utm-zone needs to be between 1 and 60"))
	}
	if o.Workers < 0 {
		errs = append(errs, errors.New("-workers needs to be >= 0"))
	}
	if o.LogLevel != "" {
		if _, err := log.ParseLevel(o.LogLevel); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

type Conflate struct {
	Base
	Kind             conflate.Kind
	Authoritative    string
	Source           string
	Output           string
	Connection       string
	Table            string
	Srid             int
	Schemas          Schemas
	DeployProduction bool
	BufferRadius     float64
	ProximityRadius  float64
	OverlapThreshold float64
	NullGeometry     string

	file *Config
}

func conflateFlags(opts *Conflate) *flag.FlagSet {
	flags := flag.NewFlagSet(opts.Kind.String(), flag.ContinueOnError)
	addBaseFlags(&opts.Base, flags)
	flags.StringVar(&opts.Authoritative, "authoritative", "", "authoritative GeoJSON file")
	flags.StringVar(&opts.Source, "source", "", "town GeoJSON file")
	flags.StringVar(&opts.Output, "output", "", "output GeoJSON file")
	flags.StringVar(&opts.Connection, "connection", "", "PostGIS connection URL, e.g. postgis://user@host/db")
	flags.StringVar(&opts.Table, "table", "", "PostGIS table name")
	flags.IntVar(&opts.Srid, "srid", defaultSrid, "srid of the input coordinates")
	flags.StringVar(&opts.Schemas.Import, "dbschema-import", defaultSchemaImport, "db schema for imports")
	flags.StringVar(&opts.Schemas.Production, "dbschema-production", defaultSchemaProduction, "db schema for production")
	flags.StringVar(&opts.Schemas.Backup, "dbschema-backup", defaultSchemaBackup, "db schema for backups")
	flags.BoolVar(&opts.DeployProduction, "deployproduction", false, "deploy imported table to production schema")
	flags.Float64Var(&opts.BufferRadius, "buffer", conflate.DefaultBufferRadius, "buffer radius for linear matching (m)")
	flags.Float64Var(&opts.ProximityRadius, "proximity", conflate.DefaultProximityRadius, "proximity radius for point matching (m)")
	flags.Float64Var(&opts.OverlapThreshold, "overlap", conflate.DefaultOverlapThreshold, "minimum overlap ratio for linear matches")
	flags.StringVar(&opts.NullGeometry, "null-geometry", string(conflate.CarryNullGeometry), "source records without geometry: carry or drop")
	return flags
}

// ParseConflate parses the options of the linear and points commands.
func ParseConflate(kind conflate.Kind, args []string) (*Conflate, []error) {
	opts := &Conflate{Kind: kind}
	flags := conflateFlags(opts)
	if err := flags.Parse(args); err != nil {
		return nil, []error{err}
	}
	if err := opts.updateFromConfig(setFlags(flags)); err != nil {
		return nil, []error{err}
	}
	if errs := opts.check(); len(errs) != 0 {
		return nil, errs
	}
	return opts, nil
}

func setFlags(flags *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func (o *Conflate) updateFromConfig(set map[string]bool) error {
	conf := &Config{}
	if o.ConfigFile != "" {
		var err error
		conf, err = LoadConfig(o.ConfigFile)
		if err != nil {
			return err
		}
	}
	o.file = conf

	overlayString := func(flag string, dst *string, v string) {
		if !set[flag] && v != "" {
			*dst = v
		}
	}
	overlayFloat := func(flag string, dst *float64, v float64) {
		if !set[flag] && v != 0 {
			*dst = v
		}
	}
	overlayInt := func(flag string, dst *int, v int) {
		if !set[flag] && v != 0 {
			*dst = v
		}
	}
	overlayString("connection", &o.Connection, conf.Connection)
	overlayString("table", &o.Table, conf.Table)
	overlayInt("srid", &o.Srid, conf.Srid)
	overlayString("dbschema-import", &o.Schemas.Import, conf.Schemas.Import)
	overlayString("dbschema-production", &o.Schemas.Production, conf.Schemas.Production)
	overlayString("dbschema-backup", &o.Schemas.Backup, conf.Schemas.Backup)
	overlayFloat("buffer", &o.BufferRadius, conf.BufferRadius)
	overlayFloat("proximity", &o.ProximityRadius, conf.ProximityRadius)
	overlayFloat("overlap", &o.OverlapThreshold, conf.OverlapThreshold)
	overlayInt("utm-zone", &o.UTMZone, conf.UTMZone)
	overlayInt("workers", &o.Workers, conf.Workers)
	overlayString("null-geometry", &o.NullGeometry, conf.NullGeometry)
	if !set["utm-south"] && conf.UTMSouth {
		o.UTMSouth = true
	}
	if !set["planar"] && conf.Planar {
		o.Planar = true
	}
	return nil
}

func (o *Conflate) check() []error {
	errs := o.Base.check()
	if o.Authoritative == "" {
		errs = append(errs, errors.New("missing -authoritative"))
	}
	if o.Source == "" {
		errs = append(errs, errors.New("missing -source"))
	}
	if o.Output == "" && o.Connection == "" {
		errs = append(errs, errors.New("missing -output or -connection"))
	}
	if o.Connection != "" && o.Table == "" {
		errs = append(errs, errors.New("missing -table for -connection"))
	}
	if o.DeployProduction && o.Connection == "" {
		errs = append(errs, errors.New("-deployproduction requires -connection"))
	}
	if o.Srid <= 0 {
		errs = append(errs, errors.New("invalid -srid"))
	}

	cfg := o.ConflateConfig()
	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// ConflateConfig returns the conflation config of the options.
func (o *Conflate) ConflateConfig() conflate.Config {
	cfg := conflate.DefaultConfig()
	cfg.BufferRadius = o.BufferRadius
	cfg.ProximityRadius = o.ProximityRadius
	cfg.OverlapThreshold = o.OverlapThreshold
	cfg.NullGeometry = conflate.NullGeometryPolicy(o.NullGeometry)
	cfg.Workers = o.Workers
	cfg.Projection = o.Projection()
	cfg.Progress = !o.Quiet

	if o.file == nil {
		return cfg
	}
	if f := o.file.Fields; f.Gate != nil {
		cfg.GateFields = f.Gate
	}
	if f := o.file.Fields; f.Enrichable != nil {
		cfg.EnrichableFields = f.Enrichable
	}
	if f := o.file.Fields; f.Provenance != nil {
		cfg.ProvenanceFields = f.Provenance
	}
	if s := o.file.Schema; s != nil {
		if s.IDField != "" {
			cfg.Schema.IDField = s.IDField
		}
		if s.GUIDField != "" {
			cfg.Schema.GUIDField = s.GUIDField
		}
		if s.Fields != nil {
			cfg.Schema.Fields = s.Fields
		}
		if s.NullFields != nil {
			cfg.Schema.NullFields = s.NullFields
		}
		if s.Defaults != nil {
			cfg.Schema.Defaults = s.Defaults
		}
		if s.ValueMaps != nil {
			cfg.Schema.ValueMaps = s.ValueMaps
		}
	}
	return cfg
}

type AssignTowns struct {
	Base
	Borders     string
	Input       string
	Output      string
	Unassigned  string
	OutDir      string
	BorderField string
	TownField   string
}

// ParseAssignTowns parses the options of the assign-towns command.
func ParseAssignTowns(args []string) (*AssignTowns, []error) {
	opts := &AssignTowns{}
	flags := flag.NewFlagSet("assign-towns", flag.ContinueOnError)
	addBaseFlags(&opts.Base, flags)
	flags.StringVar(&opts.Borders, "borders", "", "town border GeoJSON file")
	flags.StringVar(&opts.Input, "input", "", "GeoJSON file with unassigned features")
	flags.StringVar(&opts.Output, "output", "", "GeoJSON file for assigned features")
	flags.StringVar(&opts.Unassigned, "unassigned", "", "GeoJSON file for remaining unassigned features")
	flags.StringVar(&opts.OutDir, "out-dir", "", "directory with per-town GeoJSON files to append to")
	flags.StringVar(&opts.BorderField, "border-field", "TownName", "town name field of the borders")
	flags.StringVar(&opts.TownField, "town-field", "TownName", "town name field of the features")
	if err := flags.Parse(args); err != nil {
		return nil, []error{err}
	}
	if opts.ConfigFile != "" {
		conf, err := LoadConfig(opts.ConfigFile)
		if err != nil {
			return nil, []error{err}
		}
		set := setFlags(flags)
		if !set["utm-zone"] && conf.UTMZone != 0 {
			opts.UTMZone = conf.UTMZone
		}
		if !set["utm-south"] && conf.UTMSouth {
			opts.UTMSouth = true
		}
		if !set["planar"] && conf.Planar {
			opts.Planar = true
		}
	}

	errs := opts.Base.check()
	if opts.Borders == "" {
		errs = append(errs, errors.New("missing -borders"))
	}
	if opts.Input == "" {
		errs = append(errs, errors.New("missing -input"))
	}
	if opts.Output == "" && opts.OutDir == "" {
		errs = append(errs, errors.New("missing -output or -out-dir"))
	}
	if len(errs) != 0 {
		return nil, errs
	}
	return opts, nil
}

// ReportErrors prints all errors and exits.
func ReportErrors(errs []error) {
	fmt.Fprintln(os.Stderr, "errors in config/options:")
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "\t%s\n", err)
	}
	os.Exit(1)
}
