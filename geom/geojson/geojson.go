// Package geojson reads and writes GeoJSON FeatureCollections as
// element.Records. Property order is kept, files ending with .gz are
// compressed.
package geojson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/paulmach/orb"
	orbjson "github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
)

// Member is a top level member of a FeatureCollection, e.g. crs or
// name.
type Member struct {
	Key   string
	Value json.RawMessage
}

type Collection struct {
	// Members contains all top level members except type and
	// features, in input order.
	Members []Member
	Records []*element.Record
}

type feature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

// Read decodes a FeatureCollection. Features are decoded one at a
// time, record IDs are the positions in the features array.
func Read(r io.Reader) (*Collection, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	c := &Collection{}
	seenType := false
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "reading member name")
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.Errorf("unexpected token %v", tok)
		}
		switch key {
		case "type":
			var typ string
			if err := dec.Decode(&typ); err != nil {
				return nil, errors.Wrap(err, "reading type")
			}
			if typ != "FeatureCollection" {
				return nil, errors.Errorf("expected FeatureCollection, got %q", typ)
			}
			seenType = true
		case "features":
			if err := readFeatures(dec, c); err != nil {
				return nil, err
			}
		default:
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, errors.Wrapf(err, "reading member %q", key)
			}
			c.Members = append(c.Members, Member{Key: key, Value: raw})
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if !seenType {
		return nil, errors.New("missing type, expected FeatureCollection")
	}
	return c, nil
}

func expectDelim(dec *json.Decoder, delim json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrapf(err, "expected %v", delim)
	}
	if d, ok := tok.(json.Delim); !ok || d != delim {
		return errors.Errorf("expected %v, got %v", delim, tok)
	}
	return nil
}

func readFeatures(dec *json.Decoder, c *Collection) error {
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "reading features")
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return errors.Errorf("features not a list: %v", tok)
	}
	for dec.More() {
		f := feature{}
		if err := dec.Decode(&f); err != nil {
			return errors.Wrapf(err, "decoding feature %d", len(c.Records))
		}
		rec, err := newRecord(len(c.Records), &f)
		if err != nil {
			return errors.Wrapf(err, "feature %d", len(c.Records))
		}
		c.Records = append(c.Records, rec)
	}
	return expectDelim(dec, ']')
}

func isNullJSON(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func newRecord(id int, f *feature) (*element.Record, error) {
	if f.Type != "Feature" {
		return nil, errors.Errorf("expected Feature, got %q", f.Type)
	}
	var geom orb.Geometry
	if !isNullJSON(f.Geometry) {
		g := &orbjson.Geometry{}
		if err := json.Unmarshal(f.Geometry, g); err != nil {
			return nil, errors.Wrap(err, "decoding geometry")
		}
		geom = g.Geometry()
	}
	attrs, err := decodeProperties(f.Properties)
	if err != nil {
		return nil, err
	}
	return element.NewRecord(id, geom, attrs), nil
}

func decodeProperties(raw json.RawMessage) (*element.Attributes, error) {
	attrs := element.NewAttributes()
	if isNullJSON(raw) {
		return attrs, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := expectDelim(dec, '{'); err != nil {
		return nil, errors.Wrap(err, "properties")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "reading property name")
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.Errorf("unexpected property token %v", tok)
		}
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return nil, errors.Wrapf(err, "reading property %q", key)
		}
		attrs.Set(key, scalar(v))
	}
	return attrs, nil
}

// scalar converts json.Numbers to int64 where possible, float64
// otherwise.
func scalar(v interface{}) interface{} {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// Write encodes the collection as compact GeoJSON.
func Write(w io.Writer, c *Collection) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	bw.WriteString(`{"type":"FeatureCollection"`)
	for _, m := range c.Members {
		if err := writeKey(bw, m.Key); err != nil {
			return err
		}
		bw.Write(m.Value)
	}
	bw.WriteString(`,"features":[`)
	for i, rec := range c.Records {
		if i > 0 {
			bw.WriteByte(',')
		}
		if err := writeFeature(bw, rec); err != nil {
			return errors.Wrapf(err, "encoding feature %d", i)
		}
	}
	bw.WriteString("]}\n")
	return bw.Flush()
}

func writeKey(bw *bufio.Writer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	bw.WriteByte(',')
	bw.Write(k)
	bw.WriteByte(':')
	return nil
}

func writeFeature(bw *bufio.Writer, rec *element.Record) error {
	bw.WriteString(`{"type":"Feature","properties":{`)
	if rec.Attributes != nil {
		for i, key := range rec.Attributes.Keys() {
			k, err := json.Marshal(key)
			if err != nil {
				return err
			}
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.Write(k)
			bw.WriteByte(':')
			v, _ := rec.Attributes.Get(key)
			val, err := marshalValue(v)
			if err != nil {
				return errors.Wrapf(err, "property %q", key)
			}
			bw.Write(val)
		}
	}
	bw.WriteString(`},"geometry":`)
	if rec.Geometry == nil {
		bw.WriteString("null")
	} else {
		geom, err := json.Marshal(orbjson.NewGeometry(rec.Geometry))
		if err != nil {
			return err
		}
		bw.Write(geom)
	}
	bw.WriteByte('}')
	return nil
}

func marshalValue(v interface{}) ([]byte, error) {
	switch f := v.(type) {
	case float64:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return []byte("null"), nil
		}
	case float32:
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return []byte("null"), nil
		}
	}
	return json.Marshal(v)
}

type gzipReadCloser struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipReadCloser) Close() error {
	err := g.Reader.Close()
	if ferr := g.f.Close(); err == nil {
		err = ferr
	}
	return err
}

// Open opens a file for reading, decompressing .gz files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	r, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "reading gzip header of %s", path)
	}
	return &gzipReadCloser{Reader: r, f: f}, nil
}

type gzipWriteCloser struct {
	*gzip.Writer
	f *os.File
}

func (g *gzipWriteCloser) Close() error {
	err := g.Writer.Close()
	if ferr := g.f.Close(); err == nil {
		err = ferr
	}
	return err
}

// Create creates or truncates a file for writing, compressing .gz
// files.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	return &gzipWriteCloser{Writer: gzip.NewWriter(f), f: f}, nil
}

func ReadFile(path string) (*Collection, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	c, err := Read(r)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return c, nil
}

// WriteFile writes the collection to a temporary file in the same
// directory and renames it to path, so that path is replaced as a
// whole.
func WriteFile(path string, c *Collection) error {
	tmp := path + ".tmp"
	if strings.HasSuffix(path, ".gz") {
		tmp = strings.TrimSuffix(path, ".gz") + ".tmp.gz"
	}
	w, err := Create(tmp)
	if err != nil {
		return err
	}
	if err := Write(w, c); err != nil {
		w.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := w.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "closing %s", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, path), "replacing %s", path)
}
