package database

import (
	"testing"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/element"
)

func TestConnectionType(t *testing.T) {
	for _, tc := range []struct {
		params   string
		expected string
	}{
		{"postgis://user@localhost/ww", "postgis"},
		{"postgres://localhost", "postgres"},
		{"null:", "null"},
		{"", ""},
	} {
		if got := ConnectionType(tc.params); got != tc.expected {
			t.Errorf("%q: expected %q, got %q", tc.params, tc.expected, got)
		}
	}
}

func TestOpenNull(t *testing.T) {
	db, err := Open(Config{ConnectionParams: "null:"})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Import("lines", []string{"a"}, []*element.Record{element.NewRecord(0, nil, nil)}); err != nil {
		t.Fatal(err)
	}
	if n := db.(*NullDb).Imported["lines"]; n != 1 {
		t.Errorf("unexpected import count %d", n)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOpenUnknown(t *testing.T) {
	if _, err := Open(Config{ConnectionParams: "mysql://localhost"}); err == nil {
		t.Fatal("expected error")
	}
}
