package geom

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

func TestAsEWKBHex(t *testing.T) {
	buf, err := AsEWKBHex(orb.Point{1, 2}, 4326)
	if err != nil {
		t.Fatal(err)
	}
	expected := "0101000020e6100000000000000000f03f0000000000000040"
	if strings.ToLower(string(buf)) != expected {
		t.Errorf("unexpected EWKB %s", buf)
	}

	if _, err := AsEWKBHex(nil, 4326); err != ErrNullGeometry {
		t.Errorf("unexpected error %v", err)
	}
}
