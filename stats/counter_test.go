package stats

import "testing"

func TestRpsCounter(t *testing.T) {
	c := NewRpsCounter(4)
	if p := c.Progress(); p != 0 {
		t.Errorf("unexpected progress %v", p)
	}
	if rps := c.Rps(); rps != 0 {
		t.Errorf("unexpected rps before first add %v", rps)
	}
	c.Add(1)
	c.Add(2)
	if v := c.Value(); v != 3 {
		t.Errorf("unexpected value %d", v)
	}
	if p := c.Progress(); p != 0.75 {
		t.Errorf("unexpected progress %v", p)
	}
	cnt := c.Count()
	if cnt.Current != 3 || cnt.Total != 4 {
		t.Errorf("unexpected count %+v", cnt)
	}
}

func TestRpsCounterWithoutTotal(t *testing.T) {
	c := NewRpsCounter(0)
	c.Add(10)
	if p := c.Progress(); p != -1 {
		t.Errorf("unexpected progress %v", p)
	}
}

func TestCountString(t *testing.T) {
	s := Count{Current: 5, Total: 10, Rps: 2}.String("sources")
	if s != "sources: 5/10 ( 50%)       2/s" {
		t.Errorf("unexpected %q", s)
	}
	s = Count{Current: 5, Rps: 2}.String("sources")
	if s != "sources: 5       2/s" {
		t.Errorf("unexpected %q", s)
	}
}
