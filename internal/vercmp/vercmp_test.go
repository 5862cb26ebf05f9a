package vercmp

import "testing"

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"9.0.2190", "9.1.0", -1},
		{"9.1.0", "9.0.2190", 1},
		{"1.2.3", "1.2.3", 0},
		{"1.2", "1.2.0", 0},
		{"2.39", "2.4", 1},
		{"1.2.3", "1.2.10", -1},
		{"abc", "1", -1},
	}
	for _, c := range cases {
		if got := Compare(c.a, c.b); got != c.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestGreater(t *testing.T) {
	if !Greater("9.1.0", "9.0.2190") {
		t.Error("expected 9.1.0 > 9.0.2190")
	}
	if Greater("9.0.2190", "9.1.0") {
		t.Error("expected 9.0.2190 not > 9.1.0")
	}
	if Greater("1.0.0", "1.0.0") {
		t.Error("expected equal versions not greater")
	}
}
