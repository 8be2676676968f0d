package optim

import (
	"context"
	"errors"
	"math"
	"testing"
)

func bowl(target map[string]float64) Objective {
	return func(_ context.Context, p map[string]float64) (float64, error) {
		sum := 0.0
		for k, v := range target {
			d := p[k] - v
			sum += d * d
		}
		return sum, nil
	}
}

func TestGridSearch(t *testing.T) {
	g := NewGridSearch([]string{"a", "b"}, [][]float64{{0, 1, 2}, {-1, 0, 1}})
	best, val, err := g.Search(context.Background(), bowl(map[string]float64{"a": 1, "b": 1}))
	if err != nil {
		t.Fatal(err)
	}
	if best["a"] != 1 || best["b"] != 1 || val != 0 {
		t.Errorf("expected a=1 b=1 with 0, got %v with %g", best, val)
	}
}

func TestGridSearchSkipsFailures(t *testing.T) {
	g := NewGridSearch([]string{"a"}, [][]float64{{0, 1, 2}})
	obj := func(_ context.Context, p map[string]float64) (float64, error) {
		if p["a"] == 2 {
			return 0, errors.New("diverged")
		}
		return -p["a"], nil
	}
	best, val, err := g.Search(context.Background(), obj)
	if err != nil {
		t.Fatal(err)
	}
	if best["a"] != 1 || val != -1 {
		t.Errorf("expected a=1, got %v (%g)", best, val)
	}
}

func TestGridSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGridSearchFromSpace(Space{{Name: "a", Min: 0, Max: 1}}, 5)
	if _, _, err := g.Search(ctx, bowl(nil)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGridFromSpace(t *testing.T) {
	g := NewGridSearchFromSpace(Space{{Name: "phase", Min: 0, Max: 0.5}}, 3)
	want := []float64{0, 0.25, 0.5}
	for i, v := range g.ranges[0] {
		if math.Abs(v-want[i]) > 1e-12 {
			t.Errorf("point %d: expected %g, got %g", i, want[i], v)
		}
	}
}

func TestSpaceRoundTrip(t *testing.T) {
	s := Space{{Name: "w", Min: -2, Max: 2, Default: 1}, {Name: "p", Min: 0, Max: 1, Default: 0.25}}
	norm := s.Normalize(s.Defaults())
	if norm[0] != 0.75 || norm[1] != 0.25 {
		t.Errorf("unexpected normalized defaults %v", norm)
	}
	raw := s.Denormalize(norm)
	if raw[0] != 1 || raw[1] != 0.25 {
		t.Errorf("unexpected denormalized %v", raw)
	}
	if c := s.Clamp([]float64{5, -1}); c[0] != 2 || c[1] != 0 {
		t.Errorf("unexpected clamp %v", c)
	}
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    ParamSpec
		wantErr bool
	}{
		{"j1.phase=0:1", ParamSpec{Name: "j1.phase", Min: 0, Max: 1, Default: 0.5}, false},
		{"theta->push=-5:5:3", ParamSpec{Name: "theta->push", Min: -5, Max: 5, Default: 3}, false},
		{"x=1:0", ParamSpec{}, true},
		{"x=0:1:2", ParamSpec{}, true},
		{"x", ParamSpec{}, true},
		{"x=a:b", ParamSpec{}, true},
	}
	for _, tt := range tests {
		got, err := ParseSpec(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %+v, got %+v", tt.in, tt.want, got)
		}
	}
}

func TestCMAESFindsMinimum(t *testing.T) {
	space := Space{
		{Name: "a", Min: -1, Max: 1, Default: -0.5},
		{Name: "b", Min: -1, Max: 1, Default: 0.8},
	}
	for seed := uint64(1); seed <= 10; seed++ {
		evals := 0
		c := &CMAES{Space: space, MaxEvals: 2000, Seed: seed, OnEval: func(int, []float64, float64) { evals++ }}

		res, err := c.Minimize(context.Background(), bowl(map[string]float64{"a": 0.25, "b": -0.4}))
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(res.Best[0]-0.25) > 0.05 || math.Abs(res.Best[1]+0.4) > 0.05 {
			t.Errorf("seed %d: expected near (0.25, -0.4), got %v (value %g, %s)", seed, res.Best, res.Value, res.Status)
		}
		if res.Evals != evals || evals == 0 || evals > 2000 {
			t.Errorf("seed %d: evaluation count mismatch: result %d, hook %d", seed, res.Evals, evals)
		}
	}
}

func TestCMAESMinimumOnEdge(t *testing.T) {
	space := Space{
		{Name: "a", Min: 0, Max: 1, Default: 0.9},
		{Name: "b", Min: 0, Max: 1, Default: 0.9},
	}
	for seed := uint64(1); seed <= 10; seed++ {
		c := &CMAES{Space: space, MaxEvals: 2000, Seed: seed, InitStepSize: 1}
		res, err := c.Minimize(context.Background(), bowl(map[string]float64{"a": 0.02, "b": 0.5}))
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(res.Best[0]-0.02) > 0.05 || math.Abs(res.Best[1]-0.5) > 0.05 {
			t.Errorf("seed %d: expected near (0.02, 0.5), got %v (%s)", seed, res.Best, res.Status)
		}
	}
}

func TestCMAESSeeded(t *testing.T) {
	space := Space{
		{Name: "a", Min: -1, Max: 1, Default: 0},
		{Name: "b", Min: -1, Max: 1, Default: 0},
	}
	run := func() *Result {
		c := &CMAES{Space: space, MaxEvals: 200, Seed: 7}
		res, err := c.Minimize(context.Background(), bowl(map[string]float64{"a": 0.6, "b": 0.3}))
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	a, b := run(), run()
	if a.Evals != b.Evals || a.Value != b.Value || a.Best[0] != b.Best[0] || a.Best[1] != b.Best[1] {
		t.Errorf("same seed gave different runs: %+v vs %+v", a, b)
	}
}

func TestCMAESCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &CMAES{
		Space:    Space{{Name: "a", Min: 0, Max: 1, Default: 0.5}},
		MaxEvals: 10000,
		OnEval: func(n int, _ []float64, _ float64) {
			if n == 20 {
				cancel()
			}
		},
	}
	res, err := c.Minimize(ctx, bowl(map[string]float64{"a": 0.1}))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res == nil || res.Evals >= 10000 {
		t.Errorf("run was not cut short: %+v", res)
	}
}
