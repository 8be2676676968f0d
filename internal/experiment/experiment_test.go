package experiment

import (
	"context"
	"testing"

	"github.com/san-kum/neurosim/internal/brain"
	"github.com/san-kum/neurosim/internal/metrics"
	"github.com/san-kum/neurosim/internal/schedule"
	"github.com/san-kum/neurosim/internal/storage"
)

func preset(t *testing.T, name string) *brain.Description {
	t.Helper()
	d, err := brain.Preset(name)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	want := []string{"cartpole", "crawler", "pendulum"}
	got := reg.Bodies()
	if len(got) != len(want) {
		t.Fatalf("bodies = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bodies = %v, want %v", got, want)
		}
	}
	for _, name := range want {
		b, _ := reg.Body(name)
		sys := b.New()
		if len(b.Initial()) != sys.StateDim() {
			t.Errorf("%s: initial state has %d values, want %d", name, len(b.Initial()), sys.StateDim())
		}
	}
	if _, err := reg.Body("hexapod"); err == nil {
		t.Error("expected unknown body error")
	}
}

func TestCrawlerCPGMovesForward(t *testing.T) {
	exp, err := New(NewRegistry(), preset(t, "crawler-cpg"), Config{Dt: 0.01, Duration: 10})
	if err != nil {
		t.Fatal(err)
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatal(result.Errors)
	}
	if d := result.Metrics["displacement"]; d <= 0.1 {
		t.Errorf("displacement = %.4f, want forward travel", d)
	}
	if r := result.Metrics["output_range"]; r < 0.9 {
		t.Errorf("output range = %.4f, want a full oscillation", r)
	}
}

func TestBodyFromDescription(t *testing.T) {
	exp, err := New(NewRegistry(), preset(t, "sigmoid-cartpole"), Config{Dt: 0.01, Duration: 1})
	if err != nil {
		t.Fatal(err)
	}
	if exp.Config().Body != "cartpole" || exp.Config().Integrator != "rk4" {
		t.Errorf("config = %+v", exp.Config())
	}
	if _, err := New(NewRegistry(), preset(t, "sigmoid-cartpole"), Config{Body: "pendulum", Dt: 0.01, Duration: 1}); err == nil {
		t.Error("expected a wiring error attaching a cartpole brain to a pendulum")
	}
}

func TestBodyParams(t *testing.T) {
	cfg := Config{Dt: 0.01, Duration: 1, BodyParams: map[string]float64{"thrust": 0}}
	exp, err := New(NewRegistry(), preset(t, "crawler-cpg"), cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if d := result.Metrics["displacement"]; d != 0 {
		t.Errorf("displacement without thrust = %v", d)
	}

	cfg.BodyParams = map[string]float64{"wingspan": 1}
	if _, err := New(NewRegistry(), preset(t, "crawler-cpg"), cfg); err == nil {
		t.Error("expected unknown body parameter error")
	}
}

const growScript = `
name: grow
events:
  - at: 1.0
    mutation: {op: add_neuron, id: h1, kind: sigmoid, params: [0, 1], out: {j1: 0.25}}
  - at: 2.0
    mutation: {op: set_weight, source: h1, target: j0, weight: 0.5}
  - at: 2.0
    mutation: {op: remove_neuron, id: h1}
  - at: 3.0
    mutation: {op: remove_neuron, id: ghost}
`

func TestScriptedMutations(t *testing.T) {
	script, err := schedule.ParseScript([]byte(growScript))
	if err != nil {
		t.Fatal(err)
	}
	exp, err := New(NewRegistry(), preset(t, "crawler-cpg"), Config{Dt: 0.01, Duration: 4}, WithScript(script))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := exp.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	reports := exp.Mutations()
	if len(reports) != 4 {
		t.Fatalf("controller saw %d mutations, want 4", len(reports))
	}
	for _, r := range reports[:3] {
		if r.Err != nil {
			t.Errorf("%s %s rejected: %v", r.Mutation.Op, r.Mutation.Subject(), r.Err)
		}
	}
	if reports[3].Err == nil {
		t.Error("removing an unknown neuron should be rejected")
	}
	// delivered after the tick at 1.0, applied on the next one
	if reports[0].Time <= 1.0 || reports[0].Time > 1.0+0.011 {
		t.Errorf("first mutation applied at t=%v", reports[0].Time)
	}

	snap := exp.Controller().Snapshot()
	if len(snap.Neurons) != 3 || snap.Applied != 3 || snap.Rejected != 1 {
		t.Errorf("snapshot: %d neurons, %d applied, %d rejected", len(snap.Neurons), snap.Applied, snap.Rejected)
	}

	j := storage.NewMemoryJournal()
	ctx := context.Background()
	if err := j.Init(ctx); err != nil {
		t.Fatal(err)
	}
	meta := storage.RunMetadata{ID: "crawler_test", Brain: "crawler-cpg", Body: "crawler"}
	if err := exp.Journal(ctx, j, meta, 1.5); err != nil {
		t.Fatal(err)
	}
	recs, err := j.Mutations(ctx, "crawler_test")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 4 || recs[3].Error == "" {
		t.Errorf("journal mutations = %+v", recs)
	}

	exp.Reset()
	if exp.Player().Remaining() != 4 || len(exp.Mutations()) != 0 {
		t.Error("reset should rewind the script")
	}
}

func TestEvaluateAndObjective(t *testing.T) {
	reg := NewRegistry()
	desc := preset(t, "crawler-cpg")
	cfg := Config{Dt: 0.01, Duration: 5}
	w := metrics.Weights{"displacement": 1}

	score, values, err := Evaluate(context.Background(), reg, desc, cfg, w)
	if err != nil {
		t.Fatal(err)
	}
	if score != values["displacement"] {
		t.Errorf("score %v, displacement %v", score, values["displacement"])
	}

	obj := Objective(reg, desc, cfg, w)
	reversed, err := obj(context.Background(), map[string]float64{"j1.phase": 0.75, "j2.phase": 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if reversed <= -score {
		t.Errorf("reversed wave objective %v should be worse than %v", reversed, -score)
	}
	if p, _ := desc.Param("j1.phase"); p != 0.25 {
		t.Errorf("objective mutated the base description: j1.phase = %v", p)
	}

	if _, err := obj(context.Background(), map[string]float64{"nope.phase": 1}); err == nil {
		t.Error("expected unknown neuron error")
	}
}

func TestBaseline(t *testing.T) {
	reg := NewRegistry()
	cfg := Config{Dt: 0.01, Duration: 5}
	w := metrics.Weights{"displacement": 1}

	passive, values, err := Baseline(context.Background(), reg, "crawler", cfg, w)
	if err != nil {
		t.Fatal(err)
	}
	if passive != 0 || values["control_effort"] != 0 {
		t.Errorf("passive crawler moved: score %v, metrics %v", passive, values)
	}

	active, _, err := Evaluate(context.Background(), reg, preset(t, "crawler-cpg"), cfg, w)
	if err != nil {
		t.Fatal(err)
	}
	if active <= passive {
		t.Errorf("cpg score %v does not beat passive %v", active, passive)
	}

	if _, _, err := Baseline(context.Background(), reg, "crawler", Config{Dt: 0.01, Duration: 1, BodyParams: map[string]float64{"wings": 2}}, w); err == nil {
		t.Error("expected unknown body param error")
	}
	if _, _, err := Baseline(context.Background(), reg, "submarine", cfg, w); err == nil {
		t.Error("expected unknown body error")
	}
}

func TestSpace(t *testing.T) {
	space, err := Space(preset(t, "crawler-cpg"), []string{"j1.phase", "j0.period"}, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if space[0].Min != -0.25 || space[0].Max != 0.75 || space[0].Default != 0.25 {
		t.Errorf("phase spec = %+v", space[0])
	}
	if space[1].Min != 0.5 || space[1].Max != 1.5 {
		t.Errorf("period spec = %+v", space[1])
	}
}

func TestParameterSweep(t *testing.T) {
	sweep := &ParameterSweep{Param: "j1.gain", Min: 0, Max: 1, Steps: 3, Weights: metrics.Weights{"displacement": 1}}
	results, err := sweep.Run(context.Background(), NewRegistry(), preset(t, "crawler-cpg"), Config{Dt: 0.01, Duration: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("point %d: %v", i, r.Err)
		}
	}
	if results[0].Value != 0 || results[2].Value != 1 {
		t.Errorf("values %v %v", results[0].Value, results[2].Value)
	}
}

func TestMonteCarlo(t *testing.T) {
	mc := &MonteCarlo{Trials: 4, Perturbation: 0.05, Seed: 7, Weights: metrics.Weights{"upright": 1}}
	results, err := mc.Run(context.Background(), NewRegistry(), preset(t, "sigmoid-cartpole"), Config{Dt: 0.01, Duration: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].InitState[2] == results[1].InitState[2] {
		t.Error("trials should start from different perturbed states")
	}
	stable, unstable := Stats(results)
	if stable+unstable != 4 {
		t.Errorf("stats %d+%d", stable, unstable)
	}
}
