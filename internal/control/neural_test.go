package control

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/san-kum/neurosim/internal/dynamo"
	"github.com/san-kum/neurosim/internal/neural"
)

// sumNetwork is two inputs feeding one simple output with weights 1 and 2.
func sumNetwork(t *testing.T) *neural.Network {
	t.Helper()
	net, err := neural.New(neural.Capacity{Inputs: 2, NonInputs: 64})
	if err != nil {
		t.Fatal(err)
	}
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(net.AddInputNeuron("pos"))
	must(net.AddInputNeuron("vel"))
	must(net.AddNonInputNeuron("motor", neural.LayerOutput, neural.KindSimple, neural.Params{0, 1}))
	must(net.Connect("pos", "motor", 1))
	must(net.Connect("vel", "motor", 2))
	return net
}

var sumWiring = Wiring{
	Sensors: []Sensor{
		{Input: "pos", State: 0, Scale: 1},
		{Input: "vel", State: 1, Scale: 1},
	},
	Actuators: []Actuator{{Output: "motor", Control: 0, Scale: 10, Offset: -1}},
}

func TestNeuralCompute(t *testing.T) {
	ctrl, err := NewNeural(sumNetwork(t), sumWiring, 1)
	if err != nil {
		t.Fatal(err)
	}

	u := ctrl.Compute(dynamo.State{0.3, 0.4}, 0)
	want := (0.3+2*0.4)*10 - 1
	if len(u) != 1 || abs(u[0]-want) > 1e-12 {
		t.Errorf("expected [%g], got %v", want, u)
	}

	snap := ctrl.Snapshot()
	if len(snap.State) != 1 || abs(snap.State[0]-1.1) > 1e-12 {
		t.Errorf("unexpected snapshot state %v", snap.State)
	}
}

func TestNeuralMutationTakesEffectNextTick(t *testing.T) {
	var reports []MutationReport
	ctrl, err := NewNeural(sumNetwork(t), sumWiring, 1, WithMutationHook(func(r MutationReport) {
		reports = append(reports, r)
	}))
	if err != nil {
		t.Fatal(err)
	}

	x := dynamo.State{1, 0}
	before := ctrl.Compute(x, 0)

	ctrl.Submit(neural.Mutation{Op: neural.OpSetWeight, Source: "pos", Target: "motor", Weight: 3})
	if ctrl.Pending() != 1 {
		t.Fatalf("expected 1 pending, got %d", ctrl.Pending())
	}

	after := ctrl.Compute(x, 0.01)
	if before[0] != 9 || after[0] != 29 {
		t.Errorf("expected 9 then 29, got %g then %g", before[0], after[0])
	}
	if ctrl.Pending() != 0 {
		t.Errorf("queue not drained")
	}
	if len(reports) != 1 || reports[0].Err != nil || reports[0].Time != 0.01 {
		t.Errorf("unexpected reports %+v", reports)
	}
}

func TestNeuralRejectedMutation(t *testing.T) {
	var got error
	ctrl, err := NewNeural(sumNetwork(t), sumWiring, 1, WithMutationHook(func(r MutationReport) {
		got = r.Err
	}))
	if err != nil {
		t.Fatal(err)
	}

	ctrl.Submit(neural.Mutation{Op: neural.OpRemoveNeuron, ID: "motor"})
	u := ctrl.Compute(dynamo.State{1, 0}, 0)

	if !errors.Is(got, neural.ErrNotHidden) {
		t.Errorf("expected ErrNotHidden, got %v", got)
	}
	if u[0] != 9 {
		t.Errorf("network should keep working after a rejected mutation, got %g", u[0])
	}
	if snap := ctrl.Snapshot(); snap.Rejected != 1 || snap.Applied != 0 {
		t.Errorf("unexpected counters %+v", snap)
	}
}

func TestNeuralConcurrentSubmit(t *testing.T) {
	ctrl, err := NewNeural(sumNetwork(t), sumWiring, 1)
	if err != nil {
		t.Fatal(err)
	}

	const writers, perWriter = 4, 8
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				ctrl.Submit(neural.Mutation{
					Op:     neural.OpAddNeuron,
					ID:     fmt.Sprintf("h%d_%d", w, i),
					Kind:   neural.KindSigmoid,
					Params: []float64{0, 1},
					In:     map[string]float64{"pos": 0.1},
					Out:    map[string]float64{"motor": 0.01},
				})
			}
		}(w)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	tick := 0
	for running := true; running; tick++ {
		select {
		case <-done:
			running = false
		default:
		}
		ctrl.Compute(dynamo.State{0.5, 0.5}, float64(tick)*0.01)
		_ = ctrl.Snapshot()
	}
	ctrl.Compute(dynamo.State{0.5, 0.5}, float64(tick)*0.01)

	snap := ctrl.Snapshot()
	if snap.Applied != writers*perWriter {
		t.Errorf("expected %d applied, got %d", writers*perWriter, snap.Applied)
	}
	if len(snap.State) != 1+writers*perWriter {
		t.Errorf("expected %d non-input neurons, got %d", 1+writers*perWriter, len(snap.State))
	}
}

func TestNeuralBindErrors(t *testing.T) {
	tests := []struct {
		name   string
		wiring Wiring
	}{
		{"unknown input", Wiring{Sensors: []Sensor{{Input: "ghost"}}}},
		{"output as sensor", Wiring{Sensors: []Sensor{{Input: "motor"}}}},
		{"negative state", Wiring{Sensors: []Sensor{{Input: "pos", State: -1}}}},
		{"input as actuator", Wiring{Actuators: []Actuator{{Output: "pos"}}}},
		{"control out of range", Wiring{Actuators: []Actuator{{Output: "motor", Control: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewNeural(sumNetwork(t), tt.wiring, 1); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, err := NewNeural(sumNetwork(t), Wiring{Sensors: []Sensor{{Input: "pos", State: 4}}}, 1, WithStateDim(2))
	if err == nil {
		t.Error("expected state index check with WithStateDim")
	}
}

func TestNeuralReset(t *testing.T) {
	ctrl, err := NewNeural(sumNetwork(t), sumWiring, 1)
	if err != nil {
		t.Fatal(err)
	}
	ctrl.Compute(dynamo.State{1, 1}, 0)
	ctrl.Submit(neural.Mutation{Op: neural.OpClearWeight, Source: "pos", Target: "motor"})
	ctrl.Reset()

	if ctrl.Pending() != 0 {
		t.Error("reset should drop queued mutations")
	}
	if s := ctrl.Snapshot().State; s[0] != 0 {
		t.Errorf("expected zeroed state, got %v", s)
	}
	if u := ctrl.Compute(dynamo.State{1, 0}, 0); u[0] != 9 {
		t.Errorf("dropped mutation was applied: %v", u)
	}
}

func TestHold(t *testing.T) {
	cmd := dynamo.Control{0.5, 0, -1}
	h := NewHold(cmd)
	cmd[0] = 9

	u := h.Compute(dynamo.State{1, 2}, 0)
	if len(u) != 3 || u[0] != 0.5 || u[2] != -1 {
		t.Errorf("unexpected control %v", u)
	}
	u[1] = 7
	if again := h.Compute(nil, 1); again[1] != 0 {
		t.Error("Compute must return a fresh vector each tick")
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
