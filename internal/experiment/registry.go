package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/neurosim/internal/dynamo"
	"github.com/san-kum/neurosim/internal/integrators"
	"github.com/san-kum/neurosim/internal/metrics"
	"github.com/san-kum/neurosim/internal/physics"
)

// Body is a robot body a brain can be attached to.
type Body struct {
	Name string

	// New returns a fresh system; bodies carry tunable parameters, so runs
	// never share one.
	New func() dynamo.System

	// Initial is the default starting state.
	Initial func() dynamo.State

	// Metrics are recorded on every run of this body.
	Metrics func(sys dynamo.System) []dynamo.Metric
}

type Registry struct {
	bodies map[string]Body
}

// CrawlerJoints is the joint count of the registered crawler body.
const CrawlerJoints = 3

func NewRegistry() *Registry {
	r := &Registry{bodies: make(map[string]Body)}

	r.Register(Body{
		Name:    "pendulum",
		New:     func() dynamo.System { return physics.NewPendulum() },
		Initial: func() dynamo.State { return dynamo.State{0.1, 0} },
		Metrics: func(sys dynamo.System) []dynamo.Metric {
			return []dynamo.Metric{
				metrics.NewEnergyDrift(sys),
				metrics.NewControlEffort(),
				metrics.NewOutputRange(0, 1.0),
			}
		},
	})
	r.Register(Body{
		Name:    "cartpole",
		New:     func() dynamo.System { return physics.NewCartPole() },
		Initial: func() dynamo.State { return dynamo.State{0, 0, 0.1, 0} },
		Metrics: func(sys dynamo.System) []dynamo.Metric {
			return []dynamo.Metric{
				metrics.NewUpright(2, 0.2),
				metrics.NewDisplacement(0),
				metrics.NewControlEffort(),
			}
		},
	})
	r.Register(Body{
		Name: "crawler",
		New:  func() dynamo.System { return physics.NewCrawler(CrawlerJoints) },
		Initial: func() dynamo.State {
			return make(dynamo.State, physics.NewCrawler(CrawlerJoints).StateDim())
		},
		Metrics: func(sys dynamo.System) []dynamo.Metric {
			return []dynamo.Metric{
				metrics.NewDisplacement(0),
				metrics.NewControlEffort(),
				metrics.NewOutputRange(0, 1.0),
			}
		},
	})
	return r
}

// Register adds or replaces a body.
// build returns a fresh instance of the body with params applied.
func (b Body) build(params map[string]float64) (dynamo.System, error) {
	sys := b.New()
	if len(params) == 0 {
		return sys, nil
	}
	tunable, ok := sys.(dynamo.Configurable)
	if !ok {
		return nil, fmt.Errorf("body %s is not tunable", b.Name)
	}
	for k, v := range params {
		if err := tunable.SetParam(k, v); err != nil {
			return nil, fmt.Errorf("body %s: %w", b.Name, err)
		}
	}
	return sys, nil
}

func (r *Registry) Register(b Body) {
	r.bodies[b.Name] = b
}

func (r *Registry) Body(name string) (Body, error) {
	b, ok := r.bodies[name]
	if !ok {
		return Body{}, fmt.Errorf("unknown body: %s", name)
	}
	return b, nil
}

func (r *Registry) Integrator(name string) (dynamo.Integrator, error) {
	return integrators.New(name)
}

// Bodies lists registered body names in order.
func (r *Registry) Bodies() []string {
	names := make([]string, 0, len(r.bodies))
	for name := range r.bodies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
