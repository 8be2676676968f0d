package config

import "sort"

// Presets are ready-made runs keyed by body, then preset name.
var Presets = map[string]map[string]*Config{
	"pendulum": {
		"swing": {
			Brain: "cpg-pendulum", Body: "pendulum", Integrator: "rk4", Dt: 0.01, Duration: 20.0,
			InitState: []float64{0.1, 0},
		},
		"hanging": {
			Brain: "cpg-pendulum", Body: "pendulum", Integrator: "rk4", Dt: 0.01, Duration: 20.0,
			InitState: []float64{0, 0},
		},
	},
	"cartpole": {
		"balance": {
			Brain: "sigmoid-cartpole", Body: "cartpole", Integrator: "rk4", Dt: 0.01, Duration: 30.0,
			InitState: []float64{0, 0, 0.1, 0},
		},
		"recover": {
			Brain: "sigmoid-cartpole", Body: "cartpole", Integrator: "rk4", Dt: 0.01, Duration: 30.0,
			InitState: []float64{0, 0, 0.4, 0},
		},
	},
	"crawler": {
		"walk": {
			Brain: "crawler-cpg", Body: "crawler", Integrator: "rk4", Dt: 0.01, Duration: 20.0,
		},
		"sprint": {
			Brain: "crawler-cpg", Body: "crawler", Integrator: "rk4", Dt: 0.005, Duration: 20.0,
			BodyParams: map[string]float64{"thrust": 8, "drag": 1},
		},
	},
}

// GetPreset returns a copy of a preset with unset sections filled from the
// defaults, or nil when it does not exist.
func GetPreset(body, preset string) *Config {
	bodyPresets, ok := Presets[body]
	if !ok {
		return nil
	}
	p, ok := bodyPresets[preset]
	if !ok {
		return nil
	}
	cfg := *p
	def := DefaultConfig()
	cfg.Storage = def.Storage
	cfg.Log = def.Log
	return &cfg
}

func ListPresets(body string) []string {
	bodyPresets, ok := Presets[body]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(bodyPresets))
	for name := range bodyPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
