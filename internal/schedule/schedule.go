// Package schedule delivers scripted mutations to a running controller at
// set simulated times.
package schedule

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/san-kum/neurosim/internal/dynamo"
	"github.com/san-kum/neurosim/internal/neural"
	"gopkg.in/yaml.v3"
)

// Script is a timed sequence of mutations.
type Script struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Events      []Event `yaml:"events"`
}

// Event submits Mutation once simulated time reaches At.
type Event struct {
	At       float64         `yaml:"at"`
	Mutation neural.Mutation `yaml:"mutation"`
}

// Submitter accepts mutations for the next tick; control.Neural is one.
type Submitter interface {
	Submit(m neural.Mutation)
}

// LoadScript loads a script from a YAML file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

// ParseScript decodes a script and orders its events by time. Events sharing
// a time keep their file order.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &neural.ConfigurationError{Source: "schedule", Err: fmt.Errorf("%w: %v", neural.ErrMalformed, err)}
	}
	for i, ev := range s.Events {
		if ev.At < 0 {
			return nil, &neural.ConfigurationError{Source: s.Name, Field: fmt.Sprintf("events[%d].at", i), Err: fmt.Errorf("%w: negative time", neural.ErrMalformed)}
		}
		if ev.Mutation.Op == "" {
			return nil, &neural.ConfigurationError{Source: s.Name, Field: fmt.Sprintf("events[%d].mutation.op", i), Err: neural.ErrMissingAttribute}
		}
	}
	sort.SliceStable(s.Events, func(a, b int) bool { return s.Events[a].At < s.Events[b].At })
	return &s, nil
}

// Player replays a script into a Submitter. It implements dynamo.Observer, so
// attaching it to a simulator delivers each event after the tick at which it
// falls due; the controller applies it at the start of the following tick.
type Player struct {
	events []Event
	next   int
	target Submitter
	logger *slog.Logger
}

func (s *Script) Player(target Submitter, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	return &Player{events: events, target: target, logger: logger}
}

var _ dynamo.Observer = (*Player)(nil)

func (p *Player) OnStep(_ dynamo.State, _ dynamo.Control, t float64) {
	for p.next < len(p.events) && p.events[p.next].At <= t {
		ev := p.events[p.next]
		p.logger.Debug("schedule submit", "at", ev.At, "t", t, "op", ev.Mutation.Op, "subject", ev.Mutation.Subject())
		p.target.Submit(ev.Mutation)
		p.next++
	}
}

// Remaining reports events not yet delivered.
func (p *Player) Remaining() int {
	return len(p.events) - p.next
}

// Rewind makes every event pending again.
func (p *Player) Rewind() {
	p.next = 0
}
