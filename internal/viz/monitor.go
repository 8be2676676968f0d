package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/neurosim/internal/control"
	"github.com/san-kum/neurosim/internal/dynamo"
	"github.com/san-kum/neurosim/internal/experiment"
	"github.com/san-kum/neurosim/internal/neural"
)

const (
	canvasWidth     = 40
	canvasHeight    = 14
	historyCapacity = 300
	frameRate       = 30
	maxSpeed        = 64
)

type TickMsg time.Time

// Monitor steps an experiment in real time and shows the network live.
type Monitor struct {
	exp     *experiment.Experiment
	ctrl    *control.Neural
	ep      *dynamo.Episode
	body    string
	view    bodyView
	state   dynamo.State
	history [][]float64 // per control channel
	running bool
	speed   int
	// selected indexes the non-input neurons of the last snapshot
	selected int
	notice   string
	err      error
}

func NewMonitor(exp *experiment.Experiment) (*Monitor, error) {
	m := &Monitor{
		exp:     exp,
		ctrl:    exp.Controller(),
		body:    exp.Config().Body,
		view:    bodyView{canvas: NewCanvas(canvasWidth, canvasHeight)},
		running: true,
		speed:   max(1, int(1/(frameRate*exp.Config().Dt))),
	}
	if err := m.begin(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Monitor) begin() error {
	ep, err := m.exp.Begin()
	if err != nil {
		return err
	}
	m.ep = ep
	m.state = ep.State()
	m.history = make([][]float64, m.exp.System().ControlDim())
	m.view.reset()
	m.err = nil
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Monitor) Init() tea.Cmd {
	return tick()
}

func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.exp.Reset()
			if err := m.begin(); err != nil {
				m.err = err
			}
			m.notice = "reset"
		case "+", "=":
			m.speed = min(maxSpeed, m.speed*2)
		case "-", "_":
			m.speed = max(1, m.speed/2)
		case "tab":
			if n := len(m.tunable()); n > 0 {
				m.selected = (m.selected + 1) % n
			}
		case "up", "k":
			m.scaleGain(1.1)
		case "down", "j":
			m.scaleGain(1 / 1.1)
		case "x":
			m.removeSelected()
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.advance(m.speed)
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to n ticks of the episode.
func (m *Monitor) advance(n int) {
	for i := 0; i < n && !m.ep.Done(); i++ {
		u, err := m.ep.Step()
		if err != nil {
			m.err = err
			return
		}
		for ch := range m.history {
			v := 0.0
			if ch < len(u) {
				v = u[ch]
			}
			m.history[ch] = append(m.history[ch], v)
			if len(m.history[ch]) > historyCapacity {
				m.history[ch] = m.history[ch][1:]
			}
		}
	}
	m.state = m.ep.State()
	if m.ep.Done() {
		m.running = false
		m.notice = "episode finished, R to restart"
	}
}

// tunable lists the non-input neurons of the last snapshot.
func (m *Monitor) tunable() []neural.NeuronInfo {
	var out []neural.NeuronInfo
	for _, n := range m.ctrl.Snapshot().Neurons {
		if n.Layer != neural.LayerInput {
			out = append(out, n)
		}
	}
	return out
}

func (m *Monitor) current() (neural.NeuronInfo, bool) {
	ns := m.tunable()
	if len(ns) == 0 {
		return neural.NeuronInfo{}, false
	}
	if m.selected >= len(ns) {
		m.selected = len(ns) - 1
	}
	return ns[m.selected], true
}

// gainIndex is the position of the gain among a kind's parameters.
func gainIndex(k neural.Kind) (int, bool) {
	switch k {
	case neural.KindSimple, neural.KindSigmoid, neural.KindCTRNNSigmoid:
		return 1, true
	case neural.KindOscillator:
		return 2, true
	}
	return 0, false
}

func (m *Monitor) scaleGain(factor float64) {
	n, ok := m.current()
	if !ok {
		return
	}
	gi, ok := gainIndex(n.Kind)
	if !ok {
		m.notice = fmt.Sprintf("%s has no gain", n.Kind)
		return
	}
	params := n.Params
	params[gi] *= factor
	m.ctrl.Submit(neural.Mutation{Op: neural.OpSetNeuron, ID: n.ID, Params: params[:]})
	m.notice = fmt.Sprintf("%s gain -> %.3f", n.ID, params[gi])
}

func (m *Monitor) removeSelected() {
	n, ok := m.current()
	if !ok {
		return
	}
	if n.Layer != neural.LayerHidden {
		m.notice = "only hidden neurons can be removed"
		return
	}
	m.ctrl.Submit(neural.Mutation{Op: neural.OpRemoveNeuron, ID: n.ID})
	m.notice = "remove " + n.ID
}

func (m *Monitor) View() string {
	m.view.draw(m.body, m.state)
	canvasView := canvasStyle.Render(m.view.canvas.String())

	snap := m.ctrl.Snapshot()
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.exp.Brain().Name+" / "+m.body)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(statusError.Render("ERROR: "+errorText(m.err)) + "\n")
	case m.running:
		s.WriteString(statusRunning.Render("RUNNING") + fmt.Sprintf("  x%d", m.speed) + "\n")
	default:
		s.WriteString(statusPaused.Render("PAUSED") + "\n")
	}
	s.WriteString(ProgressBar(m.ep.Progress(), 30) + "\n\n")

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.ep.Time())) + "\n")
	s.WriteString(labelStyle.Render("Mutations") + valueStyle.Render(fmt.Sprintf("%d applied, %d rejected, %d queued",
		snap.Applied, snap.Rejected, m.ctrl.Pending())) + "\n")
	if p := m.exp.Player(); p != nil {
		s.WriteString(labelStyle.Render("Script") + valueStyle.Render(fmt.Sprintf("%d events left", p.Remaining())) + "\n")
	}

	s.WriteString("\nNEURONS\n")
	i := 0
	for _, n := range snap.Neurons {
		if n.Layer == neural.LayerInput {
			continue
		}
		v := math.NaN()
		if n.Position < len(snap.State) {
			v = snap.State[n.Position]
		}
		line := fmt.Sprintf("%-8s %-10s %s %+.3f", truncate(n.ID, 8), n.Kind, ActivationBar(v, 1, 16), v)
		if i == m.selected {
			s.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
		i++
	}

	if len(m.history) > 0 && len(m.history[0]) > 1 {
		chart := asciigraph.PlotMany(m.history, asciigraph.Height(5), asciigraph.Width(40), asciigraph.Caption("Control"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if m.notice != "" {
		s.WriteString(labelStyle.Render("") + valueStyle.Render(m.notice) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit +/-:Speed\nTab:Select ↑↓:Gain X:Remove"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle.Render(s.String()))
}

func errorText(err error) string {
	var simErr *dynamo.SimulationError
	if errors.As(err, &simErr) {
		return fmt.Sprintf("diverged at t=%.2f", simErr.Time)
	}
	return err.Error()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
