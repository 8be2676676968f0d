package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle   = lipgloss.NewStyle().Padding(1, 2)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(52)
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)

	statusRunning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	statusPaused  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
	statusError   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))

	// activation bars: excitatory green, inhibitory red
	barPositive = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	barNegative = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))

	// Table styles for non-interactive output such as inspect.
	TableHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	TableMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	Title       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
)

// ActivationBar draws v on a signed scale of ±limit: the bar grows right of a
// centre mark for positive values and left for negative ones.
func ActivationBar(v, limit float64, width int) string {
	half := width / 2
	if half < 1 || limit <= 0 {
		return ""
	}
	if math.IsNaN(v) {
		return strings.Repeat("?", 2*half+1)
	}
	n := int(math.Round(math.Min(math.Abs(v)/limit, 1) * float64(half)))

	left := strings.Repeat(" ", half)
	right := strings.Repeat(" ", half)
	if v >= 0 {
		right = barPositive.Render(strings.Repeat("█", n)) + strings.Repeat(" ", half-n)
	} else {
		left = strings.Repeat(" ", half-n) + barNegative.Render(strings.Repeat("█", n))
	}
	return left + "│" + right
}

// ProgressBar renders fraction in [0,1] as a fixed-width bar.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
