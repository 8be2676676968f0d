package analysis

import (
	"strings"
)

type Point struct{ X, Y float64 }

// PhasePortrait pairs two recorded channels sample by sample, e.g. a joint
// angle against its velocity.
type PhasePortrait struct {
	XLabel, YLabel string
	Points         []Point
}

// NewPhasePortrait zips xs and ys, skipping the first skip samples so a
// settled limit cycle is not hidden under the transient.
func NewPhasePortrait(xs, ys []float64, skip int) *PhasePortrait {
	n := min(len(xs), len(ys))
	if skip < 0 {
		skip = 0
	}
	p := &PhasePortrait{}
	if skip >= n {
		return p
	}
	p.Points = make([]Point, 0, n-skip)
	for i := skip; i < n; i++ {
		p.Points = append(p.Points, Point{xs[i], ys[i]})
	}
	return p
}

// ASCII renders the portrait into a width x height grid of runes.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// axes where they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int(-minX / rangeX * float64(width-1))
		for row := range canvas {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int(-minY/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	if p.XLabel != "" || p.YLabel != "" {
		sb.WriteString(p.YLabel + " vs " + p.XLabel + "\n")
	}
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
