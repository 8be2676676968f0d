// Package export renders traces and brain topologies as SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/neurosim/internal/analysis"
	"github.com/san-kum/neurosim/internal/brain"
)

var palette = []string{"#00ff88", "#00ccff", "#ff00ff", "#ffcc00", "#ff4444", "#8888ff"}

type bounds struct{ minX, maxX, minY, maxY float64 }

// pad widens b by 10% on every side and guards against flat ranges.
func (b bounds) pad() bounds {
	rx, ry := b.maxX-b.minX, b.maxY-b.minY
	if rx == 0 {
		rx = 1
	}
	if ry == 0 {
		ry = 1
	}
	return bounds{b.minX - rx*0.1, b.maxX + rx*0.1, b.minY - ry*0.1, b.maxY + ry*0.1}
}

func (b bounds) project(x, y float64, width, height int) (float64, float64) {
	px := (x - b.minX) / (b.maxX - b.minX) * float64(width)
	py := float64(height) - (y-b.minY)/(b.maxY-b.minY)*float64(height)
	return px, py
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

func path(sb *strings.Builder, xs, ys []float64, b bounds, width, height int, stroke string) {
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke)
	for i := range xs {
		x, y := b.project(xs[i], ys[i], width, height)
		if i == 0 {
			fmt.Fprintf(sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}

// SeriesSVG plots each series against times, one colour per series, with a
// legend built from labels.
func SeriesSVG(times []float64, series [][]float64, labels []string, width, height int) string {
	if len(times) < 2 || len(series) == 0 {
		return ""
	}
	b := bounds{times[0], times[len(times)-1], math.Inf(1), math.Inf(-1)}
	for _, s := range series {
		for _, v := range s {
			b.minY, b.maxY = math.Min(b.minY, v), math.Max(b.maxY, v)
		}
	}
	if math.IsInf(b.minY, 0) {
		return ""
	}
	b = b.pad()

	var sb strings.Builder
	header(&sb, width, height)
	for i, s := range series {
		n := min(len(s), len(times))
		if n < 2 {
			continue
		}
		color := palette[i%len(palette)]
		path(&sb, times[:n], s[:n], b, width, height, color)
		if i < len(labels) {
			fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>`+"\n",
				16+14*i, color, escape(labels[i]))
		}
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// PortraitSVG draws a phase portrait as a single path.
func PortraitSVG(p *analysis.PhasePortrait, width, height int, stroke string) string {
	if p == nil || len(p.Points) < 2 {
		return ""
	}
	b := bounds{p.Points[0].X, p.Points[0].X, p.Points[0].Y, p.Points[0].Y}
	xs := make([]float64, len(p.Points))
	ys := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		xs[i], ys[i] = pt.X, pt.Y
		b.minX, b.maxX = math.Min(b.minX, pt.X), math.Max(b.maxX, pt.X)
		b.minY, b.maxY = math.Min(b.minY, pt.Y), math.Max(b.maxY, pt.Y)
	}
	b = b.pad()

	var sb strings.Builder
	header(&sb, width, height)
	path(&sb, xs, ys, b, width, height, stroke)
	sb.WriteString("</svg>")
	return sb.String()
}

// BrainSVG lays the neurons of d out in three columns (inputs, hidden,
// outputs) and draws every connection, green for excitatory and red for
// inhibitory, with stroke width following |weight|.
func BrainSVG(d *brain.Description, width, height int) string {
	columns := map[string][]string{}
	for _, n := range d.Neurons {
		layer := strings.ToLower(n.Layer)
		columns[layer] = append(columns[layer], n.ID)
	}
	order := []string{"input", "hidden", "output"}
	pos := map[string][2]float64{}
	for ci, layer := range order {
		ids := columns[layer]
		x := float64(width) * (0.15 + 0.35*float64(ci))
		for i, id := range ids {
			y := float64(height) * float64(i+1) / float64(len(ids)+1)
			pos[id] = [2]float64{x, y}
		}
	}

	maxW := 0.0
	for _, c := range d.Connections {
		if c.Weight != nil {
			maxW = math.Max(maxW, math.Abs(*c.Weight))
		}
	}
	if maxW == 0 {
		maxW = 1
	}

	var sb strings.Builder
	header(&sb, width, height)
	for _, c := range d.Connections {
		src, ok1 := pos[c.Src]
		dst, ok2 := pos[c.Dst]
		if !ok1 || !ok2 || c.Weight == nil {
			continue
		}
		color := "#00ff88"
		if *c.Weight < 0 {
			color = "#ff4444"
		}
		w := 0.5 + 3*math.Abs(*c.Weight)/maxW
		if c.Src == c.Dst {
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="22" fill="none" stroke="%s" stroke-width="%.2f"/>`+"\n",
				src[0]+12, src[1]-12, color, w)
			continue
		}
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.2f"/>`+"\n",
			src[0], src[1], dst[0], dst[1], color, w)
	}
	for _, n := range d.Neurons {
		p := pos[n.ID]
		label := n.ID
		if n.Type != "" {
			label += " (" + n.Type + ")"
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="14" fill="#1a1a2e" stroke="#00ccff"/>`+"\n", p[0], p[1])
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#ffffff" font-family="monospace" font-size="11" text-anchor="middle">%s</text>`+"\n",
			p[0], p[1]+28, escape(label))
	}
	sb.WriteString("</svg>")
	return sb.String()
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
