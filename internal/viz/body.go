package viz

import (
	"math"

	"github.com/san-kum/neurosim/internal/dynamo"
)

type point struct{ x, y int }

// bodyView draws one body kind onto a canvas.
type bodyView struct {
	canvas *Canvas
	trail  []point
}

func (b *bodyView) draw(body string, x dynamo.State) {
	b.canvas.Clear()
	switch body {
	case "pendulum":
		b.drawPendulum(x)
	case "cartpole":
		b.drawCartpole(x)
	case "crawler":
		b.drawCrawler(x)
	default:
		b.drawBars(x)
	}
}

func (b *bodyView) reset() { b.trail = b.trail[:0] }

func (b *bodyView) pushTrail(p point, limit int) {
	b.trail = append(b.trail, p)
	if len(b.trail) > limit {
		b.trail = b.trail[1:]
	}
	for _, pt := range b.trail {
		b.canvas.Set(pt.x, pt.y)
	}
}

func (b *bodyView) drawPendulum(x dynamo.State) {
	if len(x) < 2 {
		return
	}
	theta := x[0]
	_, ch := b.canvas.Dots()
	cx, cy := b.canvas.Width, 6
	length := float64(ch) * 0.7
	bx, by := cx+int(length*math.Sin(theta)), cy+int(length*math.Cos(theta))

	b.pushTrail(point{bx, by}, 100)
	b.canvas.Set(cx, cy)
	b.canvas.Line(cx, cy, bx, by)
	b.canvas.Blob(bx, by, 1)
}

func (b *bodyView) drawCartpole(x dynamo.State) {
	if len(x) < 4 {
		return
	}
	pos, theta := x[0], x[2]
	cw, ch := b.canvas.Dots()
	groundY := ch - 8
	cartX := cw/2 + int(pos*20)

	b.canvas.Line(0, groundY+4, cw, groundY+4)
	for dy := 0; dy < 4; dy++ {
		b.canvas.Line(cartX-6, groundY+dy, cartX+6, groundY+dy)
	}
	poleLen := float64(ch) * 0.6
	px, py := cartX+int(poleLen*math.Sin(theta)), groundY-int(poleLen*math.Cos(theta))
	b.canvas.Line(cartX, groundY, px, py)
	b.canvas.Blob(px, py, 1)
}

// drawCrawler draws the chain from above with the head on the right. The
// body wraps around the screen as it travels; tick marks on the ground
// scroll with it so forward motion is visible.
func (b *bodyView) drawCrawler(x dynamo.State) {
	joints := (len(x) - 2) / 2
	if joints < 1 {
		return
	}
	cw, ch := b.canvas.Dots()
	const scale = 12.0
	seg := float64(cw) / float64(4*(joints+1))

	ground := ch - 2
	offset := int(math.Mod(x[0]*scale, 8))
	for gx := -offset; gx < cw; gx += 8 {
		b.canvas.Set(gx, ground)
	}

	headX := math.Mod(x[0]*scale, float64(cw))
	if headX < 0 {
		headX += float64(cw)
	}
	hx, hy := headX, float64(ch)/2
	heading := math.Pi
	b.canvas.Blob(int(hx), int(hy), 1)
	for i := 0; i < joints; i++ {
		heading += x[2+i]
		nx := hx + seg*math.Cos(heading)
		ny := hy + seg*math.Sin(heading)
		b.canvas.Line(int(hx), int(hy), int(nx), int(ny))
		b.canvas.Set(int(nx), int(ny))
		hx, hy = nx, ny
	}
}

// drawBars shows each state value as a vertical bar for bodies without a
// dedicated drawing.
func (b *bodyView) drawBars(x dynamo.State) {
	cw, ch := b.canvas.Dots()
	mid := ch / 2
	b.canvas.Line(0, mid, cw-1, mid)
	if len(x) == 0 {
		return
	}
	limit := 1.0
	for _, v := range x {
		limit = math.Max(limit, math.Abs(v))
	}
	bw := max(3, cw/(len(x)+1))
	for i, v := range x {
		bx := bw/2 + i*bw
		h := int(v / limit * float64(mid-1))
		b.canvas.Line(bx, mid, bx, mid-h)
	}
}
