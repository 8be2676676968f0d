package storage

import (
	"github.com/san-kum/neurosim/internal/dynamo"
)

const (
	ChannelState   = "x"
	ChannelControl = "u"
)

// TraceRow is one value of one tick in long format.
type TraceRow struct {
	Step    int     `csv:"step"`
	Time    float64 `csv:"time"`
	Channel string  `csv:"channel"`
	Index   int     `csv:"index"`
	Value   float64 `csv:"value"`
}

// Trace is a run read back from disk. Controls has one entry fewer than
// States: the final state has no control applied to it.
type Trace struct {
	Times    []float64
	States   [][]float64
	Controls [][]float64
}

// Channel returns column index of the state ("x") or control ("u") series.
func (t *Trace) Channel(channel string, index int) []float64 {
	src := t.States
	if channel == ChannelControl {
		src = t.Controls
	}
	out := make([]float64, 0, len(src))
	for _, v := range src {
		if index < len(v) {
			out = append(out, v[index])
		}
	}
	return out
}

// Result rebuilds the simulation result the trace was written from. Metrics
// are not part of the trace.
func (t *Trace) Result() *dynamo.Result {
	r := &dynamo.Result{Times: t.Times, StepsTaken: len(t.Controls)}
	for _, x := range t.States {
		r.States = append(r.States, x)
	}
	for _, u := range t.Controls {
		r.Controls = append(r.Controls, u)
	}
	return r
}

func TraceRows(r *dynamo.Result) []*TraceRow {
	rows := make([]*TraceRow, 0, len(r.States)*4)
	for step, x := range r.States {
		t := 0.0
		if step < len(r.Times) {
			t = r.Times[step]
		}
		for i, v := range x {
			rows = append(rows, &TraceRow{Step: step, Time: t, Channel: ChannelState, Index: i, Value: v})
		}
		if step < len(r.Controls) {
			for i, v := range r.Controls[step] {
				rows = append(rows, &TraceRow{Step: step, Time: t, Channel: ChannelControl, Index: i, Value: v})
			}
		}
	}
	return rows
}

func FromRows(rows []TraceRow) *Trace {
	tr := &Trace{}
	for _, row := range rows {
		for len(tr.Times) <= row.Step {
			tr.Times = append(tr.Times, row.Time)
			tr.States = append(tr.States, nil)
		}
		switch row.Channel {
		case ChannelState:
			tr.States[row.Step] = setAt(tr.States[row.Step], row.Index, row.Value)
		case ChannelControl:
			for len(tr.Controls) <= row.Step {
				tr.Controls = append(tr.Controls, nil)
			}
			tr.Controls[row.Step] = setAt(tr.Controls[row.Step], row.Index, row.Value)
		}
	}
	return tr
}

func setAt(v []float64, i int, val float64) []float64 {
	for len(v) <= i {
		v = append(v, 0)
	}
	v[i] = val
	return v
}
