package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/neurosim/internal/dynamo"
)

type ExportData struct {
	Brain      string             `json:"brain"`
	Body       string             `json:"body"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Controls   [][]float64        `json:"controls"`
	Metrics    map[string]float64 `json:"metrics"`
}

func NewExportData(meta RunMetadata, result *dynamo.Result) ExportData {
	data := ExportData{
		Brain:      meta.Brain,
		Body:       meta.Body,
		Integrator: meta.Integrator,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Steps:      len(result.Times),
		Times:      result.Times,
		States:     make([][]float64, len(result.States)),
		Controls:   make([][]float64, len(result.Controls)),
		Metrics:    result.Metrics,
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	for i, c := range result.Controls {
		data.Controls[i] = c
	}
	return data
}

func ExportJSON(w io.Writer, data ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV copies a stored run trace to path in long format.
func (s *Store) ExportCSV(runID, path string) error {
	trace, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gocsv.MarshalFile(TraceRows(trace.Result()), f)
}
