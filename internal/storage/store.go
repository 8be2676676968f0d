package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/san-kum/neurosim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
)

// Store keeps one directory per run under baseDir holding metadata.json and
// a trace.csv of every state and control value.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Brain      string             `json:"brain"`
	Body       string             `json:"body"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Steps      int                `json:"steps"`
	Mutations  int                `json:"mutations"`
	Metrics    map[string]float64 `json:"metrics"`
}

// NewRunID returns "<body>_<8 hex chars>".
func NewRunID(body string) string {
	return fmt.Sprintf("%s_%s", body, uuid.NewString()[:8])
}

// Save writes meta and the result trace. An empty meta.ID gets a fresh run id.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	if meta.ID == "" {
		meta.ID = NewRunID(meta.Body)
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	f, err := os.Create(filepath.Join(runDir, traceFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := gocsv.MarshalFile(TraceRows(result), f); err != nil {
		return "", fmt.Errorf("write trace: %w", err)
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// TracePath is where a run's trace lives, for export.
func (s *Store) TracePath(runID string) string {
	return filepath.Join(s.baseDir, runID, traceFile)
}

// LoadTrace reads a run's trace back into per-step vectors.
func (s *Store) LoadTrace(runID string) (*Trace, error) {
	f, err := os.Open(s.TracePath(runID))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []TraceRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("read trace %s: %w", runID, err)
	}
	return FromRows(rows), nil
}
