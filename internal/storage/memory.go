package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var errNotInitialized = errors.New("journal not initialized")

type MemoryJournal struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]RunRecord
	mutations   map[string][]MutationRecord
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) Init(_ context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.initialized = true
	j.runs = make(map[string]RunRecord)
	j.mutations = make(map[string][]MutationRecord)
	return nil
}

func (j *MemoryJournal) RecordRun(_ context.Context, run RunRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.initialized {
		return errNotInitialized
	}
	j.runs[run.ID] = run
	return nil
}

func (j *MemoryJournal) RecordMutation(_ context.Context, m MutationRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.initialized {
		return errNotInitialized
	}
	m.Payload = append([]byte(nil), m.Payload...)
	j.mutations[m.RunID] = append(j.mutations[m.RunID], m)
	return nil
}

func (j *MemoryJournal) Runs(_ context.Context) ([]RunRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if !j.initialized {
		return nil, errNotInitialized
	}
	out := make([]RunRecord, 0, len(j.runs))
	for _, r := range j.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].StartedAt.Equal(out[b].StartedAt) {
			return out[a].ID < out[b].ID
		}
		return out[a].StartedAt.Before(out[b].StartedAt)
	})
	return out, nil
}

func (j *MemoryJournal) Mutations(_ context.Context, runID string) ([]MutationRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if !j.initialized {
		return nil, errNotInitialized
	}
	src := j.mutations[runID]
	out := make([]MutationRecord, len(src))
	copy(out, src)
	return out, nil
}
