package storage

import "fmt"

// NewJournal returns the journal backend named by kind: "memory" (default) or
// "sqlite", which needs a build with -tags sqlite.
func NewJournal(kind, sqlitePath string) (Journal, error) {
	switch kind {
	case "", "memory":
		return NewMemoryJournal(), nil
	case "sqlite":
		return newSQLiteJournal(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported journal backend: %s", kind)
	}
}

func CloseIfSupported(j Journal) error {
	closer, ok := j.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
