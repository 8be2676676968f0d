//go:build !sqlite

package storage

import "fmt"

func newSQLiteJournal(_ string) (Journal, error) {
	return nil, fmt.Errorf("sqlite journal unavailable in this build; rebuild with -tags sqlite")
}
