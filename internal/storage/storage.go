// Package storage provides non-volatile setpoint stores.
//
// Stores hold plain integers under string keys and do no range checking;
// the control core validates values on the way in and out.
package storage

import (
	"strings"

	"github.com/sweeney/sterilizer/internal/logic"
)

// Store is a closable setpoint store.
type Store interface {
	logic.SetpointStore
	Close() error
}

// Open selects a store by path: "" or ":memory:" keeps values in memory,
// a ".db" or ".sqlite" suffix uses SQLite, anything else a YAML file.
func Open(path string) (Store, error) {
	switch {
	case path == "" || path == ":memory:":
		return NewMemory(), nil
	case strings.HasSuffix(path, ".db"), strings.HasSuffix(path, ".sqlite"):
		return OpenSQLite(path)
	default:
		return OpenFile(path)
	}
}
