package resources

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/CreativeUnicorns/typedprefs"
)

// Table is a ResourceResolver over an explicit id to value map.
type Table struct {
	mu         sync.RWMutex
	values     map[int]any
	generation atomic.Uint64
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{values: make(map[int]any)}
}

// Put stores value under id. Every Put advances Generation so descriptors
// re-resolve their defaults.
func (t *Table) Put(id int, value any) {
	t.mu.Lock()
	t.values[id] = value
	t.mu.Unlock()
	t.generation.Add(1)
}

// Resolve returns the raw value of id or an error wrapping ErrResourceNotFound.
func (t *Table) Resolve(id int) (any, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.values[id]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%x", typedprefs.ErrResourceNotFound, id)
	}
	return v, nil
}

// Generation returns a counter that changes whenever the table changes.
func (t *Table) Generation() uint64 {
	return t.generation.Load()
}
