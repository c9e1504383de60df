// Package storage provides key-value backends for preference values.
//
// Every backend stores the declared ValueType next to the encoded value so a
// value read back decodes to the same Go type it was written with.
package storage

import (
	"github.com/CreativeUnicorns/typedprefs"
)

// Storage is the registry's storage contract, re-exported for callers wiring backends.
type Storage = typedprefs.Storage

var (
	_ Storage = (*MemoryStorage)(nil)
	_ Storage = (*SQLiteStorage)(nil)
	_ Storage = (*PostgresStorage)(nil)
	_ Storage = (*RedisStorage)(nil)
)
