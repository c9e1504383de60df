// Package cache provides read caches that sit in front of a preference Storage.
// Payloads are opaque encoded preference records; the registry owns the encoding.
package cache

import (
	"github.com/CreativeUnicorns/typedprefs"
)

// Cache is the registry's cache contract, re-exported for callers wiring backends.
type Cache = typedprefs.Cache

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*RedisCache)(nil)
)
