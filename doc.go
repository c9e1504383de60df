// Package typedprefs provides typed preference descriptors over a generic key-value store.
//
// Each preference is declared once against a Registry with a key, a Go value type and a
// default strategy: a literal constant or a resource id resolved lazily through a
// ResourceResolver. Declarations return typed handles (*Pref[T]) so a mistyped name or a
// wrong value type is a compile error. Storage backends (memory, SQLite, PostgreSQL,
// Redis) live in the storage package; optional caching lives in the cache package.
package typedprefs
