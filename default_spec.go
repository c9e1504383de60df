package typedprefs

import (
	"sync"
	"sync/atomic"
)

// DefaultSource tells where a descriptor's default value comes from.
type DefaultSource uint8

const (
	// DefaultNone means no default was declared; reads fall back to the zero fallbacks.
	DefaultNone DefaultSource = iota
	// DefaultLiteral means a constant fixed at declaration time.
	DefaultLiteral
	// DefaultResource means a resource id resolved lazily through the ResourceResolver.
	DefaultResource
)

func (s DefaultSource) String() string {
	switch s {
	case DefaultLiteral:
		return "literal"
	case DefaultResource:
		return "resource"
	default:
		return "none"
	}
}

// DefaultSpec describes how to obtain the default of a Pref[T].
type DefaultSpec[T Value] struct {
	source  DefaultSource
	literal T
	resID   int
}

// Literal declares a constant default.
func Literal[T Value](v T) DefaultSpec[T] {
	return DefaultSpec[T]{source: DefaultLiteral, literal: v}
}

// FromResource declares a default resolved from resource id through the bound ResourceResolver.
// The resolved value is coerced to T and cached until the registry is reset.
func FromResource[T Value](id int) DefaultSpec[T] {
	return DefaultSpec[T]{source: DefaultResource, resID: id}
}

// NoDefault declares an entry without a default.
func NoDefault[T Value]() DefaultSpec[T] {
	return DefaultSpec[T]{}
}

func (s DefaultSpec[T]) erase() defaultSpec {
	spec := defaultSpec{source: s.source, resID: s.resID}
	if s.source == DefaultLiteral {
		spec.literal = cloneValue(any(s.literal))
	}
	return spec
}

// defaultSpec is the type-erased form stored on a Descriptor.
type defaultSpec struct {
	source  DefaultSource
	literal any
	resID   int
}

// fallbackValue is what entries without a default read as.
func fallbackValue(t ValueType) any {
	switch t {
	case IntType:
		return int32(-1)
	case BoolType:
		return false
	case ColorType:
		return Color(0)
	case StringSetType:
		return []string{}
	default:
		return ""
	}
}

// resolvedEntry is one cached resolution, valid for a registry epoch and resolver generation.
type resolvedEntry struct {
	epoch      uint64
	generation uint64
	value      any
}

// resolvedCache holds a lazily resolved resource value.
// Reads are lock-free; fills are serialized so concurrent readers trigger one resolution.
type resolvedCache struct {
	mu    sync.Mutex
	entry atomic.Pointer[resolvedEntry]
}

func (c *resolvedCache) load(b binding, fill func() (any, error)) (any, error) {
	gen := b.generation()
	if e := c.entry.Load(); e != nil && e.epoch == b.epoch && e.generation == gen {
		return e.value, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.entry.Load(); e != nil && e.epoch == b.epoch && e.generation == gen {
		return e.value, nil
	}

	v, err := fill()
	if err != nil {
		return nil, err
	}
	c.entry.Store(&resolvedEntry{epoch: b.epoch, generation: gen, value: v})
	return v, nil
}

func (c *resolvedCache) reset() {
	c.entry.Store(nil)
}

func cloneValue(v any) any {
	if set, ok := v.([]string); ok {
		return append([]string{}, set...)
	}
	return v
}
