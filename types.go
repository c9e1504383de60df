// Package typedprefs defines the core types used by the preference descriptor system.
package typedprefs

import (
	"time"
)

// ValueType names the storage type of a preference value.
// It is persisted alongside every stored value so backends can decode it again.
type ValueType string

// Supported value types.
const (
	// StringType is a UTF-8 string.
	StringType ValueType = "string"
	// IntType is a 32-bit signed integer.
	IntType ValueType = "int"
	// BoolType is a boolean.
	BoolType ValueType = "bool"
	// ColorType is a packed 32-bit ARGB color.
	ColorType ValueType = "color"
	// StringSetType is a set of strings, usually restricted to a declared domain.
	StringSetType ValueType = "string_set"
)

// Valid reports whether t is one of the supported value types.
func (t ValueType) Valid() bool {
	switch t {
	case StringType, IntType, BoolType, ColorType, StringSetType:
		return true
	}
	return false
}

// Value is the set of Go types a preference may hold.
type Value interface {
	string | int32 | bool | Color | []string
}

// typeOf maps a Go value type to its ValueType.
func typeOf[T Value]() ValueType {
	var zero T
	switch any(zero).(type) {
	case string:
		return StringType
	case int32:
		return IntType
	case bool:
		return BoolType
	case Color:
		return ColorType
	default:
		return StringSetType
	}
}

// Preference is a single stored value as exchanged with a Storage backend.
// JSON tags are used by the SQL and Redis backends and by the cache.
type Preference struct {
	// Key is the descriptor key the value belongs to.
	Key string `json:"key"`
	// Type is the declared type of the descriptor; backends use it to decode Value.
	Type ValueType `json:"type"`
	// Value holds a string, int32, bool, Color or []string matching Type.
	Value any `json:"value"`
	// UpdatedAt records the time when the value was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// config holds the construction-time configuration of a Registry.
// It is populated by applying functional Options in NewRegistry.
type config struct {
	logger    Logger
	cache     Cache
	cacheTTL  time.Duration
	encryptor Encryptor
	testMode  bool
}

// Option defines the signature for a functional option that configures a Registry.
type Option func(*config)

// WithLogger sets the Logger used by the Registry.
// If not set, a default slog logger writing JSON to os.Stderr is used.
func WithLogger(l Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithCache puts a read cache in front of the bound Storage.
// Entries expire after ttl; a ttl of zero keeps them until they are overwritten or cleared.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *config) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithEncryption enables descriptors declared with Encrypted().
func WithEncryption(e Encryptor) Option {
	return func(c *config) {
		c.encryptor = e
	}
}

// WithTestMode allows Init to be called repeatedly. Every call resets all
// resolved defaults and rebinds the registry.
func WithTestMode() Option {
	return func(c *config) {
		c.testMode = true
	}
}
