// Package typedprefs defines interfaces for storage, resource resolution, caching, encryption and logging.
package typedprefs

import (
	"context"
	"time"
)

// Storage defines the methods required for a key-value storage backend.
// Get and Delete return ErrNotFound when the key is absent.
type Storage interface {
	Get(ctx context.Context, key string) (*Preference, error)
	Set(ctx context.Context, pref *Preference) error
	Delete(ctx context.Context, key string) error
	GetAll(ctx context.Context) (map[string]*Preference, error)
	Clear(ctx context.Context) error
	Close() error
}

// ResourceResolver maps a numeric resource id to a loosely typed raw value
// (string, integer, bool, []string ...). Unknown ids return an error wrapping ErrResourceNotFound.
type ResourceResolver interface {
	Resolve(id int) (any, error)
}

// VersionedResolver is implemented by resolvers whose contents can change at runtime,
// for example on a locale switch. A new generation invalidates resolved defaults.
type VersionedResolver interface {
	ResourceResolver
	Generation() uint64
}

// Cache defines the methods required for a caching backend.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Encryptor encrypts string values of descriptors declared with Encrypted().
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
