// registry.go
package typedprefs

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Registry owns a fixed set of preference descriptors and binds them to a Storage
// and a ResourceResolver. Its lifecycle is Uninitialized -> Initialized; in test mode
// Init may be called again, which resets every resolved default and rebinds.
type Registry struct {
	mu          sync.RWMutex
	cfg         *config
	logger      Logger
	descriptors []*Descriptor
	byKey       map[string]*Descriptor
	initialized bool
	closed      bool
	store       Storage
	resolver    ResourceResolver
	epoch       uint64

	subMu   sync.Mutex
	subs    map[uint64]func(Change)
	nextSub uint64
}

// binding is a snapshot of the registry's collaborators taken under the read lock.
type binding struct {
	store    Storage
	resolver ResourceResolver
	epoch    uint64
}

func (b binding) generation() uint64 {
	if v, ok := b.resolver.(VersionedResolver); ok {
		return v.Generation()
	}
	return 0
}

// NewRegistry creates an uninitialized registry.
func NewRegistry(opts ...Option) *Registry {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = NewDefaultLogger()
	}

	return &Registry{
		cfg:    cfg,
		logger: cfg.logger,
		byKey:  make(map[string]*Descriptor),
	}
}

func (r *Registry) register(d *Descriptor) error {
	d.key = strings.TrimSpace(d.key)
	if d.key == "" {
		return ErrInvalidKey
	}
	if !d.valueType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, d.valueType)
	}

	if d.domain.declared() || d.domain.labels != nil || d.domain.labelsRes != nil {
		if d.valueType != StringType && d.valueType != StringSetType {
			return fmt.Errorf("%w: %q: a domain needs a string or string_set entry", ErrInvalidType, d.key)
		}
	}
	if d.domain.values != nil && d.def.source == DefaultLiteral {
		if err := checkDomain(d.key, d.domain.values, d.def.literal); err != nil {
			return fmt.Errorf("%w: default: %v", ErrInvalidValue, err)
		}
	}
	if d.encrypted {
		if d.valueType != StringType {
			return fmt.Errorf("%w: %q: only string entries can be encrypted", ErrInvalidType, d.key)
		}
		if r.cfg.encryptor == nil {
			return fmt.Errorf("%w: %q", ErrEncryptionUnavailable, d.key)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return fmt.Errorf("%w: cannot declare %q after Init", ErrAlreadyInitialized, d.key)
	}
	if _, exists := r.byKey[d.key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, d.key)
	}

	r.byKey[d.key] = d
	r.descriptors = append(r.descriptors, d)
	return nil
}

// Init binds the registry to store and resolver. resolver may be nil, in which case
// resource-backed defaults fail with a ResolutionError.
//
// Outside test mode Init succeeds once; repeating it with the same instances is a no-op
// and with different instances returns ErrAlreadyInitialized. A closed registry
// cannot be bound again outside test mode.
func (r *Registry) Init(store Storage, resolver ResourceResolver) error {
	if store == nil {
		return fmt.Errorf("%w: store is required", ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		if !r.cfg.testMode {
			return fmt.Errorf("%w: registry is closed", ErrAlreadyInitialized)
		}
		r.closed = false
	}
	if r.initialized {
		if !r.cfg.testMode {
			if sameInstance(r.store, store) && sameInstance(r.resolver, resolver) {
				return nil
			}
			return ErrAlreadyInitialized
		}
		r.resetLocked()
	}

	r.store = store
	r.resolver = resolver
	r.initialized = true
	r.logger.Info("Preference registry initialized",
		"descriptors", len(r.descriptors),
		"resolver", resolver != nil,
		"test_mode", r.cfg.testMode,
	)
	return nil
}

// resetLocked discards every resolved default and domain and evicts cached values.
func (r *Registry) resetLocked() {
	r.epoch++
	for _, d := range r.descriptors {
		d.defaultCache.reset()
		d.valuesCache.reset()
		d.labelsCache.reset()
	}
	if r.cfg.cache != nil {
		for _, d := range r.descriptors {
			r.cacheEvict(context.Background(), d.key)
		}
	}
	r.logger.Debug("Preference registry reset", "epoch", r.epoch)
}

// Initialized reports whether Init has succeeded.
func (r *Registry) Initialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}

func (r *Registry) bound() (binding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.initialized {
		return binding{}, ErrNotInitialized
	}
	return binding{store: r.store, resolver: r.resolver, epoch: r.epoch}, nil
}

// Descriptors returns every declared descriptor in declaration order.
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Descriptor(nil), r.descriptors...)
}

// Lookup finds a descriptor by key. Application code should use the typed handles
// returned by Define; Lookup serves tooling that receives keys at runtime.
func (r *Registry) Lookup(key string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byKey[key]
	return d, ok
}

// Info is the introspection record of one descriptor.
type Info struct {
	Key         string
	Name        string
	Type        ValueType
	Category    string
	Description string
	Source      DefaultSource
	ResourceID  int
	Default     any
	DefaultErr  error
	Domain      []string
	Encrypted   bool
}

// Describe returns an Info for every descriptor in declaration order.
// Resolution failures are reported per entry in DefaultErr.
func (r *Registry) Describe() ([]Info, error) {
	if _, err := r.bound(); err != nil {
		return nil, err
	}

	descriptors := r.Descriptors()
	infos := make([]Info, 0, len(descriptors))
	for _, d := range descriptors {
		info := Info{
			Key:         d.key,
			Name:        d.Name(),
			Type:        d.valueType,
			Category:    d.category,
			Description: d.description,
			Source:      d.def.source,
			Encrypted:   d.encrypted,
		}
		if id, ok := d.ResourceID(); ok {
			info.ResourceID = id
		}
		info.Default, info.DefaultErr = d.DefaultValue()
		if domain, err := d.Domain(); err == nil {
			info.Domain = domain
		} else if info.DefaultErr == nil {
			info.DefaultErr = err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// ClearAll removes every stored value from the bound store.
func (r *Registry) ClearAll(ctx context.Context) error {
	b, err := r.bound()
	if err != nil {
		return err
	}
	if err := b.store.Clear(ctx); err != nil {
		return &StoreError{Op: "clear", Err: err}
	}
	for _, d := range r.Descriptors() {
		r.cacheEvict(ctx, d.key)
		r.notify(Change{Key: d.key, Cleared: true})
	}
	return nil
}

// Close closes the bound store and the cache, if any. Afterwards every operation
// fails with ErrNotInitialized and, outside test mode, Init is refused.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if r.cfg.cache != nil {
		if err := r.cfg.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	r.initialized = false
	r.closed = true
	r.store = nil
	r.resolver = nil
	r.epoch++
	return errors.Join(errs...)
}

func cacheKey(key string) string {
	return "pref:" + key
}

// load reads a stored value through the cache.
func (r *Registry) load(ctx context.Context, b binding, key string) (*Preference, error) {
	if r.cfg.cache != nil {
		if data, err := r.cfg.cache.Get(ctx, cacheKey(key)); err == nil {
			pref, err := UnmarshalPreference(data)
			if err == nil {
				return pref, nil
			}
			r.logger.Warn("Discarding undecodable cached preference", "key", key, "error", err)
		}
	}

	pref, err := b.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	r.cachePut(ctx, pref)
	return pref, nil
}

func (r *Registry) cachePut(ctx context.Context, pref *Preference) {
	if r.cfg.cache == nil {
		return
	}
	data, err := MarshalPreference(pref)
	if err != nil {
		r.logger.Error("Failed to marshal preference for cache", "key", pref.Key, "error", err)
		return
	}
	if err := r.cfg.cache.Set(ctx, cacheKey(pref.Key), data, r.cfg.cacheTTL); err != nil {
		r.logger.Error("Failed to cache preference", "key", pref.Key, "error", err)
	}
}

func (r *Registry) cacheEvict(ctx context.Context, key string) {
	if r.cfg.cache == nil {
		return
	}
	if err := r.cfg.cache.Delete(ctx, cacheKey(key)); err != nil {
		r.logger.Error("Failed to delete preference from cache", "key", key, "error", err)
	}
}

// sameInstance compares two collaborators by identity without panicking on
// uncomparable dynamic types.
func sameInstance(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
