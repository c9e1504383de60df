package typedprefs

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Descriptor is the immutable, type-erased metadata of one preference entry.
// Descriptors are created by Define and owned by exactly one Registry.
type Descriptor struct {
	registry    *Registry
	key         string
	valueType   ValueType
	def         defaultSpec
	domain      domainSpec
	category    string
	description string
	encrypted   bool

	defaultCache resolvedCache
	valuesCache  resolvedCache
	labelsCache  resolvedCache
}

// domainSpec restricts string and string-set entries to a set of values.
// Values and display labels are either literal or resource-backed string arrays.
type domainSpec struct {
	values    []string
	labels    []string
	valuesRes *int
	labelsRes *int
}

func (s domainSpec) declared() bool {
	return s.values != nil || s.valuesRes != nil
}

// DescriptorOption configures a descriptor at declaration time.
type DescriptorOption func(*Descriptor)

// WithDomain restricts a string or string-set entry to values.
func WithDomain(values ...string) DescriptorOption {
	return func(d *Descriptor) {
		d.domain.values = append([]string{}, values...)
	}
}

// WithDomainResource restricts a string or string-set entry to the string array resource id.
func WithDomainResource(id int) DescriptorOption {
	return func(d *Descriptor) {
		d.domain.valuesRes = &id
	}
}

// WithEntries sets human-readable labels matching the domain values.
func WithEntries(labels ...string) DescriptorOption {
	return func(d *Descriptor) {
		d.domain.labels = append([]string{}, labels...)
	}
}

// WithEntriesResource reads the labels from the string array resource id.
func WithEntriesResource(id int) DescriptorOption {
	return func(d *Descriptor) {
		d.domain.labelsRes = &id
	}
}

// WithCategory groups the entry for display.
func WithCategory(category string) DescriptorOption {
	return func(d *Descriptor) {
		d.category = category
	}
}

// WithDescription attaches documentation to the entry.
func WithDescription(text string) DescriptorOption {
	return func(d *Descriptor) {
		d.description = text
	}
}

// Encrypted stores the value of a string entry encrypted with the registry's Encryptor.
func Encrypted() DescriptorOption {
	return func(d *Descriptor) {
		d.encrypted = true
	}
}

// Key returns the store key. It never fails and works before Init.
func (d *Descriptor) Key() string { return d.key }

// Name returns the Go accessor name derived from the key.
func (d *Descriptor) Name() string { return AccessorName(d.key) }

// Type returns the declared value type.
func (d *Descriptor) Type() ValueType { return d.valueType }

// Category returns the display category, if any.
func (d *Descriptor) Category() string { return d.category }

// Description returns the entry documentation, if any.
func (d *Descriptor) Description() string { return d.description }

// IsEncrypted reports whether stored values are encrypted.
func (d *Descriptor) IsEncrypted() bool { return d.encrypted }

// DefaultSource reports how the default is obtained.
func (d *Descriptor) DefaultSource() DefaultSource { return d.def.source }

// ResourceID returns the resource id of a resource-backed default.
func (d *Descriptor) ResourceID() (int, bool) {
	return d.def.resID, d.def.source == DefaultResource
}

// DefaultValue resolves the default value.
func (d *Descriptor) DefaultValue() (any, error) {
	b, err := d.registry.bound()
	if err != nil {
		return nil, err
	}
	v, err := d.defaultValue(b)
	if err != nil {
		return nil, err
	}
	return cloneValue(v), nil
}

// Get returns the stored value, or the default when nothing is stored.
func (d *Descriptor) Get(ctx context.Context) (any, error) {
	b, err := d.registry.bound()
	if err != nil {
		return nil, err
	}
	return d.get(ctx, b)
}

// SetValue validates value against the declared type and domain and stores it.
func (d *Descriptor) SetValue(ctx context.Context, value any) error {
	b, err := d.registry.bound()
	if err != nil {
		return err
	}
	return d.set(ctx, b, value)
}

// Clear removes the stored value so reads fall back to the default.
func (d *Descriptor) Clear(ctx context.Context) error {
	b, err := d.registry.bound()
	if err != nil {
		return err
	}

	if err := b.store.Delete(ctx, d.key); err != nil && !errors.Is(err, ErrNotFound) {
		return &StoreError{Op: "delete", Key: d.key, Err: err}
	}
	d.registry.cacheEvict(ctx, d.key)
	d.registry.notify(Change{Key: d.key, Cleared: true})
	return nil
}

// Domain returns the allowed values, or nil when the entry is unrestricted.
func (d *Descriptor) Domain() ([]string, error) {
	b, err := d.registry.bound()
	if err != nil {
		return nil, err
	}
	values, err := d.domainValues(b)
	if err != nil {
		return nil, err
	}
	return cloneStrings(values), nil
}

// Entries returns the display labels of the domain, or nil when none were declared.
func (d *Descriptor) Entries() ([]string, error) {
	b, err := d.registry.bound()
	if err != nil {
		return nil, err
	}
	if d.domain.labelsRes == nil {
		return cloneStrings(d.domain.labels), nil
	}
	labels, err := d.labelsCache.load(b, func() (any, error) {
		return d.resolveResource(b, *d.domain.labelsRes, StringSetType)
	})
	if err != nil {
		return nil, err
	}
	return cloneStrings(labels.([]string)), nil
}

func (d *Descriptor) defaultValue(b binding) (any, error) {
	switch d.def.source {
	case DefaultLiteral:
		return d.def.literal, nil
	case DefaultResource:
		return d.defaultCache.load(b, func() (any, error) {
			return d.resolveResource(b, d.def.resID, d.valueType)
		})
	default:
		return fallbackValue(d.valueType), nil
	}
}

func (d *Descriptor) resolveResource(b binding, id int, t ValueType) (any, error) {
	if b.resolver == nil {
		return nil, &ResolutionError{Key: d.key, MissingID: id, Err: ErrResourceNotFound}
	}

	raw, err := b.resolver.Resolve(id)
	if err != nil {
		return nil, &ResolutionError{Key: d.key, MissingID: id, Err: err}
	}

	v, err := coerce(d.key, raw, t)
	if err != nil {
		return nil, err
	}
	d.registry.logger.Debug("Resolved resource value", "key", d.key, "resource_id", id, "type", string(t))
	return v, nil
}

func (d *Descriptor) domainValues(b binding) ([]string, error) {
	if d.domain.valuesRes == nil {
		return d.domain.values, nil
	}
	values, err := d.valuesCache.load(b, func() (any, error) {
		return d.resolveResource(b, *d.domain.valuesRes, StringSetType)
	})
	if err != nil {
		return nil, err
	}
	return values.([]string), nil
}

func (d *Descriptor) get(ctx context.Context, b binding) (any, error) {
	pref, err := d.registry.load(ctx, b, d.key)
	if errors.Is(err, ErrNotFound) {
		v, err := d.defaultValue(b)
		if err != nil {
			return nil, err
		}
		return cloneValue(v), nil
	}
	if err != nil {
		return nil, &StoreError{Op: "get", Key: d.key, Err: err}
	}

	if pref.Type != d.valueType {
		return nil, &StoreError{Op: "get", Key: d.key,
			Err: fmt.Errorf("%w: stored as %s, declared %s", ErrInvalidType, pref.Type, d.valueType)}
	}
	if err := checkType(d.valueType, pref.Value); err != nil {
		return nil, &StoreError{Op: "get", Key: d.key, Err: fmt.Errorf("%w: %v", ErrInvalidType, err)}
	}

	if d.encrypted {
		ciphertext, _ := pref.Value.(string)
		plaintext, err := d.registry.cfg.encryptor.Decrypt(ciphertext)
		if err != nil {
			return nil, &StoreError{Op: "decrypt", Key: d.key, Err: err}
		}
		return plaintext, nil
	}
	return cloneValue(pref.Value), nil
}

func (d *Descriptor) set(ctx context.Context, b binding, value any) error {
	if err := d.validate(b, value); err != nil {
		return err
	}

	stored := cloneValue(value)
	if d.encrypted {
		ciphertext, err := d.registry.cfg.encryptor.Encrypt(value.(string))
		if err != nil {
			return &StoreError{Op: "encrypt", Key: d.key, Err: err}
		}
		stored = ciphertext
	}

	pref := &Preference{
		Key:       d.key,
		Type:      d.valueType,
		Value:     stored,
		UpdatedAt: time.Now(),
	}

	if err := b.store.Set(ctx, pref); err != nil {
		return &StoreError{Op: "set", Key: d.key, Err: err}
	}
	d.registry.cachePut(ctx, pref)
	d.registry.notify(Change{Key: d.key})
	return nil
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

// Pref is the typed handle of one preference entry.
type Pref[T Value] struct {
	d *Descriptor
}

// Key returns the store key. It never fails and works before Init.
func (p *Pref[T]) Key() string { return p.d.key }

// Descriptor returns the type-erased descriptor.
func (p *Pref[T]) Descriptor() *Descriptor { return p.d }

// DefaultValue resolves the default. Literal defaults never touch the resolver;
// resource-backed defaults are resolved once and cached until the registry is reset.
func (p *Pref[T]) DefaultValue() (T, error) {
	v, err := p.d.DefaultValue()
	if err != nil {
		var zero T
		return zero, err
	}
	return p.typed(v)
}

// Get returns the stored value, or DefaultValue when nothing is stored.
// The default is never written back.
func (p *Pref[T]) Get(ctx context.Context) (T, error) {
	v, err := p.d.Get(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return p.typed(v)
}

func (p *Pref[T]) typed(v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		return t, fmt.Errorf("%w: %q holds %T", ErrInvalidType, p.d.key, v)
	}
	return t, nil
}

// Set validates and stores v. A rejected value leaves the store untouched.
func (p *Pref[T]) Set(ctx context.Context, v T) error {
	return p.d.SetValue(ctx, any(v))
}

// Clear removes the stored value.
func (p *Pref[T]) Clear(ctx context.Context) error {
	return p.d.Clear(ctx)
}

// Define declares a preference entry on r and returns its typed handle.
// Entries must be declared before Init; keys are unique per registry.
func Define[T Value](r *Registry, key string, def DefaultSpec[T], opts ...DescriptorOption) (*Pref[T], error) {
	d := &Descriptor{
		registry:  r,
		key:       key,
		valueType: typeOf[T](),
		def:       def.erase(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := r.register(d); err != nil {
		return nil, err
	}
	return &Pref[T]{d: d}, nil
}

// MustDefine is like Define but panics on error. It is meant for package-level
// and generated declarations where a failure is a programming error.
func MustDefine[T Value](r *Registry, key string, def DefaultSpec[T], opts ...DescriptorOption) *Pref[T] {
	p, err := Define(r, key, def, opts...)
	if err != nil {
		panic(fmt.Sprintf("typedprefs: define %q: %v", key, err))
	}
	return p
}
