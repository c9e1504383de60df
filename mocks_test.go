package typedprefs

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// MockStorage implements the Storage interface for testing
type MockStorage struct {
	mu      sync.RWMutex
	data    map[string]*Preference
	closed  bool
	failSet error // returned by Set when non-nil
	gets    atomic.Int32
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		data: make(map[string]*Preference),
	}
}

func (m *MockStorage) Get(ctx context.Context, key string) (*Preference, error) {
	_, _ = ctx.Deadline()
	m.gets.Add(1)
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStorageUnavailable
	}
	pref, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *pref
	copied.Value = cloneValue(pref.Value)
	return &copied, nil
}

func (m *MockStorage) Set(ctx context.Context, pref *Preference) error {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageUnavailable
	}
	if m.failSet != nil {
		return m.failSet
	}
	copied := *pref
	copied.Value = cloneValue(pref.Value)
	m.data[pref.Key] = &copied
	return nil
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageUnavailable
	}
	if _, ok := m.data[key]; !ok {
		return ErrNotFound
	}
	delete(m.data, key)
	return nil
}

func (m *MockStorage) GetAll(ctx context.Context) (map[string]*Preference, error) {
	_, _ = ctx.Deadline()
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStorageUnavailable
	}
	out := make(map[string]*Preference, len(m.data))
	for k, v := range m.data {
		copied := *v
		out[k] = &copied
	}
	return out, nil
}

func (m *MockStorage) Clear(ctx context.Context) error {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageUnavailable
	}
	m.data = make(map[string]*Preference)
	return nil
}

func (m *MockStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// has reports whether key holds a stored value.
func (m *MockStorage) has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

// MockCache implements the Cache interface for testing
type MockCache struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string][]byte),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	_, _ = ctx.Deadline()
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrCacheUnavailable
	}
	data, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrCacheUnavailable
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrCacheUnavailable
	}
	delete(m.data, key)
	return nil
}

func (m *MockCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockCache) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// MockResolver implements VersionedResolver and counts Resolve calls.
type MockResolver struct {
	mu         sync.RWMutex
	values     map[int]any
	generation uint64
	calls      atomic.Int32
}

func NewMockResolver(values map[int]any) *MockResolver {
	if values == nil {
		values = make(map[int]any)
	}
	return &MockResolver{values: values}
}

func (m *MockResolver) Resolve(id int) (any, error) {
	m.calls.Add(1)
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[id]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%x", ErrResourceNotFound, id)
	}
	return v, nil
}

func (m *MockResolver) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// Put replaces the value for id and starts a new generation.
func (m *MockResolver) Put(id int, v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[id] = v
	m.generation++
}

func (m *MockResolver) Calls() int {
	return int(m.calls.Load())
}

// MockEncryptor reverses and prefixes plaintext so stored values are recognizable.
type MockEncryptor struct{}

func (MockEncryptor) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	r := []rune(plaintext)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return "enc:" + string(r), nil
}

func (e MockEncryptor) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	if len(ciphertext) < 4 || ciphertext[:4] != "enc:" {
		return "", fmt.Errorf("not encrypted: %q", ciphertext)
	}
	r := []rune(ciphertext[4:])
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r), nil
}

func newTestRegistry(opts ...Option) *Registry {
	opts = append([]Option{WithLogger(NewSlogLogger(io.Discard, LogLevelError))}, opts...)
	return NewRegistry(opts...)
}
