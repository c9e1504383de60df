package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CreativeUnicorns/typedprefs"
)

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	defer func() {
		if err := cache.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	key := "pref:theme"
	value := []byte(`{"key":"theme"}`)

	if err := cache.Set(ctx, key, value, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != string(value) {
		t.Errorf("Expected '%s', got '%s'", value, val)
	}

	// Mutating the returned slice must not reach the cache.
	val[0] = 'X'
	again, _ := cache.Get(ctx, key)
	if string(again) != string(value) {
		t.Errorf("Cached payload was mutated through the returned slice: %s", again)
	}

	_, err = cache.Get(ctx, "nonExistentKey")
	if !errors.Is(err, typedprefs.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for non-existent key, got: %v", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	defer cache.Close()

	if err := cache.Set(ctx, "deleteKey", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cache.Delete(ctx, "deleteKey"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := cache.Get(ctx, "deleteKey")
	if !errors.Is(err, typedprefs.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for deleted key, got: %v", err)
	}

	if err := cache.Delete(ctx, "neverSet"); err != nil {
		t.Errorf("Delete of a missing key should succeed, got: %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	defer cache.Close()

	if err := cache.Set(ctx, "tempKey", []byte("tempValue"), 100*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := cache.Get(ctx, "tempKey"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	if _, err := cache.Get(ctx, "tempKey"); !errors.Is(err, typedprefs.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for expired key, got: %v", err)
	}
}

func TestMemoryCache_NoExpiration(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	defer cache.Close()

	if err := cache.Set(ctx, "permanentKey", []byte("permanentValue"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	val, err := cache.Get(ctx, "permanentKey")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "permanentValue" {
		t.Errorf("Expected 'permanentValue', got '%s'", val)
	}
}

func TestMemoryCache_GCRemovesExpired(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache(20 * time.Millisecond)
	defer cache.Close()

	_ = cache.Set(ctx, "short", []byte("a"), 10*time.Millisecond)
	_ = cache.Set(ctx, "long", []byte("b"), time.Hour)

	time.Sleep(100 * time.Millisecond)

	cache.mu.RLock()
	_, shortPresent := cache.items["short"]
	_, longPresent := cache.items["long"]
	cache.mu.RUnlock()

	if shortPresent {
		t.Error("Expected gc to remove the expired item")
	}
	if !longPresent {
		t.Error("Expected gc to keep the live item")
	}
	if n := cache.Len(); n != 1 {
		t.Errorf("Expected Len 1, got %d", n)
	}
}

func TestMemoryCache_Close(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	if err := cache.Set(ctx, "closeKey", []byte("closeValue"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}

	if _, err := cache.Get(ctx, "closeKey"); !errors.Is(err, typedprefs.ErrCacheUnavailable) {
		t.Errorf("Expected ErrCacheUnavailable after Close, got: %v", err)
	}
	if err := cache.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, typedprefs.ErrCacheUnavailable) {
		t.Errorf("Expected ErrCacheUnavailable for Set after Close, got: %v", err)
	}
}
