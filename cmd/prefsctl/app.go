package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CreativeUnicorns/typedprefs"
	"github.com/CreativeUnicorns/typedprefs/cache"
	"github.com/CreativeUnicorns/typedprefs/encryption"
	"github.com/CreativeUnicorns/typedprefs/logging"
	"github.com/CreativeUnicorns/typedprefs/prefxml"
	"github.com/CreativeUnicorns/typedprefs/resources"
	"github.com/CreativeUnicorns/typedprefs/sample"
	"github.com/CreativeUnicorns/typedprefs/storage"
)

// app is an initialized registry with everything it was bound to.
type app struct {
	logger   *logging.ZapLogger
	registry *typedprefs.Registry
	bundle   *resources.Bundle
	// sample is set when the embedded sample screen is in use.
	sample *sample.P
}

func openApp(opts *options) (*app, error) {
	logger, err := logging.NewZapLogger(opts.logLevel)
	if err != nil {
		return nil, err
	}

	regOpts := []typedprefs.Option{typedprefs.WithLogger(logger)}

	if os.Getenv(encryption.EnvKeyName) != "" {
		manager, err := encryption.NewManager()
		if err != nil {
			return nil, err
		}
		regOpts = append(regOpts, typedprefs.WithEncryption(manager))
	}

	c, err := openCache(opts)
	if err != nil {
		return nil, err
	}
	if c != nil {
		ttl, err := parseTTL(opts.cacheTTL)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		regOpts = append(regOpts, typedprefs.WithCache(c, ttl))
	}

	a := &app{logger: logger}
	if err := a.declare(opts, regOpts); err != nil {
		if c != nil {
			_ = c.Close()
		}
		return nil, err
	}

	if err := a.bind(opts); err != nil {
		_ = a.registry.Close()
		return nil, err
	}
	return a, nil
}

// declare builds the registry from the embedded sample or from --prefs and --res.
func (a *app) declare(opts *options, regOpts []typedprefs.Option) error {
	if opts.prefs == "" {
		if opts.res != "" {
			return fmt.Errorf("%w: --res needs --prefs", typedprefs.ErrInvalidInput)
		}
		bundle, err := sample.Resources()
		if err != nil {
			return err
		}
		a.registry, a.sample = sample.New(regOpts...)
		a.bundle = bundle
		return nil
	}

	if opts.res == "" {
		return fmt.Errorf("%w: --prefs needs --res", typedprefs.ErrInvalidInput)
	}
	entries, err := prefxml.ParseFile(opts.prefs)
	if err != nil {
		return err
	}
	bundle, err := resources.LoadDir(opts.res)
	if err != nil {
		return err
	}

	a.registry = typedprefs.NewRegistry(regOpts...)
	if _, err := prefxml.Declare(a.registry, entries, bundle.IDs()); err != nil {
		return err
	}
	a.bundle = bundle
	return nil
}

// bind selects the locale and initializes the registry with the selected store.
func (a *app) bind(opts *options) error {
	if opts.locale != "" {
		tag, err := a.bundle.SetLocale(opts.locale)
		if err != nil {
			return err
		}
		a.logger.Debug("Resource locale selected", "requested", opts.locale, "matched", tag.String())
	}

	store, err := openStore(opts)
	if err != nil {
		return err
	}
	if err := a.registry.Init(store, a.bundle); err != nil {
		_ = store.Close()
		return err
	}
	return nil
}

func (a *app) close() error {
	err := a.registry.Close()
	_ = a.logger.Sync()
	return err
}

// descriptor looks a key up at runtime, since the CLI receives keys as text.
func (a *app) descriptor(key string) (*typedprefs.Descriptor, error) {
	d, ok := a.registry.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", typedprefs.ErrPreferenceNotDefined, key)
	}
	return d, nil
}

func openStore(opts *options) (typedprefs.Storage, error) {
	switch opts.store {
	case "", "memory":
		return storage.NewMemoryStorage(), nil
	case "sqlite":
		if opts.dsn == "" {
			return nil, fmt.Errorf("%w: --dsn is required for sqlite", typedprefs.ErrInvalidInput)
		}
		return storage.NewSQLiteStorage(opts.dsn)
	case "postgres":
		if opts.dsn == "" {
			return nil, fmt.Errorf("%w: --dsn is required for postgres", typedprefs.ErrInvalidInput)
		}
		return storage.NewPostgresStorage(opts.dsn)
	case "redis":
		addr, password, db, err := redisTarget(opts.dsn)
		if err != nil {
			return nil, err
		}
		return storage.NewRedisStorage(addr, password, db, opts.namespace)
	default:
		return nil, fmt.Errorf("%w: unknown store %q", typedprefs.ErrInvalidInput, opts.store)
	}
}

func openCache(opts *options) (typedprefs.Cache, error) {
	switch opts.cache {
	case "":
		return nil, nil
	case "memory":
		return cache.NewMemoryCache(), nil
	case "redis":
		addr, password, db, err := redisTarget(opts.cacheAddr)
		if err != nil {
			return nil, err
		}
		return cache.NewRedisCache(addr, password, db, opts.namespace+":cache:")
	default:
		return nil, fmt.Errorf("%w: unknown cache %q", typedprefs.ErrInvalidInput, opts.cache)
	}
}

// redisTarget accepts a redis:// URL or a plain host:port.
func redisTarget(dsn string) (addr, password string, db int, err error) {
	if dsn == "" {
		return "localhost:6379", "", 0, nil
	}
	if !strings.Contains(dsn, "://") {
		return dsn, "", 0, nil
	}
	u, err := redis.ParseURL(dsn)
	if err != nil {
		return "", "", 0, fmt.Errorf("%w: redis url: %v", typedprefs.ErrInvalidInput, err)
	}
	return u.Addr, u.Password, u.DB, nil
}

func parseTTL(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: cache ttl: %v", typedprefs.ErrInvalidInput, err)
	}
	return d, nil
}
