package di

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/zcong1993/go-record-cache/cache"
	"github.com/zcong1993/go-record-cache/internal/cacheinfra"
	"github.com/zcong1993/go-record-cache/recordcache"
)

// Container wires the cache collaborators shared by every cached record
// type in a process: one backend, one key codec, one logger. Individual
// wrappers are created per record type via NewCached.
type Container struct {
	backend cache.Backend
	codec   cache.KeyCodec
	logger  zerolog.Logger
	config  cacheinfra.Config
	closer  func() error
}

// ContainerOption configures optional container collaborators.
type ContainerOption func(*Container)

// WithLogger sets the logger handed to every wrapper created from this
// container. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) ContainerOption {
	return func(c *Container) { c.logger = logger }
}

// WithKeyCodec replaces the default key codec.
func WithKeyCodec(codec cache.KeyCodec) ContainerOption {
	return func(c *Container) { c.codec = codec }
}

// NewContainer creates a container backed by the in-process memory cache.
// Close stops the backend's cleanup goroutine.
func NewContainer(config cacheinfra.Config, opts ...ContainerOption) (*Container, error) {
	backend, err := cacheinfra.NewMemory(context.Background(), config)
	if err != nil {
		return nil, err
	}
	return newContainer(backend, config, backend.Close, opts...), nil
}

// NewContainerWithDefaults creates a memory-backed container using
// default configuration.
func NewContainerWithDefaults(opts ...ContainerOption) (*Container, error) {
	return NewContainer(cacheinfra.DefaultConfig(), opts...)
}

// NewRedisContainer creates a container backed by Redis. The caller owns
// the client lifecycle; Close on the container is a no-op for it.
func NewRedisContainer(client redis.UniversalClient, config cacheinfra.Config, opts ...ContainerOption) (*Container, error) {
	backend, err := cacheinfra.NewRedis(client, config)
	if err != nil {
		return nil, err
	}
	return newContainer(backend, config, nil, opts...), nil
}

func newContainer(backend cache.Backend, config cacheinfra.Config, closer func() error, opts ...ContainerOption) *Container {
	c := &Container{
		backend: backend,
		codec:   cache.NewDefaultKeyCodec(),
		logger:  zerolog.Nop(),
		config:  config,
		closer:  closer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backend returns the shared cache backend.
func (c *Container) Backend() cache.Backend {
	return c.backend
}

// KeyCodec returns the shared key codec.
func (c *Container) KeyCodec() cache.KeyCodec {
	return c.codec
}

// Config returns a copy of the backend configuration.
func (c *Container) Config() cacheinfra.Config {
	return c.config
}

// Close releases container-owned resources.
func (c *Container) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// NewCached creates a cache wrapper for one record type, wired to the
// container's backend, codec, and logger.
//
// Since Go methods cannot have type parameters, this is a package-level
// function: NewCached[User](container, userStore, opts).
func NewCached[T any](c *Container, store recordcache.Store[T], opts cache.Options) (*recordcache.Wrapper[T], error) {
	return recordcache.New(store, c.backend, opts,
		recordcache.WithKeyCodec(c.codec),
		recordcache.WithLogger(c.logger),
	)
}
