package cacheinfra

import (
	"context"
	"sync"
	"time"

	"github.com/zcong1993/go-record-cache/cache"
)

type entry struct {
	payload []byte
	expires time.Time
}

// Memory is a mutex-guarded in-process cache.Backend with per-entry TTLs.
// Expired entries are dropped lazily on read and swept periodically by a
// background janitor.
type Memory struct {
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	entries   map[string]entry
	waitGroup sync.WaitGroup
	once      sync.Once
	cfg       Config
}

var _ cache.Backend = (*Memory)(nil)

// NewMemory returns a new in-memory backend. The janitor goroutine stops
// when parent is cancelled or Close is called.
func NewMemory(parent context.Context, cfg Config) (*Memory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	m := &Memory{
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]entry),
		cfg:     cfg,
	}
	m.waitGroup.Add(1)
	go m.run()
	return m, nil
}

func (m *Memory) Get(_ context.Context, key string) (bool, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return false, nil, nil
	}
	if e.expires.Before(time.Now()) {
		delete(m.entries, key)
		return false, nil, nil
	}
	return true, e.payload, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.MinTTL
	}
	m.mu.Lock()
	m.entries[key] = entry{payload: value, expires: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	m.mu.Lock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	m.mu.Unlock()
	return nil
}

// Len reports the number of live entries. Entries past their expiry are
// not counted even if the janitor has not swept them yet.
func (m *Memory) Len() int {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, e := range m.entries {
		if !e.expires.Before(now) {
			n++
		}
	}
	return n
}

// Close stops the janitor goroutine. Safe to call more than once.
func (m *Memory) Close() error {
	m.once.Do(func() {
		m.cancel()
		m.waitGroup.Wait()
	})
	return nil
}

func (m *Memory) run() {
	defer m.waitGroup.Done()
	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for key, e := range m.entries {
				if e.expires.Before(now) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		}
	}
}
