package llm

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/valkey-io/valkey-go"
	"go.uber.org/zap"
)

// Cache stores parsed skill lists keyed by a hash of model and prompt.
// Implementations must be safe for concurrent use. A failing cache never
// fails the extraction.
type Cache interface {
	Get(ctx context.Context, key string) ([]string, bool)
	Set(ctx context.Context, key string, skills []string)
}

type noCache struct{}

func (noCache) Get(context.Context, string) ([]string, bool) { return nil, false }
func (noCache) Set(context.Context, string, []string)        {}

// MemoryCache provides simple in-memory caching for LLM results
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	ttl     time.Duration
}

type CacheEntry struct {
	Skills    []string
	Timestamp time.Time
}

// NewMemoryCache creates a new cache with specified TTL
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*CacheEntry),
		ttl:     ttl,
	}
}

// Get retrieves cached skills if available and not expired
func (c *MemoryCache) Get(_ context.Context, key string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Since(entry.Timestamp) > c.ttl {
		return nil, false
	}

	out := make([]string, len(entry.Skills))
	copy(out, entry.Skills)
	return out, true
}

func (c *MemoryCache) Set(_ context.Context, key string, skills []string) {
	stored := make([]string, len(skills))
	copy(stored, skills)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &CacheEntry{
		Skills:    stored,
		Timestamp: time.Now(),
	}
}

// CleanExpired removes expired entries.
func (c *MemoryCache) CleanExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.Sub(entry.Timestamp) > c.ttl {
			delete(c.entries, key)
		}
	}
}

// StartJanitor runs CleanExpired every interval until the returned stop
// func is called. stop is safe to call more than once.
func (c *MemoryCache) StartJanitor(interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				c.CleanExpired()
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

const valkeyKeyPrefix = "skills:llm:"

// ValkeyCache keeps results in Valkey so several instances share them.
type ValkeyCache struct {
	client valkey.Client
	ttl    time.Duration
}

// NewValkeyCache connects and pings the server.
func NewValkeyCache(ctx context.Context, address, password string, ttl time.Duration) (*ValkeyCache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{address},
		Password:    password,
	})
	if err != nil {
		return nil, eris.Wrap(err, "llm cache: create valkey client")
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, eris.Wrap(err, "llm cache: ping valkey")
	}

	return &ValkeyCache{client: client, ttl: ttl}, nil
}

func (c *ValkeyCache) Get(ctx context.Context, key string) ([]string, bool) {
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(valkeyKeyPrefix+key).Build()).ToString()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			zap.L().Warn("llm cache: valkey get failed", zap.Error(err))
		}
		return nil, false
	}

	var skills []string
	if err := json.Unmarshal([]byte(raw), &skills); err != nil {
		return nil, false
	}
	return skills, true
}

func (c *ValkeyCache) Set(ctx context.Context, key string, skills []string) {
	data, err := json.Marshal(skills)
	if err != nil {
		return
	}

	cmd := c.client.B().Set().
		Key(valkeyKeyPrefix + key).
		Value(string(data)).
		ExSeconds(int64(c.ttl / time.Second)).
		Build()

	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		zap.L().Warn("llm cache: valkey set failed", zap.Error(err))
	}
}

func (c *ValkeyCache) Close() {
	c.client.Close()
}

// CacheOptions selects the cache driver: "none", "memory" or "valkey".
type CacheOptions struct {
	Driver   string
	TTL      time.Duration
	Address  string
	Password string
}

// janitorInterval sweeps once per TTL, bounded to [1s, 10m].
func janitorInterval(ttl time.Duration) time.Duration {
	switch {
	case ttl < time.Second:
		return time.Second
	case ttl > 10*time.Minute:
		return 10 * time.Minute
	}
	return ttl
}

// NewCache builds the configured cache. The returned close func is never nil.
func NewCache(ctx context.Context, opts CacheOptions) (Cache, func(), error) {
	switch opts.Driver {
	case "", "none":
		return noCache{}, func() {}, nil
	case "memory":
		if opts.TTL <= 0 {
			return nil, nil, eris.Errorf("llm cache: memory ttl must be positive, got %s", opts.TTL)
		}
		c := NewMemoryCache(opts.TTL)
		return c, c.StartJanitor(janitorInterval(opts.TTL)), nil
	case "valkey":
		if opts.TTL < time.Second {
			return nil, nil, eris.Errorf("llm cache: valkey ttl must be at least 1s, got %s", opts.TTL)
		}
		c, err := NewValkeyCache(ctx, opts.Address, opts.Password, opts.TTL)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		return nil, nil, eris.Errorf("llm cache: unknown driver %q", opts.Driver)
	}
}
