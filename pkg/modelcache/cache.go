// Package modelcache is the read-through model metadata cache. On the first
// request for (tenant, model) it loads the full descriptor from the metadata
// store and retains it indefinitely; reads are served without re-validation
// until the schema-mutation path explicitly invalidates the entry. Metadata
// writes are rare and funnel through one code path, so synchronous eviction
// there is cheaper than a metadata round-trip per record.
package modelcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/structhub-io/structhub/pkg/engine"
	"github.com/structhub-io/structhub/pkg/model"
)

// Loader loads a full model descriptor from the metadata store. Called only
// on cache misses.
type Loader interface {
	LoadModel(ctx context.Context, tenant, name string) (*model.Model, error)
}

// key identifies one cache entry. The cache is keyed per logical database;
// there is no cross-tenant sharing.
type key struct {
	tenant string
	name   string
}

// Cache is a trust-based read-through model cache. Safe for concurrent reads
// racing invalidations: a read observes either the old or the freshly
// reloaded descriptor, never a mixture. The cache is an explicit instance
// owned by the composition root, not a process-wide singleton.
type Cache struct {
	mu     sync.RWMutex
	models map[key]*model.Model
	loader Loader
	logger *slog.Logger
	loads  uint64
}

// New creates an empty cache over the given loader. A nil logger falls back
// to slog.Default.
func New(loader Loader, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		models: make(map[key]*model.Model),
		loader: loader,
		logger: logger,
	}
}

// GetModel resolves a model descriptor, loading it on first request and
// serving the retained copy afterwards. Requesting a trashed or missing
// model is a hard failure and is not cached.
func (c *Cache) GetModel(ctx context.Context, tenant, name string) (*model.Model, error) {
	k := key{tenant: tenant, name: name}

	c.mu.RLock()
	m, ok := c.models[k]
	c.mu.RUnlock()
	if ok {
		return m, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another reader may have loaded it while we waited for the lock.
	if m, ok := c.models[k]; ok {
		return m, nil
	}

	loaded, err := c.loader.LoadModel(ctx, tenant, name)
	if err != nil {
		return nil, fmt.Errorf("load model %s/%s: %w", tenant, name, err)
	}
	if loaded == nil {
		return nil, engine.NewSystemError(engine.CodeModelUnavailable,
			fmt.Sprintf("model %s not found", name), nil)
	}
	if loaded.Status == model.StatusTrashed {
		return nil, engine.NewSystemError(engine.CodeModelUnavailable,
			fmt.Sprintf("model %s is trashed", name), nil)
	}

	c.loads++
	c.models[k] = loaded
	c.logger.Debug("model loaded", "tenant", tenant, "model", name)
	return loaded, nil
}

// Invalidate synchronously evicts one (tenant, model) entry. The next
// GetModel issues a fresh metadata load. Last invalidate wins.
func (c *Cache) Invalidate(tenant, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.models, key{tenant: tenant, name: name})
}

// InvalidateTenant evicts every entry for one tenant.
func (c *Cache) InvalidateTenant(tenant string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.models {
		if k.tenant == tenant {
			delete(c.models, k)
		}
	}
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = make(map[key]*model.Model)
}

// Len returns the number of retained descriptors.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}

// Loads returns the number of metadata-store loads issued so far.
func (c *Cache) Loads() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loads
}
