package command

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	"sqlpp/internal/core"
	"sqlpp/internal/introspect"
)

// serverCache holds the process-wide schema snapshot for one server
// endpoint. schema is swapped atomically on refresh/invalidation so a
// reader never observes a partially updated *core.Database, mirroring the
// registry pattern already used by internal/dialect.registry and
// internal/introspect.registry.
type serverCache struct {
	schema atomic.Pointer[core.Database]
}

var (
	cachesMu sync.RWMutex
	caches   = make(map[string]*serverCache)
)

func cacheFor(serverKey string) *serverCache {
	cachesMu.RLock()
	c, ok := caches[serverKey]
	cachesMu.RUnlock()
	if ok {
		return c
	}

	cachesMu.Lock()
	defer cachesMu.Unlock()
	if c, ok = caches[serverKey]; ok {
		return c
	}
	c = &serverCache{}
	caches[serverKey] = c
	return c
}

// Schema returns the cached schema snapshot for serverKey (conventionally
// "host:port"), introspecting db on first use or after an invalidation and
// caching the result for subsequent callers sharing the same serverKey.
func Schema(ctx context.Context, serverKey string, dialect core.Dialect, db *sql.DB) (*core.Database, error) {
	c := cacheFor(serverKey)
	if snap := c.schema.Load(); snap != nil {
		return snap, nil
	}

	ins, err := introspect.NewIntrospecter(dialect)
	if err != nil {
		return nil, err
	}
	snap, err := ins.Introspect(ctx, db)
	if err != nil {
		return nil, err
	}
	c.schema.Store(snap)
	return snap, nil
}

// InvalidateSchema drops the cached snapshot for serverKey, forcing the
// next Schema call to re-introspect. Called after any DDL Exec.
func InvalidateSchema(serverKey string) {
	cacheFor(serverKey).schema.Store(nil)
}
