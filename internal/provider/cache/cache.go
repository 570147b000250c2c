package cache

import (
    "context"
    "sync"
    "time"

    "investreporter/internal/provider"
)

// entry stores a cached raw record with expiry.
type entry struct {
    expiresAt time.Time
    rec       provider.RawRecord
}

// Provider caches successful fetches per ticker for a TTL. Errors are
// never cached, so a failing source is retried on the next call. The
// cache returns the stored snapshot as-is; records are immutable so no
// state leaks between reconciliations.
type Provider struct {
    P        provider.Provider
    TTL      time.Duration
    MaxItems int

    mu    sync.RWMutex
    items map[string]entry // key: ticker
}

func (c *Provider) Name() string { return c.P.Name() }

func (c *Provider) Fetch(ctx context.Context, ticker string) (provider.RawRecord, error) {
    if c.P == nil || c.TTL <= 0 {
        return c.P.Fetch(ctx, ticker)
    }

    now := time.Now()

    c.mu.RLock()
    e, ok := c.items[ticker]
    c.mu.RUnlock()
    if ok && now.Before(e.expiresAt) {
        return e.rec, nil
    }

    rec, err := c.P.Fetch(ctx, ticker)
    if err != nil {
        return provider.RawRecord{}, err
    }

    c.mu.Lock()
    if c.items == nil {
        c.items = make(map[string]entry)
    }
    c.items[ticker] = entry{expiresAt: now.Add(c.TTL), rec: rec}
    // best-effort cap: drop expired entries first, then arbitrary ones
    if c.MaxItems > 0 && len(c.items) > c.MaxItems {
        for k, v := range c.items {
            if time.Now().After(v.expiresAt) {
                delete(c.items, k)
            }
            if len(c.items) <= c.MaxItems { break }
        }
        for k := range c.items {
            if len(c.items) <= c.MaxItems { break }
            delete(c.items, k)
        }
    }
    c.mu.Unlock()

    return rec, nil
}
