package ratelimit

import (
    "context"
    "sync"
    "time"

    "golang.org/x/time/rate"

    "investreporter/internal/provider"
)

// Limiter wraps a provider and gates Fetch calls with a token bucket.
type Limiter struct {
    P provider.Provider
    L *rate.Limiter
}

// PerMinute builds a Limiter allowing rpm requests per minute with the
// given burst (minimum 1).
func PerMinute(p provider.Provider, rpm, burst int) *Limiter {
    if burst <= 0 { burst = 1 }
    return &Limiter{P: p, L: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)}
}

func (l *Limiter) Name() string { return l.P.Name() }

func (l *Limiter) Fetch(ctx context.Context, ticker string) (provider.RawRecord, error) {
    if l.L != nil {
        if err := l.L.Wait(ctx); err != nil {
            return provider.RawRecord{}, provider.AsFetchError(l.P.Name(), err)
        }
    }
    return l.P.Fetch(ctx, ticker)
}

// MinInterval wraps a provider and enforces a minimum time between calls.
// Concurrent calls wait until the interval has elapsed since the last call,
// or return early if the context is canceled.
type MinInterval struct {
    P        provider.Provider
    Interval time.Duration
    mu       sync.Mutex
    last     time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) Fetch(ctx context.Context, ticker string) (provider.RawRecord, error) {
    if m.Interval > 0 {
        m.mu.Lock()
        wait := time.Until(m.last.Add(m.Interval))
        m.mu.Unlock()
        if wait > 0 {
            t := time.NewTimer(wait)
            defer t.Stop()
            select {
            case <-ctx.Done():
                return provider.RawRecord{}, provider.AsFetchError(m.P.Name(), ctx.Err())
            case <-t.C:
            }
        }
    }
    rec, err := m.P.Fetch(ctx, ticker)
    if m.Interval > 0 {
        m.mu.Lock()
        m.last = time.Now()
        m.mu.Unlock()
    }
    return rec, err
}
