package fundamentals

import (
    "context"
    "time"

    "investreporter/internal/common"
    "investreporter/internal/provider"
    "investreporter/internal/ticker"
)

// DefaultProviderTimeout bounds each adapter call independently. A slow
// provider costs at most this long; the engine's wall clock is finite
// and deterministic because there are no retries.
const DefaultProviderTimeout = 8 * time.Second

// Engine fans a ticker out to the two providers, normalizes whatever
// comes back and reconciles it. The two fetches have no data dependency
// on each other and share no mutable state, so they run concurrently
// without locking.
type Engine struct {
    market    provider.Provider // primary for market fields
    valuation provider.Provider // primary for valuation fields
    timeout   time.Duration
    log       *common.Logger
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithTimeout sets the per-provider fetch timeout.
func WithTimeout(d time.Duration) EngineOption {
    return func(e *Engine) {
        if d > 0 { e.timeout = d }
    }
}

// WithLogger sets the logger.
func WithLogger(log *common.Logger) EngineOption {
    return func(e *Engine) { e.log = log }
}

// NewEngine creates an engine over the market-data provider and the
// fundamentals provider, in that order; the order fixes the per-class
// precedence used during merging.
func NewEngine(market, valuation provider.Provider, opts ...EngineOption) *Engine {
    e := &Engine{
        market:    market,
        valuation: valuation,
        timeout:   DefaultProviderTimeout,
        log:       common.NewSilentLogger(),
    }
    for _, opt := range opts {
        opt(e)
    }
    return e
}

// Fetch validates the ticker, queries both providers concurrently and
// reconciles the results. Invalid input is the only error: it is
// rejected before anything is dispatched. Every provider failure -
// timeouts included - is folded into the returned record's errors and
// quality instead.
func (e *Engine) Fetch(ctx context.Context, rawTicker string) (UnifiedRecord, error) {
    symbol, err := ticker.Parse(rawTicker)
    if err != nil {
        return UnifiedRecord{}, err
    }

    type result struct {
        rec provider.RawRecord
        err *provider.FetchError
    }
    fetch := func(p provider.Provider) chan result {
        ch := make(chan result, 1)
        go func() {
            cctx, cancel := context.WithTimeout(ctx, e.timeout)
            defer cancel()
            rec, err := p.Fetch(cctx, symbol)
            if err != nil {
                ch <- result{err: provider.AsFetchError(p.Name(), err)}
                return
            }
            ch <- result{rec: rec}
        }()
        return ch
    }

    chA, chB := fetch(e.market), fetch(e.valuation)
    ra, rb := <-chA, <-chB

    na := Normalized{Provider: e.market.Name(), Fields: map[Field]Value{}}
    nb := Normalized{Provider: e.valuation.Name(), Fields: map[Field]Value{}}

    if ra.err == nil {
        var ferrs []FieldError
        na, ferrs = Normalize(ra.rec)
        e.logFieldErrors(ferrs)
    } else {
        e.log.Warn().Str("ticker", symbol).Str("provider", e.market.Name()).Str("kind", string(ra.err.Kind)).Msg("provider fetch failed")
    }
    if rb.err == nil {
        var ferrs []FieldError
        nb, ferrs = Normalize(rb.rec)
        e.logFieldErrors(ferrs)
    } else {
        e.log.Warn().Str("ticker", symbol).Str("provider", e.valuation.Name()).Str("kind", string(rb.err.Kind)).Msg("provider fetch failed")
    }

    rec := Reconcile(symbol, na, nb, ra.err, rb.err)
    e.log.Debug().
        Str("ticker", symbol).
        Int("fields", len(rec.Fields)).
        Int("discrepancies", len(rec.Discrepancies)).
        Str("quality", string(rec.Quality)).
        Msg("reconciled")
    return rec, nil
}

func (e *Engine) logFieldErrors(ferrs []FieldError) {
    for _, fe := range ferrs {
        e.log.Debug().Str("provider", fe.Provider).Str("raw", fe.Raw).Err(fe.Err).Msg("dropped field")
    }
}
