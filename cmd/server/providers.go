package main

import (
    "errors"
    "net/http"
    "time"

    "investreporter/internal/common"
    "investreporter/internal/config"
    "investreporter/internal/fundamentals"
    "investreporter/internal/httpx"
    "investreporter/internal/provider"
    "investreporter/internal/provider/brapi"
    "investreporter/internal/provider/cache"
    "investreporter/internal/provider/investidor10"
    "investreporter/internal/provider/ratelimit"
)

// buildEngine wires the two provider adapters (with rate-limit and cache
// decorators where configured) into a reconciliation engine.
func buildEngine(cfg config.Config, httpClient *httpx.Client, log *common.Logger) (*fundamentals.Engine, error) {
    if !cfg.Brapi.Enabled || !cfg.Investidor10.Enabled {
        return nil, errors.New("both providers must be enabled; the engine reconciles exactly two sources")
    }
    if cfg.Brapi.Token == "" {
        log.Warn().Msg("BRAPI_TOKEN not set; brapi serves a reduced quota without one")
    }

    brapiClient, err := brapi.NewClient(cfg.Brapi.Token,
        brapi.WithBaseURL(cfg.Brapi.Endpoint),
        brapi.WithHTTPClient(httpClient.HTTP),
        brapi.WithHeader(http.Header{"User-Agent": []string{httpClient.UserAgent}}),
    )
    if err != nil {
        return nil, err
    }
    market := decorate(brapi.NewProvider(brapiClient),
        cfg.Brapi.MaxRequestsPerMinute, cfg.Brapi.Burst, cfg.Brapi.MinRequestIntervalSec,
        cfg.Brapi.CacheTTLSeconds, cfg.Brapi.CacheMaxItems)

    valuation := decorate(investidor10.New(investidor10.Config{BaseURL: cfg.Investidor10.Endpoint}, httpClient),
        cfg.Investidor10.MaxRequestsPerMinute, cfg.Investidor10.Burst, cfg.Investidor10.MinRequestIntervalSec,
        cfg.Investidor10.CacheTTLSeconds, cfg.Investidor10.CacheMaxItems)

    return fundamentals.NewEngine(market, valuation,
        fundamentals.WithTimeout(time.Duration(cfg.Fundamentals.ProviderTimeoutSec)*time.Second),
        fundamentals.WithLogger(log),
    ), nil
}

// decorate wraps a provider with a rate limiter (token bucket when an RPM
// is set, otherwise a minimum interval) and a per-ticker cache.
func decorate(p provider.Provider, rpm, burst, minIntervalSec, cacheTTLSec, cacheMaxItems int) provider.Provider {
    if rpm > 0 {
        p = ratelimit.PerMinute(p, rpm, burst)
    } else if minIntervalSec > 0 {
        p = &ratelimit.MinInterval{P: p, Interval: time.Duration(minIntervalSec) * time.Second}
    }
    if cacheTTLSec > 0 {
        p = &cache.Provider{P: p, TTL: time.Duration(cacheTTLSec) * time.Second, MaxItems: cacheMaxItems}
    }
    return p
}
