// Package investidor10 scrapes fundamentals from investidor10.com.br.
package investidor10

import (
    "context"
    "fmt"
    "io"
    "net/http"
    "strings"
    "time"

    "golang.org/x/sync/singleflight"

    "investreporter/internal/httpx"
    "investreporter/internal/provider"
    "investreporter/internal/ticker"
)

// Name is the provider identifier tagged on records and provenance.
const Name = "investidor10"

// Config controls the investidor10 provider behavior.
type Config struct {
    BaseURL        string            // default: https://investidor10.com.br
    AcceptLanguage string            // default: pt-BR first, the site localizes numbers
    Headers        map[string]string // optional extra headers
}

// Provider fetches fundamentals by scraping the public ticker page.
// It is the fundamentals/valuation source: strong on P/L, P/VP, yield
// and ROE, weaker on live market data. Concurrent fetches for the same
// ticker are coalesced, so a burst of requests hits the site once.
type Provider struct {
    cfg    Config
    client *httpx.Client

    sf singleflight.Group
}

func New(cfg Config, hc *httpx.Client) *Provider {
    if cfg.BaseURL == "" { cfg.BaseURL = "https://investidor10.com.br" }
    if cfg.AcceptLanguage == "" { cfg.AcceptLanguage = "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7" }
    return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Fetch(ctx context.Context, symbol string) (provider.RawRecord, error) {
    v, err, _ := p.sf.Do(symbol, func() (any, error) {
        return p.fetchPage(ctx, symbol)
    })
    if err != nil {
        return provider.RawRecord{}, provider.AsFetchError(Name, err)
    }
    fields := v.(map[string]string)
    return provider.RawRecord{
        Ticker:    symbol,
        Provider:  Name,
        Fields:    fields,
        FetchedAt: time.Now().UTC(),
    }, nil
}

func (p *Provider) fetchPage(ctx context.Context, symbol string) (map[string]string, error) {
    // FIIs live under a different path than common stock.
    section := "acoes"
    if ticker.IsFII(symbol) { section = "fiis" }
    url := fmt.Sprintf("%s/%s/%s/", strings.TrimRight(p.cfg.BaseURL, "/"), section, strings.ToLower(symbol))

    req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
    if err != nil {
        return nil, provider.NewFetchError(Name, provider.ErrTransport, "creating request", err)
    }
    req.Header.Set("Accept-Language", p.cfg.AcceptLanguage)
    for k, v := range p.cfg.Headers { req.Header.Set(k, v) }

    resp, err := p.client.Do(ctx, req)
    if err != nil {
        return nil, provider.NewFetchError(Name, provider.ErrTransport, "GET "+url, err)
    }
    defer resp.Body.Close()

    switch {
    case resp.StatusCode == http.StatusNotFound:
        return nil, provider.NewFetchError(Name, provider.ErrNotFound, fmt.Sprintf("ticker %s not found", symbol), nil)
    case resp.StatusCode == http.StatusTooManyRequests:
        return nil, provider.NewFetchError(Name, provider.ErrRateLimited, "throttled by site", nil)
    case resp.StatusCode < 200 || resp.StatusCode >= 300:
        return nil, provider.NewFetchError(Name, provider.ErrTransport, fmt.Sprintf("GET %s -> %d", url, resp.StatusCode), nil)
    }

    // Pages run ~1-2MB; cap the read so a misbehaving response cannot
    // balloon memory.
    body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
    if err != nil {
        return nil, provider.NewFetchError(Name, provider.ErrTransport, "reading body", err)
    }

    fields, err := Extract(strings.NewReader(string(body)))
    if err != nil {
        return nil, provider.NewFetchError(Name, provider.ErrParse, "parsing page", err)
    }
    if len(fields) == 0 {
        return nil, provider.NewFetchError(Name, provider.ErrParse, "page yielded no indicator values", nil)
    }
    return fields, nil
}
