package investidor10

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "investreporter/internal/httpx"
    "investreporter/internal/provider"
)

// tickerPage mimics the structure of a real investidor10 ticker page:
// part of the indicator prose lives in a FAQPage ld+json block, part in
// the rendered body.
const tickerPage = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<title>BBAS3 - Banco do Brasil</title>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "FAQPage",
  "mainEntity": [
    {
      "@type": "Question",
      "name": "Qual a cotação de BBAS3 hoje?",
      "acceptedAnswer": {"@type": "Answer", "text": "A ação BBAS3 está cotada a R$ 21,31, com uma variação de -2,35% nos últimos 12 meses."}
    },
    {
      "@type": "Question",
      "name": "Quais os indicadores de BBAS3?",
      "acceptedAnswer": {"@type": "Answer", "text": "BBAS3 possui P/L de 5,65, P/VP de 0,92 e valor de mercado de R$ 122,12 B. Nos últimos 12 meses, distribuiu um total de R$ 2,66 por ação."}
    }
  ]
}
</script>
</head>
<body>
<div class="indicators">
  <span>Dividend Yield</span><span>12,5%</span>
  <span>ROE</span><span>12,1%</span>
  <span>Liquidez Diária R$ 237,23 M</span>
</div>
</body>
</html>`

func TestExtract(t *testing.T) {
    raw, err := Extract(strings.NewReader(tickerPage))
    if err != nil { t.Fatalf("Extract: %v", err) }

    want := map[string]string{
        RawPrice:          "21,31",
        RawVariation12m:   "-2,35%",
        RawPE:             "5,65",
        RawPB:             "0,92",
        RawDividendYield:  "12,5%",
        RawROE:            "12,1%",
        RawMarketValue:    "R$ 122,12 B",
        RawDividends12m:   "2,66",
        RawDailyLiquidity: "R$ 237,23 M",
    }
    for label, value := range want {
        if got := raw[label]; got != value {
            t.Errorf("%s = %q, want %q", label, got, value)
        }
    }
}

func TestExtract_MissingIndicatorsAbsentNotZero(t *testing.T) {
    page := `<html><body><p>A ação XPTO3 está cotada a R$ 10,00 hoje.</p></body></html>`

    raw, err := Extract(strings.NewReader(page))
    if err != nil { t.Fatalf("Extract: %v", err) }

    if raw[RawPrice] != "10,00" {
        t.Fatalf("price = %q, want 10,00", raw[RawPrice])
    }
    if _, ok := raw[RawPE]; ok {
        t.Fatal("P/L not on the page, must be absent from the result")
    }
}

func TestExtract_IgnoresMalformedLDJSON(t *testing.T) {
    page := `<html><head>
<script type="application/ld+json">{not json at all</script>
</head><body><p>está cotada a R$ 32,57</p></body></html>`

    raw, err := Extract(strings.NewReader(page))
    if err != nil { t.Fatalf("Extract: %v", err) }
    if raw[RawPrice] != "32,57" {
        t.Fatalf("price = %q, want 32,57", raw[RawPrice])
    }
}

func newTestProvider(baseURL string) *Provider {
    return New(Config{BaseURL: baseURL}, httpx.New(5*time.Second))
}

func TestFetch(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path != "/acoes/bbas3/" {
            t.Errorf("path = %s, want /acoes/bbas3/", r.URL.Path)
        }
        if lang := r.Header.Get("Accept-Language"); !strings.HasPrefix(lang, "pt-BR") {
            t.Errorf("Accept-Language = %q, want pt-BR first", lang)
        }
        w.Write([]byte(tickerPage))
    }))
    defer srv.Close()

    rec, err := newTestProvider(srv.URL).Fetch(context.Background(), "BBAS3")
    if err != nil { t.Fatalf("Fetch: %v", err) }

    if rec.Provider != Name || rec.Ticker != "BBAS3" {
        t.Fatalf("record = %+v", rec)
    }
    if rec.Fields[RawPE] != "5,65" {
        t.Fatalf("P/L = %q, want 5,65", rec.Fields[RawPE])
    }
}

func TestFetch_FIIPath(t *testing.T) {
    var gotPath string
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        gotPath = r.URL.Path
        w.Write([]byte(tickerPage))
    }))
    defer srv.Close()

    if _, err := newTestProvider(srv.URL).Fetch(context.Background(), "HGLG11"); err != nil {
        t.Fatalf("Fetch: %v", err)
    }
    if gotPath != "/fiis/hglg11/" {
        t.Fatalf("path = %s, want /fiis/hglg11/", gotPath)
    }
}

func TestFetch_ErrorKinds(t *testing.T) {
    cases := []struct {
        name   string
        status int
        body   string
        kind   provider.ErrKind
    }{
        {"not found", http.StatusNotFound, "", provider.ErrNotFound},
        {"throttled", http.StatusTooManyRequests, "", provider.ErrRateLimited},
        {"server error", http.StatusBadGateway, "", provider.ErrTransport},
        {"empty page", http.StatusOK, "<html><body>nada aqui</body></html>", provider.ErrParse},
    }

    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
                w.WriteHeader(tc.status)
                w.Write([]byte(tc.body))
            }))
            defer srv.Close()

            _, err := newTestProvider(srv.URL).Fetch(context.Background(), "BBAS3")
            var fe *provider.FetchError
            if !errors.As(err, &fe) {
                t.Fatalf("error %v is not a FetchError", err)
            }
            if fe.Kind != tc.kind {
                t.Fatalf("kind = %s, want %s", fe.Kind, tc.kind)
            }
            if fe.Provider != Name {
                t.Fatalf("provider = %s, want %s", fe.Provider, Name)
            }
        })
    }
}
