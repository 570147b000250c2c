// Command report runs the full pipeline for one ticker: reconcile
// fundamentals from both providers, gather recent headlines, generate
// the narrative and write the markdown report.
package main

import (
    "context"
    "flag"
    "fmt"
    "net/http"
    "os"
    "time"

    "github.com/joho/godotenv"

    "investreporter/internal/common"
    "investreporter/internal/config"
    "investreporter/internal/fundamentals"
    "investreporter/internal/gemini"
    "investreporter/internal/httpx"
    "investreporter/internal/news"
    "investreporter/internal/provider"
    "investreporter/internal/provider/brapi"
    "investreporter/internal/provider/investidor10"
    "investreporter/internal/provider/ratelimit"
    "investreporter/internal/report"
)

func main() {
    _ = godotenv.Load()

    var rawTicker string
    var configPath string
    var outDir string
    var skipNews bool
    var printOnly bool

    flag.StringVar(&rawTicker, "ticker", "PETR4", "B3 ticker symbol (PETR4, BBAS3, ...)")
    flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
    flag.StringVar(&outDir, "out", "", "output directory (overrides config)")
    flag.BoolVar(&skipNews, "skip-news", false, "skip the headline search")
    flag.BoolVar(&printOnly, "print", false, "print the report to stdout instead of writing a file")
    flag.Parse()

    cfg, err := config.Load(configPath)
    if err != nil {
        common.NewLogger("error").Fatal().Err(err).Msg("config")
    }
    if outDir != "" { cfg.Report.OutputDir = outDir }
    log := common.NewLogger(cfg.LogLevel)

    httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

    brapiClient, err := brapi.NewClient(cfg.Brapi.Token,
        brapi.WithBaseURL(cfg.Brapi.Endpoint),
        brapi.WithHTTPClient(httpClient.HTTP),
        brapi.WithHeader(http.Header{"User-Agent": []string{httpClient.UserAgent}}),
    )
    if err != nil {
        log.Fatal().Err(err).Msg("brapi client")
    }
    var market provider.Provider = brapi.NewProvider(brapiClient)
    if cfg.Brapi.MaxRequestsPerMinute > 0 {
        market = ratelimit.PerMinute(market, cfg.Brapi.MaxRequestsPerMinute, cfg.Brapi.Burst)
    }
    var valuation provider.Provider = investidor10.New(investidor10.Config{BaseURL: cfg.Investidor10.Endpoint}, httpClient)
    if cfg.Investidor10.MaxRequestsPerMinute > 0 {
        valuation = ratelimit.PerMinute(valuation, cfg.Investidor10.MaxRequestsPerMinute, cfg.Investidor10.Burst)
    }

    engine := fundamentals.NewEngine(market, valuation,
        fundamentals.WithTimeout(time.Duration(cfg.Fundamentals.ProviderTimeoutSec)*time.Second),
        fundamentals.WithLogger(log),
    )

    ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
    defer cancel()

    rec, err := engine.Fetch(ctx, rawTicker)
    if err != nil {
        log.Fatal().Err(err).Str("ticker", rawTicker).Msg("fetch")
    }
    log.Info().Str("ticker", rec.Ticker).Str("quality", string(rec.Quality)).
        Int("fields", len(rec.Fields)).Int("discrepancies", len(rec.Discrepancies)).
        Msg("fundamentals reconciled")

    var headlines []news.Headline
    if !skipNews {
        newsClient := news.New(news.Config{
            BaseURL:    cfg.News.Endpoint,
            MaxResults: cfg.News.MaxResults,
            WindowDays: cfg.News.WindowDays,
            Language:   cfg.News.Language,
            Region:     cfg.News.Region,
        }, httpClient, news.WithLogger(log))
        headlines, err = newsClient.Search(ctx, rec.Ticker)
        if err != nil {
            log.Warn().Err(err).Msg("news unavailable; continuing without headlines")
        }
    }

    var llm report.LLM
    if cfg.Gemini.APIKey != "" {
        gc, err := gemini.NewClient(ctx, cfg.Gemini.APIKey,
            gemini.WithModel(cfg.Gemini.Model), gemini.WithLogger(log))
        if err != nil {
            log.Warn().Err(err).Msg("gemini unavailable; using fallback renderer")
        } else {
            llm = gc
        }
    }
    generator := report.NewGenerator(llm, report.WithLogger(log))

    text, err := generator.Generate(ctx, rec, headlines)
    if err != nil {
        log.Fatal().Err(err).Msg("generate")
    }

    if printOnly {
        fmt.Println(text)
        return
    }

    path, err := report.Write(cfg.Report.OutputDir, rec.Ticker, text)
    if err != nil {
        log.Fatal().Err(err).Msg("write report")
    }
    log.Info().Str("path", path).Str("rating", report.Rating(rec)).Msg("report written")
    if rec.Quality != fundamentals.QualityOK {
        log.Warn().Str("quality", string(rec.Quality)).Msg("report generated from incomplete or disputed data")
    }
}
