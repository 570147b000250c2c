// Command fetch reconciles one ticker and prints the unified record as
// indented JSON. Debug tool for inspecting provider agreement.
package main

import (
    "context"
    "encoding/json"
    "flag"
    "fmt"
    "net/http"
    "os"
    "time"

    "github.com/joho/godotenv"

    "investreporter/internal/common"
    "investreporter/internal/config"
    "investreporter/internal/fundamentals"
    "investreporter/internal/httpx"
    "investreporter/internal/provider/brapi"
    "investreporter/internal/provider/investidor10"
)

func main() {
    _ = godotenv.Load()

    var rawTicker string
    var configPath string
    var timeout int

    flag.StringVar(&rawTicker, "ticker", "PETR4", "B3 ticker symbol")
    flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
    flag.IntVar(&timeout, "timeout", 15, "request timeout seconds")
    flag.Parse()

    cfg, err := config.Load(configPath)
    if err != nil {
        common.NewLogger("error").Fatal().Err(err).Msg("config")
    }
    log := common.NewLogger(cfg.LogLevel)

    httpClient := httpx.New(time.Duration(timeout) * time.Second)

    brapiClient, err := brapi.NewClient(cfg.Brapi.Token,
        brapi.WithBaseURL(cfg.Brapi.Endpoint),
        brapi.WithHTTPClient(httpClient.HTTP),
        brapi.WithHeader(http.Header{"User-Agent": []string{httpClient.UserAgent}}),
    )
    if err != nil {
        log.Fatal().Err(err).Msg("brapi client")
    }

    engine := fundamentals.NewEngine(
        brapi.NewProvider(brapiClient),
        investidor10.New(investidor10.Config{BaseURL: cfg.Investidor10.Endpoint}, httpClient),
        fundamentals.WithTimeout(time.Duration(cfg.Fundamentals.ProviderTimeoutSec)*time.Second),
        fundamentals.WithLogger(log),
    )

    ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
    defer cancel()

    rec, err := engine.Fetch(ctx, rawTicker)
    if err != nil {
        log.Fatal().Err(err).Str("ticker", rawTicker).Msg("fetch")
    }

    b, _ := json.MarshalIndent(rec, "", "  ")
    fmt.Println(string(b))
}
