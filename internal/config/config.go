package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
)

type Server struct {
    Port              string `json:"port"`
    RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Brapi struct {
    Enabled               bool   `json:"enabled"`
    Token                 string `json:"token"`
    Endpoint              string `json:"endpoint"`
    MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
    MinRequestIntervalSec int    `json:"min_request_interval_sec"`
    Burst                 int    `json:"burst"`
    CacheTTLSeconds       int    `json:"cache_ttl_sec"`
    CacheMaxItems         int    `json:"cache_max_items"`
}

type Investidor10 struct {
    Enabled               bool   `json:"enabled"`
    Endpoint              string `json:"endpoint"`
    MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
    MinRequestIntervalSec int    `json:"min_request_interval_sec"`
    Burst                 int    `json:"burst"`
    CacheTTLSeconds       int    `json:"cache_ttl_sec"`
    CacheMaxItems         int    `json:"cache_max_items"`
}

type Fundamentals struct {
    ProviderTimeoutSec int `json:"provider_timeout_sec"`
}

type News struct {
    Endpoint   string `json:"endpoint"`
    MaxResults int    `json:"max_results"`
    WindowDays int    `json:"window_days"`
    Language   string `json:"language"`
    Region     string `json:"region"`
}

type Gemini struct {
    APIKey string `json:"api_key"`
    Model  string `json:"model"`
}

type Report struct {
    OutputDir string `json:"output_dir"`
}

type Config struct {
    LogLevel     string       `json:"log_level"`
    Server       Server       `json:"server"`
    Brapi        Brapi        `json:"brapi"`
    Investidor10 Investidor10 `json:"investidor10"`
    Fundamentals Fundamentals `json:"fundamentals"`
    News         News         `json:"news"`
    Gemini       Gemini       `json:"gemini"`
    Report       Report       `json:"report"`
}

func Default() Config {
    return Config{
        LogLevel: "info",
        Server:   Server{Port: "8080", RequestTimeoutSec: 15},
        Brapi: Brapi{
            Enabled:              true,
            Endpoint:             "https://brapi.dev/api",
            MaxRequestsPerMinute: 30,
            Burst:                5,
            CacheTTLSeconds:      60,
            CacheMaxItems:        1000,
        },
        Investidor10: Investidor10{
            Enabled:              true,
            Endpoint:             "https://investidor10.com.br",
            MaxRequestsPerMinute: 12,
            Burst:                2,
            CacheTTLSeconds:      300,
            CacheMaxItems:        1000,
        },
        Fundamentals: Fundamentals{ProviderTimeoutSec: 8},
        News: News{
            Endpoint:   "https://news.google.com/rss/search",
            MaxResults: 10,
            WindowDays: 30,
            Language:   "pt-BR",
            Region:     "BR",
        },
        Gemini: Gemini{Model: "gemini-2.5-flash"},
        Report: Report{OutputDir: "reports"},
    }
}

// Load reads JSON config from path. If path is empty or the file does not
// exist, it returns defaults. Environment variables override select
// fields so secrets stay out of the file.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        if _, err := os.Stat("config.json"); err == nil {
            path = "config.json"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := json.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    applyEnv(&cfg)
    return cfg, nil
}

func applyEnv(cfg *Config) {
    if v := os.Getenv("LOG_LEVEL"); v != "" { cfg.LogLevel = v }
    if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
    if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Server.RequestTimeoutSec = x }
    }

    if v := os.Getenv("BRAPI_TOKEN"); v != "" { cfg.Brapi.Token = v }
    if v := os.Getenv("BRAPI_ENDPOINT"); v != "" { cfg.Brapi.Endpoint = v }
    if v := os.Getenv("BRAPI_MAX_RPM"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Brapi.MaxRequestsPerMinute = x }
    }
    if v := os.Getenv("BRAPI_MIN_INTERVAL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Brapi.MinRequestIntervalSec = x }
    }
    if v := os.Getenv("BRAPI_BURST"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Brapi.Burst = x }
    }
    if v := os.Getenv("BRAPI_CACHE_TTL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Brapi.CacheTTLSeconds = x }
    }

    if v := os.Getenv("INVESTIDOR10_ENDPOINT"); v != "" { cfg.Investidor10.Endpoint = v }
    if v := os.Getenv("INVESTIDOR10_MAX_RPM"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Investidor10.MaxRequestsPerMinute = x }
    }
    if v := os.Getenv("INVESTIDOR10_MIN_INTERVAL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Investidor10.MinRequestIntervalSec = x }
    }
    if v := os.Getenv("INVESTIDOR10_BURST"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Investidor10.Burst = x }
    }
    if v := os.Getenv("INVESTIDOR10_CACHE_TTL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Investidor10.CacheTTLSeconds = x }
    }

    if v := os.Getenv("PROVIDER_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Fundamentals.ProviderTimeoutSec = x }
    }

    if v := os.Getenv("NEWS_ENDPOINT"); v != "" { cfg.News.Endpoint = v }
    if v := os.Getenv("NEWS_MAX_RESULTS"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.News.MaxResults = x }
    }
    if v := os.Getenv("NEWS_WINDOW_DAYS"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.News.WindowDays = x }
    }
    if v := os.Getenv("NEWS_LANGUAGE"); v != "" { cfg.News.Language = v }
    if v := os.Getenv("NEWS_REGION"); v != "" { cfg.News.Region = v }

    if v := os.Getenv("GEMINI_API_KEY"); v != "" { cfg.Gemini.APIKey = v }
    if v := os.Getenv("GEMINI_MODEL"); v != "" { cfg.Gemini.Model = v }

    if v := os.Getenv("REPORTS_DIR"); v != "" { cfg.Report.OutputDir = v }
}
