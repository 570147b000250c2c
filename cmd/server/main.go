package main

import (
    "compress/gzip"
    "context"
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "os"
    "os/signal"
    "strings"
    "sync"
    "syscall"
    "time"

    "github.com/joho/godotenv"

    "investreporter/internal/common"
    "investreporter/internal/config"
    "investreporter/internal/fundamentals"
    "investreporter/internal/gemini"
    "investreporter/internal/httpx"
    "investreporter/internal/news"
    "investreporter/internal/report"
    "investreporter/internal/ticker"
)

func main() {
    _ = godotenv.Load()

    cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
    if err != nil {
        common.NewLogger("error").Fatal().Err(err).Msg("config")
    }
    log := common.NewLogger(cfg.LogLevel)

    httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

    engine, err := buildEngine(cfg, httpClient, log)
    if err != nil {
        log.Fatal().Err(err).Msg("providers")
    }

    newsClient := news.New(news.Config{
        BaseURL:    cfg.News.Endpoint,
        MaxResults: cfg.News.MaxResults,
        WindowDays: cfg.News.WindowDays,
        Language:   cfg.News.Language,
        Region:     cfg.News.Region,
    }, httpClient, news.WithLogger(log))

    var llm report.LLM
    if cfg.Gemini.APIKey != "" {
        gc, err := gemini.NewClient(context.Background(), cfg.Gemini.APIKey,
            gemini.WithModel(cfg.Gemini.Model), gemini.WithLogger(log))
        if err != nil {
            log.Warn().Err(err).Msg("gemini unavailable; fallback renderer only")
        } else {
            llm = gc
        }
    } else {
        log.Info().Msg("GEMINI_API_KEY not set; reports use the fallback renderer")
    }
    generator := report.NewGenerator(llm, report.WithLogger(log))

    srv := &server{
        engine:    engine,
        news:      newsClient,
        generator: generator,
        reportDir: cfg.Report.OutputDir,
        log:       log,
    }

    mux := http.NewServeMux()
    mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte(`{"status":"ok"}`))
    })
    mux.HandleFunc("/api/fundamentals", srv.handleFundamentals)
    mux.HandleFunc("/api/news", srv.handleNews)
    mux.HandleFunc("/api/report", srv.handleReport)

    httpSrv := &http.Server{
        Addr:              ":" + cfg.Server.Port,
        Handler:           withJSONHeaders(withGzip(recoverPanic(limitBody(mux)))),
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       15 * time.Second,
        WriteTimeout:      60 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    go func() {
        log.Info().Str("port", cfg.Server.Port).Msg("server listening")
        if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.Fatal().Err(err).Msg("server")
        }
    }()

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = httpSrv.Shutdown(shutdownCtx)
}

type server struct {
    engine    *fundamentals.Engine
    news      *news.Client
    generator *report.Generator
    reportDir string
    log       *common.Logger
}

func (s *server) handleFundamentals(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
        return
    }
    rec, ok := s.fetchRecord(w, r, r.URL.Query().Get("ticker"))
    if !ok { return }
    writeJSON(w, rec)
}

func (s *server) handleNews(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
        return
    }
    symbol, err := ticker.Parse(r.URL.Query().Get("ticker"))
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    headlines, err := s.news.Search(r.Context(), symbol)
    if err != nil {
        http.Error(w, "news source unavailable", http.StatusBadGateway)
        return
    }
    writeJSON(w, struct {
        Ticker    string          `json:"ticker"`
        Headlines []news.Headline `json:"headlines"`
    }{symbol, headlines})
}

type reportResponse struct {
    Ticker  string               `json:"ticker"`
    Quality fundamentals.Quality `json:"quality"`
    Rating  string               `json:"rating"`
    Report  string               `json:"report"`
    Path    string               `json:"path,omitempty"`
}

func (s *server) handleReport(w http.ResponseWriter, r *http.Request) {
    var rawTicker string
    var save bool
    switch r.Method {
    case http.MethodGet:
        rawTicker = r.URL.Query().Get("ticker")
        save = r.URL.Query().Get("save") == "1"
    case http.MethodPost:
        var body struct {
            Ticker string `json:"ticker"`
            Save   bool   `json:"save"`
        }
        dec := json.NewDecoder(r.Body)
        dec.DisallowUnknownFields()
        if err := dec.Decode(&body); err != nil {
            http.Error(w, "invalid JSON body", http.StatusBadRequest)
            return
        }
        rawTicker, save = body.Ticker, body.Save
    default:
        http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
        return
    }

    rec, ok := s.fetchRecord(w, r, rawTicker)
    if !ok { return }

    // News failure degrades to a report without headlines.
    headlines, err := s.news.Search(r.Context(), rec.Ticker)
    if err != nil {
        s.log.Warn().Err(err).Str("ticker", rec.Ticker).Msg("news unavailable")
    }

    text, err := s.generator.Generate(r.Context(), rec, headlines)
    if err != nil {
        http.Error(w, "report generation failed", http.StatusInternalServerError)
        return
    }

    resp := reportResponse{Ticker: rec.Ticker, Quality: rec.Quality, Rating: report.Rating(rec), Report: text}
    if save {
        path, err := report.Write(s.reportDir, rec.Ticker, text)
        if err != nil {
            s.log.Error().Err(err).Str("ticker", rec.Ticker).Msg("persisting report")
        } else {
            resp.Path = path
        }
    }
    writeJSON(w, resp)
}

// fetchRecord reconciles the ticker, rejecting invalid input with 400
// before anything is dispatched. Source failures never 5xx: the record
// carries them in errors/quality.
func (s *server) fetchRecord(w http.ResponseWriter, r *http.Request, rawTicker string) (fundamentals.UnifiedRecord, bool) {
    if strings.TrimSpace(rawTicker) == "" {
        http.Error(w, "missing ticker", http.StatusBadRequest)
        return fundamentals.UnifiedRecord{}, false
    }
    rec, err := s.engine.Fetch(r.Context(), rawTicker)
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return fundamentals.UnifiedRecord{}, false
    }
    return rec, true
}

func writeJSON(w http.ResponseWriter, v any) {
    w.WriteHeader(http.StatusOK)
    enc := json.NewEncoder(w)
    enc.SetEscapeHTML(false)
    _ = enc.Encode(v)
}

func withJSONHeaders(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json; charset=utf-8")
        next.ServeHTTP(w, r)
    })
}

// withGzip compresses response when the client supports gzip.
func withGzip(next http.Handler) http.Handler {
    var gzPool = sync.Pool{New: func() any {
        w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
        return w
    }}
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
            next.ServeHTTP(w, r)
            return
        }
        gz := gzPool.Get().(*gzip.Writer)
        gz.Reset(w)
        defer func() {
            _ = gz.Close()
            gz.Reset(io.Discard)
            gzPool.Put(gz)
        }()
        w.Header().Set("Content-Encoding", "gzip")
        w.Header().Add("Vary", "Accept-Encoding")
        next.ServeHTTP(gzipResponseWriter{ResponseWriter: w, Writer: gz}, r)
    })
}

type gzipResponseWriter struct {
    http.ResponseWriter
    Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
    return g.Writer.Write(b)
}

// limitBody caps request body size to avoid memory abuse.
func limitBody(next http.Handler) http.Handler {
    const maxBody = 1 << 20 // 1MB
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Method == http.MethodPost && r.Body != nil {
            r.Body = http.MaxBytesReader(w, r.Body, maxBody)
        }
        next.ServeHTTP(w, r)
    })
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        defer func() {
            if rec := recover(); rec != nil {
                http.Error(w, "internal server error", http.StatusInternalServerError)
            }
        }()
        next.ServeHTTP(w, r)
    })
}
