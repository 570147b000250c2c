// Package report turns a unified fundamentals record plus headlines into
// a markdown investment report and persists it.
package report

import (
    "context"
    "fmt"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "time"

    "investreporter/internal/common"
    "investreporter/internal/fundamentals"
    "investreporter/internal/news"
)

// LLM generates narrative text from a prompt. *gemini.Client satisfies
// it; a nil LLM means the deterministic renderer is used directly.
type LLM interface {
    GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Generator produces the final report text. LLM output is preferred;
// any LLM failure falls back to the deterministic renderer so a run
// never fails for narrative reasons.
type Generator struct {
    llm LLM
    log *common.Logger
    now func() time.Time
}

// GeneratorOption configures the generator.
type GeneratorOption func(*Generator)

// WithLogger sets the logger.
func WithLogger(log *common.Logger) GeneratorOption {
    return func(g *Generator) { g.log = log }
}

// WithClock overrides the clock stamped onto rendered reports.
func WithClock(now func() time.Time) GeneratorOption {
    return func(g *Generator) {
        if now != nil { g.now = now }
    }
}

func NewGenerator(llm LLM, opts ...GeneratorOption) *Generator {
    g := &Generator{llm: llm, log: common.NewSilentLogger(), now: time.Now}
    for _, opt := range opts {
        opt(g)
    }
    return g
}

// Generate renders the report for a reconciled record. The record may be
// partial or degraded; the output then carries explicit caveat language
// instead of failing.
func (g *Generator) Generate(ctx context.Context, rec fundamentals.UnifiedRecord, headlines []news.Headline) (string, error) {
    if g.llm != nil {
        text, err := g.llm.GenerateContent(ctx, BuildPrompt(rec, headlines))
        if err == nil && strings.TrimSpace(text) != "" {
            return text, nil
        }
        g.log.Warn().Err(err).Str("ticker", rec.Ticker).Msg("narrative generation failed, using fallback renderer")
    }
    return g.Render(rec, headlines), nil
}

// BuildPrompt assembles the LLM instruction from the record and headlines.
func BuildPrompt(rec fundamentals.UnifiedRecord, headlines []news.Headline) string {
    var sb strings.Builder
    sb.WriteString("You are an equity analyst. Write a concise markdown investment report for the B3 ticker ")
    sb.WriteString(rec.Ticker)
    sb.WriteString(".\n\n")
    sb.WriteString("Reconciled fundamentals (value, source):\n")
    for _, f := range fundamentals.AllFields {
        cf, ok := rec.Fields[f]
        if !ok { continue }
        fmt.Fprintf(&sb, "- %s: %s (from %s)\n", f, formatValue(cf), cf.Source)
    }
    if len(rec.Discrepancies) > 0 {
        sb.WriteString("\nThe sources disagree on these fields; mention the disagreement:\n")
        for _, d := range rec.Discrepancies {
            fmt.Fprintf(&sb, "- %s: %s (%.1f%% apart, kept %s)\n", d.Field, discrepancyValues(d), d.RelDiff*100, d.Chosen)
        }
    }
    if len(rec.Errors) > 0 {
        sb.WriteString("\nSome source data could not be retrieved:\n")
        for _, e := range rec.Errors {
            fmt.Fprintf(&sb, "- %s: %s\n", e.Provider, e.Kind)
        }
    }
    if len(headlines) > 0 {
        sb.WriteString("\nRecent headlines:\n")
        for _, h := range headlines {
            fmt.Fprintf(&sb, "- %s (%s)\n", h.Title, h.Source)
        }
    }
    fmt.Fprintf(&sb, "\nData quality is %q. ", rec.Quality)
    if rec.Quality != fundamentals.QualityOK {
        sb.WriteString("Use best-effort language and state clearly that parts of the data are missing or disputed. ")
    }
    sb.WriteString("Close with a one-word rating: buy, hold or sell, with a short justification. Do not invent figures that are not listed above.")
    return sb.String()
}

// Render produces the deterministic fallback report.
func (g *Generator) Render(rec fundamentals.UnifiedRecord, headlines []news.Headline) string {
    var sb strings.Builder
    fmt.Fprintf(&sb, "# Investment Report: %s\n\n", rec.Ticker)
    fmt.Fprintf(&sb, "_Generated %s — data quality: %s_\n\n", g.now().UTC().Format("2006-01-02"), rec.Quality)

    if rec.Quality != fundamentals.QualityOK {
        sb.WriteString("> **Note:** parts of the source data could not be retrieved or the sources disagree. Figures below are best-effort and should be read with caution.\n\n")
    }

    sb.WriteString("## Fundamentals\n\n")
    if len(rec.Fields) == 0 {
        sb.WriteString("No fundamentals could be retrieved from either source.\n\n")
    } else {
        sb.WriteString("| Metric | Value | Source |\n|---|---|---|\n")
        for _, f := range fundamentals.AllFields {
            cf, ok := rec.Fields[f]
            if !ok { continue }
            fmt.Fprintf(&sb, "| %s | %s | %s |\n", f, formatValue(cf), cf.Source)
        }
        sb.WriteString("\n")
    }

    if len(rec.Discrepancies) > 0 {
        sb.WriteString("## Source disagreements\n\n")
        for _, d := range rec.Discrepancies {
            fmt.Fprintf(&sb, "- **%s**: %s — %.1f%% apart; kept the %s value\n", d.Field, discrepancyValues(d), d.RelDiff*100, d.Chosen)
        }
        sb.WriteString("\n")
    }

    if len(rec.Errors) > 0 {
        sb.WriteString("## Fetch errors\n\n")
        for _, e := range rec.Errors {
            fmt.Fprintf(&sb, "- %s: %s (%s)\n", e.Provider, e.Kind, e.Message)
        }
        sb.WriteString("\n")
    }

    if len(headlines) > 0 {
        sb.WriteString("## Recent headlines\n\n")
        for _, h := range headlines {
            date := ""
            if !h.PublishedAt.IsZero() {
                date = h.PublishedAt.Format("2006-01-02")
            }
            fmt.Fprintf(&sb, "- %s — %s %s\n", h.Title, h.Source, date)
        }
        sb.WriteString("\n")
    }

    rating := Rating(rec)
    fmt.Fprintf(&sb, "## Rating\n\n**%s**\n", strings.ToUpper(rating))
    if rec.Quality == fundamentals.QualityDegraded {
        sb.WriteString("\nToo little reliable data was available to support a directional view.\n")
    }
    return sb.String()
}

// Rating derives a coarse rating from the merged record. It is a blunt
// screen (cheap earnings multiple, yield, profitability), not advice;
// a degraded record is never rated.
func Rating(rec fundamentals.UnifiedRecord) string {
    if rec.Quality == fundamentals.QualityDegraded {
        return "inconclusive"
    }
    score := 0
    if pe, ok := rec.Fields[fundamentals.FieldPERatio]; ok {
        if pe.Value > 0 && pe.Value < 12 { score++ }
        if pe.Value > 25 || pe.Value < 0 { score-- }
    }
    if dy, ok := rec.Fields[fundamentals.FieldDividendYield]; ok && dy.Value > 0.06 {
        score++
    }
    if roe, ok := rec.Fields[fundamentals.FieldROE]; ok {
        if roe.Value > 0.15 { score++ }
        if roe.Value < 0.05 { score-- }
    }
    switch {
    case score >= 2:
        return "buy"
    case score <= -1:
        return "sell"
    default:
        return "hold"
    }
}

// Write persists the report under dir using the conventional
// {TICKER}_investment_report.md name and returns the path.
func Write(dir, symbol, content string) (string, error) {
    if dir == "" { dir = "reports" }
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return "", fmt.Errorf("report: creating %s: %w", dir, err)
    }
    path := filepath.Join(dir, fmt.Sprintf("%s_investment_report.md", symbol))
    if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
        return "", fmt.Errorf("report: writing %s: %w", path, err)
    }
    return path, nil
}

// formatValue renders a normalized value for display: fractions back to
// percent, large currency amounts humanized. This is the only place
// display formatting happens.
func formatValue(cf fundamentals.ChosenField) string {
    switch cf.Unit {
    case fundamentals.UnitFraction:
        return fmt.Sprintf("%.2f%%", cf.Value*100)
    case fundamentals.UnitCurrency:
        return "R$ " + humanize(cf.Value)
    case fundamentals.UnitCount:
        return humanize(cf.Value)
    default:
        return trimZeros(fmt.Sprintf("%.2f", cf.Value))
    }
}

func humanize(v float64) string {
    abs := v
    if abs < 0 { abs = -abs }
    switch {
    case abs >= 1e12:
        return trimZeros(fmt.Sprintf("%.2f", v/1e12)) + "T"
    case abs >= 1e9:
        return trimZeros(fmt.Sprintf("%.2f", v/1e9)) + "B"
    case abs >= 1e6:
        return trimZeros(fmt.Sprintf("%.2f", v/1e6)) + "M"
    case abs >= 1e4:
        return trimZeros(fmt.Sprintf("%.2f", v/1e3)) + "K"
    default:
        return trimZeros(fmt.Sprintf("%.2f", v))
    }
}

func trimZeros(s string) string {
    if !strings.Contains(s, ".") { return s }
    return strings.TrimRight(strings.TrimRight(s, "0"), ".")
}

func discrepancyValues(d fundamentals.Discrepancy) string {
    providers := make([]string, 0, len(d.Values))
    for p := range d.Values {
        providers = append(providers, p)
    }
    sort.Strings(providers)
    parts := make([]string, 0, len(providers))
    for _, p := range providers {
        parts = append(parts, fmt.Sprintf("%s=%s", p, trimZeros(fmt.Sprintf("%.2f", d.Values[p]))))
    }
    return strings.Join(parts, " vs ")
}
