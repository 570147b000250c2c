// Package news fetches recent headlines for a ticker from Google News RSS.
package news

import (
    "context"
    "encoding/xml"
    "fmt"
    "net/http"
    "net/url"
    "regexp"
    "time"

    "investreporter/internal/common"
    "investreporter/internal/httpx"
)

// Headline is one news item in the shape downstream report generation
// consumes.
type Headline struct {
    Title       string    `json:"title"`
    Source      string    `json:"source"`
    PublishedAt time.Time `json:"published_at"`
    URL         string    `json:"url"`
}

// Config controls the news client.
type Config struct {
    BaseURL    string // default: https://news.google.com/rss/search
    MaxResults int    // default: 10
    WindowDays int    // default: 30
    Language   string // default: pt-BR
    Region     string // default: BR
}

type Client struct {
    cfg    Config
    client *httpx.Client
    log    *common.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithLogger sets the logger.
func WithLogger(log *common.Logger) ClientOption {
    return func(c *Client) { c.log = log }
}

func New(cfg Config, hc *httpx.Client, opts ...ClientOption) *Client {
    if cfg.BaseURL == "" { cfg.BaseURL = "https://news.google.com/rss/search" }
    if cfg.MaxResults <= 0 { cfg.MaxResults = 10 }
    if cfg.WindowDays <= 0 { cfg.WindowDays = 30 }
    if cfg.Language == "" { cfg.Language = "pt-BR" }
    if cfg.Region == "" { cfg.Region = "BR" }
    c := &Client{cfg: cfg, client: hc, log: common.NewSilentLogger()}
    for _, opt := range opts {
        opt(c)
    }
    return c
}

// "How much would you have earned" simulator pieces dominate B3 ticker
// searches and carry no signal for a report; they are filtered by title.
var excludedTitles = regexp.MustCompile(`(?i)\bquanto\s+ganharia\b|\bquanto\s+renderia\b|\bse\s+(?:voce|você)\s+tivesse\s+investido\b|\bse\s+tivesse\s+investido\b|\bsimulador\b|\bsimula(?:c|ç)\b`)

type rssFeed struct {
    XMLName xml.Name  `xml:"rss"`
    Items   []rssItem `xml:"channel>item"`
}

type rssItem struct {
    Title   string    `xml:"title"`
    Link    string    `xml:"link"`
    PubDate string    `xml:"pubDate"`
    Source  rssSource `xml:"source"`
}

type rssSource struct {
    Name string `xml:",chardata"`
}

// Search returns up to MaxResults recent headlines for the query within
// the configured lookback window, oldest excluded-title noise filtered
// out. Failures return an error; callers degrade to a report without
// news context rather than aborting.
func (c *Client) Search(ctx context.Context, query string) ([]Headline, error) {
    q := url.Values{}
    q.Set("q", fmt.Sprintf("%s when:%dd", query, c.cfg.WindowDays))
    q.Set("hl", c.cfg.Language)
    q.Set("gl", c.cfg.Region)
    q.Set("ceid", fmt.Sprintf("%s:%s", c.cfg.Region, c.cfg.Language))

    feedURL := c.cfg.BaseURL + "?" + q.Encode()
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, http.NoBody)
    if err != nil {
        return nil, fmt.Errorf("news: creating request: %w", err)
    }
    resp, err := c.client.Do(ctx, req)
    if err != nil {
        return nil, fmt.Errorf("news: GET %s: %w", feedURL, err)
    }
    defer resp.Body.Close()
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        return nil, fmt.Errorf("news: GET %s -> %d", feedURL, resp.StatusCode)
    }

    var feed rssFeed
    if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
        return nil, fmt.Errorf("news: decoding feed: %w", err)
    }

    out := make([]Headline, 0, c.cfg.MaxResults)
    for _, item := range feed.Items {
        if len(out) >= c.cfg.MaxResults { break }
        if item.Title == "" || excludedTitles.MatchString(item.Title) { continue }
        out = append(out, Headline{
            Title:       item.Title,
            Source:      item.Source.Name,
            PublishedAt: parsePubDate(item.PubDate),
            URL:         item.Link,
        })
    }

    c.log.Debug().Str("query", query).Int("headlines", len(out)).Msg("news search")
    return out, nil
}

// parsePubDate handles the RFC1123 variants Google News emits. Unparsable
// dates degrade to the zero time rather than dropping the headline.
func parsePubDate(s string) time.Time {
    for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
        if t, err := time.Parse(layout, s); err == nil {
            return t.UTC()
        }
    }
    return time.Time{}
}
