package brapi

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"strconv"

	"investreporter/internal/provider"
)

// Quote is the subset of the brapi quote payload the normalizer consumes.
// brapi serves some numeric fields as strings depending on plan/endpoint,
// so every number decodes through flexFloat.
type Quote struct {
	Symbol                   string     `json:"symbol"`
	RegularMarketPrice       *flexFloat `json:"regularMarketPrice"`
	MarketCap                *flexFloat `json:"marketCap"`
	FiftyTwoWeekHigh         *flexFloat `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow          *flexFloat `json:"fiftyTwoWeekLow"`
	AverageDailyVolume3Month *flexFloat `json:"averageDailyVolume3Month"`
	PriceEarnings            *flexFloat `json:"priceEarnings"`
	EarningsPerShare         *flexFloat `json:"earningsPerShare"`
}

type quoteResponse struct {
	Results []Quote `json:"results"`
	Message string  `json:"message"`
}

// flexFloat handles JSON values that may be either a number or a string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// GetQuote retrieves the quote payload for one ticker. All failures are
// reported as *provider.FetchError so callers can classify them without
// inspecting transport details.
func (c *Client) GetQuote(ctx context.Context, ticker string, opts ...ClientOption) (Quote, error) {
	var override = &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
		query:      c.query,
	}
	for _, opt := range opts {
		opt(override)
	}

	query := maps.Clone(override.query)

	url := fmt.Sprintf("%s/quote/%s?%s", override.baseURL, ticker, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return Quote{}, provider.NewFetchError(Name, provider.ErrTransport, "creating request", err)
	}
	req.Header = override.header

	res, err := override.httpClient.Do(req)
	if err != nil {
		return Quote{}, provider.NewFetchError(Name, provider.ErrTransport, "performing request", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusNotFound:
		return Quote{}, provider.NewFetchError(Name, provider.ErrNotFound, fmt.Sprintf("ticker %s not found", ticker), nil)

	case http.StatusUnauthorized, http.StatusPaymentRequired, http.StatusTooManyRequests:
		return Quote{}, provider.NewFetchError(Name, provider.ErrRateLimited, fmt.Sprintf("status %d", res.StatusCode), nil)

	default:
		return Quote{}, provider.NewFetchError(Name, provider.ErrTransport, fmt.Sprintf("unexpected status code: %d", res.StatusCode), nil)
	}

	var body quoteResponse
	dec := json.NewDecoder(res.Body)
	if err := dec.Decode(&body); err != nil {
		return Quote{}, provider.NewFetchError(Name, provider.ErrParse, "decoding quote response", err)
	}
	if len(body.Results) == 0 {
		msg := body.Message
		if msg == "" {
			msg = fmt.Sprintf("no results for ticker %s", ticker)
		}
		return Quote{}, provider.NewFetchError(Name, provider.ErrNotFound, msg, nil)
	}

	return body.Results[0], nil
}
