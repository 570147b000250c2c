package brapi

import (
	"context"
	"strconv"
	"time"

	"investreporter/internal/provider"
)

// Name is the provider identifier tagged on records and provenance.
const Name = "brapi"

// Provider adapts the brapi quote client to the provider interface.
// brapi is the structured market-data source: reliable for price and
// volume style fields, thinner on valuation fundamentals.
type Provider struct {
	client *Client
}

func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Fetch(ctx context.Context, ticker string) (provider.RawRecord, error) {
	q, err := p.client.GetQuote(ctx, ticker)
	if err != nil {
		return provider.RawRecord{}, provider.AsFetchError(Name, err)
	}

	fields := make(map[string]string, 8)
	put := func(name string, v *flexFloat) {
		if v != nil {
			fields[name] = strconv.FormatFloat(float64(*v), 'f', -1, 64)
		}
	}
	put("regularMarketPrice", q.RegularMarketPrice)
	put("marketCap", q.MarketCap)
	put("fiftyTwoWeekHigh", q.FiftyTwoWeekHigh)
	put("fiftyTwoWeekLow", q.FiftyTwoWeekLow)
	put("averageDailyVolume3Month", q.AverageDailyVolume3Month)
	put("priceEarnings", q.PriceEarnings)
	put("earningsPerShare", q.EarningsPerShare)

	if len(fields) == 0 {
		return provider.RawRecord{}, provider.NewFetchError(Name, provider.ErrParse, "quote carried no usable fields", nil)
	}

	return provider.RawRecord{
		Ticker:    ticker,
		Provider:  Name,
		Fields:    fields,
		FetchedAt: time.Now().UTC(),
	}, nil
}
