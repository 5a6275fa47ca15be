package bybit

import (
	"context"
	"net/url"
	"time"

	"bybitsnap/pkg/market"
)

// GetTicker fetches the 24h ticker for symbol in the given category.
// Missing or malformed numeric fields become NaN; only transport failures
// return an error.
func (c *Client) GetTicker(ctx context.Context, category, symbol string) (*market.Ticker, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("symbol", symbol)

	var result tickerResult
	if err := c.get(ctx, endpointTickers, params, &result); err != nil {
		return nil, err
	}
	if len(result.List) == 0 {
		return nil, ErrEmptyResult
	}

	it := result.List[0]
	pct := market.ParseFloat(it.Price24hPcnt)
	return &market.Ticker{
		Symbol:       it.Symbol,
		Last:         market.ParseFloat(it.LastPrice),
		High24h:      market.ParseFloat(it.HighPrice24h),
		Low24h:       market.ParseFloat(it.LowPrice24h),
		Volume24h:    market.ParseFloat(it.Volume24h),
		Turnover24h:  market.ParseFloat(it.Turnover24h),
		Change24hPct: pct * 100, // feed reports a fraction
		TimeMS:       time.Now().UnixMilli(),
	}, nil
}
