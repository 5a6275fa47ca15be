package bybit

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"bybitsnap/pkg/market"
)

const maxKlineLimit = 1000

// GetKlines fetches the most recent limit bars for symbol. The feed
// returns newest-first; the output is reversed to oldest-first.
func (c *Client) GetKlines(ctx context.Context, category, symbol, interval string, limit int) ([]market.Kline, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("bybit: limit must be positive")
	}
	if limit > maxKlineLimit {
		limit = maxKlineLimit
	}
	params := url.Values{}
	params.Set("category", category)
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))
	return c.fetchKlines(ctx, params)
}

// GetKlinesRange fetches bars between startMS and endMS, oldest-first.
func (c *Client) GetKlinesRange(ctx context.Context, category, symbol, interval string, startMS, endMS int64) ([]market.Kline, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("start", strconv.FormatInt(startMS, 10))
	params.Set("end", strconv.FormatInt(endMS, 10))
	params.Set("limit", strconv.Itoa(maxKlineLimit))
	return c.fetchKlines(ctx, params)
}

func (c *Client) fetchKlines(ctx context.Context, params url.Values) ([]market.Kline, error) {
	var result klineResult
	if err := c.get(ctx, endpointKline, params, &result); err != nil {
		return nil, err
	}

	klines := make([]market.Kline, 0, len(result.List))
	for i := len(result.List) - 1; i >= 0; i-- {
		row := result.List[i]
		if len(row) < 7 {
			continue
		}
		startMS, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		klines = append(klines, market.Kline{
			StartMS:  startMS,
			Open:     market.ParseFloat(row[1]),
			High:     market.ParseFloat(row[2]),
			Low:      market.ParseFloat(row[3]),
			Close:    market.ParseFloat(row[4]),
			Volume:   market.ParseFloat(row[5]),
			Turnover: market.ParseFloat(row[6]),
		})
	}
	return klines, nil
}
