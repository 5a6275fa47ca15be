package bybit

import (
	"context"
	"math"
	"net/url"
	"strconv"

	"bybitsnap/pkg/market"
)

// GetOrderBookImbalancePct fetches depth levels for symbol and returns
// (Σbid sizes − Σask sizes) / (Σbid + Σask) × 100. Zero when both sides
// are empty.
func (c *Client) GetOrderBookImbalancePct(ctx context.Context, category, symbol string, depth int) (float64, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("symbol", symbol)
	if depth > 0 {
		params.Set("limit", strconv.Itoa(depth))
	}

	var result orderbookResult
	if err := c.get(ctx, endpointOrderbook, params, &result); err != nil {
		return math.NaN(), err
	}

	var bidSum, askSum float64
	for _, lvl := range result.Bids {
		if size := market.ParseFloat(lvl[1]); !math.IsNaN(size) {
			bidSum += size
		}
	}
	for _, lvl := range result.Asks {
		if size := market.ParseFloat(lvl[1]); !math.IsNaN(size) {
			askSum += size
		}
	}
	total := bidSum + askSum
	if total == 0 {
		return 0, nil
	}
	return (bidSum - askSum) / total * 100, nil
}
