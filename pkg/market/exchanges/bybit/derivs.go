package bybit

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"time"

	"bybitsnap/pkg/market"
)

// Derivative and flow enrichment endpoints. Every method here is
// best-effort at the call site: callers map failures to absent fields.

// GetFundingRatePct returns the latest perpetual funding rate for symbol
// as a percentage.
func (c *Client) GetFundingRatePct(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("category", CategoryLinear)
	params.Set("symbol", symbol)
	params.Set("limit", "1")

	var result fundingResult
	if err := c.get(ctx, endpointFunding, params, &result); err != nil {
		return math.NaN(), err
	}
	if len(result.List) == 0 {
		return math.NaN(), ErrEmptyResult
	}
	return market.ParseFloat(result.List[0].FundingRate) * 100, nil
}

// GetOpenInterest returns the most recent open interest reading.
func (c *Client) GetOpenInterest(ctx context.Context, symbol string) (float64, error) {
	list, err := c.openInterestSeries(ctx, symbol, 1)
	if err != nil {
		return math.NaN(), err
	}
	return list[0], nil
}

// GetOpenInterestChange24hPct compares the latest open interest reading
// against the one 24 hours earlier and returns the percentage change.
func (c *Client) GetOpenInterestChange24hPct(ctx context.Context, symbol string) (float64, error) {
	// Hourly buckets; 25 entries span a full day including the live bucket.
	list, err := c.openInterestSeries(ctx, symbol, 25)
	if err != nil {
		return math.NaN(), err
	}
	latest := list[0]
	oldest := list[len(list)-1]
	if math.IsNaN(latest) || math.IsNaN(oldest) || oldest == 0 {
		return math.NaN(), nil
	}
	return (latest/oldest - 1) * 100, nil
}

// openInterestSeries returns newest-first open interest values.
func (c *Client) openInterestSeries(ctx context.Context, symbol string, limit int) ([]float64, error) {
	params := url.Values{}
	params.Set("category", CategoryLinear)
	params.Set("symbol", symbol)
	params.Set("intervalTime", "1h")
	params.Set("limit", strconv.Itoa(limit))

	var result openInterestResult
	if err := c.get(ctx, endpointOpenInterest, params, &result); err != nil {
		return nil, err
	}
	if len(result.List) == 0 {
		return nil, ErrEmptyResult
	}
	out := make([]float64, len(result.List))
	for i, it := range result.List {
		out[i] = market.ParseFloat(it.OpenInterest)
	}
	return out, nil
}

// GetTakerBuySellRatio sums recent taker buy and sell volume and returns
// their ratio. NaN when no sell volume was observed.
func (c *Client) GetTakerBuySellRatio(ctx context.Context, category, symbol string) (float64, error) {
	trades, err := c.recentTrades(ctx, category, symbol)
	if err != nil {
		return math.NaN(), err
	}
	var buy, sell float64
	for _, t := range trades {
		size := market.ParseFloat(t.Size)
		if math.IsNaN(size) {
			continue
		}
		if t.Side == "Buy" {
			buy += size
		} else {
			sell += size
		}
	}
	if sell == 0 {
		return math.NaN(), nil
	}
	return buy / sell, nil
}

// GetCumulativeDelta sums taker buy minus sell notional over the trailing
// window from recent trades.
func (c *Client) GetCumulativeDelta(ctx context.Context, category, symbol string, window time.Duration) (float64, error) {
	trades, err := c.recentTrades(ctx, category, symbol)
	if err != nil {
		return math.NaN(), err
	}
	cutoff := time.Now().Add(-window).UnixMilli()
	var delta float64
	for _, t := range trades {
		ts, err := strconv.ParseInt(t.TimeMS, 10, 64)
		if err != nil || ts < cutoff {
			continue
		}
		price := market.ParseFloat(t.Price)
		size := market.ParseFloat(t.Size)
		if math.IsNaN(price) || math.IsNaN(size) {
			continue
		}
		if t.Side == "Buy" {
			delta += price * size
		} else {
			delta -= price * size
		}
	}
	return delta, nil
}

func (c *Client) recentTrades(ctx context.Context, category, symbol string) ([]trade, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("symbol", symbol)
	params.Set("limit", "1000")

	var result tradeResult
	if err := c.get(ctx, endpointRecentTrade, params, &result); err != nil {
		return nil, err
	}
	return result.List, nil
}

// GetFuturesTurnover24h returns the 24h quote turnover of the linear
// perpetual for symbol.
func (c *Client) GetFuturesTurnover24h(ctx context.Context, symbol string) (float64, error) {
	ticker, err := c.GetTicker(ctx, CategoryLinear, symbol)
	if err != nil {
		return math.NaN(), err
	}
	return ticker.Turnover24h, nil
}

// GetLiquidations24h sums liquidation notional by side over the last 24h.
func (c *Client) GetLiquidations24h(ctx context.Context, symbol string) (market.LiquidationTotals, error) {
	params := url.Values{}
	params.Set("category", CategoryLinear)
	params.Set("symbol", symbol)
	params.Set("limit", "1000")

	var result liquidationResult
	if err := c.get(ctx, endpointLiquidation, params, &result); err != nil {
		return market.LiquidationTotals{}, err
	}
	cutoff := time.Now().Add(-24 * time.Hour).UnixMilli()
	var totals market.LiquidationTotals
	for _, it := range result.List {
		ts, err := strconv.ParseInt(it.TimeMS, 10, 64)
		if err != nil || ts < cutoff {
			continue
		}
		price := market.ParseFloat(it.Price)
		size := market.ParseFloat(it.Size)
		if math.IsNaN(price) || math.IsNaN(size) {
			continue
		}
		if it.Side == "Buy" {
			totals.BuyUSD += price * size
		} else {
			totals.SellUSD += price * size
		}
	}
	return totals, nil
}
