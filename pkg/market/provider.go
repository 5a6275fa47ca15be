package market

import (
	"context"
	"time"
)

// Ticker is a normalized 24h spot ticker. Fields the feed omitted are NaN;
// a Ticker is only nil when the fetch itself failed.
type Ticker struct {
	Symbol       string
	Last         float64
	High24h      float64
	Low24h       float64
	Volume24h    float64 // base volume
	Turnover24h  float64 // quote notional
	Change24hPct float64 // percentage, not fraction
	TimeMS       int64   // fetch instant, ms since epoch
}

// Kline is one OHLCV bar, oldest-first in every series this package hands
// out regardless of the feed's native order.
type Kline struct {
	StartMS  int64
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64 // base volume
	Turnover float64 // quote notional
}

// LiquidationTotals carries 24h liquidation notionals split by side.
type LiquidationTotals struct {
	BuyUSD  float64
	SellUSD float64
}

// Provider exposes the exchange market data the snapshot pipeline consumes.
// Spot readings and candle series are primary; everything else is
// best-effort enrichment and callers degrade failures to absent.
type Provider interface {
	// Ticker returns the spot 24h ticker for the symbol.
	Ticker(ctx context.Context, symbol string) (*Ticker, error)
	// Klines returns the most recent limit bars, oldest-first.
	Klines(ctx context.Context, symbol, interval string, limit int) ([]Kline, error)
	// KlinesRange returns bars between start and end, oldest-first.
	KlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]Kline, error)
	// OrderBookImbalancePct returns (Σbid−Σask)/(Σbid+Σask)·100 over depth levels.
	OrderBookImbalancePct(ctx context.Context, symbol string, depth int) (float64, error)
	// FundingRatePct returns the latest perpetual funding rate as a percentage.
	FundingRatePct(ctx context.Context, symbol string) (float64, error)
	// OpenInterest returns the latest open interest reading.
	OpenInterest(ctx context.Context, symbol string) (float64, error)
	// OpenInterestChange24hPct returns the 24h open interest change percentage.
	OpenInterestChange24hPct(ctx context.Context, symbol string) (float64, error)
	// TakerBuySellRatio returns Σbuy/Σsell volume over recent trades.
	TakerBuySellRatio(ctx context.Context, symbol string) (float64, error)
	// FuturesTurnover24h returns the derivative 24h quote turnover.
	FuturesTurnover24h(ctx context.Context, symbol string) (float64, error)
	// CumulativeDelta1h returns taker buy minus sell notional over the last hour.
	CumulativeDelta1h(ctx context.Context, symbol string) (float64, error)
	// Liquidations24h returns 24h liquidation notionals by side.
	Liquidations24h(ctx context.Context, symbol string) (LiquidationTotals, error)
}
