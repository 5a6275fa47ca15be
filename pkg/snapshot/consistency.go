package snapshot

import (
	"context"
	"fmt"
	"math"

	"bybitsnap/pkg/market"
)

const (
	spotSource = "bybit_spot_lastPrice"

	// Base tolerance as a fraction of the live price.
	tolPctClose = 0.008
	tolPctVWAP  = 0.01
)

// fetchSpotSafe fetches the live ticker for symbol and validates its
// last price against the most recent completed candle close (and the
// intraday VWAP when available) before accepting it. A single failed
// validation triggers one re-fetch of both values; a second failure
// marks the whole snapshot invalid but still records the latest values.
// Only ticker transport failure is an error.
func (b *Builder) fetchSpotSafe(ctx context.Context, symbol, key string, atr1d, vwapToday *float64, meta *Meta) (*SpotReading, error) {
	ticker, err := b.provider.Ticker(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("snapshot: fetch ticker %s: %w", symbol, err)
	}
	refClose, refTS := b.refClose(ctx, symbol)

	atr := market.Value(atr1d)
	vwap := market.Value(vwapToday)
	tol := tolerance(ticker.Last, atr)

	okClose := within(ticker.Last, refClose, tol)
	okVWAP := math.IsNaN(vwap) || within(ticker.Last, vwap, math.Max(tol, ticker.Last*tolPctVWAP))

	invalid := false
	if !(okClose && okVWAP) {
		b.logger.Printf("snapshot: %s last %.2f failed consistency vs close %.2f (tol %.2f), re-fetching", symbol, ticker.Last, refClose, tol)
		ticker2, err := b.provider.Ticker(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("snapshot: re-fetch ticker %s: %w", symbol, err)
		}
		refClose2, refTS2 := b.refClose(ctx, symbol)
		tol2 := tolerance(ticker2.Last, atr)
		okClose2 := within(ticker2.Last, refClose2, tol2)
		okVWAP2 := !math.IsNaN(vwap) && within(ticker2.Last, vwap, math.Max(tol2, ticker2.Last*tolPctVWAP))
		if !(okClose2 || okVWAP2) {
			invalid = true
		}
		ticker, refClose, refTS = ticker2, refClose2, refTS2
	}

	reading := &SpotReading{
		Last:         market.FiniteRound(ticker.Last, 2),
		High24h:      market.Finite(ticker.High24h),
		Low24h:       market.Finite(ticker.Low24h),
		Turnover24h:  market.Finite(ticker.Turnover24h),
		Change24hPct: market.FiniteRound(ticker.Change24hPct, 2),
	}
	prov := Provenance{
		Source:   spotSource,
		TimeMS:   ticker.TimeMS,
		RefClose: market.FiniteRound(refClose, 2),
	}
	if refTS > 0 {
		prov.RefTimeMS = &refTS
	}
	meta.Sources[key] = prov
	if invalid {
		meta.Invalid = true
	}
	return reading, nil
}

// refClose returns the latest 1m candle close and its start time, or
// NaN when unavailable. Reference failure degrades, never aborts.
func (b *Builder) refClose(ctx context.Context, symbol string) (float64, int64) {
	klines, err := b.provider.Klines(ctx, symbol, intervalRefClose, 1)
	if err != nil || len(klines) == 0 {
		if err != nil {
			b.logger.Printf("snapshot: reference close %s unavailable: %v", symbol, err)
		}
		return math.NaN(), 0
	}
	last := klines[len(klines)-1]
	return last.Close, last.StartMS
}

// tolerance is max(2·ATR(1d), 0.8% of the live price); an absent ATR
// contributes zero.
func tolerance(last, atr float64) float64 {
	tolABS := 0.0
	if !math.IsNaN(atr) && atr > 0 {
		tolABS = 2 * atr
	}
	tolRel := 0.0
	if !math.IsNaN(last) {
		tolRel = last * tolPctClose
	}
	return math.Max(tolABS, tolRel)
}

func within(x, ref, tol float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && !math.IsNaN(ref) && !math.IsInf(ref, 0) && math.Abs(x-ref) <= tol
}
