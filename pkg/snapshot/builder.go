package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"bybitsnap/pkg/market"
	"bybitsnap/pkg/market/indicators"
	"bybitsnap/pkg/storage"
)

// Builder assembles snapshots from live market data. One Builder serves
// one run; it holds no state between calls.
type Builder struct {
	provider market.Provider
	store    *storage.Gateway
	cfg      *Config
	logger   *log.Logger
	now      func() time.Time
}

// BuilderOption configures a new Builder.
type BuilderOption func(*Builder)

// WithLogger injects a custom logger (defaults to log.Default()).
func WithLogger(l *log.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBuilder constructs a snapshot builder. cfg must be normalised.
func NewBuilder(provider market.Provider, store *storage.Gateway, cfg *Config, opts ...BuilderOption) *Builder {
	b := &Builder{
		provider: provider,
		store:    store,
		cfg:      cfg,
		logger:   log.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildForecast assembles the morning snapshot. Failure to obtain the
// primary ticker or the primary hourly candle series aborts; every
// enrichment failure degrades its field to absent.
func (b *Builder) BuildForecast(ctx context.Context) (*Snapshot, error) {
	now := b.now()
	snap := &Snapshot{
		Mode:           ModeForecast,
		TimestampUTC:   now.UTC().Format(time.RFC3339),
		TimestampLocal: now.In(b.cfg.Location()).Format(time.RFC3339),
	}

	daily, err := b.provider.Klines(ctx, b.cfg.PrimarySymbol, intervalDaily, 15)
	if err != nil {
		return nil, fmt.Errorf("snapshot: fetch daily candles for %s: %w", b.cfg.PrimarySymbol, err)
	}
	calc, err := b.computeCalc(ctx, now, daily)
	if err != nil {
		return nil, err
	}
	snap.Calc = calc

	meta := &Meta{
		Sources:           map[string]Provenance{},
		TZLocal:           b.cfg.Timezone,
		SnapshotDateLocal: b.cfg.DateStr(now),
	}
	eth, err := b.fetchSpotSafe(ctx, b.cfg.PrimarySymbol, "eth_spot", calc.ATR1d, calc.VWAPToday, meta)
	if err != nil {
		return nil, err
	}
	btc, err := b.fetchSpotSafe(ctx, b.cfg.SecondarySymbol, "btc_spot", calc.ATR1d, nil, meta)
	if err != nil {
		return nil, err
	}
	snap.ETHSpot, snap.BTCSpot, snap.Meta = eth, btc, meta

	liq := b.fetchLiquidations(ctx)
	snap.Derivs = b.computeDerivs(ctx, liq)
	snap.VolumeAnalysis = b.computeVolumes(ctx, eth, liq)
	snap.Levels = b.computeLevels(ctx, now, daily)
	return snap, nil
}

// BuildReview assembles the evening record: realized session stats
// reconciled against the same-date forecast. A missing forecast is a
// warning, not an error.
func (b *Builder) BuildReview(ctx context.Context) (*ReviewRecord, error) {
	now := b.now()
	date := b.cfg.DateStr(now)

	var forecast *Snapshot
	if b.store != nil {
		var loaded Snapshot
		path := b.store.SnapshotPath(date, string(ModeForecast))
		if err := b.store.ReadJSON(ctx, path, &loaded); err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				b.logger.Printf("snapshot: load forecast %s: %v", path, err)
			}
			b.logger.Printf("snapshot: forecast for %s not found, review will be partial", date)
		} else {
			forecast = &loaded
		}
	}

	start := b.cfg.LocalMidnight(now)
	session, err := b.provider.KlinesRange(ctx, b.cfg.PrimarySymbol, intervalSession, start, now)
	if err != nil {
		return nil, fmt.Errorf("snapshot: fetch session candles for %s: %w", b.cfg.PrimarySymbol, err)
	}

	var forecastLevels *Levels
	if forecast != nil {
		forecastLevels = forecast.Levels
	}
	actual, compare := Reconcile(session, forecastLevels)

	review := &ReviewRecord{
		Mode:           ModeReview,
		TimestampUTC:   now.UTC().Format(time.RFC3339),
		TimestampLocal: now.In(b.cfg.Location()).Format(time.RFC3339),
		Session: Session{
			StartLocalISO: start.Format(time.RFC3339),
			EndLocalISO:   now.In(b.cfg.Location()).Format(time.RFC3339),
		},
		Actual:  actual,
		Compare: compare,
	}
	if forecast != nil {
		review.ForecastRef = ForecastRef{
			ETHSpotAtForecast: forecast.ETHSpot,
			BTCSpotAtForecast: forecast.BTCSpot,
			CalcAtForecast:    forecast.Calc,
		}
	}

	// Spot and derivative state at review time, so the aggregate can
	// compute day-over-day deltas.
	review.Calc = &CalcBlock{VWAPToday: actual.VWAPApprox}
	var forecastATR *float64
	if forecast != nil && forecast.Calc != nil {
		forecastATR = forecast.Calc.ATR1d
	}
	meta := &Meta{Sources: map[string]Provenance{}, TZLocal: b.cfg.Timezone, SnapshotDateLocal: date}
	eth, err := b.fetchSpotSafe(ctx, b.cfg.PrimarySymbol, "eth_spot", forecastATR, actual.VWAPApprox, meta)
	if err != nil {
		return nil, err
	}
	btc, err := b.fetchSpotSafe(ctx, b.cfg.SecondarySymbol, "btc_spot", forecastATR, nil, meta)
	if err != nil {
		return nil, err
	}
	review.ETHSpot, review.BTCSpot, review.Meta = eth, btc, meta
	review.Derivs = b.computeDerivs(ctx, b.fetchLiquidations(ctx))
	return review, nil
}

// computeCalc builds the indicator block. The hourly series is primary;
// every other input degrades to absent on failure.
func (b *Builder) computeCalc(ctx context.Context, now time.Time, daily []market.Kline) (*CalcBlock, error) {
	hourly, err := b.provider.Klines(ctx, b.cfg.PrimarySymbol, intervalHourly, defaultHourlyBars)
	if err != nil {
		return nil, fmt.Errorf("snapshot: fetch hourly candles for %s: %w", b.cfg.PrimarySymbol, err)
	}
	hourlyCloses := closes(hourly)

	calc := &CalcBlock{
		ATR1d:      market.FiniteRound(indicators.ATR(toBars(daily[:completedBars(daily, now)]), 14), 2),
		RSI1h:      market.FiniteRound(indicators.WilderRSI(hourlyCloses, 14), 2),
		MACDHist1h: market.FiniteRound(indicators.MACDHist(hourlyCloses), 4),
	}

	ema20 := indicators.EMA(hourlyCloses, 20)
	ema50 := indicators.EMA(hourlyCloses, 50)
	ema200 := indicators.EMA(hourlyCloses, 200)
	calc.EMA20H1 = market.FiniteRound(ema20, 2)
	calc.EMA50H1 = market.FiniteRound(ema50, 2)
	calc.EMA200H1 = market.FiniteRound(ema200, 2)
	calc.EMACross = indicators.EMACross(ema20, ema50, ema200)

	if fourH, err := b.provider.Klines(ctx, b.cfg.PrimarySymbol, interval4h, defaultHourlyBars); err != nil {
		b.logger.Printf("snapshot: 4h candles degraded to absent: %v", err)
	} else {
		calc.RSI4h = market.FiniteRound(indicators.WilderRSI(closes(fourH), 14), 2)
	}

	start := b.cfg.LocalMidnight(now)
	if session, err := b.provider.KlinesRange(ctx, b.cfg.PrimarySymbol, intervalSession, start, now); err != nil {
		b.logger.Printf("snapshot: session candles degraded to absent: %v", err)
	} else {
		calc.VWAPToday = market.FiniteRound(indicators.VWAP(toBars(session)), 2)
	}

	if imb, err := b.provider.OrderBookImbalancePct(ctx, b.cfg.PrimarySymbol, b.cfg.OrderbookDepth); err != nil {
		b.logger.Printf("snapshot: orderbook imbalance degraded to absent: %v", err)
	} else {
		calc.OrderbookImbalancePct = market.FiniteRound(imb, 2)
	}
	return calc, nil
}

func (b *Builder) computeDerivs(ctx context.Context, liq *market.LiquidationTotals) *DerivsBlock {
	derivs := &DerivsBlock{}
	derivs.FundingETHPct = b.enrich(ctx, "funding "+b.cfg.PrimarySymbol, func(ctx context.Context) (float64, error) {
		return b.provider.FundingRatePct(ctx, b.cfg.PrimarySymbol)
	}, 4)
	derivs.FundingBTCPct = b.enrich(ctx, "funding "+b.cfg.SecondarySymbol, func(ctx context.Context) (float64, error) {
		return b.provider.FundingRatePct(ctx, b.cfg.SecondarySymbol)
	}, 4)
	derivs.OIETH = b.enrich(ctx, "open interest "+b.cfg.PrimarySymbol, func(ctx context.Context) (float64, error) {
		return b.provider.OpenInterest(ctx, b.cfg.PrimarySymbol)
	}, 2)
	derivs.OIBTC = b.enrich(ctx, "open interest "+b.cfg.SecondarySymbol, func(ctx context.Context) (float64, error) {
		return b.provider.OpenInterest(ctx, b.cfg.SecondarySymbol)
	}, 2)
	derivs.OIChange24hPct = b.enrich(ctx, "open interest change "+b.cfg.PrimarySymbol, func(ctx context.Context) (float64, error) {
		return b.provider.OpenInterestChange24hPct(ctx, b.cfg.PrimarySymbol)
	}, 2)
	derivs.TakerBuySellRatio = b.enrich(ctx, "taker ratio "+b.cfg.PrimarySymbol, func(ctx context.Context) (float64, error) {
		return b.provider.TakerBuySellRatio(ctx, b.cfg.PrimarySymbol)
	}, 4)
	if liq != nil {
		derivs.LiquidationsBuy24hUSD = market.FiniteRound(liq.BuyUSD, 2)
		derivs.LiquidationsSell24hUSD = market.FiniteRound(liq.SellUSD, 2)
	}
	return derivs
}

func (b *Builder) computeVolumes(ctx context.Context, eth *SpotReading, liq *market.LiquidationTotals) *VolumeBlock {
	vol := &VolumeBlock{}
	if eth != nil {
		vol.SpotVolume24h = eth.Turnover24h
	}
	vol.FuturesVolume24h = b.enrich(ctx, "futures turnover "+b.cfg.PrimarySymbol, func(ctx context.Context) (float64, error) {
		return b.provider.FuturesTurnover24h(ctx, b.cfg.PrimarySymbol)
	}, 2)
	vol.CumulativeDelta1h = b.enrich(ctx, "cumulative delta "+b.cfg.PrimarySymbol, func(ctx context.Context) (float64, error) {
		return b.provider.CumulativeDelta1h(ctx, b.cfg.PrimarySymbol)
	}, 2)
	if liq != nil {
		vol.Liquidations24hUSD = market.FiniteRound(liq.BuyUSD+liq.SellUSD, 2)
	}
	return vol
}

// computeLevels derives the day's structure from completed daily bars:
// support from yesterday's low and the 7-day low, resistance from the
// matching highs, with the session extremes realized so far.
func (b *Builder) computeLevels(ctx context.Context, now time.Time, daily []market.Kline) *Levels {
	levels := &Levels{Support: []float64{}, Resistance: []float64{}}

	completed := daily[:completedBars(daily, now)]
	if n := len(completed); n > 0 {
		yesterday := completed[n-1]
		week := completed
		if n > 7 {
			week = completed[n-7:]
		}
		weekLow, weekHigh := math.Inf(1), math.Inf(-1)
		for _, k := range week {
			weekLow = math.Min(weekLow, k.Low)
			weekHigh = math.Max(weekHigh, k.High)
		}
		levels.Support = roundedLevels(yesterday.Low, weekLow)
		levels.Resistance = roundedLevels(yesterday.High, weekHigh)
		if len(levels.Support) > 0 && len(levels.Resistance) > 0 {
			levels.RangeMid = market.FiniteRound((levels.Support[0]+levels.Resistance[0])/2, 2)
		}
	}

	start := b.cfg.LocalMidnight(now)
	if session, err := b.provider.KlinesRange(ctx, b.cfg.PrimarySymbol, intervalSession, start, now); err != nil {
		b.logger.Printf("snapshot: session extremes degraded to absent: %v", err)
	} else {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, k := range session {
			if !math.IsNaN(k.Low) {
				lo = math.Min(lo, k.Low)
			}
			if !math.IsNaN(k.High) {
				hi = math.Max(hi, k.High)
			}
		}
		if !math.IsInf(lo, 1) && !math.IsInf(hi, -1) {
			levels.SessionHighLow = []float64{round2(lo), round2(hi)}
		}
	}
	return levels
}

func (b *Builder) fetchLiquidations(ctx context.Context) *market.LiquidationTotals {
	totals, err := b.provider.Liquidations24h(ctx, b.cfg.PrimarySymbol)
	if err != nil {
		b.logger.Printf("snapshot: liquidations %s degraded to absent: %v", b.cfg.PrimarySymbol, err)
		return nil
	}
	return &totals
}

// enrich runs one best-effort fetch and maps failure to absent.
func (b *Builder) enrich(ctx context.Context, what string, fetch func(context.Context) (float64, error), places int) *float64 {
	v, err := fetch(ctx)
	if err != nil {
		b.logger.Printf("snapshot: %s degraded to absent: %v", what, err)
		return nil
	}
	return market.FiniteRound(v, places)
}

// completedBars returns how many leading bars of a daily series closed
// before the current local day, dropping today's partial bar.
func completedBars(daily []market.Kline, now time.Time) int {
	n := len(daily)
	if n == 0 {
		return 0
	}
	today := now.UnixMilli() - now.UnixMilli()%(24*int64(time.Hour/time.Millisecond))
	if daily[n-1].StartMS >= today {
		return n - 1
	}
	return n
}

func closes(klines []market.Kline) []float64 {
	out := make([]float64, len(klines))
	for i, k := range klines {
		out[i] = k.Close
	}
	return out
}

func toBars(klines []market.Kline) []indicators.Kline {
	out := make([]indicators.Kline, len(klines))
	for i, k := range klines {
		out[i] = indicators.Kline{High: k.High, Low: k.Low, Close: k.Close, Volume: k.Volume, Turnover: k.Turnover}
	}
	return out
}

func roundedLevels(vals ...float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, round2(v))
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
