package snapshot

// Mode selects which terminal artifact a run produces.
type Mode string

const (
	ModeForecast Mode = "forecast"
	ModeReview   Mode = "review"
)

// Valid reports whether m is a known run mode.
func (m Mode) Valid() bool {
	return m == ModeForecast || m == ModeReview
}

// Snapshot is the daily market artifact, one per (local date, mode).
// Every numeric field is either a finite value or nil; NaN never reaches
// the persisted JSON.
type Snapshot struct {
	Mode           Mode         `json:"mode"`
	TimestampUTC   string       `json:"timestamp_utc"`
	TimestampLocal string       `json:"timestamp_local"`
	ETHSpot        *SpotReading `json:"eth_spot,omitempty"`
	BTCSpot        *SpotReading `json:"btc_spot,omitempty"`
	Calc           *CalcBlock   `json:"calc,omitempty"`
	Derivs         *DerivsBlock `json:"derivs,omitempty"`
	VolumeAnalysis *VolumeBlock `json:"volume_analysis,omitempty"`
	Levels         *Levels      `json:"levels,omitempty"`
	Meta           *Meta        `json:"meta,omitempty"`
}

// SpotReading is one instrument's validated spot state at capture time.
type SpotReading struct {
	Last         *float64 `json:"last"`
	High24h      *float64 `json:"high_24h"`
	Low24h       *float64 `json:"low_24h"`
	Turnover24h  *float64 `json:"turnover_24h"`
	Change24hPct *float64 `json:"change_24h_pct"`
}

// CalcBlock holds derived indicators, all based on the primary instrument.
type CalcBlock struct {
	ATR1d                 *float64 `json:"atr_1d"`
	VWAPToday             *float64 `json:"vwap_today"`
	OrderbookImbalancePct *float64 `json:"orderbook_imbalance_pct"`
	RSI1h                 *float64 `json:"rsi_1h"`
	RSI4h                 *float64 `json:"rsi_4h"`
	EMA20H1               *float64 `json:"ema_20_1h"`
	EMA50H1               *float64 `json:"ema_50_1h"`
	EMA200H1              *float64 `json:"ema_200_1h"`
	EMACross              string   `json:"ema_cross"`
	MACDHist1h            *float64 `json:"macd_hist_1h"`
}

// DerivsBlock holds best-effort derivative enrichment fields.
type DerivsBlock struct {
	FundingETHPct          *float64 `json:"funding_eth_pct"`
	FundingBTCPct          *float64 `json:"funding_btc_pct"`
	OIETH                  *float64 `json:"oi_eth"`
	OIBTC                  *float64 `json:"oi_btc"`
	OIChange24hPct         *float64 `json:"oi_change_24h_pct"`
	TakerBuySellRatio      *float64 `json:"taker_buy_sell_ratio"`
	LiquidationsBuy24hUSD  *float64 `json:"liquidations_buy_24h_usd"`
	LiquidationsSell24hUSD *float64 `json:"liquidations_sell_24h_usd"`
}

// VolumeBlock summarizes traded volume and flow.
type VolumeBlock struct {
	SpotVolume24h      *float64 `json:"spot_volume_24h"`
	FuturesVolume24h   *float64 `json:"futures_volume_24h"`
	CumulativeDelta1h  *float64 `json:"cumulative_delta_1h"`
	Liquidations24hUSD *float64 `json:"liquidations_24h_usd"`
}

// Levels carries the forecast price structure. SessionHighLow is the
// [low, high] pair realized so far in the local session.
type Levels struct {
	Support        []float64 `json:"support"`
	Resistance     []float64 `json:"resistance"`
	RangeMid       *float64  `json:"range_mid"`
	SessionHighLow []float64 `json:"session_high_low,omitempty"`
}

// Provenance records where a validated spot value came from.
type Provenance struct {
	Source    string   `json:"source"`
	TimeMS    int64    `json:"time_ms"`
	RefClose  *float64 `json:"ref_close"`
	RefTimeMS *int64   `json:"ref_time_ms"`
}

// Meta holds validation provenance for the snapshot, keyed by the spot
// block name ("eth_spot", "btc_spot").
type Meta struct {
	Sources           map[string]Provenance `json:"sources"`
	TZLocal           string                `json:"tz_local"`
	SnapshotDateLocal string                `json:"snapshot_date_local"`
	Invalid           bool                  `json:"invalid,omitempty"`
}

// ReviewRecord reconciles a finished session against the same-date
// forecast snapshot.
type ReviewRecord struct {
	Mode           Mode        `json:"mode"`
	TimestampUTC   string      `json:"timestamp_utc"`
	TimestampLocal string      `json:"timestamp_local"`
	Session        Session     `json:"session"`
	Actual         Actual      `json:"actual"`
	Compare        Compare     `json:"compare"`
	ForecastRef    ForecastRef `json:"forecast_ref"`
	Calc           *CalcBlock  `json:"calc,omitempty"`
	ETHSpot        *SpotReading `json:"eth_spot,omitempty"`
	BTCSpot        *SpotReading `json:"btc_spot,omitempty"`
	Derivs         *DerivsBlock `json:"derivs,omitempty"`
	Meta           *Meta        `json:"meta,omitempty"`
}

// Session bounds the elapsed local trading day.
type Session struct {
	StartLocalISO string `json:"start_local_iso"`
	EndLocalISO   string `json:"end_local_iso"`
}

// Actual is what the session realized.
type Actual struct {
	High             *float64 `json:"high"`
	Low              *float64 `json:"low"`
	Close            *float64 `json:"close"`
	VWAPApprox       *float64 `json:"vwap_approx"`
	VolumeBaseSum    float64  `json:"volume_base_sum"`
	TurnoverQuoteSum float64  `json:"turnover_quote_sum"`
}

// Compare classifies the realized session against forecast levels.
type Compare struct {
	LevelsForecast    *Levels `json:"levels_forecast"`
	TouchedSupport    bool    `json:"touched_support"`
	TouchedResistance bool    `json:"touched_resistance"`
	InsideRange       bool    `json:"inside_range"`
	Bias              string  `json:"bias"`
}

// ForecastRef echoes key forecast values for traceability. All fields
// are absent when the same-date forecast could not be found.
type ForecastRef struct {
	ETHSpotAtForecast *SpotReading `json:"eth_spot_at_forecast"`
	BTCSpotAtForecast *SpotReading `json:"btc_spot_at_forecast"`
	CalcAtForecast    *CalcBlock   `json:"calc_at_forecast"`
}
