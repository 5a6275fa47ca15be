package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMAInsufficientData(t *testing.T) {
	assert.True(t, math.IsNaN(EMA([]float64{1, 2}, 3)))
	assert.True(t, math.IsNaN(EMA(nil, 1)))
	assert.True(t, math.IsNaN(EMA([]float64{1, 2, 3}, 0)))
}

func TestEMAWholeSeries(t *testing.T) {
	// Seeded with the first element, alpha = 2/(period+1) = 0.5.
	// 1 -> (2-1)*0.5+1 = 1.5 -> (3-1.5)*0.5+1.5 = 2.25
	got := EMA([]float64{1, 2, 3}, 3)
	assert.InDelta(t, 2.25, got, 1e-12)

	// The period gates length only; the same series with period 2 walks
	// the identical three elements with alpha = 2/3.
	got = EMA([]float64{1, 2, 3}, 2)
	want := 1.0
	for _, v := range []float64{2, 3} {
		want = (v-want)*(2.0/3.0) + want
	}
	assert.InDelta(t, want, got, 1e-12)
}

func TestEMAConstantSeries(t *testing.T) {
	assert.InDelta(t, 7.0, EMA([]float64{7, 7, 7, 7, 7}, 5), 1e-12)
}

func TestWilderRSIUpperSaturation(t *testing.T) {
	// Monotone rise of exactly period+1 closes: zero average loss.
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	require.Len(t, closes, 15)
	assert.Equal(t, 100.0, WilderRSI(closes, 14))
}

func TestWilderRSIInsufficientData(t *testing.T) {
	closes := make([]float64, 14)
	for i := range closes {
		closes[i] = float64(i)
	}
	assert.True(t, math.IsNaN(WilderRSI(closes, 14)), "period closes are not enough")
	assert.True(t, math.IsNaN(WilderRSI(nil, 14)))
}

func TestWilderRSIBalancedMoves(t *testing.T) {
	// Alternating equal gains and losses settle near 50.
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i%2)
	}
	got := WilderRSI(closes, 14)
	assert.InDelta(t, 50.0, got, 5.0)
	assert.False(t, math.IsNaN(got))
}

func TestWilderRSISmoothing(t *testing.T) {
	// One loss after fourteen gains keeps RSI high but below 100.
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 14.5}
	got := WilderRSI(closes, 14)
	assert.Less(t, got, 100.0)
	assert.Greater(t, got, 80.0)
}

func TestATR(t *testing.T) {
	klines := []Kline{
		{High: 12, Low: 8, Close: 10},  // first bar: high-low = 4
		{High: 15, Low: 11, Close: 14}, // max(4, |15-10|, |11-10|) = 5
		{High: 13, Low: 10, Close: 11}, // max(3, |13-14|, |10-14|) = 4
	}
	assert.InDelta(t, (4.0+5.0+4.0)/3.0, ATR(klines, 3), 1e-12)
	assert.InDelta(t, (5.0+4.0)/2.0, ATR(klines, 2), 1e-12, "only the last period samples count")
	assert.True(t, math.IsNaN(ATR(klines, 4)))
	assert.True(t, math.IsNaN(ATR(nil, 1)))
}

func TestVWAPTurnoverWeighted(t *testing.T) {
	klines := []Kline{
		{High: 101, Low: 99, Close: 100, Volume: 10, Turnover: 1000},
		{High: 103, Low: 101, Close: 102, Volume: 30, Turnover: 3060},
	}
	// (100*10 + 102*30) / 40
	assert.InDelta(t, 4060.0/40.0, VWAP(klines), 1e-12)
}

func TestVWAPTypicalPriceFallback(t *testing.T) {
	klines := []Kline{
		{High: 103, Low: 97, Close: 100}, // typical = 100, unit weight
		{High: 106, Low: 100, Close: 103},
	}
	assert.InDelta(t, (100.0+103.0)/2.0, VWAP(klines), 1e-12)
}

func TestVWAPZeroWeight(t *testing.T) {
	assert.True(t, math.IsNaN(VWAP(nil)))
	// Turnover present but zero base volume on every bar.
	klines := []Kline{{High: 101, Low: 99, Close: 100, Volume: 0, Turnover: 500}}
	assert.True(t, math.IsNaN(VWAP(klines)))
}

func TestMACDHist(t *testing.T) {
	short := make([]float64, macdMinLen-1)
	assert.True(t, math.IsNaN(MACDHist(short)))

	flat := make([]float64, 50)
	for i := range flat {
		flat[i] = 100
	}
	assert.InDelta(t, 0.0, MACDHist(flat), 1e-12, "constant prices have a flat histogram")

	rising := make([]float64, 50)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	assert.Greater(t, MACDHist(rising), 0.0, "steady uptrend keeps MACD above its signal")
}

func TestEMACross(t *testing.T) {
	assert.Equal(t, "bullish", EMACross(110, 105, 100))
	assert.Equal(t, "bearish", EMACross(100, 105, 110))
	assert.Equal(t, "flat", EMACross(105, 110, 100))
	assert.Equal(t, "flat", EMACross(math.NaN(), 105, 100))
	assert.Equal(t, "flat", EMACross(100, 100, 100))
}
