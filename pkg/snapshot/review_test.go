package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bybitsnap/pkg/market"
)

func barsFromRange(low, high, close float64) []market.Kline {
	return []market.Kline{
		{High: (low + high) / 2, Low: low, Close: (low + high) / 2, Volume: 100, Turnover: 100 * (low + high) / 2},
		{High: high, Low: (low + high) / 2, Close: close, Volume: 100, Turnover: 100 * close},
	}
}

func TestReconcileBearishBias(t *testing.T) {
	levels := &Levels{Support: []float64{90}, Resistance: []float64{110}}
	actual, compare := Reconcile(barsFromRange(88, 105, 100), levels)

	require.NotNil(t, actual.Low)
	assert.InDelta(t, 88, *actual.Low, 1e-9)
	require.NotNil(t, actual.High)
	assert.InDelta(t, 105, *actual.High, 1e-9)
	assert.True(t, compare.TouchedSupport)
	assert.False(t, compare.TouchedResistance)
	assert.Equal(t, "bearish", compare.Bias)
	assert.True(t, compare.InsideRange)
}

func TestReconcileRangeBiasWhenNeitherTouched(t *testing.T) {
	levels := &Levels{Support: []float64{90}, Resistance: []float64{110}}
	_, compare := Reconcile(barsFromRange(95, 105, 100), levels)

	assert.False(t, compare.TouchedSupport)
	assert.False(t, compare.TouchedResistance)
	assert.Equal(t, "range", compare.Bias)
}

func TestReconcileRangeBiasWhenBothTouched(t *testing.T) {
	levels := &Levels{Support: []float64{90}, Resistance: []float64{110}}
	_, compare := Reconcile(barsFromRange(88, 112, 100), levels)

	assert.True(t, compare.TouchedSupport)
	assert.True(t, compare.TouchedResistance)
	assert.Equal(t, "range", compare.Bias, "both-touched sessions collapse to range")
}

func TestReconcileBullishBias(t *testing.T) {
	levels := &Levels{Support: []float64{90}, Resistance: []float64{110}}
	_, compare := Reconcile(barsFromRange(95, 111, 108), levels)

	assert.True(t, compare.TouchedResistance)
	assert.False(t, compare.TouchedSupport)
	assert.Equal(t, "bullish", compare.Bias)
}

func TestReconcileTouchEpsilon(t *testing.T) {
	// Low lands a hair above the level; the epsilon still counts it.
	levels := &Levels{Support: []float64{90}}
	_, compare := Reconcile(barsFromRange(90+1e-10, 105, 100), levels)
	assert.True(t, compare.TouchedSupport)
}

func TestReconcileInsideRange(t *testing.T) {
	levels := &Levels{Support: []float64{90}, Resistance: []float64{110}}
	_, outside := Reconcile(barsFromRange(95, 105, 115), levels)
	assert.False(t, outside.InsideRange)

	_, empty := Reconcile(barsFromRange(95, 105, 100), &Levels{})
	assert.True(t, empty.InsideRange, "no levels at all is trivially inside")

	_, nilLevels := Reconcile(barsFromRange(95, 105, 100), nil)
	assert.True(t, nilLevels.InsideRange)
	assert.Nil(t, nilLevels.LevelsForecast)
}

func TestReconcileVWAP(t *testing.T) {
	bars := []market.Kline{
		{High: 101, Low: 99, Close: 100, Volume: 10, Turnover: 1000},
		{High: 103, Low: 101, Close: 102, Volume: 30, Turnover: 3090},
	}
	actual, _ := Reconcile(bars, nil)
	require.NotNil(t, actual.VWAPApprox)
	assert.InDelta(t, 4090.0/40.0, *actual.VWAPApprox, 1e-9)
	assert.InDelta(t, 40.0, actual.VolumeBaseSum, 1e-9)
	assert.InDelta(t, 4090.0, actual.TurnoverQuoteSum, 1e-9)
}

func TestReconcileVWAPAbsentWithoutVolume(t *testing.T) {
	bars := []market.Kline{{High: 101, Low: 99, Close: 100, Volume: 0, Turnover: 0}}
	actual, _ := Reconcile(bars, nil)
	assert.Nil(t, actual.VWAPApprox)
}

func TestReconcileEmptySession(t *testing.T) {
	actual, compare := Reconcile(nil, &Levels{Support: []float64{90}})
	assert.Nil(t, actual.High)
	assert.Nil(t, actual.Low)
	assert.Nil(t, actual.Close)
	assert.Nil(t, actual.VWAPApprox)
	assert.False(t, compare.TouchedSupport)
	assert.False(t, compare.InsideRange, "no realized close cannot sit inside a defined range")
	assert.Equal(t, "range", compare.Bias)
}
