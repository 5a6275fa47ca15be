package snapshot

import (
	"math"

	"bybitsnap/pkg/market"
)

// levelEpsilon absorbs floating comparison noise when testing whether
// the session touched a forecast level.
const levelEpsilon = 1e-8

// Reconcile reduces the elapsed session's bars to realized stats and
// classifies them against the forecast levels. levels may be nil when
// no forecast exists; classification then degrades to the trivial case.
func Reconcile(session []market.Kline, levels *Levels) (Actual, Compare) {
	hi, lo := math.Inf(-1), math.Inf(1)
	closePx := math.NaN()
	var baseSum, quoteSum float64
	for _, k := range session {
		if !math.IsNaN(k.High) {
			hi = math.Max(hi, k.High)
		}
		if !math.IsNaN(k.Low) {
			lo = math.Min(lo, k.Low)
		}
		if !math.IsNaN(k.Close) {
			closePx = k.Close
		}
		if !math.IsNaN(k.Volume) {
			baseSum += k.Volume
		}
		if !math.IsNaN(k.Turnover) {
			quoteSum += k.Turnover
		}
	}
	if math.IsInf(hi, -1) {
		hi = math.NaN()
	}
	if math.IsInf(lo, 1) {
		lo = math.NaN()
	}
	vwap := math.NaN()
	if baseSum > 0 {
		vwap = quoteSum / baseSum
	}

	actual := Actual{
		High:             market.FiniteRound(hi, 2),
		Low:              market.FiniteRound(lo, 2),
		Close:            market.FiniteRound(closePx, 2),
		VWAPApprox:       market.FiniteRound(vwap, 2),
		VolumeBaseSum:    baseSum,
		TurnoverQuoteSum: quoteSum,
	}

	var support, resistance []float64
	if levels != nil {
		support, resistance = levels.Support, levels.Resistance
	}

	touchedSupport := false
	for _, s := range support {
		if !math.IsNaN(lo) && lo <= s+levelEpsilon {
			touchedSupport = true
			break
		}
	}
	touchedResistance := false
	for _, r := range resistance {
		if !math.IsNaN(hi) && hi >= r-levelEpsilon {
			touchedResistance = true
			break
		}
	}

	insideRange := true
	if len(support)+len(resistance) > 0 {
		minLvl, maxLvl := math.Inf(1), math.Inf(-1)
		for _, v := range append(append([]float64{}, support...), resistance...) {
			minLvl = math.Min(minLvl, v)
			maxLvl = math.Max(maxLvl, v)
		}
		insideRange = !math.IsNaN(closePx) && minLvl <= closePx && closePx <= maxLvl
	}

	// Both-touched and neither-touched sessions both classify as range.
	bias := "range"
	switch {
	case touchedResistance && !touchedSupport:
		bias = "bullish"
	case touchedSupport && !touchedResistance:
		bias = "bearish"
	}

	compare := Compare{
		LevelsForecast:    levels,
		TouchedSupport:    touchedSupport,
		TouchedResistance: touchedResistance,
		InsideRange:       insideRange,
		Bias:              bias,
	}
	return actual, compare
}
