package indicators

import "math"

// Kline is the OHLCV input for ATR and VWAP calculations.
type Kline struct {
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	Turnover float64
}

// EMA returns the exponential moving average of the whole series, seeded
// with the first element and smoothed with 2/(period+1). The period only
// gates the minimum length; NaN signals insufficient data.
func EMA(series []float64, period int) float64 {
	if period <= 0 || len(series) < period {
		return math.NaN()
	}
	multiplier := 2.0 / float64(period+1)
	ema := series[0]
	for _, v := range series[1:] {
		ema = (v-ema)*multiplier + ema
	}
	return ema
}

// WilderRSI computes Wilder's smoothed RSI. It needs at least period+1
// closes; the initial averages cover the first period deltas and the rest
// are folded in with avg = (avg*(period-1) + new) / period. A zero average
// loss saturates at 100.
func WilderRSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return math.NaN()
	}

	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gainSum += change
		} else {
			lossSum -= change
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain := math.Max(change, 0)
		loss := math.Max(-change, 0)
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// ATR returns the mean of the last period true-range samples. The first
// bar contributes high-low only; later bars use
// max(high-low, |high-prevClose|, |low-prevClose|).
func ATR(klines []Kline, period int) float64 {
	if period <= 0 || len(klines) < period {
		return math.NaN()
	}
	tr := make([]float64, len(klines))
	for i := range klines {
		if i == 0 {
			tr[i] = klines[i].High - klines[i].Low
			continue
		}
		highLow := klines[i].High - klines[i].Low
		highClose := math.Abs(klines[i].High - klines[i-1].Close)
		lowClose := math.Abs(klines[i].Low - klines[i-1].Close)
		tr[i] = math.Max(highLow, math.Max(highClose, lowClose))
	}
	sum := 0.0
	for _, v := range tr[len(tr)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// VWAP computes a volume/price weighted average over the supplied bars.
// Bars carrying real traded notional weigh their close by base volume;
// bars without turnover fall back to the typical price (h+l+c)/3 with a
// unit weight. Restricting bars to the current session is the caller's
// job. NaN when the weight sum is zero.
func VWAP(klines []Kline) float64 {
	var weighted, weightSum float64
	for _, k := range klines {
		if k.Turnover > 0 {
			weighted += k.Close * k.Volume
			weightSum += k.Volume
			continue
		}
		weighted += (k.High + k.Low + k.Close) / 3.0
		weightSum += 1.0
	}
	if weightSum == 0 {
		return math.NaN()
	}
	return weighted / weightSum
}

// macdMinLen covers the slow EMA window plus the signal window.
const macdMinLen = 35

// MACDHist returns the final MACD histogram value: MACD(12,26) minus its
// 9-period signal line, both built on cumulative EMA series. NaN when the
// series is shorter than 35 bars.
func MACDHist(closes []float64) float64 {
	if len(closes) < macdMinLen {
		return math.NaN()
	}
	ema12 := emaSeries(closes, 12)
	ema26 := emaSeries(closes, 26)
	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = ema12[i] - ema26[i]
	}
	signal := emaSeries(macd, 9)
	return macd[len(macd)-1] - signal[len(signal)-1]
}

// EMACross classifies the stack order of the three EMAs. Any absent input
// yields "flat".
func EMACross(e20, e50, e200 float64) string {
	if math.IsNaN(e20) || math.IsNaN(e50) || math.IsNaN(e200) {
		return "flat"
	}
	switch {
	case e20 > e50 && e50 > e200:
		return "bullish"
	case e20 < e50 && e50 < e200:
		return "bearish"
	default:
		return "flat"
	}
}

// emaSeries runs the seeded cumulative EMA over the series, one output per
// input bar.
func emaSeries(series []float64, period int) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}
	multiplier := 2.0 / float64(period+1)
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = (series[i]-out[i-1])*multiplier + out[i-1]
	}
	return out
}
