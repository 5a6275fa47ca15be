package aggregate

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"bybitsnap/pkg/snapshot"
)

var csvHeaders = []string{
	"date",
	"eth_last_forecast", "eth_last_review", "eth_change_pct",
	"btc_last_forecast", "btc_last_review", "btc_change_pct",
	"funding_eth_forecast", "funding_eth_review",
	"oi_eth_forecast", "oi_eth_review",
	"atr_1d_forecast", "vwap_review", "orderbook_imbalance_forecast",
	"support_lvl1", "support_lvl2", "resist_lvl1", "resist_lvl2",
}

// RenderCSV renders one summary row per date.
func RenderCSV(pairs []DayPair) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeaders); err != nil {
		return "", fmt.Errorf("aggregate: write csv header: %w", err)
	}
	for _, p := range pairs {
		if err := w.Write(csvRow(p)); err != nil {
			return "", fmt.Errorf("aggregate: write csv row %s: %w", p.Date, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("aggregate: flush csv: %w", err)
	}
	return buf.String(), nil
}

func csvRow(p DayPair) []string {
	ethF, ethR := spotLast(p.Forecast, true), spotLast(p.Review, true)
	btcF, btcR := spotLast(p.Forecast, false), spotLast(p.Review, false)
	return []string{
		p.Date,
		num(ethF), num(ethR), num(changePct(ethF, ethR)),
		num(btcF), num(btcR), num(changePct(btcF, btcR)),
		num(derivField(p.Forecast, fundingETH)), num(derivField(p.Review, fundingETH)),
		num(derivField(p.Forecast, oiETH)), num(derivField(p.Review, oiETH)),
		num(calcField(p.Forecast, atr1d)), num(calcField(p.Review, vwapToday)),
		num(calcField(p.Forecast, imbalance)),
		num(level(p.Forecast, supportLevels, 0)), num(level(p.Forecast, supportLevels, 1)),
		num(level(p.Forecast, resistanceLevels, 0)), num(level(p.Forecast, resistanceLevels, 1)),
	}
}

// RenderMarkdown renders the linked summary table. snapDir is the store
// directory the file links point into.
func RenderMarkdown(pairs []DayPair, snapDir string) string {
	var b strings.Builder
	b.WriteString("# Daily snapshot summary\n")
	b.WriteString("> Generated automatically from the `" + snapDir + "/` directory.\n\n")
	b.WriteString("| Date | Forecast | Review | ETH Δ% | BTC Δ% | Funding ETH f/r | OI ETH f/r | ATR(1D) | VWAP (review) | Levels |\n")
	b.WriteString("|---|---|---|---:|---:|---:|---:|---:|---:|---|\n")

	for _, p := range pairs {
		ethF, ethR := spotLast(p.Forecast, true), spotLast(p.Review, true)
		btcF, btcR := spotLast(p.Forecast, false), spotLast(p.Review, false)

		linkF := fmt.Sprintf("[forecast](%s/%s_forecast.json)", snapDir, p.Date)
		linkR := "—"
		if p.Review != nil {
			linkR = fmt.Sprintf("[review](%s/%s_review.json)", snapDir, p.Date)
		}
		levels := fmt.Sprintf("S: %s/%s • R: %s/%s",
			num(level(p.Forecast, supportLevels, 0)), num(level(p.Forecast, supportLevels, 1)),
			num(level(p.Forecast, resistanceLevels, 0)), num(level(p.Forecast, resistanceLevels, 1)))

		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s / %s | %s / %s | %s | %s | %s |\n",
			p.Date, linkF, linkR,
			pctCell(changePct(ethF, ethR)), pctCell(changePct(btcF, btcR)),
			num(derivField(p.Forecast, fundingETH)), num(derivField(p.Review, fundingETH)),
			num(derivField(p.Forecast, oiETH)), num(derivField(p.Review, oiETH)),
			num(calcField(p.Forecast, atr1d)), num(calcField(p.Review, vwapToday)),
			levels))
	}
	return b.String()
}

// changePct is (review/forecast − 1) × 100, or nil when either side is
// absent or the forecast value is zero.
func changePct(forecast, review *float64) *float64 {
	if forecast == nil || review == nil || *forecast == 0 {
		return nil
	}
	v := (*review / *forecast - 1.0) * 100.0
	// Trim float noise so 105/100 reads 5, not 5.000000000000004.
	v = math.Round(v*1e8) / 1e8
	return &v
}

func num(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func pctCell(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func spotLast(s *snapshot.Snapshot, primary bool) *float64 {
	if s == nil {
		return nil
	}
	spot := s.ETHSpot
	if !primary {
		spot = s.BTCSpot
	}
	if spot == nil {
		return nil
	}
	return spot.Last
}

func fundingETH(d *snapshot.DerivsBlock) *float64 { return d.FundingETHPct }
func oiETH(d *snapshot.DerivsBlock) *float64      { return d.OIETH }

func derivField(s *snapshot.Snapshot, pick func(*snapshot.DerivsBlock) *float64) *float64 {
	if s == nil || s.Derivs == nil {
		return nil
	}
	return pick(s.Derivs)
}

func atr1d(c *snapshot.CalcBlock) *float64     { return c.ATR1d }
func vwapToday(c *snapshot.CalcBlock) *float64 { return c.VWAPToday }
func imbalance(c *snapshot.CalcBlock) *float64 { return c.OrderbookImbalancePct }

func calcField(s *snapshot.Snapshot, pick func(*snapshot.CalcBlock) *float64) *float64 {
	if s == nil || s.Calc == nil {
		return nil
	}
	return pick(s.Calc)
}

func supportLevels(l *snapshot.Levels) []float64    { return l.Support }
func resistanceLevels(l *snapshot.Levels) []float64 { return l.Resistance }

func level(s *snapshot.Snapshot, pick func(*snapshot.Levels) []float64, idx int) *float64 {
	if s == nil || s.Levels == nil {
		return nil
	}
	vals := pick(s.Levels)
	if idx >= len(vals) {
		return nil
	}
	v := vals[idx]
	return &v
}
