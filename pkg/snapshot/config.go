package snapshot

import (
	"fmt"
	"time"
)

// Bybit kline interval codes used by the builder.
const (
	intervalRefClose = "1"   // 1m, reference close for spot validation
	intervalSession  = "5"   // 5m, intraday session bars
	intervalHourly   = "60"  // 1h
	interval4h       = "240" // 4h
	intervalDaily    = "D"
)

const (
	defaultTimezone       = "Europe/Podgorica"
	defaultPrimarySymbol  = "ETHUSDT"
	defaultSecondarySym   = "BTCUSDT"
	defaultOrderbookDepth = 50
	defaultHourlyBars     = 200 // enough for EMA200
)

// Config drives snapshot construction. Zero values fall back to the
// production defaults, so an empty config section is valid.
type Config struct {
	// PrimarySymbol is the instrument indicators and levels are built on.
	PrimarySymbol string `yaml:"primary_symbol" json:"primary_symbol,optional"`
	// SecondarySymbol is the reference instrument (spot block only).
	SecondarySymbol string `yaml:"secondary_symbol" json:"secondary_symbol,optional"`
	// Timezone fixes the local calendar the session and file names use.
	Timezone string `yaml:"timezone" json:"timezone,optional"`
	// OrderbookDepth is the number of levels per side for the imbalance.
	OrderbookDepth int `yaml:"orderbook_depth" json:"orderbook_depth,optional"`

	loc *time.Location
}

// Normalise applies defaults and resolves the timezone.
func (c *Config) Normalise() error {
	if c.PrimarySymbol == "" {
		c.PrimarySymbol = defaultPrimarySymbol
	}
	if c.SecondarySymbol == "" {
		c.SecondarySymbol = defaultSecondarySym
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.OrderbookDepth <= 0 {
		c.OrderbookDepth = defaultOrderbookDepth
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("snapshot config: invalid timezone %q: %w", c.Timezone, err)
	}
	c.loc = loc
	return nil
}

// Location returns the resolved local zone. Normalise must have run.
func (c *Config) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// DateStr formats t as the local calendar date used in file names.
func (c *Config) DateStr(t time.Time) string {
	return t.In(c.Location()).Format("2006-01-02")
}

// LocalMidnight returns the local midnight preceding t.
func (c *Config) LocalMidnight(t time.Time) time.Time {
	lt := t.In(c.Location())
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, c.Location())
}
