package bybit

import (
	"context"
	"net/http"
	"time"

	"bybitsnap/pkg/market"
)

const defaultProviderTimeout = 8 * time.Second

// Provider wraps Bybit client calls behind the generic market.Provider
// contract, adding a per-call timeout and the spot/linear category split.
type Provider struct {
	client   *Client
	category string
	timeout  time.Duration
}

type providerConfig struct {
	timeout       time.Duration
	category      string
	clientOptions []Option
}

// ProviderOption customises the Bybit provider.
type ProviderOption func(*providerConfig)

// WithTimeout overrides the default per-call timeout.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithCategory overrides the spot product category.
func WithCategory(category string) ProviderOption {
	return func(cfg *providerConfig) {
		if category != "" {
			cfg.category = category
		}
	}
}

// WithClientOptions passes options to the underlying Bybit client.
func WithClientOptions(options ...Option) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.clientOptions = append(cfg.clientOptions, options...)
	}
}

// NewProvider constructs a Bybit market provider.
func NewProvider(opts ...ProviderOption) *Provider {
	cfg := &providerConfig{
		timeout:  defaultProviderTimeout,
		category: CategorySpot,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Provider{
		client:   NewClient(cfg.clientOptions...),
		category: cfg.category,
		timeout:  cfg.timeout,
	}
}

func init() {
	market.RegisterProvider("bybit", func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
		opts := []ProviderOption{}
		clientOptions := []Option{}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.Category != "" {
			opts = append(opts, WithCategory(cfg.Category))
		}
		if cfg.BaseURL != "" {
			clientOptions = append(clientOptions, WithBaseURL(cfg.BaseURL))
		}
		if cfg.HTTPTimeout > 0 {
			clientOptions = append(clientOptions, WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		if cfg.MaxRetries > 0 {
			clientOptions = append(clientOptions, WithMaxRetries(cfg.MaxRetries))
		}
		if len(clientOptions) > 0 {
			opts = append(opts, WithClientOptions(clientOptions...))
		}
		return NewProvider(opts...), nil
	})
}

// Ticker implements market.Provider.
func (p *Provider) Ticker(ctx context.Context, symbol string) (*market.Ticker, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetTicker(ctx, p.category, symbol)
}

// Klines implements market.Provider.
func (p *Provider) Klines(ctx context.Context, symbol, interval string, limit int) ([]market.Kline, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetKlines(ctx, p.category, symbol, interval, limit)
}

// KlinesRange implements market.Provider.
func (p *Provider) KlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]market.Kline, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetKlinesRange(ctx, p.category, symbol, interval, start.UnixMilli(), end.UnixMilli())
}

// OrderBookImbalancePct implements market.Provider.
func (p *Provider) OrderBookImbalancePct(ctx context.Context, symbol string, depth int) (float64, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetOrderBookImbalancePct(ctx, p.category, symbol, depth)
}

// FundingRatePct implements market.Provider.
func (p *Provider) FundingRatePct(ctx context.Context, symbol string) (float64, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetFundingRatePct(ctx, symbol)
}

// OpenInterest implements market.Provider.
func (p *Provider) OpenInterest(ctx context.Context, symbol string) (float64, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetOpenInterest(ctx, symbol)
}

// OpenInterestChange24hPct implements market.Provider.
func (p *Provider) OpenInterestChange24hPct(ctx context.Context, symbol string) (float64, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetOpenInterestChange24hPct(ctx, symbol)
}

// TakerBuySellRatio implements market.Provider.
func (p *Provider) TakerBuySellRatio(ctx context.Context, symbol string) (float64, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetTakerBuySellRatio(ctx, p.category, symbol)
}

// FuturesTurnover24h implements market.Provider.
func (p *Provider) FuturesTurnover24h(ctx context.Context, symbol string) (float64, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetFuturesTurnover24h(ctx, symbol)
}

// CumulativeDelta1h implements market.Provider.
func (p *Provider) CumulativeDelta1h(ctx context.Context, symbol string) (float64, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetCumulativeDelta(ctx, p.category, symbol, time.Hour)
}

// Liquidations24h implements market.Provider.
func (p *Provider) Liquidations24h(ctx context.Context, symbol string) (market.LiquidationTotals, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetLiquidations24h(ctx, symbol)
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, p.timeout)
}
