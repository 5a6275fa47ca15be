package bybit

import "encoding/json"

// Bybit v5 market endpoints used by this client.
const (
	endpointTickers      = "/v5/market/tickers"
	endpointKline        = "/v5/market/kline"
	endpointOrderbook    = "/v5/market/orderbook"
	endpointFunding      = "/v5/market/funding/history"
	endpointOpenInterest = "/v5/market/open-interest"
	endpointRecentTrade  = "/v5/market/recent-trade"
	endpointLiquidation  = "/v5/market/liquidation"
)

// Product categories accepted by the v5 market endpoints.
const (
	CategorySpot   = "spot"
	CategoryLinear = "linear"
)

// envelope is the top-level v5 response wrapper.
type envelope struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
}

// tickerRow is one /v5/market/tickers entry. All numeric fields arrive
// as strings and go through market.ParseFloat.
type tickerRow struct {
	Symbol       string `json:"symbol"`
	LastPrice    string `json:"lastPrice"`
	HighPrice24h string `json:"highPrice24h"`
	LowPrice24h  string `json:"lowPrice24h"`
	Volume24h    string `json:"volume24h"`
	Turnover24h  string `json:"turnover24h"`
	Price24hPcnt string `json:"price24hPcnt"`
}

type tickerResult struct {
	Category string      `json:"category"`
	List     []tickerRow `json:"list"`
}

// klineResult mirrors /v5/market/kline. Each row is
// [start, open, high, low, close, volume, turnover], newest-first.
type klineResult struct {
	Category string     `json:"category"`
	Symbol   string     `json:"symbol"`
	List     [][]string `json:"list"`
}

// orderbookResult mirrors /v5/market/orderbook; levels are [price, size].
type orderbookResult struct {
	Symbol string      `json:"s"`
	Bids   [][2]string `json:"b"`
	Asks   [][2]string `json:"a"`
	TimeMS int64       `json:"ts"`
}

// fundingResult mirrors /v5/market/funding/history.
type fundingResult struct {
	Category string `json:"category"`
	List     []struct {
		Symbol      string `json:"symbol"`
		FundingRate string `json:"fundingRate"`
		TimestampMS string `json:"fundingRateTimestamp"`
	} `json:"list"`
}

// openInterestResult mirrors /v5/market/open-interest, newest-first.
type openInterestResult struct {
	Category string `json:"category"`
	Symbol   string `json:"symbol"`
	List     []struct {
		OpenInterest string `json:"openInterest"`
		TimestampMS  string `json:"timestamp"`
	} `json:"list"`
}

// trade is one public execution from /v5/market/recent-trade.
type trade struct {
	ExecID string `json:"execId"`
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
	Size   string `json:"size"`
	Side   string `json:"side"` // "Buy" | "Sell" (taker side)
	TimeMS string `json:"time"`
}

type tradeResult struct {
	Category string  `json:"category"`
	List     []trade `json:"list"`
}

// liquidation is one record from the liquidation listing.
type liquidation struct {
	Symbol string `json:"symbol"`
	Side   string `json:"side"`
	Size   string `json:"size"`
	Price  string `json:"price"`
	TimeMS string `json:"updatedTime"`
}

type liquidationResult struct {
	Category string        `json:"category"`
	List     []liquidation `json:"list"`
}
