package domain

// Market selects the KRX market segment via the mktId request parameter.
type Market string

const (
	MarketKOSPI  Market = "STK"
	MarketKOSDAQ Market = "KSQ"
	MarketKONEX  Market = "KNX"
	MarketAll    Market = "ALL"
)

func (m Market) IsValid() bool {
	switch m {
	case MarketKOSPI, MarketKOSDAQ, MarketKONEX, MarketAll:
		return true
	}
	return false
}

// TickerRecord is one row of the full-market listing report. The
// (Ticker -> ISIN) projection is what the resolution cache stores.
type TickerRecord struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Market string `json:"market"`
	ISIN   string `json:"isin"`
}

// DailyTrading is one trading day of merged source data: market cap from the
// close price x shares outstanding, plus foreign and institutional net buys.
// Days missing from any source series are dropped during the merge.
type DailyTrading struct {
	Date          string `json:"date"`
	MarketCap     int64  `json:"market_cap"`
	ForeignNetBuy int64  `json:"foreign_net_buy"`
	InstNetBuy    int64  `json:"inst_net_buy"`
}

// OscillatorRow carries every intermediate column of the oscillator pipeline
// for one display-period day. Invariants: MACD == EMAFast - EMASlow and
// Oscillator == MACD - Signal, exactly.
type OscillatorRow struct {
	Date         string  `json:"date"`
	MarketCap    int64   `json:"market_cap"`
	MarketCapTrl float64 `json:"market_cap_trillions"`
	Foreign5d    int64   `json:"foreign_5d"`
	Inst5d       int64   `json:"inst_5d"`
	SupplyRatio  float64 `json:"supply_ratio"`
	EMAFast      float64 `json:"ema_fast"`
	EMASlow      float64 `json:"ema_slow"`
	MACD         float64 `json:"macd"`
	Signal       float64 `json:"signal"`
	Oscillator   float64 `json:"oscillator"`
}

type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

type CrossSignal string

const (
	CrossNone   CrossSignal = "none"
	GoldenCross CrossSignal = "golden_cross"
	DeadCross   CrossSignal = "dead_cross"
)

// SignalAnalysis classifies one oscillator row against its predecessor.
type SignalAnalysis struct {
	Date         string      `json:"date"`
	MarketCapTrl float64     `json:"market_cap_trillions"`
	Oscillator   float64     `json:"oscillator"`
	MACD         float64     `json:"macd"`
	Signal       float64     `json:"signal"`
	Trend        Trend       `json:"trend"`
	CrossSignal  CrossSignal `json:"cross_signal"`
}

// OhlcvDay is one row of the per-ticker OHLCV history report.
type OhlcvDay struct {
	Date         string  `json:"date"`
	Open         int64   `json:"open"`
	High         int64   `json:"high"`
	Low          int64   `json:"low"`
	Close        int64   `json:"close"`
	Volume       int64   `json:"volume"`
	TradingValue int64   `json:"trading_value"`
	ChangeRate   float64 `json:"change_rate"`
}

// MarketCapRecord is one row of the all-market price report, carrying the
// market-capitalization and shares-outstanding snapshot for one issue.
type MarketCapRecord struct {
	Ticker            string  `json:"ticker"`
	Name              string  `json:"name"`
	Close             int64   `json:"close"`
	ChangeRate        float64 `json:"change_rate"`
	MarketCap         int64   `json:"market_cap"`
	SharesOutstanding int64   `json:"shares_outstanding"`
}

// InvestorTrading is one day of investor-class trading value. The market-wide
// and per-ticker reports disagree on column layout; the decoders normalize
// both into this shape, with InstTotal always covering the seven
// institutional classes.
type InvestorTrading struct {
	Date          string `json:"date"`
	FinancialInv  int64  `json:"financial_investment"`
	Insurance     int64  `json:"insurance"`
	Trust         int64  `json:"investment_trust"`
	PrivateEquity int64  `json:"private_equity"`
	Bank          int64  `json:"bank"`
	OtherFinance  int64  `json:"other_finance"`
	PensionFund   int64  `json:"pension_fund"`
	InstTotal     int64  `json:"institutional_total"`
	OtherCorp     int64  `json:"other_corporation"`
	Individual    int64  `json:"individual"`
	Foreign       int64  `json:"foreign"`
	Total         int64  `json:"total"`
}

// EtfRecord is one row of the ETF listing report.
type EtfRecord struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	ISIN   string `json:"isin"`
	Index  string `json:"index"`
}

// SearchResult is the public search projection consumed by the UI layer.
type SearchResult struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Market string `json:"market"`
}
