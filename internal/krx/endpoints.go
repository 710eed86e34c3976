package krx

// All KRX data-portal reports are served from a single endpoint; the bld form
// parameter selects which report the server returns.
const (
	// BaseURL is the JSON data endpoint (form-encoded POST only).
	BaseURL = "https://data.krx.co.kr/comm/bldAttendant/getJsonData.cmd"

	// DefaultReferer works for the standard statistics reports without a
	// session cookie.
	DefaultReferer = "https://data.krx.co.kr/contents/MDC/MDI/outerLoader/index.cmd"

	// SessionInitURL is fetched with GET to obtain a JSESSIONID cookie; some
	// report categories validate the session strictly.
	SessionInitURL = "https://data.krx.co.kr/contents/MDC/MDI/mdiLoader/index.cmd?menuId=MDC0201"

	originHeader = "https://data.krx.co.kr"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// logoutSentinel is the entire trimmed body the server returns when it
	// rejects the session. It arrives with either a 200 or 400 status and
	// must be checked before any JSON decoding.
	logoutSentinel = "LOGOUT"
)

// bld report codes.
const (
	bldStockOhlcvAll        = "dbms/MDC/STAT/standard/MDCSTAT01501"
	bldStockOhlcvByTicker   = "dbms/MDC/STAT/standard/MDCSTAT01701"
	bldTickerList           = "dbms/MDC/STAT/standard/MDCSTAT01901"
	bldInvestorMarketDaily  = "dbms/MDC/STAT/standard/MDCSTAT02203"
	bldInvestorTickerDaily  = "dbms/MDC/STAT/standard/MDCSTAT02303"
	bldEtfOhlcvByTicker     = "dbms/MDC/STAT/standard/MDCSTAT04501"
	bldEtfTickerList        = "dbms/MDC/STAT/standard/MDCSTAT04601"
)

// TradingValueType selects volume vs. traded value on investor reports.
type TradingValueType string

const (
	TradingVolume TradingValueType = "1"
	TradingValue  TradingValueType = "2"
)

// AskBidType selects sell / buy / net-buy on investor reports.
type AskBidType string

const (
	AskBidSell   AskBidType = "1"
	AskBidBuy    AskBidType = "2"
	AskBidNetBuy AskBidType = "3"
)
