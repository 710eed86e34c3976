package krx

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"krx-supply-oscillator/internal/cache"
	"krx-supply-oscillator/internal/domain"
)

// Stock exposes the stock-market report queries. Operations that need the
// exchange-internal ISIN resolve it through the ticker cache first; a miss
// costs one full-listing call that bulk-populates the cache.
type Stock struct {
	client *Client
	cache  *cache.TickerCache
	tracer trace.Tracer
}

func NewStock(client *Client, tickerCache *cache.TickerCache, tracer trace.Tracer) *Stock {
	return &Stock{client: client, cache: tickerCache, tracer: tracer}
}

// TickerList returns the full-market listing for a date.
func (s *Stock) TickerList(ctx context.Context, date string, market domain.Market) ([]domain.TickerRecord, error) {
	ctx, span := s.tracer.Start(ctx, "krx.ticker-list")
	defer span.End()

	if err := ValidateDate(date); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("bld", bldTickerList)
	params.Set("mktId", string(market))
	params.Set("trdDd", date)

	body, err := s.client.Post(ctx, params)
	if err != nil {
		return nil, err
	}
	return decodeReport(body, decodeTickerRow)
}

// MarketCaps returns the all-market price snapshot for a date, including
// market capitalization and shares outstanding per issue. Holidays yield an
// empty list.
func (s *Stock) MarketCaps(ctx context.Context, date string, market domain.Market) ([]domain.MarketCapRecord, error) {
	ctx, span := s.tracer.Start(ctx, "krx.market-caps")
	defer span.End()

	if err := ValidateDate(date); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("bld", bldStockOhlcvAll)
	params.Set("mktId", string(market))
	params.Set("trdDd", date)

	body, err := s.client.Post(ctx, params)
	if err != nil {
		return nil, err
	}
	return decodeReport(body, decodeMarketCapRow)
}

// OhlcvByTicker returns the adjusted daily OHLCV history for one ticker over
// a date range, ascending by date. An unknown or delisted ticker yields an
// empty list. Ranges beyond the server's span limit are fetched in chunks.
func (s *Stock) OhlcvByTicker(ctx context.Context, startDate, endDate, ticker string) ([]domain.OhlcvDay, error) {
	ctx, span := s.tracer.Start(ctx, "krx.ohlcv-by-ticker")
	defer span.End()

	if err := ValidateDateRange(startDate, endDate); err != nil {
		return nil, err
	}
	isin, ok, err := s.resolveISIN(ctx, ticker, endDate)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.OhlcvDay{}, nil
	}

	days, err := fetchChunks(startDate, endDate, func(chunkStart, chunkEnd string) ([]domain.OhlcvDay, error) {
		params := url.Values{}
		params.Set("bld", bldStockOhlcvByTicker)
		params.Set("isuCd", isin)
		params.Set("strtDd", chunkStart)
		params.Set("endDd", chunkEnd)
		params.Set("adjStkPrc", "2") // adjusted close

		body, err := s.client.Post(ctx, params)
		if err != nil {
			return nil, err
		}
		return decodeReport(body, decodeOhlcvRow)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

// TradingByInvestor returns the per-ticker investor trading history over a
// date range, ascending by date. An unknown ticker yields an empty list.
func (s *Stock) TradingByInvestor(ctx context.Context, startDate, endDate, ticker string, valueType TradingValueType, askBid AskBidType) ([]domain.InvestorTrading, error) {
	ctx, span := s.tracer.Start(ctx, "krx.trading-by-investor")
	defer span.End()

	if err := ValidateDateRange(startDate, endDate); err != nil {
		return nil, err
	}
	isin, ok, err := s.resolveISIN(ctx, ticker, endDate)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.InvestorTrading{}, nil
	}

	rows, err := fetchChunks(startDate, endDate, func(chunkStart, chunkEnd string) ([]domain.InvestorTrading, error) {
		params := url.Values{}
		params.Set("bld", bldInvestorTickerDaily)
		params.Set("strtDd", chunkStart)
		params.Set("endDd", chunkEnd)
		params.Set("isuCd", isin)
		params.Set("trdVolVal", string(valueType))
		params.Set("askBid", string(askBid))
		params.Set("inqTpCd", "2")
		params.Set("detailView", "1")

		body, err := s.client.Post(ctx, params)
		if err != nil {
			return nil, err
		}
		return decodeReport(body, decodeInvestorTickerRow)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows, nil
}

// MarketTradingByInvestor returns the market-wide investor trading history
// over a date range, ascending by date.
func (s *Stock) MarketTradingByInvestor(ctx context.Context, startDate, endDate string, market domain.Market, valueType TradingValueType, askBid AskBidType) ([]domain.InvestorTrading, error) {
	ctx, span := s.tracer.Start(ctx, "krx.market-trading-by-investor")
	defer span.End()

	if err := ValidateDateRange(startDate, endDate); err != nil {
		return nil, err
	}

	rows, err := fetchChunks(startDate, endDate, func(chunkStart, chunkEnd string) ([]domain.InvestorTrading, error) {
		params := url.Values{}
		params.Set("bld", bldInvestorMarketDaily)
		params.Set("strtDd", chunkStart)
		params.Set("endDd", chunkEnd)
		params.Set("mktId", string(market))
		params.Set("trdVolVal", string(valueType))
		params.Set("askBid", string(askBid))

		body, err := s.client.Post(ctx, params)
		if err != nil {
			return nil, err
		}
		return decodeReport(body, decodeInvestorMarketRow)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows, nil
}

// Search filters the full listing for a date by case-insensitive name
// fragment (either direction) or exact ticker match.
func (s *Stock) Search(ctx context.Context, query, date string, market domain.Market) ([]domain.SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "krx.search")
	defer span.End()

	records, err := s.TickerList(ctx, date, market)
	if err != nil {
		return nil, err
	}

	q := strings.ToUpper(strings.TrimSpace(query))
	var results []domain.SearchResult
	for _, rec := range records {
		name := strings.ToUpper(rec.Name)
		if q == "" || strings.Contains(name, q) || strings.Contains(q, name) || rec.Ticker == query {
			results = append(results, domain.SearchResult{
				Ticker: rec.Ticker,
				Name:   rec.Name,
				Market: rec.Market,
			})
		}
	}
	return results, nil
}

// resolveISIN looks the ticker up in the cache, falling back to one
// full-listing fetch that bulk-populates the cache for future lookups.
// ok=false means the symbol is simply not listed on that date.
func (s *Stock) resolveISIN(ctx context.Context, ticker, date string) (string, bool, error) {
	if isin, ok := s.cache.GetStockISIN(ticker); ok {
		return isin, true, nil
	}

	records, err := s.TickerList(ctx, date, domain.MarketAll)
	if err != nil {
		return "", false, err
	}
	mapping := make(map[string]string, len(records))
	for _, rec := range records {
		if rec.ISIN != "" {
			mapping[rec.Ticker] = rec.ISIN
		}
	}
	s.cache.PutAllStockISINs(mapping)

	isin, ok := mapping[ticker]
	return isin, ok, nil
}

// fetchChunks issues one fetch per sub-range and concatenates the results.
// Sub-ranges are sequential; retries happen inside each call, never fanned
// out across chunks.
func fetchChunks[T any](startDate, endDate string, fetch func(chunkStart, chunkEnd string) ([]T, error)) ([]T, error) {
	var out []T
	for _, chunk := range dateChunks(startDate, endDate) {
		part, err := fetch(chunk[0], chunk[1])
		if err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}
