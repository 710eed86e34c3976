package krx

import (
	"context"
	"net/url"
	"sort"

	"go.opentelemetry.io/otel/trace"

	"krx-supply-oscillator/internal/cache"
	"krx-supply-oscillator/internal/domain"
)

// Etf exposes the ETF report queries. ETFs resolve through their own cache
// namespace: the upstream issues ETF identifiers from a separate listing, so
// a symbol cached as a stock says nothing about the ETF space.
type Etf struct {
	client *Client
	cache  *cache.TickerCache
	tracer trace.Tracer
}

func NewEtf(client *Client, tickerCache *cache.TickerCache, tracer trace.Tracer) *Etf {
	return &Etf{client: client, cache: tickerCache, tracer: tracer}
}

// TickerList returns the full ETF listing for a date.
func (e *Etf) TickerList(ctx context.Context, date string) ([]domain.EtfRecord, error) {
	ctx, span := e.tracer.Start(ctx, "krx.etf-ticker-list")
	defer span.End()

	if err := ValidateDate(date); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("bld", bldEtfTickerList)
	params.Set("trdDd", date)

	body, err := e.client.Post(ctx, params)
	if err != nil {
		return nil, err
	}
	return decodeReport(body, decodeEtfRow)
}

// OhlcvByTicker returns the daily OHLCV history for one ETF over a date
// range, ascending by date. An unknown ETF ticker yields an empty list.
func (e *Etf) OhlcvByTicker(ctx context.Context, startDate, endDate, ticker string) ([]domain.OhlcvDay, error) {
	ctx, span := e.tracer.Start(ctx, "krx.etf-ohlcv-by-ticker")
	defer span.End()

	if err := ValidateDateRange(startDate, endDate); err != nil {
		return nil, err
	}
	isin, ok, err := e.resolveISIN(ctx, ticker, endDate)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.OhlcvDay{}, nil
	}

	days, err := fetchChunks(startDate, endDate, func(chunkStart, chunkEnd string) ([]domain.OhlcvDay, error) {
		params := url.Values{}
		params.Set("bld", bldEtfOhlcvByTicker)
		params.Set("isuCd", isin)
		params.Set("strtDd", chunkStart)
		params.Set("endDd", chunkEnd)

		body, err := e.client.Post(ctx, params)
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

func (e *Etf) resolveISIN(ctx context.Context, ticker, date string) (string, bool, error) {
	if isin, ok := e.cache.GetEtfISIN(ticker); ok {
		return isin, true, nil
	}

	records, err := e.TickerList(ctx, date)
	if err != nil {
		return "", false, err
	}
	mapping := make(map[string]string, len(records))
	for _, rec := range records {
		if rec.ISIN != "" {
			mapping[rec.Ticker] = rec.ISIN
		}
	}
	e.cache.PutAllEtfISINs(mapping)

	isin, ok := mapping[ticker]
	return isin, ok, nil
}
