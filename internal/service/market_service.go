package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"krx-supply-oscillator/internal/domain"
	"krx-supply-oscillator/internal/krx"
	"krx-supply-oscillator/internal/oscillator"
)

const (
	dailyCacheTTL = 10 * time.Minute
	dateLayout    = "20060102"

	// warmupLookbackFactor converts warm-up trading days to calendar days;
	// two calendar days per trading day comfortably covers weekends and
	// holiday runs.
	warmupLookbackFactor = 2
)

// StockAPI is the façade surface the service consumes.
type StockAPI interface {
	Search(ctx context.Context, query, date string, market domain.Market) ([]domain.SearchResult, error)
	OhlcvByTicker(ctx context.Context, startDate, endDate, ticker string) ([]domain.OhlcvDay, error)
	TradingByInvestor(ctx context.Context, startDate, endDate, ticker string, valueType krx.TradingValueType, askBid krx.AskBidType) ([]domain.InvestorTrading, error)
	MarketTradingByInvestor(ctx context.Context, startDate, endDate string, market domain.Market, valueType krx.TradingValueType, askBid krx.AskBidType) ([]domain.InvestorTrading, error)
	MarketCaps(ctx context.Context, date string, market domain.Market) ([]domain.MarketCapRecord, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// MarketService composes the KRX façade and the oscillator engine into the
// two public entry points: daily series acquisition and oscillator
// computation. A short-TTL redis cache sits in front of the merged series;
// the service runs fine without it.
type MarketService struct {
	tracer trace.Tracer
	stock  StockAPI
	engine *oscillator.Engine
	redis  RedisClient
	now    func() time.Time
}

func NewMarketService(tracer trace.Tracer, stock StockAPI, engine *oscillator.Engine, redisClient RedisClient) *MarketService {
	return &MarketService{
		tracer: tracer,
		stock:  stock,
		engine: engine,
		redis:  redisClient,
		now:    time.Now,
	}
}

// Search matches tickers by name fragment or exact symbol against today's
// listing. No matches is an empty list, never an error.
func (s *MarketService) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.search")
	defer span.End()

	today := s.now().Format(dateLayout)
	return s.stock.Search(ctx, query, today, domain.MarketAll)
}

// DailySeries merges the three source series (close price, investor net-buy,
// shares-outstanding snapshot) into one ascending DailyTrading sequence.
// The sources are fetched concurrently; any failure fails the merge. A day
// missing from any required source is dropped.
func (s *MarketService) DailySeries(ctx context.Context, ticker, startDate, endDate string) ([]domain.DailyTrading, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.daily-series")
	defer span.End()

	if cached := s.getSeriesCache(ctx, ticker, startDate, endDate); cached != nil {
		return cached, nil
	}

	var (
		trading []domain.InvestorTrading
		ohlcv   []domain.OhlcvDay
		shares  int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trading, err = s.stock.TradingByInvestor(gctx, startDate, endDate, ticker, krx.TradingValue, krx.AskBidNetBuy)
		if err != nil {
			return fmt.Errorf("investor trading for %s: %w", ticker, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ohlcv, err = s.stock.OhlcvByTicker(gctx, startDate, endDate, ticker)
		if err != nil {
			return fmt.Errorf("ohlcv for %s: %w", ticker, err)
		}
		return nil
	})
	g.Go(func() error {
		caps, err := s.stock.MarketCaps(gctx, endDate, domain.MarketAll)
		if err != nil {
			return fmt.Errorf("market caps at %s: %w", endDate, err)
		}
		for _, rec := range caps {
			if rec.Ticker == ticker {
				shares = rec.SharesOutstanding
				break
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	closeByDate := make(map[string]int64, len(ohlcv))
	for _, day := range ohlcv {
		closeByDate[day.Date] = day.Close
	}

	series := make([]domain.DailyTrading, 0, len(trading))
	for _, inv := range trading {
		closePrice, ok := closeByDate[inv.Date]
		if !ok {
			continue
		}
		series = append(series, domain.DailyTrading{
			Date:          inv.Date,
			MarketCap:     closePrice * shares,
			ForeignNetBuy: inv.Foreign,
			InstNetBuy:    inv.InstTotal,
		})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })

	s.setSeriesCache(ctx, ticker, startDate, endDate, series)
	return series, nil
}

// OscillatorSeries computes oscillator rows for the display range
// [startDate, endDate]. warmupDays extra trading days are fetched before
// startDate purely to stabilize the rolling sums; rows before startDate are
// dropped and the EMAs restart at the first display row. An unresolvable
// ticker or a display range without trading days yields an empty list.
func (s *MarketService) OscillatorSeries(ctx context.Context, ticker, startDate, endDate string, warmupDays int) ([]domain.OscillatorRow, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.oscillator-series")
	defer span.End()

	if warmupDays < 0 {
		return nil, &domain.InvalidInputError{Reason: fmt.Sprintf("warmup days %d is negative", warmupDays)}
	}
	if err := krx.ValidateDateRange(startDate, endDate); err != nil {
		return nil, err
	}

	fetchStart := startDate
	if warmupDays > 0 {
		start, _ := time.Parse(dateLayout, startDate)
		fetchStart = start.AddDate(0, 0, -warmupDays*warmupLookbackFactor).Format(dateLayout)
	}

	daily, err := s.DailySeries(ctx, ticker, fetchStart, endDate)
	if err != nil {
		return nil, err
	}

	warmupCount := 0
	for warmupCount < len(daily) && daily[warmupCount].Date < startDate {
		warmupCount++
	}
	if warmupCount == len(daily) {
		return []domain.OscillatorRow{}, nil
	}

	return s.engine.Compute(daily, warmupCount)
}

// MarketInvestors fetches the market-wide daily net-buy breakdown by
// investor class for a whole market segment.
func (s *MarketService) MarketInvestors(ctx context.Context, market domain.Market, startDate, endDate string) ([]domain.InvestorTrading, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.market-investors")
	defer span.End()

	if !market.IsValid() {
		return nil, &domain.InvalidInputError{Reason: fmt.Sprintf("unknown market %q", market)}
	}
	return s.stock.MarketTradingByInvestor(ctx, startDate, endDate, market, krx.TradingValue, krx.AskBidNetBuy)
}

// Signals computes the cross/trend classification over an oscillator series.
func (s *MarketService) Signals(ctx context.Context, ticker, startDate, endDate string, warmupDays int) ([]domain.SignalAnalysis, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.signals")
	defer span.End()

	rows, err := s.OscillatorSeries(ctx, ticker, startDate, endDate, warmupDays)
	if err != nil {
		return nil, err
	}
	return s.engine.AnalyzeSignals(rows), nil
}

func seriesCacheKey(ticker, startDate, endDate string) string {
	return "daily:" + ticker + ":" + startDate + ":" + endDate
}

func (s *MarketService) getSeriesCache(ctx context.Context, ticker, startDate, endDate string) []domain.DailyTrading {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, seriesCacheKey(ticker, startDate, endDate)).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		log.Printf("redis cache read error: %v", err)
		return nil
	}
	var series []domain.DailyTrading
	if err := json.Unmarshal(data, &series); err != nil {
		return nil
	}
	return series
}

func (s *MarketService) setSeriesCache(ctx context.Context, ticker, startDate, endDate string, series []domain.DailyTrading) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(series)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, seriesCacheKey(ticker, startDate, endDate), data, dailyCacheTTL).Err(); err != nil {
		log.Printf("redis cache write error: %v", err)
	}
}
