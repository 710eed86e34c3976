package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"krx-supply-oscillator/internal/domain"
	"krx-supply-oscillator/internal/service"
)

// EtfAPI is the ETF slice of the acquisition façade the handlers consume.
type EtfAPI interface {
	TickerList(ctx context.Context, date string) ([]domain.EtfRecord, error)
	OhlcvByTicker(ctx context.Context, startDate, endDate, ticker string) ([]domain.OhlcvDay, error)
}

type Handler struct {
	tracer        trace.Tracer
	marketService *service.MarketService
	etf           EtfAPI
	warmupDays    int
	displayDays   int
}

func New(tracer trace.Tracer, marketService *service.MarketService, etf EtfAPI, warmupDays, displayDays int) *Handler {
	return &Handler{
		tracer:        tracer,
		marketService: marketService,
		etf:           etf,
		warmupDays:    warmupDays,
		displayDays:   displayDays,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/search", h.Search)
	r.GET("/api/tickers/:ticker/daily", h.GetDailySeries)
	r.GET("/api/tickers/:ticker/oscillator", h.GetOscillator)
	r.GET("/api/tickers/:ticker/signals", h.GetSignals)
	r.GET("/api/markets/:market/investors", h.GetMarketInvestors)
	r.GET("/api/etfs", h.ListEtfs)
	r.GET("/api/etfs/:ticker/daily", h.GetEtfDaily)
}
