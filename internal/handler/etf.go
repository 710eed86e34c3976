package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"krx-supply-oscillator/internal/domain"
)

// ListEtfs godoc
// @Summary      All listed ETFs as of today
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/etfs [get]
func (h *Handler) ListEtfs(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-etfs")
	defer span.End()

	today := time.Now().Format(dateLayout)
	etfs, err := h.etf.TickerList(ctx, today)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"etfs": etfs})
}

// GetEtfDaily godoc
// @Summary      Daily OHLCV series for an ETF
// @Produce      json
// @Param        ticker  path   string  true  "ETF ticker (e.g. 069500)"
// @Param        start   query  string  true  "Start date yyyyMMdd"
// @Param        end     query  string  true  "End date yyyyMMdd"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/etfs/{ticker}/daily [get]
func (h *Handler) GetEtfDaily(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-etf-daily")
	defer span.End()

	ticker := c.Param("ticker")
	start := c.Query("start")
	end := c.Query("end")
	span.SetAttributes(attribute.String("ticker", ticker))

	if start == "" || end == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing start or end date (yyyyMMdd)"})
		return
	}

	days, err := h.etf.OhlcvByTicker(ctx, start, end, ticker)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticker": ticker, "days": days})
}

// GetMarketInvestors godoc
// @Summary      Market-wide daily net-buy by investor class
// @Produce      json
// @Param        market  path   string  true  "Market segment (STK, KSQ, KNX, ALL)"
// @Param        start   query  string  true  "Start date yyyyMMdd"
// @Param        end     query  string  true  "End date yyyyMMdd"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/markets/{market}/investors [get]
func (h *Handler) GetMarketInvestors(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-market-investors")
	defer span.End()

	market := domain.Market(c.Param("market"))
	start := c.Query("start")
	end := c.Query("end")
	span.SetAttributes(attribute.String("market", string(market)))

	if start == "" || end == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing start or end date (yyyyMMdd)"})
		return
	}

	days, err := h.marketService.MarketInvestors(ctx, market, start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"market": market, "days": days})
}
