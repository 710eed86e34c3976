package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"krx-supply-oscillator/internal/domain"
)

const dateLayout = "20060102"

// writeError maps the pipeline error taxonomy onto HTTP statuses: caller
// bugs are 400s, upstream contract changes and exhausted retries are 502s.
func writeError(c *gin.Context, err error) {
	var invalid *domain.InvalidInputError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var decode *domain.DecodeError
	var network *domain.NetworkError
	if errors.As(err, &decode) || errors.As(err, &network) {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// Search godoc
// @Summary      Search tickers by name fragment or exact symbol
// @Produce      json
// @Param        q  query  string  true  "Name fragment or ticker"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/search [get]
func (h *Handler) Search(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.search")
	defer span.End()

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}
	span.SetAttributes(attribute.String("query", query))

	results, err := h.marketService.Search(ctx, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetDailySeries godoc
// @Summary      Merged daily trading series for a ticker
// @Produce      json
// @Param        ticker  path   string  true  "Ticker (e.g. 005930)"
// @Param        start   query  string  true  "Start date yyyyMMdd"
// @Param        end     query  string  true  "End date yyyyMMdd"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/tickers/{ticker}/daily [get]
func (h *Handler) GetDailySeries(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-daily-series")
	defer span.End()

	ticker := c.Param("ticker")
	start := c.Query("start")
	end := c.Query("end")
	span.SetAttributes(attribute.String("ticker", ticker))

	if start == "" || end == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing start or end date (yyyyMMdd)"})
		return
	}

	series, err := h.marketService.DailySeries(ctx, ticker, start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticker": ticker, "days": series})
}

// GetOscillator godoc
// @Summary      Supply/demand oscillator rows for a ticker
// @Produce      json
// @Param        ticker  path   string  true   "Ticker (e.g. 005930)"
// @Param        days    query  int     false  "Display window in calendar days"
// @Param        warmup  query  int     false  "Warm-up trading days before the window"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/tickers/{ticker}/oscillator [get]
func (h *Handler) GetOscillator(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-oscillator")
	defer span.End()

	ticker := c.Param("ticker")
	span.SetAttributes(attribute.String("ticker", ticker))
	start, end, warmup := h.windowParams(c)

	rows, err := h.marketService.OscillatorSeries(ctx, ticker, start, end, warmup)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticker": ticker, "rows": rows})
}

// GetSignals godoc
// @Summary      Cross/trend signal analysis for a ticker
// @Produce      json
// @Param        ticker  path   string  true   "Ticker (e.g. 005930)"
// @Param        days    query  int     false  "Display window in calendar days"
// @Param        warmup  query  int     false  "Warm-up trading days before the window"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/tickers/{ticker}/signals [get]
func (h *Handler) GetSignals(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-signals")
	defer span.End()

	ticker := c.Param("ticker")
	span.SetAttributes(attribute.String("ticker", ticker))
	start, end, warmup := h.windowParams(c)

	signals, err := h.marketService.Signals(ctx, ticker, start, end, warmup)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticker": ticker, "signals": signals})
}

// windowParams resolves the display window ending today, with configured
// defaults for length and warm-up.
func (h *Handler) windowParams(c *gin.Context) (start, end string, warmup int) {
	days := h.displayDays
	if v := c.Query("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	warmup = h.warmupDays
	if v := c.Query("warmup"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			warmup = n
		}
	}
	now := time.Now()
	end = now.Format(dateLayout)
	start = now.AddDate(0, 0, -days).Format(dateLayout)
	return start, end, warmup
}
