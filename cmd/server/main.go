package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"krx-supply-oscillator/internal/bot"
	"krx-supply-oscillator/internal/cache"
	"krx-supply-oscillator/internal/config"
	"krx-supply-oscillator/internal/handler"
	"krx-supply-oscillator/internal/job"
	"krx-supply-oscillator/internal/krx"
	"krx-supply-oscillator/internal/oscillator"
	"krx-supply-oscillator/internal/service"
	"krx-supply-oscillator/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initRedisFunc          = cache.NewRedis
	initTracerFunc         = tracing.InitTracer
	initSessionFunc        = func(c *krx.Client, ctx context.Context) { c.InitSession(ctx) }
	newMarketServiceFunc   = service.NewMarketService
	startTelegramBotFunc   = bot.StartTelegramBot
	newSignalPollerFunc    = job.NewSignalPoller
	startPollerFunc        = func(p *job.SignalPoller, ctx context.Context) { go p.Start(ctx) }
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Optional redis response cache; nil disables it
	redisClient := initRedisFunc(ctx, cfg.RedisURL)

	// KRX acquisition layer
	tickerCache := cache.NewTickerCache(time.Duration(cfg.TickerCacheTTLSecs) * time.Second)
	client := krx.NewClient(tracer)
	initSessionFunc(client, ctx)
	stock := krx.NewStock(client, tickerCache, tracer)
	etf := krx.NewEtf(client, tickerCache, tracer)

	// Oscillator pipeline
	engine := oscillator.NewEngine(oscillator.DefaultConfig())
	marketService := newMarketServiceFunc(tracer, stock, engine, redisOrNil(redisClient))

	// Telegram bot and watchlist signal poller
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	alerter := startTelegramBotFunc(marketService, cfg.WarmupDays, cfg.DisplayDays)

	poller := newSignalPollerFunc(
		tracer,
		marketService,
		notifierOrNil(alerter),
		cfg.WatchTickers,
		time.Duration(cfg.SignalPollSecs)*time.Second,
		cfg.WarmupDays,
		cfg.DisplayDays,
	)
	startPollerFunc(poller, ctx)

	// HTTP surface
	h := newHandlerFunc(tracer, marketService, etf, cfg.WarmupDays, cfg.DisplayDays)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("krx-supply-oscillator"))
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

// notifierOrNil keeps a nil *Alerter from sneaking into the poller as a
// non-nil interface.
func notifierOrNil(a *bot.Alerter) job.Notifier {
	if a == nil {
		return nil
	}
	return a
}

// redisOrNil does the same for the optional response cache client.
func redisOrNil(c *redis.Client) service.RedisClient {
	if c == nil {
		return nil
	}
	return c
}
