package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port     int
	RedisURL string

	TickerCacheTTLSecs int

	WarmupDays  int
	DisplayDays int

	TelegramBotToken string
	TelegramChatID   int64
	WatchTickers     []string
	SignalPollSecs   int
}

func Load() *Config {
	cfg := &Config{
		RedisURL:         os.Getenv("REDIS_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, response caching disabled")
	}
	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, bot and alerts disabled")
	}

	cfg.Port = 8080
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Port = n
		}
	}

	cfg.TickerCacheTTLSecs = 3600
	if v := strings.TrimSpace(os.Getenv("TICKER_CACHE_TTL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TickerCacheTTLSecs = n
		}
	}

	cfg.WarmupDays = 30
	if v := strings.TrimSpace(os.Getenv("OSC_WARMUP_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.WarmupDays = n
		}
	}

	cfg.DisplayDays = 60
	if v := strings.TrimSpace(os.Getenv("OSC_DISPLAY_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DisplayDays = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("WATCH_TICKERS")); v != "" {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.WatchTickers = append(cfg.WatchTickers, t)
			}
		}
	}

	cfg.SignalPollSecs = 3600
	if v := strings.TrimSpace(os.Getenv("SIGNAL_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SignalPollSecs = n
		}
	}

	return cfg
}
