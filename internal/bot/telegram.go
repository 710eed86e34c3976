package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"krx-supply-oscillator/internal/domain"
	"krx-supply-oscillator/internal/service"

	tele "gopkg.in/telebot.v3"
)

const (
	dateLayout  = "20060102"
	maxBotRows  = 10
	cmdTimeout  = 90 * time.Second
	pollTimeout = 10 * time.Second
)

// Alerter pushes signal notifications to the configured chat. Nil when the
// bot is disabled, so callers can pass it around without checking env vars.
type Alerter struct {
	bot    *tele.Bot
	chatID int64
}

func (a *Alerter) Notify(msg string) error {
	if a == nil || a.chatID == 0 {
		return nil
	}
	_, err := a.bot.Send(tele.ChatID(a.chatID), msg)
	return err
}

func StartTelegramBot(marketService *service.MarketService, warmupDays, displayDays int) *Alerter {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: pollTimeout},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/search", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /search 삼성")
		}
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		results, err := marketService.Search(ctx, strings.Join(args, " "))
		if err != nil {
			return c.Send(fmt.Sprintf("Search error: %v", err))
		}
		if len(results) == 0 {
			return c.Send("No matches")
		}
		if len(results) > maxBotRows {
			results = results[:maxBotRows]
		}
		var sb strings.Builder
		for _, r := range results {
			fmt.Fprintf(&sb, "%s  %s (%s)\n", r.Ticker, r.Name, r.Market)
		}
		return c.Send(sb.String())
	})

	b.Handle("/oscillator", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /oscillator 005930")
		}
		ticker := args[0]
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		start, end := window(displayDays)
		rows, err := marketService.OscillatorSeries(ctx, ticker, start, end, warmupDays)
		if err != nil {
			return c.Send(fmt.Sprintf("Error computing oscillator for %s: %v", ticker, err))
		}
		if len(rows) == 0 {
			return c.Send(fmt.Sprintf("No trading data for %s", ticker))
		}
		if len(rows) > maxBotRows {
			rows = rows[len(rows)-maxBotRows:]
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s supply/demand oscillator\n", ticker)
		for _, r := range rows {
			fmt.Fprintf(&sb, "%s  osc=%+.6f  cap=%.2fT\n", r.Date, r.Oscillator, r.MarketCapTrl)
		}
		return c.Send(sb.String())
	})

	b.Handle("/signal", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /signal 005930")
		}
		ticker := args[0]
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		start, end := window(displayDays)
		signals, err := marketService.Signals(ctx, ticker, start, end, warmupDays)
		if err != nil {
			return c.Send(fmt.Sprintf("Error computing signals for %s: %v", ticker, err))
		}
		if len(signals) == 0 {
			return c.Send(fmt.Sprintf("No trading data for %s", ticker))
		}
		latest := signals[len(signals)-1]
		msg := fmt.Sprintf("%s on %s\nTrend: %s\nOscillator: %+.6f", ticker, latest.Date, latest.Trend, latest.Oscillator)
		if latest.CrossSignal != domain.CrossNone {
			msg += "\nCross: " + string(latest.CrossSignal)
		}
		for i := len(signals) - 1; i >= 0; i-- {
			if signals[i].CrossSignal != domain.CrossNone {
				msg += fmt.Sprintf("\nLast cross: %s on %s", signals[i].CrossSignal, signals[i].Date)
				break
			}
		}
		return c.Send(msg)
	})

	log.Println("Telegram bot started")
	go b.Start()

	var chatID int64
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			chatID = n
		}
	}
	if chatID == 0 {
		log.Println("TELEGRAM_CHAT_ID not set, signal alerts disabled")
		return nil
	}
	return &Alerter{bot: b, chatID: chatID}
}

func window(displayDays int) (start, end string) {
	now := time.Now()
	return now.AddDate(0, 0, -displayDays).Format(dateLayout), now.Format(dateLayout)
}
