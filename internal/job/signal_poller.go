package job

import (
	"context"
	"fmt"
	"log"
	"time"

	"krx-supply-oscillator/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const dateLayout = "20060102"

type SignalChecker interface {
	Signals(ctx context.Context, ticker, startDate, endDate string, warmupDays int) ([]domain.SignalAnalysis, error)
}

type Notifier interface {
	Notify(msg string) error
}

// SignalPoller periodically recomputes signal analyses for a watchlist and
// notifies when the latest row carries a fresh cross. De-duplication is by
// ticker and cross date, so a restart may re-announce the current cross once.
type SignalPoller struct {
	tracer       trace.Tracer
	checker      SignalChecker
	notifier     Notifier
	tickers      []string
	pollInterval time.Duration
	warmupDays   int
	displayDays  int

	lastAlerted map[string]string
}

func NewSignalPoller(tracer trace.Tracer, checker SignalChecker, notifier Notifier, tickers []string, pollInterval time.Duration, warmupDays, displayDays int) *SignalPoller {
	if pollInterval <= 0 {
		pollInterval = time.Hour
	}
	return &SignalPoller{
		tracer:       tracer,
		checker:      checker,
		notifier:     notifier,
		tickers:      tickers,
		pollInterval: pollInterval,
		warmupDays:   warmupDays,
		displayDays:  displayDays,
		lastAlerted:  make(map[string]string),
	}
}

func (p *SignalPoller) Start(ctx context.Context) {
	if len(p.tickers) == 0 || p.notifier == nil {
		log.Println("Signal poller disabled: no watchlist or notifier")
		<-ctx.Done()
		return
	}

	p.runOnce(ctx)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *SignalPoller) runOnce(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "signal-poller.run-once")
	defer span.End()

	now := time.Now()
	start := now.AddDate(0, 0, -p.displayDays).Format(dateLayout)
	end := now.Format(dateLayout)

	for _, ticker := range p.tickers {
		if ctx.Err() != nil {
			return
		}
		signals, err := p.checker.Signals(ctx, ticker, start, end, p.warmupDays)
		if err != nil {
			log.Printf("Signal check error for %s: %v", ticker, err)
			continue
		}
		if len(signals) == 0 {
			continue
		}
		latest := signals[len(signals)-1]
		if latest.CrossSignal == domain.CrossNone {
			continue
		}
		if p.lastAlerted[ticker] == latest.Date {
			continue
		}
		msg := fmt.Sprintf("%s: %s on %s (oscillator %+.6f, trend %s)",
			ticker, latest.CrossSignal, latest.Date, latest.Oscillator, latest.Trend)
		if err := p.notifier.Notify(msg); err != nil {
			log.Printf("Signal alert delivery error for %s: %v", ticker, err)
			continue
		}
		p.lastAlerted[ticker] = latest.Date
		log.Printf("Signal alert sent for %s (%s on %s)", ticker, latest.CrossSignal, latest.Date)
	}
}
