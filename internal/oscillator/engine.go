// Package oscillator derives the supply/demand oscillator from merged daily
// trading data: 5-day rolling net-buy sums over market cap, smoothed by a
// fast/slow EMA pair into a MACD-style zero-crossing indicator.
package oscillator

import (
	"fmt"

	"krx-supply-oscillator/internal/domain"
	"krx-supply-oscillator/internal/ta"
)

// MarketCapDivisor converts won to trillions for display.
const MarketCapDivisor = 1e12

// Config holds the pipeline periods. The defaults reproduce the reference
// spreadsheet exactly.
type Config struct {
	FastPeriod    int
	SlowPeriod    int
	SignalPeriod  int
	RollingWindow int
}

func DefaultConfig() Config {
	return Config{
		FastPeriod:    12,
		SlowPeriod:    26,
		SignalPeriod:  9,
		RollingWindow: 5,
	}
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Compute runs the full pipeline over an ascending-by-date daily series and
// returns one row per display-period day.
//
// The rolling sums and supply ratios cover the entire input, warm-up days
// included, so windows spanning the warm-up/display boundary stay correct.
// The EMA state however restarts from the first display row: a fixed-length
// display window then shows the same curve no matter how much extra history
// was fetched for warm-up.
func (e *Engine) Compute(daily []domain.DailyTrading, warmupCount int) ([]domain.OscillatorRow, error) {
	if len(daily) == 0 {
		return nil, &domain.InvalidInputError{Reason: "daily series is empty"}
	}
	if warmupCount < 0 || warmupCount >= len(daily) {
		return nil, &domain.InvalidInputError{
			Reason: fmt.Sprintf("warmup count %d outside [0, %d)", warmupCount, len(daily)),
		}
	}

	foreign := make([]int64, len(daily))
	inst := make([]int64, len(daily))
	for i, d := range daily {
		foreign[i] = d.ForeignNetBuy
		inst[i] = d.InstNetBuy
	}
	foreign5d := ta.RollingSum(foreign, e.cfg.RollingWindow)
	inst5d := ta.RollingSum(inst, e.cfg.RollingWindow)

	ratios := make([]float64, len(daily))
	for i, d := range daily {
		if d.MarketCap == 0 {
			continue // ratio stays 0, not a division error
		}
		ratios[i] = float64(foreign5d[i]+inst5d[i]) / float64(d.MarketCap)
	}

	displayRatios := ratios[warmupCount:]
	emaFast := ta.EMASeries(displayRatios, e.cfg.FastPeriod)
	emaSlow := ta.EMASeries(displayRatios, e.cfg.SlowPeriod)

	macd := make([]float64, len(displayRatios))
	for i := range macd {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	signal := ta.EMASeries(macd, e.cfg.SignalPeriod)

	rows := make([]domain.OscillatorRow, len(displayRatios))
	for i := range rows {
		d := daily[warmupCount+i]
		rows[i] = domain.OscillatorRow{
			Date:         d.Date,
			MarketCap:    d.MarketCap,
			MarketCapTrl: float64(d.MarketCap) / MarketCapDivisor,
			Foreign5d:    foreign5d[warmupCount+i],
			Inst5d:       inst5d[warmupCount+i],
			SupplyRatio:  displayRatios[i],
			EMAFast:      emaFast[i],
			EMASlow:      emaSlow[i],
			MACD:         macd[i],
			Signal:       signal[i],
			Oscillator:   macd[i] - signal[i],
		}
	}
	return rows, nil
}

// AnalyzeSignals classifies each row against its predecessor. A golden cross
// is the oscillator turning positive, a dead cross the reverse; the first
// row never carries a cross. Trend requires oscillator and MACD to agree on
// sign, otherwise it is neutral.
func (e *Engine) AnalyzeSignals(rows []domain.OscillatorRow) []domain.SignalAnalysis {
	out := make([]domain.SignalAnalysis, len(rows))
	for i, row := range rows {
		cross := domain.CrossNone
		if i > 0 {
			prev := rows[i-1].Oscillator
			switch {
			case prev <= 0 && row.Oscillator > 0:
				cross = domain.GoldenCross
			case prev >= 0 && row.Oscillator < 0:
				cross = domain.DeadCross
			}
		}

		trend := domain.TrendNeutral
		switch {
		case row.Oscillator > 0 && row.MACD > 0:
			trend = domain.TrendBullish
		case row.Oscillator < 0 && row.MACD < 0:
			trend = domain.TrendBearish
		}

		out[i] = domain.SignalAnalysis{
			Date:         row.Date,
			MarketCapTrl: row.MarketCapTrl,
			Oscillator:   row.Oscillator,
			MACD:         row.MACD,
			Signal:       row.Signal,
			Trend:        trend,
			CrossSignal:  cross,
		}
	}
	return out
}
