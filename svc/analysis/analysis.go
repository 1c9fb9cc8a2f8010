// Package analysis validates tickers and produces stock analyses.
package analysis

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

var ErrInvalidTicker = errors.New("invalid ticker symbol")

var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// NormalizeTicker trims and upper-cases s and checks it is 1 to 5 letters.
func NormalizeTicker(s string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if !tickerPattern.MatchString(t) {
		return "", ErrInvalidTicker
	}
	return t, nil
}

// Analysis is the structured result for one ticker.
type Analysis struct {
	Ticker         string     `json:"ticker"`
	Recommendation string     `json:"recommendation"`
	Confidence     float64    `json:"confidence"`
	Summary        string     `json:"summary"`
	Indicators     Indicators `json:"indicators"`
	GeneratedAt    time.Time  `json:"generatedAt"`
}

// Indicators are the headline technical readings.
type Indicators struct {
	RSI        float64 `json:"rsi"`
	MACD       float64 `json:"macd"`
	SMA50      float64 `json:"sma50"`
	SMA200     float64 `json:"sma200"`
	Volatility float64 `json:"volatility"`
}

// Analyzer produces an analysis for a normalized ticker.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (Analysis, error)
}

// StubAnalyzer returns fixed sample data.
type StubAnalyzer struct {
	now func() time.Time
}

// NewStubAnalyzer creates a StubAnalyzer. now defaults to time.Now.
func NewStubAnalyzer(now func() time.Time) *StubAnalyzer {
	if now == nil {
		now = time.Now
	}
	return &StubAnalyzer{now: now}
}

func (a *StubAnalyzer) Analyze(ctx context.Context, ticker string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	return Analysis{
		Ticker:         ticker,
		Recommendation: "hold",
		Confidence:     0.72,
		Summary:        ticker + " is trading near its 50-day average with neutral momentum.",
		Indicators: Indicators{
			RSI:        54.3,
			MACD:       0.42,
			SMA50:      182.15,
			SMA200:     176.80,
			Volatility: 0.23,
		},
		GeneratedAt: a.now().UTC(),
	}, nil
}

var _ Analyzer = (*StubAnalyzer)(nil)
