package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wonny/predictarena/internal/contracts"
)

// StaticOracle answers from a fixed ticker -> close table (manual overrides)
type StaticOracle struct {
	closes map[string]float64
}

// NewStaticOracle creates an oracle over closes; tickers are upper-cased
func NewStaticOracle(closes map[string]float64) *StaticOracle {
	m := make(map[string]float64, len(closes))
	for k, v := range closes {
		m[strings.ToUpper(k)] = v
	}
	return &StaticOracle{closes: m}
}

// ClosingPrice ignores the date
func (s *StaticOracle) ClosingPrice(_ context.Context, ticker string, _ time.Time) (float64, bool) {
	p, ok := s.closes[strings.ToUpper(ticker)]
	return p, ok && p > 0
}

// LoadCloses reads a JSON object {"AAPL": 213.49, ...}
func LoadCloses(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read closes file: %w", err)
	}
	var closes map[string]float64
	if err := json.Unmarshal(data, &closes); err != nil {
		return nil, fmt.Errorf("parse closes file %s: %w", path, err)
	}
	return closes, nil
}

// Chain asks each oracle in order; the first answer wins
type Chain []contracts.PriceOracle

// ClosingPrice implements contracts.PriceOracle
func (c Chain) ClosingPrice(ctx context.Context, ticker string, date time.Time) (float64, bool) {
	for _, o := range c {
		if o == nil {
			continue
		}
		if p, ok := o.ClosingPrice(ctx, ticker, date); ok {
			return p, true
		}
	}
	return 0, false
}
