package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/tournamentconfig"
)

type fakePrices struct {
	closes map[string]float64
	calls  map[string]int
}

func (f *fakePrices) ClosingPrice(_ context.Context, ticker string, _ time.Time) (float64, bool) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[ticker]++
	p, ok := f.closes[ticker]
	return p, ok
}

type fakeEvents struct {
	winners map[string]string // home team -> winner
}

func (f *fakeEvents) GameResult(_ context.Context, q contracts.GameQuery) (string, bool) {
	w, ok := f.winners[q.HomeTeam]
	return w, ok
}

var scoreDate = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func rec(id, ticker string, dir contracts.Direction, entry, target, conf float64) contracts.PredictionRecord {
	return contracts.PredictionRecord{
		ID: id, Ticker: ticker, Direction: dir,
		EntryPrice: entry, TargetPrice: target, Confidence: conf,
		Timeframe: contracts.TimeframeEndOfDay,
	}
}

func batch(id string, recs ...contracts.PredictionRecord) contracts.ForecastBatch {
	return contracts.ForecastBatch{ForecasterID: id, DisplayName: id, Date: "2025-03-14", Predictions: recs}
}

func newTestScorer(prices contracts.PriceOracle, events contracts.EventOracle) *Scorer {
	return NewScorer(tournamentconfig.Default().Scoring, prices, events, zerolog.Nop())
}

func TestComputeScore(t *testing.T) {
	rules := tournamentconfig.Default().Scoring

	tests := []struct {
		name     string
		correct  bool
		conf     float64
		accuracy float64
		want     float64
	}{
		{"correct no bonus", true, 0.7, 0.95, 0.7},
		{"correct with bonus", true, 0.7, 0.995, 1.2},
		{"bonus boundary", true, 0.6, 0.99, 1.1},
		{"wrong ignores accuracy", false, 0.8, 1.0, -0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ComputeScore(rules, tt.correct, tt.conf, tt.accuracy), 1e-9)
		})
	}
}

func TestTargetAccuracy(t *testing.T) {
	assert.Equal(t, 0.9905, TargetAccuracy(106, 105))
	assert.Equal(t, 1.0, TargetAccuracy(105, 105))
	assert.Equal(t, 0.0, TargetAccuracy(106, 0))
}

// entry 100, target 105, close 106: accuracy rounds to 0.9905, which is
// inside the 1% band, so the bonus applies.
func TestScore_ResolvedWithinBonusBand(t *testing.T) {
	prices := &fakePrices{closes: map[string]float64{"XYZ": 106}}
	s := newTestScorer(prices, nil)

	results := s.Score(context.Background(), scoreDate, []contracts.ForecastBatch{
		batch("claude", rec("c1", "XYZ", contracts.DirectionUp, 100, 105, 0.7)),
	}, nil)

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, contracts.ScoreResolved, r.Status)
	require.NotNil(t, r.DirectionCorrect)
	assert.True(t, *r.DirectionCorrect)
	assert.Equal(t, contracts.DirectionUp, *r.ActualDirection)
	// 1 - |106-105|/105 = 0.990476 -> 0.9905 >= 0.99, so
	// score = confidence 0.7 + bonus 0.5 = 1.2 (not 0.7)
	assert.Equal(t, 0.9905, *r.TargetAccuracy)
	assert.InDelta(t, 1.2, r.Score, 1e-9)
}

func TestScore_WrongDirection(t *testing.T) {
	prices := &fakePrices{closes: map[string]float64{"XYZ": 99}}
	s := newTestScorer(prices, nil)

	results := s.Score(context.Background(), scoreDate, []contracts.ForecastBatch{
		batch("claude", rec("c1", "XYZ", contracts.DirectionUp, 100, 105, 0.7)),
	}, nil)

	require.Len(t, results, 1)
	assert.False(t, *results[0].DirectionCorrect)
	assert.Equal(t, contracts.DirectionDown, *results[0].ActualDirection)
	assert.InDelta(t, -0.7, results[0].Score, 1e-9)
}

func TestScore_OracleMissIsUnresolved(t *testing.T) {
	s := newTestScorer(&fakePrices{}, nil)

	results := s.Score(context.Background(), scoreDate, []contracts.ForecastBatch{
		batch("gpt", rec("g1", "DELISTED", contracts.DirectionDown, 10, 9, 0.6)),
	}, nil)

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, contracts.ScoreUnresolved, r.Status)
	assert.Equal(t, 0.0, r.Score)
	assert.Nil(t, r.ActualClose)
	assert.Nil(t, r.ActualDirection)
	assert.Nil(t, r.DirectionCorrect)
	assert.Nil(t, r.TargetAccuracy)
}

func TestScore_OneOracleCallPerTicker(t *testing.T) {
	prices := &fakePrices{closes: map[string]float64{"SPY": 560, "AAPL": 214}}
	s := newTestScorer(prices, nil)

	batches := []contracts.ForecastBatch{
		batch("claude", rec("1", "SPY", contracts.DirectionUp, 555, 558, 0.6), rec("2", "AAPL", contracts.DirectionUp, 210, 215, 0.7)),
		batch("gpt", rec("1", "SPY", contracts.DirectionDown, 555, 550, 0.6), rec("2", "AAPL", contracts.DirectionUp, 210, 212, 0.8)),
	}

	results := s.Score(context.Background(), scoreDate, batches, nil)

	// ids collide across forecasters but both are scored
	assert.Len(t, results, 4)
	assert.Equal(t, 1, prices.calls["SPY"])
	assert.Equal(t, 1, prices.calls["AAPL"])
}

func TestScore_SkipsNonEndOfDay(t *testing.T) {
	prices := &fakePrices{closes: map[string]float64{"AAPL": 214}}
	s := newTestScorer(prices, nil)

	weekly := rec("w1", "AAPL", contracts.DirectionUp, 210, 220, 0.7)
	weekly.Timeframe = contracts.TimeframeEndOfWeek

	results := s.Score(context.Background(), scoreDate, []contracts.ForecastBatch{batch("claude", weekly)}, nil)

	assert.Empty(t, results)
	assert.Zero(t, prices.calls["AAPL"])
}

func TestScore_Idempotent(t *testing.T) {
	prices := &fakePrices{closes: map[string]float64{"AAPL": 214}}
	s := newTestScorer(prices, nil)
	batches := []contracts.ForecastBatch{
		batch("claude", rec("1", "AAPL", contracts.DirectionUp, 210, 215, 0.7), rec("2", "MISSING", contracts.DirectionUp, 1, 2, 0.7)),
	}

	first := s.Score(context.Background(), scoreDate, batches, nil)
	require.Len(t, first, 2)

	// 두 번째 실행: 변화 없음 (unresolved 도 재시도하지 않음)
	prices.closes["MISSING"] = 2
	second := s.Score(context.Background(), scoreDate, batches, first)
	assert.Empty(t, second)
}

func TestScore_Sports(t *testing.T) {
	events := &fakeEvents{winners: map[string]string{
		"Boston Celtics": "Boston Celtics",
		"Arsenal":        contracts.DrawOutcome,
	}}
	s := newTestScorer(&fakePrices{}, events)

	sports := func(id, home, away, pick string) contracts.PredictionRecord {
		return contracts.PredictionRecord{
			ID: id, Category: contracts.CategorySports, Sport: "basketball_nba",
			HomeTeam: home, AwayTeam: away, Matchup: away + " @ " + home,
			PredictedWinner: pick, Timeframe: contracts.TimeframeEndOfDay, Confidence: 0.7,
		}
	}

	results := s.Score(context.Background(), scoreDate, []contracts.ForecastBatch{
		batch("grok",
			sports("s1", "Boston Celtics", "Lakers", "Celtics"),
			sports("s2", "Arsenal", "Chelsea", "Arsenal"),
			sports("s3", "Miami Heat", "Bulls", "Heat"), // pending
		),
	}, nil)

	require.Len(t, results, 2)

	assert.True(t, *results[0].PredictionCorrect)
	assert.Equal(t, "Boston Celtics", results[0].ActualWinner)
	assert.InDelta(t, 0.7, results[0].Score, 1e-9)
	assert.Equal(t, "Lakers @ Boston Celtics", results[0].Ticker)

	assert.False(t, *results[1].PredictionCorrect)
	assert.InDelta(t, -0.7, results[1].Score, 1e-9)
	assert.Nil(t, results[1].TargetAccuracy)
}

func TestScore_SportsWithoutEventOracleDeferred(t *testing.T) {
	s := newTestScorer(&fakePrices{}, nil)

	results := s.Score(context.Background(), scoreDate, []contracts.ForecastBatch{
		batch("grok", contracts.PredictionRecord{
			ID: "s1", Category: contracts.CategorySports, HomeTeam: "Heat", AwayTeam: "Bulls",
			PredictedWinner: "Heat", Timeframe: contracts.TimeframeEndOfDay, Confidence: 0.6,
		}),
	}, nil)

	assert.Empty(t, results)
}
