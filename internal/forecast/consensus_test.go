package forecast

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/tournamentconfig"
)

func newTestSelector() *Selector {
	return NewSelector(tournamentconfig.Default().Consensus, zerolog.Nop())
}

func TestSelect_QuorumMet(t *testing.T) {
	batches := []contracts.ForecastBatch{
		batch("claude", rec("1", "AAPL", contracts.DirectionUp, 150, 155, 0.8)),
		batch("gpt", rec("1", "AAPL", contracts.DirectionUp, 150, 155, 0.8)),
		batch("gemini", rec("1", "AAPL", contracts.DirectionUp, 150, 155, 0.8)),
		batch("grok", rec("1", "AAPL", contracts.DirectionUp, 150, 155, 0.7)),
	}

	w := newTestSelector().Select("2025-03-14", batches)
	require.NotNil(t, w)

	assert.Equal(t, "AAPL", w.Ticker)
	assert.Equal(t, contracts.DirectionUp, w.Direction)
	assert.InDelta(t, 0.775, w.AvgConfidence, 1e-9)
	assert.Equal(t, 150.0, w.AvgEntry)
	assert.Equal(t, 155.0, w.AvgTarget)
	assert.Equal(t, 3.33, w.ExpectedMovePct)
	assert.Equal(t, 4, w.ModelCount)
	assert.Equal(t, []string{"claude", "gpt", "gemini", "grok"}, w.Forecasters)
	assert.False(t, w.HighConviction)
	assert.Equal(t, "2025-03-14", w.Date)
}

func TestSelect_BelowQuorum(t *testing.T) {
	batches := []contracts.ForecastBatch{
		batch("claude", rec("1", "AAPL", contracts.DirectionUp, 150, 155, 0.8)),
		batch("gpt", rec("1", "AAPL", contracts.DirectionUp, 150, 155, 0.8)),
		batch("gemini", rec("1", "AAPL", contracts.DirectionUp, 150, 155, 0.8)),
		batch("grok", rec("1", "AAPL", contracts.DirectionDown, 150, 145, 0.9)),
	}

	assert.Nil(t, newTestSelector().Select("2025-03-14", batches))
}

func TestSelect_OneVotePerForecaster(t *testing.T) {
	batches := []contracts.ForecastBatch{
		batch("claude",
			rec("1", "AAPL", contracts.DirectionUp, 150, 155, 0.8),
			rec("2", "AAPL", contracts.DirectionUp, 150, 158, 0.8),
		),
		batch("gpt", rec("1", "AAPL", contracts.DirectionUp, 150, 155, 0.8)),
		batch("gemini", rec("1", "AAPL", contracts.DirectionUp, 150, 155, 0.8)),
	}

	assert.Nil(t, newTestSelector().Select("2025-03-14", batches))
}

func TestSelect_Exclusions(t *testing.T) {
	sports := contracts.PredictionRecord{
		ID: "s", Ticker: "NBA1", Direction: contracts.DirectionUp, Category: contracts.CategorySports,
		EntryPrice: 1, TargetPrice: 2, Confidence: 0.9, Timeframe: contracts.TimeframeEndOfDay,
	}

	var batches []contracts.ForecastBatch
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		batches = append(batches, batch(id,
			rec("1", "SPY", contracts.DirectionUp, 560, 580, 0.9),
			rec("2", "BTC-USD", contracts.DirectionUp, 80000, 90000, 0.9),
			rec("3", "VIX", contracts.DirectionDown, 20, 15, 0.9),
			sports,
		))
	}

	assert.Empty(t, newTestSelector().Candidates("2025-03-14", batches))
}

func TestSelect_HighestScoreWins(t *testing.T) {
	var batches []contracts.ForecastBatch
	for _, id := range []string{"a", "b", "c", "d"} {
		batches = append(batches, batch(id,
			rec("1", "MSFT", contracts.DirectionUp, 400, 404, 0.9), // 1% * 0.9 = 0.9
			rec("2", "NVDA", contracts.DirectionDown, 100, 95, 0.6), // 5% * 0.6 = 3.0
		))
	}

	w := newTestSelector().Select("2025-03-14", batches)
	require.NotNil(t, w)
	assert.Equal(t, "NVDA", w.Ticker)
	assert.Equal(t, contracts.DirectionDown, w.Direction)
	assert.Equal(t, 5.0, w.ExpectedMovePct)
	assert.Equal(t, 3.0, w.Score)
}

func TestSelect_TieBreakFirstFound(t *testing.T) {
	var batches []contracts.ForecastBatch
	for _, id := range []string{"a", "b", "c", "d"} {
		batches = append(batches, batch(id,
			rec("1", "ZZZ", contracts.DirectionUp, 100, 102, 0.8),
			rec("2", "AAA", contracts.DirectionUp, 100, 102, 0.8),
		))
	}

	for i := 0; i < 20; i++ {
		w := newTestSelector().Select("2025-03-14", batches)
		require.NotNil(t, w)
		assert.Equal(t, "ZZZ", w.Ticker)
	}
}

func TestSelect_SkipsZeroEntryAndFlagsHighConviction(t *testing.T) {
	var batches []contracts.ForecastBatch
	for _, id := range []string{"a", "b", "c", "d"} {
		batches = append(batches, batch(id,
			rec("1", "FREE", contracts.DirectionUp, 0, 5, 0.9),
			rec("2", "AMZN", contracts.DirectionUp, 200, 206, 0.9),
		))
	}

	picks := newTestSelector().Candidates("2025-03-14", batches)
	require.Len(t, picks, 1)
	assert.Equal(t, "AMZN", picks[0].Ticker)
	assert.True(t, picks[0].HighConviction)
}
