package forecast

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/tournamentconfig"
)

func newTestValidator() *Validator {
	return NewValidator(tournamentconfig.Default().Validation, zerolog.Nop())
}

const validBatch = `{
  "date": "2025-03-14",
  "model": "claude",
  "model_display_name": "Claude",
  "generated_at": "2025-03-14T12:30:00Z",
  "market_context": "CPI day",
  "predictions": [
    {"id": "c1", "ticker": "SPY", "prediction_type": "index", "direction": "up", "target_price": 565.5,
     "current_price_at_prediction": 562.1, "timeframe": "end_of_day", "confidence": 0.65, "reasoning": "breadth"},
    {"id": "c2", "ticker": "AAPL", "prediction_type": "stock", "direction": "down", "target_price": 210,
     "current_price_at_prediction": 213.5, "timeframe": "end_of_week", "confidence": 0.7, "reasoning": "guidance"},
    {"id": "c3", "ticker": "NVDA", "prediction_type": "stock", "direction": "up", "target_price": "121.0",
     "current_price_at_prediction": 118.4, "timeframe": "end_of_day", "confidence": 0.8, "reasoning": "momentum"}
  ]
}`

func TestValidate_ValidBatch(t *testing.T) {
	report, err := newTestValidator().Validate([]byte(validBatch))
	require.NoError(t, err)

	assert.True(t, report.Valid(), "violations: %v", report.Violations)
	assert.True(t, report.HasUsable())
	assert.Equal(t, 3, report.Submitted)
	assert.Equal(t, 3, report.Usable)

	b := report.Batch
	assert.Equal(t, "claude", b.ForecasterID)
	assert.Equal(t, "Claude", b.DisplayName)
	assert.Equal(t, 121.0, b.Predictions[2].TargetPrice) // numeric string accepted
	assert.Equal(t, 118.4, b.Predictions[2].EntryPrice)
	assert.Equal(t, contracts.TimeframeEndOfWeek, b.Predictions[1].Timeframe)
}

func TestValidate_NotJSON(t *testing.T) {
	_, err := newTestValidator().Validate([]byte("I think SPY goes up"))
	assert.Error(t, err)

	_, err = newTestValidator().Validate([]byte("null"))
	assert.Error(t, err)
}

func TestValidate_ReportsAllViolations(t *testing.T) {
	doc := map[string]interface{}{
		"model": "gpt",
		"predictions": []interface{}{
			map[string]interface{}{
				"id": "g1", "ticker": "TSLA", "prediction_type": "stock", "direction": "sideways",
				"target_price": 250.0, "current_price_at_prediction": 240.0, "timeframe": "end_of_year",
				"confidence": 0.99, "reasoning": "x",
			},
			map[string]interface{}{
				"id": "g2", "ticker": "MSFT", "prediction_type": "stock", "direction": "up",
				"target_price": "lots", "current_price_at_prediction": 400.0, "timeframe": "end_of_day",
				"confidence": "high", "reasoning": "x",
			},
		},
	}

	report := newTestValidator().ValidateDocument(doc)

	fields := make(map[string]int)
	for _, v := range report.Violations {
		fields[v.Field]++
	}

	// batch level
	assert.Contains(t, fields, "date")
	assert.Contains(t, fields, "generated_at")
	assert.Equal(t, 2, fields["predictions"]) // too few + no major index

	// record level
	assert.Contains(t, fields, "predictions[0].direction")
	assert.Contains(t, fields, "predictions[0].timeframe")
	assert.Contains(t, fields, "predictions[0].confidence")
	assert.Contains(t, fields, "predictions[1].target_price")
	assert.Contains(t, fields, "predictions[1].confidence")

	assert.False(t, report.HasUsable())
}

func TestValidate_PartiallyUsable(t *testing.T) {
	doc := map[string]interface{}{
		"date": "2025-03-14", "model": "gemini", "model_display_name": "Gemini",
		"generated_at": "now", "market_context": "",
		"predictions": []interface{}{
			map[string]interface{}{
				"id": "m1", "ticker": "QQQ", "prediction_type": "index", "direction": "up",
				"target_price": 480.0, "current_price_at_prediction": 476.0, "timeframe": "end_of_day",
				"confidence": 0.6, "reasoning": "x",
			},
			map[string]interface{}{
				"id": "m2", "ticker": "AMD", "direction": "down",
				"target_price": 100.0, "current_price_at_prediction": 104.0, "timeframe": "end_of_day",
				"confidence": 0.6, "reasoning": "x",
			},
			map[string]interface{}{
				"id": "m1", "ticker": "META", "prediction_type": "stock", "direction": "up",
				"target_price": 600.0, "current_price_at_prediction": 590.0, "timeframe": "end_of_day",
				"confidence": 0.6, "reasoning": "duplicate id",
			},
		},
	}

	report := newTestValidator().ValidateDocument(doc)

	assert.False(t, report.Valid())
	require.True(t, report.HasUsable())
	require.Len(t, report.Batch.Predictions, 1)
	assert.Equal(t, "QQQ", report.Batch.Predictions[0].Ticker)
	assert.Equal(t, 3, report.Submitted)
}

func TestValidate_NonFiniteNumbers(t *testing.T) {
	record := func(id, ticker string, target, entry, conf interface{}) map[string]interface{} {
		return map[string]interface{}{
			"id": id, "ticker": ticker, "prediction_type": "stock", "direction": "up",
			"target_price": target, "current_price_at_prediction": entry, "timeframe": "end_of_day",
			"confidence": conf, "reasoning": "x",
		}
	}
	doc := map[string]interface{}{
		"date": "2025-03-14", "model": "grok", "model_display_name": "Grok",
		"generated_at": "2025-03-14T12:30:00Z", "market_context": "",
		"predictions": []interface{}{
			record("k1", "SPY", 565.0, 562.0, 0.6),
			record("k2", "AAPL", "NaN", 213.5, 0.7),
			record("k3", "MSFT", 420.0, "Inf", 0.7),
			record("k4", "NVDA", 121.0, 118.4, "NaN"),
			record("k5", "TSLA", " -Infinity ", 240.0, 0.7),
		},
	}

	report := newTestValidator().ValidateDocument(doc)

	fields := make(map[string]bool)
	for _, v := range report.Violations {
		fields[v.Field] = true
	}
	assert.True(t, fields["predictions[1].target_price"])
	assert.True(t, fields["predictions[2].current_price_at_prediction"])
	assert.True(t, fields["predictions[3].confidence"])
	assert.True(t, fields["predictions[4].target_price"])

	require.True(t, report.HasUsable())
	require.Len(t, report.Batch.Predictions, 1)
	assert.Equal(t, "SPY", report.Batch.Predictions[0].Ticker)
}

func TestValidate_PredictionsNotList(t *testing.T) {
	report := newTestValidator().ValidateDocument(map[string]interface{}{
		"date": "2025-03-14", "model": "grok", "model_display_name": "Grok",
		"generated_at": "now", "market_context": "", "predictions": "none today",
	})

	require.Len(t, report.Violations, 1)
	assert.Equal(t, "predictions", report.Violations[0].Field)
	assert.False(t, report.HasUsable())
}

func TestValidate_SportsRecord(t *testing.T) {
	doc := map[string]interface{}{
		"date": "2025-03-14", "model": "perplexity", "model_display_name": "Perplexity",
		"generated_at": "now", "market_context": "",
		"predictions": []interface{}{
			map[string]interface{}{
				"id": "p1", "ticker": "DIA", "prediction_type": "index", "direction": "down",
				"target_price": 410.0, "current_price_at_prediction": 415.0, "timeframe": "end_of_day",
				"confidence": 0.55, "reasoning": "x",
			},
			map[string]interface{}{
				"id": "p2", "category": "sports", "sport": "basketball_nba",
				"home_team": "Boston Celtics", "away_team": "Lakers", "predicted_winner": "Celtics",
				"timeframe": "end_of_day", "confidence": 0.7, "reasoning": "home court",
			},
			map[string]interface{}{
				"id": "p3", "category": "sports", "sport": "basketball_nba",
				"home_team": "Heat", "timeframe": "end_of_day", "confidence": 0.7, "reasoning": "x",
			},
		},
	}

	report := newTestValidator().ValidateDocument(doc)

	require.Len(t, report.Batch.Predictions, 2)
	sports := report.Batch.Predictions[1]
	assert.True(t, sports.IsSports())
	assert.Equal(t, "Lakers @ Boston Celtics", sports.Matchup)

	fields := make([]string, 0, len(report.Violations))
	for _, v := range report.Violations {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{"predictions[2].away_team", "predictions[2].predicted_winner"}, fields)
}
