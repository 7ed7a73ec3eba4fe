package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirection_Valid(t *testing.T) {
	assert.True(t, DirectionUp.Valid())
	assert.True(t, DirectionDown.Valid())
	assert.False(t, Direction("sideways").Valid())
	assert.False(t, Direction("").Valid())
}

func TestTimeframe_Valid(t *testing.T) {
	assert.True(t, TimeframeEndOfDay.Valid())
	assert.True(t, TimeframeEndOfWeek.Valid())
	assert.True(t, TimeframeEndOfMonth.Valid())
	assert.False(t, Timeframe("end_of_year").Valid())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14", FormatDate(d))

	_, err = ParseDate("03/14/2025")
	assert.Error(t, err)
}

func TestUnresolvedScoreResult_JSONNulls(t *testing.T) {
	r := ScoreResult{
		PredictionID: "claude-1",
		ForecasterID: "claude",
		Ticker:       "XYZ",
		Status:       ScoreUnresolved,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, key := range []string{"actual_close", "actual_direction", "direction_correct", "target_accuracy"} {
		v, present := raw[key]
		assert.True(t, present, key)
		assert.Nil(t, v, key)
	}
	assert.Equal(t, 0.0, raw["score"])
	assert.False(t, r.Correct())
	assert.False(t, r.Resolved())
}

func TestSimulatorState_OpenTradeAndClone(t *testing.T) {
	exit := 101.0
	s := SimulatorState{
		Balance: 25000,
		Trades: []Trade{
			{Ticker: "AAPL", Status: TradeClosed, ExitPrice: &exit, Forecasters: []string{"a"}},
			{Ticker: "NVDA", Status: TradeOpen, Forecasters: []string{"b", "c"}},
		},
	}
	assert.Equal(t, 1, s.OpenTrade())

	c := s.Clone()
	c.Trades[1].Status = TradeClosed
	c.Trades[1].Forecasters[0] = "z"
	*c.Trades[0].ExitPrice = 5

	assert.Equal(t, TradeOpen, s.Trades[1].Status)
	assert.Equal(t, "b", s.Trades[1].Forecasters[0])
	assert.Equal(t, 101.0, *s.Trades[0].ExitPrice)
	assert.Equal(t, -1, c.OpenTrade())
}
