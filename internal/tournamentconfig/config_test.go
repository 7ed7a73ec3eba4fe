package tournamentconfig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, 4, cfg.Consensus.Quorum)
	assert.Equal(t, 25000.0, cfg.Simulator.StartingBalance)
	assert.Equal(t, []string{"SPY", "QQQ", "DIA"}, cfg.Validation.MajorIndices)
	assert.Len(t, cfg.EnabledForecasters(), 5)
}

func TestLoad(t *testing.T) {
	cfg, err := Load("testdata/tournament.yaml")
	require.NoError(t, err)

	assert.Equal(t, "test_arena", cfg.Meta.TournamentID)
	assert.Equal(t, 3, cfg.Consensus.Quorum)

	// 생략된 섹션은 기본값 유지
	assert.Equal(t, 0.5, cfg.Scoring.TargetBonus)
	assert.Equal(t, 5, cfg.Validation.MaxRecords)

	enabled := cfg.EnabledForecasters()
	require.Len(t, enabled, 2)
	assert.Equal(t, "claude", enabled[0].ID)
	assert.Equal(t, SourceHTTP, enabled[1].Source)
}

func TestParseUnknownField(t *testing.T) {
	_, err := Parse([]byte("consensus:\n  quorom: 4\n"))
	assert.Error(t, err)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero quorum", func(c *Config) { c.Consensus.Quorum = 0 }, "consensus.quorum"},
		{"http without endpoint", func(c *Config) {
			c.Forecasters[0].Source = SourceHTTP
		}, "forecasters[0].endpoint"},
		{"duplicate id", func(c *Config) { c.Forecasters[1].ID = c.Forecasters[0].ID }, "forecasters[1].id"},
		{"bad holiday", func(c *Config) { c.Calendar.Holidays = []string{"12/25/2025"} }, "calendar.holidays[0]"},
		{"bad cron", func(c *Config) { c.Schedule.Morning = "every morning" }, "schedule.morning"},
		{"confidence range", func(c *Config) { c.Validation.MinConfidence = 0.99 }, "validation.min_confidence"},
		{"bad timezone", func(c *Config) { c.Meta.Timezone = "Mars/Olympus" }, "meta.timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var ve ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestHashDeterministic(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	h2, _ := Hash(Default())
	assert.Equal(t, h1, h2)

	changed := Default()
	changed.Consensus.Quorum = 5
	h3, _ := Hash(changed)
	assert.NotEqual(t, h1, h3)
}
