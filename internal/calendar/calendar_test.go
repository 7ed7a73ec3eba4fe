package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/tournamentconfig"
)

func newDefault(t *testing.T) *Calendar {
	t.Helper()
	cfg := tournamentconfig.Default()
	cal, err := New(cfg.Meta.Timezone, cfg.Calendar.Holidays)
	require.NoError(t, err)
	return cal
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := contracts.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestIsMarketDay(t *testing.T) {
	cal := newDefault(t)

	tests := []struct {
		date string
		want bool
	}{
		{"2025-03-14", true},  // Friday
		{"2025-03-15", false}, // Saturday
		{"2025-03-16", false}, // Sunday
		{"2025-07-04", false}, // Independence Day
		{"2025-11-28", false}, // Day after Thanksgiving
		{"2026-04-03", false}, // Good Friday
		{"2026-04-06", true},  // Monday
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.IsMarketDay(mustDate(t, tt.date)))
		})
	}
}

func TestToday_UsesExchangeZone(t *testing.T) {
	cal := newDefault(t)

	// 02:00 UTC on the 15th is still the 14th in New York
	now := time.Date(2025, 3, 15, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-14", contracts.FormatDate(cal.Today(now)))
}

func TestNew_InvalidInput(t *testing.T) {
	_, err := New("Nowhere/City", nil)
	assert.Error(t, err)

	_, err = New("America/New_York", []string{"July 4"})
	assert.Error(t, err)
}
