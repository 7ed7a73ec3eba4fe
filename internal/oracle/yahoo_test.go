package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/predictarena/internal/metrics"
)

type fakeSource struct {
	bars  []Bar
	errs  []error
	calls int
}

func (f *fakeSource) DailyBars(_ context.Context, _ string, _, _ time.Time) ([]Bar, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.bars, nil
}

func newTestYahoo(t *testing.T, src BarSource, retries int) *YahooOracle {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	o := NewYahooOracle(retries, loc, nil, metrics.NewRegistry(), zerolog.Nop()).WithSource(src)
	o.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return o
}

// bar at 09:30 ET on the given day
func etBar(t *testing.T, day string, close string) Bar {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	ts, err := time.ParseInLocation("2006-01-02 15:04", day+" 09:30", loc)
	require.NoError(t, err)
	return Bar{Time: ts, Close: decimal.RequireFromString(close)}
}

func TestYahooOracle_ExactDate(t *testing.T) {
	src := &fakeSource{bars: []Bar{
		etBar(t, "2025-03-12", "210.00"),
		etBar(t, "2025-03-13", "211.456"),
		etBar(t, "2025-03-14", "213.494"),
	}}
	o := newTestYahoo(t, src, 2)

	price, ok := o.ClosingPrice(context.Background(), "AAPL", time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 211.46, price)
}

func TestYahooOracle_FallsBackToLastBar(t *testing.T) {
	src := &fakeSource{bars: []Bar{
		etBar(t, "2025-03-12", "210.00"),
		etBar(t, "2025-03-13", "211.10"),
	}}
	o := newTestYahoo(t, src, 0)

	price, ok := o.ClosingPrice(context.Background(), "AAPL", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 211.10, price)
}

func TestYahooOracle_RetriesTransientErrors(t *testing.T) {
	src := &fakeSource{
		bars: []Bar{etBar(t, "2025-03-14", "100.00")},
		errs: []error{errors.New("timeout"), errors.New("timeout"), nil},
	}
	o := newTestYahoo(t, src, 3)

	price, ok := o.ClosingPrice(context.Background(), "SPY", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 100.0, price)
	assert.Equal(t, 3, src.calls)
}

func TestYahooOracle_GivesUpAfterMaxRetries(t *testing.T) {
	src := &fakeSource{errs: []error{
		errors.New("boom"), errors.New("boom"), errors.New("boom"), errors.New("boom"),
	}}
	o := newTestYahoo(t, src, 2)

	_, ok := o.ClosingPrice(context.Background(), "SPY", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
	assert.Equal(t, 3, src.calls)
}

func TestYahooOracle_NoBarsIsNotRetried(t *testing.T) {
	src := &fakeSource{}
	o := newTestYahoo(t, src, 5)

	_, ok := o.ClosingPrice(context.Background(), "NOPE", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
	assert.Equal(t, 1, src.calls)
}
