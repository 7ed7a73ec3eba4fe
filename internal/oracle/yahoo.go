package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/metrics"
	"github.com/wonny/predictarena/pkg/redis"
)

// Bar 일봉 (종가만 사용)
type Bar struct {
	Time  time.Time
	Close decimal.Decimal
}

// BarSource fetches daily bars in [start, end)
type BarSource interface {
	DailyBars(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error)
}

// chartSource Yahoo chart API (finance-go)
type chartSource struct{}

func (chartSource) DailyBars(_ context.Context, ticker string, start, end time.Time) ([]Bar, error) {
	params := &chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)

	var bars []Bar
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, Bar{
			Time:  time.Unix(int64(b.Timestamp), 0),
			Close: b.Close,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("chart %s: %w", ticker, err)
	}
	return bars, nil
}

var errNoBars = errors.New("no bars in window")

// YahooOracle 종가 oracle: redis 캐시 -> circuit breaker -> 재시도(backoff)
// ⭐ SSOT: 재시도/백오프 정책은 oracle 내부에만 존재한다.
type YahooOracle struct {
	source     BarSource
	cache      *redis.Cache
	limiter    *redis.RateLimiter
	breaker    *gobreaker.CircuitBreaker
	maxRetries uint64
	newBackOff func() backoff.BackOff
	loc        *time.Location
	metrics    *metrics.Registry
	log        zerolog.Logger
}

// NewYahooOracle creates the live closing-price oracle
func NewYahooOracle(maxRetries int, loc *time.Location, cache *redis.Cache, reg *metrics.Registry, log zerolog.Logger) *YahooOracle {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &YahooOracle{
		source: chartSource{},
		cache:  cache,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "yahoo-chart",
			Timeout: 60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		maxRetries: uint64(maxRetries),
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		loc:        loc,
		metrics:    reg,
		log:        log.With().Str("component", "oracle.yahoo").Logger(),
	}
}

// WithSource replaces the bar source (tests, alternate vendors)
func (o *YahooOracle) WithSource(src BarSource) *YahooOracle {
	o.source = src
	return o
}

// WithRateLimiter shares the vendor quota across processes (nil disables)
func (o *YahooOracle) WithRateLimiter(rl *redis.RateLimiter) *YahooOracle {
	o.limiter = rl
	return o
}

// ClosingPrice returns the close for ticker on date, falling back to the
// last bar in a [date-3, date+1) window (half days, late prints).
func (o *YahooOracle) ClosingPrice(ctx context.Context, ticker string, date time.Time) (float64, bool) {
	day := contracts.FormatDate(date)
	key := redis.ClosingPriceKey(strings.ToUpper(ticker), day)

	var cached float64
	if found, err := o.cache.Get(ctx, key, &cached); err == nil && found {
		o.metrics.OracleLookup("yahoo", "cached")
		return cached, true
	}

	start := date.AddDate(0, 0, -3)
	end := date.AddDate(0, 0, 1)

	var bars []Bar
	op := func() error {
		if o.limiter != nil {
			if err := o.limiter.Wait(ctx, redis.YahooRateLimit); err != nil {
				return backoff.Permanent(err)
			}
		}
		res, err := o.breaker.Execute(func() (interface{}, error) {
			return o.source.DailyBars(ctx, ticker, start, end)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}
			return err
		}
		bars = res.([]Bar)
		if len(bars) == 0 {
			return backoff.Permanent(errNoBars)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(o.newBackOff(), o.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		o.log.Warn().Err(err).Str("ticker", ticker).Str("date", day).Msg("closing price unavailable")
		o.metrics.OracleLookup("yahoo", "miss")
		return 0, false
	}

	price, exact := o.pick(bars, day)
	if !exact {
		o.log.Warn().
			Str("ticker", ticker).
			Str("date", day).
			Float64("close", price).
			Msg("no bar for date, using last available close")
	} else if err := o.cache.Set(ctx, key, price, redis.TTLDaily); err != nil {
		o.log.Debug().Err(err).Str("key", key).Msg("cache set failed")
	}

	o.metrics.OracleLookup("yahoo", "hit")
	return price, true
}

// pick returns the close for day (exchange zone) or the last bar
func (o *YahooOracle) pick(bars []Bar, day string) (float64, bool) {
	for _, b := range bars {
		if b.Time.In(o.loc).Format(contracts.DateLayout) == day {
			return b.Close.Round(2).InexactFloat64(), true
		}
	}
	return bars[len(bars)-1].Close.Round(2).InexactFloat64(), false
}
