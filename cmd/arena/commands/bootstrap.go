package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/wonny/predictarena/internal/calendar"
	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/metrics"
	"github.com/wonny/predictarena/internal/oracle"
	"github.com/wonny/predictarena/internal/producer"
	"github.com/wonny/predictarena/internal/store"
	"github.com/wonny/predictarena/internal/tournament"
	"github.com/wonny/predictarena/internal/tournamentconfig"
	"github.com/wonny/predictarena/pkg/config"
	"github.com/wonny/predictarena/pkg/database"
	"github.com/wonny/predictarena/pkg/httputil"
	"github.com/wonny/predictarena/pkg/logger"
	"github.com/wonny/predictarena/pkg/redis"
)

// lockTTL bounds how long a crashed holder blocks the next run.
// ingest 락은 생성기 호출(최대 5분) 동안 유지되므로 그보다 길어야 한다.
const lockTTL = 15 * time.Minute

// app holds the wired dependencies shared by every command
// ⭐ SSOT: 의존성 조립은 여기서만 (커맨드마다 중복하지 않음)
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	tournament *tournamentconfig.Config
	calendar   *calendar.Calendar
	redis      *redis.Client
	db         *database.DB // STORE_BACKEND=postgres 일 때만
	store      *store.MirroredStore
	locker     store.Locker
	metrics    *metrics.Registry // METRICS_ENABLED=false 이면 nil
	runner     *tournament.Runner
}

// loadBase reads env + tournament config and builds the logger and calendar.
// validate 처럼 저장소가 필요 없는 커맨드는 여기까지만 사용한다.
func loadBase() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	path := tournamentFile
	if path == "" {
		path = cfg.TournamentConfig
	}
	tcfg, err := tournamentconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load tournament config: %w", err)
	}

	cal, err := calendar.New(tcfg.Meta.Timezone, tcfg.Calendar.Holidays)
	if err != nil {
		return nil, fmt.Errorf("init calendar: %w", err)
	}

	return &app{cfg: cfg, log: log, tournament: tcfg, calendar: cal}, nil
}

// bootstrap wires storage, locks, oracles, producers and the runner
func bootstrap(ctx context.Context) (*app, error) {
	a, err := loadBase()
	if err != nil {
		return nil, err
	}

	// 1. Redis (disabled client when REDIS_ENABLED=false)
	a.redis, err = redis.New(ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 2. Store
	var primary store.Store
	switch a.cfg.StoreBackend {
	case "postgres":
		a.db, err = database.New(ctx, a.cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		primary = store.NewPostgresStore(a.db.Pool)
	default:
		primary = store.NewFileStore(a.cfg.DataDir)
	}
	a.store = store.NewMirroredStore(primary, a.cfg.PublicDir, a.log.Zerolog())

	// 3. Locks: redis > postgres advisory > in-process
	switch {
	case a.redis.Enabled():
		a.locker = store.NewRedisLocker(redis.NewLock(a.redis, "arena:lock", lockTTL))
	case a.db != nil:
		a.locker = store.NewPostgresLocker(a.db.Pool)
	default:
		a.locker = store.NewLocalLocker()
	}

	// 4. Metrics
	if a.cfg.MetricsEnabled {
		a.metrics = metrics.NewRegistry()
	}

	// 5. Oracles
	prices, events, err := a.oracles()
	if err != nil {
		a.Close()
		return nil, err
	}

	// 6. Producers
	producerClient := httputil.New(httputil.Options{
		Timeout:    5 * time.Minute,
		MaxRetries: 1,
	}, a.log)
	producers, err := producer.FromConfig(
		a.tournament.EnabledForecasters(),
		filepath.Join(a.cfg.DataDir, "inbox"),
		producerClient,
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init producers: %w", err)
	}

	// 7. Runner
	a.runner = tournament.New(tournament.Deps{
		Config:    a.tournament,
		Store:     a.store,
		Locker:    a.locker,
		Producers: producers,
		Prices:    prices,
		Events:    events,
		Metrics:   a.metrics,
	}, a.log.Zerolog())

	a.log.WithFields(map[string]interface{}{
		"store":       a.cfg.StoreBackend,
		"redis":       a.redis.Enabled(),
		"forecasters": len(producers),
		"tournament":  a.tournament.Meta.TournamentID,
	}).Debug("Bootstrap completed")

	return a, nil
}

// oracles builds the price chain (--closes file, then Yahoo) and the sports oracle
func (a *app) oracles() (contracts.PriceOracle, contracts.EventOracle, error) {
	cache := redis.NewCache(a.redis, "arena")
	limiter := redis.NewRateLimiter(a.redis, "arena:ratelimit")
	loc := a.calendar.Location()

	var chain oracle.Chain
	if closesFile != "" {
		closes, err := oracle.LoadCloses(closesFile)
		if err != nil {
			return nil, nil, fmt.Errorf("load closes: %w", err)
		}
		chain = append(chain, oracle.NewStaticOracle(closes))
	}
	yahoo := oracle.NewYahooOracle(a.cfg.Oracle.MaxRetries, loc, cache, a.metrics, a.log.Zerolog()).
		WithRateLimiter(limiter)
	chain = append(chain, yahoo)

	oddsClient := httputil.New(httputil.Options{
		BaseURL:        a.cfg.Odds.BaseURL,
		Timeout:        a.cfg.Oracle.Timeout,
		MaxRetries:     a.cfg.Oracle.MaxRetries,
		RequestsPerSec: a.cfg.Oracle.RequestsPerSec,
	}, a.log).WithRateLimiter(limiter, redis.OddsRateLimit)
	odds := oracle.NewOddsOracle(oddsClient, a.cfg.Odds.APIKey, loc, cache, a.metrics, a.log.Zerolog())

	return chain, odds, nil
}

// Close releases connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Redis close failed")
		}
	}
}
