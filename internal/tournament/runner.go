package tournament

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/forecast"
	"github.com/wonny/predictarena/internal/metrics"
	"github.com/wonny/predictarena/internal/papertrade"
	"github.com/wonny/predictarena/internal/store"
	"github.com/wonny/predictarena/internal/tournamentconfig"
)

// ErrAllProducersFailed is returned by Ingest when no forecaster has a batch
var ErrAllProducersFailed = errors.New("all producers failed")

// Deps wires the runner's collaborators
type Deps struct {
	Config    *tournamentconfig.Config
	Store     store.Store
	Locker    store.Locker // nil -> LocalLocker
	Producers []contracts.Producer
	Prices    contracts.PriceOracle
	Events    contracts.EventOracle // nil -> sports deferred
	Metrics   *metrics.Registry     // nil-safe
	Now       func() time.Time      // nil -> time.Now
}

// Runner orchestrates one date through the tournament steps
// ⭐ SSOT: 단계 순서 (ingest -> winner -> open, score -> fold -> close)
type Runner struct {
	cfg        *tournamentconfig.Config
	store      store.Store
	locker     store.Locker
	producers  []contracts.Producer
	prices     contracts.PriceOracle
	validator  *forecast.Validator
	scorer     *forecast.Scorer
	aggregator *forecast.Aggregator
	selector   *forecast.Selector
	simulator  *papertrade.Simulator
	metrics    *metrics.Registry
	now        func() time.Time
	configHash string
	log        zerolog.Logger
}

// New creates a runner
func New(d Deps, log zerolog.Logger) *Runner {
	if d.Locker == nil {
		d.Locker = store.NewLocalLocker()
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	hash, err := tournamentconfig.Hash(d.Config)
	if err != nil {
		log.Warn().Err(err).Msg("config hash unavailable")
	}

	return &Runner{
		cfg:        d.Config,
		store:      d.Store,
		locker:     d.Locker,
		producers:  d.Producers,
		prices:     d.Prices,
		validator:  forecast.NewValidator(d.Config.Validation, log),
		scorer:     forecast.NewScorer(d.Config.Scoring, d.Prices, d.Events, log),
		aggregator: forecast.NewAggregator(log),
		selector:   forecast.NewSelector(d.Config.Consensus, log),
		simulator:  papertrade.NewSimulator(d.Config.Simulator.StartingBalance, log),
		metrics:    d.Metrics,
		now:        d.Now,
		configHash: hash,
		log:        log.With().Str("component", "tournament.runner").Logger(),
	}
}

// MorningResult summarizes a morning pass
type MorningResult struct {
	Ingest IngestResult          `json:"ingest"`
	Winner *contracts.WinnerPick `json:"winner"`
	Opened *contracts.Trade      `json:"opened,omitempty"`
}

// EveningResult summarizes an evening pass
type EveningResult struct {
	Score  ScoreSummary     `json:"score"`
	Closed *contracts.Trade `json:"closed,omitempty"`
}

// Morning runs ingest -> winner -> open for date
func (r *Runner) Morning(ctx context.Context, date time.Time) (*MorningResult, error) {
	log := r.runLogger("morning", date)
	log.Info().Msg("morning pass started")

	ingest, err := r.Ingest(ctx, date)
	if err != nil {
		return &MorningResult{Ingest: ingest}, err
	}

	pick, err := r.SelectWinner(ctx, date)
	if err != nil {
		return &MorningResult{Ingest: ingest}, err
	}

	res := &MorningResult{Ingest: ingest, Winner: pick}
	if pick == nil {
		log.Info().Msg("no consensus winner today, no trade opened")
		return res, nil
	}

	opened, err := r.OpenTrade(ctx, date, *pick)
	if err != nil {
		return res, err
	}
	res.Opened = opened

	log.Info().
		Int("saved", ingest.Saved()).
		Str("winner", pick.Ticker).
		Bool("opened", opened != nil).
		Msg("morning pass completed")
	return res, nil
}

// Evening runs score -> fold -> close for date
func (r *Runner) Evening(ctx context.Context, date time.Time) (*EveningResult, error) {
	log := r.runLogger("evening", date)
	log.Info().Msg("evening pass started")

	score, err := r.Score(ctx, date)
	if err != nil {
		return &EveningResult{Score: score}, err
	}

	closed, err := r.CloseTrade(ctx, date)
	if err != nil {
		return &EveningResult{Score: score}, err
	}

	log.Info().
		Int("new_results", score.New).
		Int("resolved", score.Resolved).
		Bool("closed", closed != nil).
		Msg("evening pass completed")
	return &EveningResult{Score: score, Closed: closed}, nil
}

func (r *Runner) runLogger(pass string, date time.Time) zerolog.Logger {
	return r.log.With().
		Str("run_id", uuid.NewString()).
		Str("pass", pass).
		Str("date", contracts.FormatDate(date)).
		Str("config_hash", r.configHash).
		Logger()
}

// withLock runs fn while holding the named document lock
func (r *Runner) withLock(ctx context.Context, name string, fn func() error) error {
	release, err := r.locker.Lock(ctx, name)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			r.log.Warn().Err(err).Str("lock", name).Msg("lock release failed")
		}
	}()
	return fn()
}
