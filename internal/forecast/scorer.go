package forecast

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/teams"
	"github.com/wonny/predictarena/internal/tournamentconfig"
)

// =============================================================================
// Scorer
// =============================================================================

// Scorer 예측 vs 실제 종가 채점
// ⭐ SSOT: 점수 공식
type Scorer struct {
	rules  tournamentconfig.ScoringConfig
	prices contracts.PriceOracle
	events contracts.EventOracle
	log    zerolog.Logger
}

// NewScorer 새 채점기 생성 (events 가 nil 이면 스포츠 예측은 보류)
func NewScorer(rules tournamentconfig.ScoringConfig, prices contracts.PriceOracle, events contracts.EventOracle, log zerolog.Logger) *Scorer {
	return &Scorer{
		rules:  rules,
		prices: prices,
		events: events,
		log:    log.With().Str("component", "forecast.scorer").Logger(),
	}
}

// TargetAccuracy = 1 - |actual - target| / target, 0 when target is 0
func TargetAccuracy(actual, target float64) float64 {
	if target == 0 {
		return 0
	}
	return round(1-math.Abs(actual-target)/target, 4)
}

// ComputeScore = ±confidence, plus the target bonus when the direction is
// right and the close landed within the bonus band.
func ComputeScore(rules tournamentconfig.ScoringConfig, directionCorrect bool, confidence, targetAccuracy float64) float64 {
	base := -confidence
	if directionCorrect {
		base = confidence
	}
	bonus := 0.0
	if directionCorrect && targetAccuracy >= rules.TargetBonusAccuracy {
		bonus = rules.TargetBonus
	}
	return round(base+bonus, 4)
}

// ResultKey identifies a prediction across forecasters
func ResultKey(forecasterID, predictionID string) string {
	return forecasterID + "/" + predictionID
}

type pending struct {
	batch *contracts.ForecastBatch
	rec   contracts.PredictionRecord
}

// Score resolves every end_of_day record of the date's batches that has no
// result in existing yet. Only new results are returned; existing results
// are never recomputed.
func (s *Scorer) Score(ctx context.Context, date time.Time, batches []contracts.ForecastBatch, existing []contracts.ScoreResult) []contracts.ScoreResult {
	done := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		done[ResultKey(r.ForecasterID, r.PredictionID)] = struct{}{}
	}

	// 1. 채점 대상 수집
	var todo []pending
	for i := range batches {
		b := &batches[i]
		for _, rec := range b.Predictions {
			key := ResultKey(b.ForecasterID, rec.ID)
			if _, ok := done[key]; ok {
				continue
			}
			if rec.Timeframe != contracts.TimeframeEndOfDay {
				s.log.Debug().
					Str("forecaster", b.ForecasterID).
					Str("prediction_id", rec.ID).
					Str("timeframe", string(rec.Timeframe)).
					Msg("deferred: not an end_of_day prediction")
				continue
			}
			done[key] = struct{}{}
			todo = append(todo, pending{batch: b, rec: rec})
		}
	}

	if len(todo) == 0 {
		s.log.Info().Str("date", contracts.FormatDate(date)).Msg("no new end_of_day predictions to score")
		return nil
	}

	// 2. 종목당 oracle 1회 조회
	closes := s.fetchCloses(ctx, date, todo)
	games := s.fetchGames(ctx, date, todo)

	// 3. 채점
	results := make([]contracts.ScoreResult, 0, len(todo))
	for _, p := range todo {
		if p.rec.IsSports() {
			if r, ok := s.scoreGame(p, games); ok {
				results = append(results, r)
			}
			continue
		}
		results = append(results, s.scoreMarket(p, closes))
	}

	return results
}

type closeQuote struct {
	price float64
	ok    bool
}

func (s *Scorer) fetchCloses(ctx context.Context, date time.Time, todo []pending) map[string]closeQuote {
	closes := make(map[string]closeQuote)
	for _, p := range todo {
		if p.rec.IsSports() {
			continue
		}
		if _, seen := closes[p.rec.Ticker]; seen {
			continue
		}
		price, ok := s.prices.ClosingPrice(ctx, p.rec.Ticker, date)
		closes[p.rec.Ticker] = closeQuote{price: price, ok: ok}
	}
	return closes
}

type gameOutcome struct {
	winner string
	ok     bool
}

func gameKey(rec contracts.PredictionRecord) string {
	return rec.Sport + "|" + teams.Normalize(rec.HomeTeam) + "|" + teams.Normalize(rec.AwayTeam)
}

func (s *Scorer) fetchGames(ctx context.Context, date time.Time, todo []pending) map[string]gameOutcome {
	games := make(map[string]gameOutcome)
	for _, p := range todo {
		if !p.rec.IsSports() {
			continue
		}
		key := gameKey(p.rec)
		if _, seen := games[key]; seen {
			continue
		}
		if s.events == nil {
			games[key] = gameOutcome{}
			continue
		}
		winner, ok := s.events.GameResult(ctx, contracts.GameQuery{
			Sport:    p.rec.Sport,
			HomeTeam: p.rec.HomeTeam,
			AwayTeam: p.rec.AwayTeam,
			Date:     date,
		})
		games[key] = gameOutcome{winner: winner, ok: ok}
	}
	return games
}

func baseResult(p pending) contracts.ScoreResult {
	return contracts.ScoreResult{
		PredictionID:       p.rec.ID,
		ForecasterID:       p.batch.ForecasterID,
		DisplayName:        p.batch.DisplayName,
		Ticker:             p.rec.Ticker,
		PredictedDirection: p.rec.Direction,
		PredictedTarget:    p.rec.TargetPrice,
		Confidence:         p.rec.Confidence,
	}
}

func (s *Scorer) scoreMarket(p pending, closes map[string]closeQuote) contracts.ScoreResult {
	r := baseResult(p)

	q := closes[p.rec.Ticker]
	if !q.ok {
		// OracleMiss: 최종 판정, 같은 id 는 다시 채점하지 않음
		s.log.Warn().
			Str("ticker", p.rec.Ticker).
			Str("prediction_id", p.rec.ID).
			Msg("no closing price, marking unresolved")
		r.Status = contracts.ScoreUnresolved
		r.Score = 0
		return r
	}

	actual := contracts.DirectionDown
	if q.price >= p.rec.EntryPrice {
		actual = contracts.DirectionUp
	}
	correct := actual == p.rec.Direction
	accuracy := TargetAccuracy(q.price, p.rec.TargetPrice)

	r.ActualClose = ptr(q.price)
	r.ActualDirection = ptr(actual)
	r.DirectionCorrect = ptr(correct)
	r.TargetAccuracy = ptr(accuracy)
	r.Score = ComputeScore(s.rules, correct, p.rec.Confidence, accuracy)
	r.Status = contracts.ScoreResolved

	s.log.Info().
		Str("forecaster", p.batch.DisplayName).
		Str("ticker", p.rec.Ticker).
		Str("predicted", string(p.rec.Direction)).
		Str("actual", string(actual)).
		Bool("correct", correct).
		Float64("score", r.Score).
		Msg("prediction scored")
	return r
}

// scoreGame returns ok=false while the game is pending (deferred to a later run)
func (s *Scorer) scoreGame(p pending, games map[string]gameOutcome) (contracts.ScoreResult, bool) {
	g := games[gameKey(p.rec)]
	if !g.ok {
		s.log.Info().
			Str("sport", p.rec.Sport).
			Str("matchup", p.rec.Matchup).
			Str("prediction_id", p.rec.ID).
			Msg("game pending, deferred")
		return contracts.ScoreResult{}, false
	}

	// draw 는 "draw" 를 예측한 경우에만 적중
	correct := teams.Match(p.rec.PredictedWinner, g.winner)

	r := baseResult(p)
	if r.Ticker == "" {
		r.Ticker = p.rec.Matchup
	}
	r.Category = contracts.CategorySports
	r.PredictedWinner = p.rec.PredictedWinner
	r.ActualWinner = g.winner
	r.PredictionCorrect = ptr(correct)
	r.DirectionCorrect = ptr(correct)
	// 스포츠는 목표가 보너스 없음
	r.Score = round(p.rec.Confidence, 4)
	if !correct {
		r.Score = -r.Score
	}
	r.Status = contracts.ScoreResolved
	return r, true
}
