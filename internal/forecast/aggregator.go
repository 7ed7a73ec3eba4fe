package forecast

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/predictarena/internal/contracts"
)

// =============================================================================
// Leaderboard Aggregator
// =============================================================================

// Aggregator 채점 결과를 리더보드에 누적 (incremental fold)
type Aggregator struct {
	log zerolog.Logger
}

// NewAggregator 새 집계기 생성
func NewAggregator(log zerolog.Logger) *Aggregator {
	return &Aggregator{
		log: log.With().Str("component", "forecast.aggregator").Logger(),
	}
}

// NextStreak advances a signed streak. The result is never 0: a run grows
// while outcomes share sign and restarts at ±1 on a sign change.
func NextStreak(old int, correct bool) int {
	if correct {
		if old >= 0 {
			return old + 1
		}
		return 1
	}
	if old <= 0 {
		return old - 1
	}
	return -1
}

// Fold applies one resolved result to an entry. Unresolved results are ignored.
func Fold(e contracts.LeaderboardEntry, r contracts.ScoreResult) contracts.LeaderboardEntry {
	if !r.Resolved() {
		return e
	}

	correct := r.Correct()
	e.TotalPredictions++
	if correct {
		e.CorrectDirections++
	}
	e.TotalScore = round(e.TotalScore+r.Score, 4)
	e.DirectionAccuracy = round(float64(e.CorrectDirections)/float64(e.TotalPredictions), 4)

	e.CurrentStreak = NextStreak(e.CurrentStreak, correct)
	if e.CurrentStreak > e.BestStreak {
		e.BestStreak = e.CurrentStreak
	}
	if e.CurrentStreak < e.WorstStreak {
		e.WorstStreak = e.CurrentStreak
	}
	return e
}

// Apply folds results into lb in discovery order and returns the new board.
// 미등록 예측자는 0으로 초기화된 엔트리를 만든 뒤 fold 한다.
func (a *Aggregator) Apply(lb contracts.Leaderboard, results []contracts.ScoreResult, now time.Time) contracts.Leaderboard {
	out := contracts.Leaderboard{
		LastUpdated: lb.LastUpdated,
		Models:      append([]contracts.LeaderboardEntry(nil), lb.Models...),
	}
	if lb.Folded != nil {
		out.Folded = make(map[string]int, len(lb.Folded))
		for day, n := range lb.Folded {
			out.Folded[day] = n
		}
	}

	index := make(map[string]int, len(out.Models))
	for i, m := range out.Models {
		index[m.ForecasterID] = i
	}

	folded := 0
	for _, r := range results {
		if !r.Resolved() {
			continue
		}
		i, ok := index[r.ForecasterID]
		if !ok {
			a.log.Info().Str("forecaster", r.ForecasterID).Msg("new leaderboard entry")
			out.Models = append(out.Models, contracts.LeaderboardEntry{
				ForecasterID: r.ForecasterID,
				DisplayName:  r.DisplayName,
			})
			i = len(out.Models) - 1
			index[r.ForecasterID] = i
		}
		out.Models[i] = Fold(out.Models[i], r)
		folded++
	}

	if folded > 0 {
		out.LastUpdated = now.UTC().Format(time.RFC3339)
	}
	a.log.Info().Int("folded", folded).Int("entries", len(out.Models)).Msg("leaderboard updated")
	return out
}

// Ranked returns entries ordered by total score (desc), stable on ties
func Ranked(lb contracts.Leaderboard) []contracts.LeaderboardEntry {
	out := append([]contracts.LeaderboardEntry(nil), lb.Models...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalScore > out[j].TotalScore
	})
	return out
}
