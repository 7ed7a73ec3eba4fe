package tournament

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/store"
)

// ScoreSummary summarizes a scoring run
type ScoreSummary struct {
	Date       string `json:"date"`
	New        int    `json:"new"`
	Resolved   int    `json:"resolved"`
	Unresolved int    `json:"unresolved"`
	Total      int    `json:"total"`
	Folded     int    `json:"folded"`
}

// Score resolves the date's unscored end_of_day predictions, appends them to
// the score document and folds every not-yet-folded result into the
// leaderboard. The whole run holds the date's scores lock.
// 이미 채점된 날짜를 다시 실행하면 아무것도 바뀌지 않는다. 이전 실행이
// 리더보드 저장 전에 실패했다면 남은 결과만 fold 한다.
func (r *Runner) Score(ctx context.Context, date time.Time) (res ScoreSummary, err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveStep("score", start, err) }()

	day := contracts.FormatDate(date)
	res.Date = day

	err = r.withLock(ctx, store.LockScores(day), func() error {
		return r.scoreLocked(ctx, date, day, &res)
	})
	if err != nil {
		return res, err
	}

	r.log.Info().
		Str("date", day).
		Int("new", res.New).
		Int("resolved", res.Resolved).
		Int("unresolved", res.Unresolved).
		Int("folded", res.Folded).
		Msg("scoring done")
	return res, nil
}

func (r *Runner) scoreLocked(ctx context.Context, date time.Time, day string, res *ScoreSummary) error {
	batches, err := store.LoadBatches(ctx, r.store, day)
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		r.log.Warn().Str("date", day).Msg("no prediction batches for date")
		return nil
	}

	doc, err := store.LoadScores(ctx, r.store, day)
	if err != nil {
		return err
	}

	now := r.now().UTC()
	fresh := r.scorer.Score(ctx, date, batches, doc.Results)
	if len(fresh) == 0 {
		r.log.Info().Str("date", day).Int("existing", len(doc.Results)).Msg("nothing new to score")
	} else {
		for _, sr := range fresh {
			if sr.Resolved() {
				res.Resolved++
			} else {
				res.Unresolved++
			}
			r.metrics.Scored(string(sr.Status))
		}
		res.New = len(fresh)

		doc.Date = day
		doc.ScoredAt = now.Format(time.RFC3339)
		doc.Results = append(doc.Results, fresh...)
		if err := r.store.Put(ctx, store.ScoresKey(day), doc); err != nil {
			return fmt.Errorf("save scores: %w", err)
		}
	}
	res.Total = len(doc.Results)

	if len(doc.Results) == 0 {
		return nil
	}
	return r.withLock(ctx, store.LockLeaderboard, func() error {
		n, err := r.foldPending(ctx, day, doc.Results, now)
		res.Folded = n
		return err
	})
}

// foldPending applies results past the leaderboard's watermark for day and
// saves board and watermark in one write. Caller holds LockLeaderboard.
func (r *Runner) foldPending(ctx context.Context, day string, results []contracts.ScoreResult, now time.Time) (int, error) {
	lb, err := store.LoadLeaderboard(ctx, r.store)
	if err != nil {
		return 0, err
	}

	done := lb.FoldedThrough(day)
	if done > len(results) {
		// score 문서가 줄어든 경우 (수동 편집 등). 다시 fold 하지 않는다.
		r.log.Warn().Str("date", day).Int("watermark", done).Int("results", len(results)).
			Msg("leaderboard watermark ahead of score document")
		return 0, nil
	}
	if done == len(results) {
		return 0, nil
	}

	pending := results[done:]
	next := r.aggregator.Apply(lb, pending, now)
	if next.Folded == nil {
		next.Folded = make(map[string]int)
	}
	next.Folded[day] = len(results)
	if err := r.store.Put(ctx, store.LeaderboardKey, next); err != nil {
		return 0, fmt.Errorf("save leaderboard: %w", err)
	}
	return len(pending), nil
}
