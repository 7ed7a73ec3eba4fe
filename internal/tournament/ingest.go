package tournament

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/producer"
	"github.com/wonny/predictarena/internal/store"
)

// Batch outcomes
const (
	BatchSkipped   = "skipped"   // 이미 저장됨 (idempotent)
	BatchSaved     = "saved"     // 검증 후 저장
	BatchDiscarded = "discarded" // 사용 가능한 레코드 0개
	BatchFailed    = "failed"    // 생성기 오류 또는 저장 실패
)

// maxConcurrentProducers bounds parallel producer calls
const maxConcurrentProducers = 4

// BatchOutcome is one forecaster's ingest result
type BatchOutcome struct {
	Forecaster string `json:"forecaster"`
	Status     string `json:"status"`
	Submitted  int    `json:"submitted"`
	Usable     int    `json:"usable"`
	Violations int    `json:"violations"`
	Error      string `json:"error,omitempty"`
}

// IngestResult lists outcomes in roster order
type IngestResult struct {
	Date     string         `json:"date"`
	Outcomes []BatchOutcome `json:"outcomes"`
}

// Saved counts forecasters with a batch on disk after the run
func (r IngestResult) Saved() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == BatchSaved || o.Status == BatchSkipped {
			n++
		}
	}
	return n
}

type generated struct {
	raw []byte
	err error
}

// Ingest collects, validates and persists each forecaster's batch for date.
// 생성기 호출만 병렬, 검증/저장은 로스터 순서대로 순차 처리.
// The whole run holds the date's ingest lock so two runs never both call a
// producer for the same day.
func (r *Runner) Ingest(ctx context.Context, date time.Time) (res IngestResult, err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveStep("ingest", start, err) }()

	day := contracts.FormatDate(date)
	res = IngestResult{Date: day, Outcomes: make([]BatchOutcome, len(r.producers))}
	for i, p := range r.producers {
		res.Outcomes[i].Forecaster = p.ID()
	}

	err = r.withLock(ctx, store.LockIngest(day), func() error {
		return r.ingestLocked(ctx, date, day, &res)
	})
	if err != nil {
		return res, err
	}

	saved := res.Saved()
	r.log.Info().
		Str("date", day).
		Int("succeeded", saved).
		Int("total", len(r.producers)).
		Msg("ingest done")

	if len(r.producers) > 0 && saved == 0 {
		return res, fmt.Errorf("ingest %s: %w", day, ErrAllProducersFailed)
	}
	return res, nil
}

func (r *Runner) ingestLocked(ctx context.Context, date time.Time, day string, res *IngestResult) error {
	// 1. 이미 저장된 배치 확인
	todo := make([]bool, len(r.producers))
	for i, p := range r.producers {
		exists, err := r.store.Exists(ctx, store.PredictionKey(day, p.ID()))
		if err != nil {
			return fmt.Errorf("check batch %s: %w", p.ID(), err)
		}
		if exists {
			r.log.Info().Str("forecaster", p.ID()).Str("date", day).Msg("already generated, skipping")
			res.Outcomes[i].Status = BatchSkipped
			continue
		}
		todo[i] = true
	}

	// 2. 생성기 호출 (병렬)
	outputs := make([]generated, len(r.producers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProducers)
	for i, p := range r.producers {
		if !todo[i] {
			continue
		}
		g.Go(func() error {
			raw, err := p.Generate(gctx, date)
			outputs[i] = generated{raw: raw, err: err}
			return nil
		})
	}
	_ = g.Wait()

	// 3. 검증 + 저장 (순차)
	for i, p := range r.producers {
		if !todo[i] {
			continue
		}
		outcome := r.ingestOne(ctx, p, day, outputs[i])
		outcome.Forecaster = p.ID()
		res.Outcomes[i] = outcome
		r.metrics.Ingested(p.ID(), outcome.Status)
	}
	return nil
}

// ingestOne handles a single producer's output. Every failure, including a
// failed save, stays local to that forecaster.
func (r *Runner) ingestOne(ctx context.Context, p contracts.Producer, day string, out generated) BatchOutcome {
	log := r.log.With().Str("forecaster", p.ID()).Logger()

	if out.err != nil {
		log.Error().Err(out.err).Msg("producer failed")
		return BatchOutcome{Status: BatchFailed, Error: out.err.Error()}
	}

	stamped, err := producer.StampMetadata(out.raw, p.ID(), p.DisplayName(), day)
	if err != nil {
		log.Error().Err(err).Msg("producer returned unusable output")
		return BatchOutcome{Status: BatchFailed, Error: err.Error()}
	}

	report, err := r.validator.Validate(stamped)
	if err != nil {
		log.Error().Err(err).Msg("producer returned unusable output")
		return BatchOutcome{Status: BatchFailed, Error: err.Error()}
	}

	outcome := BatchOutcome{
		Submitted:  report.Submitted,
		Usable:     report.Usable,
		Violations: len(report.Violations),
	}

	if !report.Valid() {
		r.validator.LogViolations(p.ID(), report)
		r.metrics.Violations(p.ID(), len(report.Violations))
	}

	if !report.HasUsable() {
		log.Error().Int("submitted", report.Submitted).Msg("no valid predictions, discarding")
		outcome.Status = BatchDiscarded
		return outcome
	}

	if err := r.store.Put(ctx, store.PredictionKey(day, p.ID()), report.Batch); err != nil {
		log.Error().Err(err).Msg("save batch failed")
		outcome.Status = BatchFailed
		outcome.Error = fmt.Sprintf("save batch: %v", err)
		return outcome
	}

	log.Info().Int("predictions", report.Usable).Msg("batch saved")
	outcome.Status = BatchSaved
	return outcome
}
