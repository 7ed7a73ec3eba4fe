package forecast

import (
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/tournamentconfig"
)

// =============================================================================
// Consensus Selector (Today's Winner)
// =============================================================================

// Selector 다수 예측자가 동의한 단일 종목 픽 선정
type Selector struct {
	rules    tournamentconfig.ConsensusConfig
	excluded map[string]struct{}
	log      zerolog.Logger
}

// NewSelector 새 선택기 생성
func NewSelector(rules tournamentconfig.ConsensusConfig, log zerolog.Logger) *Selector {
	excluded := make(map[string]struct{}, len(rules.ExcludedTickers))
	for _, t := range rules.ExcludedTickers {
		excluded[strings.ToUpper(t)] = struct{}{}
	}
	return &Selector{
		rules:    rules,
		excluded: excluded,
		log:      log.With().Str("component", "forecast.consensus").Logger(),
	}
}

type groupKey struct {
	ticker    string
	direction contracts.Direction
}

type vote struct {
	forecaster string
	confidence float64
	target     float64
	entry      float64
}

// eligible filters index proxies, crypto-style symbols and non-market categories
func (s *Selector) eligible(rec contracts.PredictionRecord) bool {
	ticker := strings.ToUpper(rec.Ticker)
	if ticker == "" || !rec.Direction.Valid() {
		return false
	}
	if _, ok := s.excluded[ticker]; ok {
		return false
	}
	for _, suffix := range s.rules.ExcludedSuffixes {
		if strings.HasSuffix(ticker, strings.ToUpper(suffix)) {
			return false
		}
	}
	for _, c := range s.rules.ExcludedCategories {
		if rec.Category == c {
			return false
		}
	}
	return rec.Confidence > 0
}

// Candidates returns every quorum-passing group in first-seen order
func (s *Selector) Candidates(date string, batches []contracts.ForecastBatch) []contracts.WinnerPick {
	var order []groupKey
	groups := make(map[groupKey][]vote)
	voted := make(map[groupKey]map[string]bool)

	for _, b := range batches {
		name := b.DisplayName
		if name == "" {
			name = b.ForecasterID
		}
		for _, rec := range b.Predictions {
			if !s.eligible(rec) {
				continue
			}
			key := groupKey{ticker: strings.ToUpper(rec.Ticker), direction: rec.Direction}
			if _, ok := groups[key]; !ok {
				order = append(order, key)
				voted[key] = make(map[string]bool)
			}
			// 한 예측자는 그룹당 1표
			if voted[key][b.ForecasterID] {
				continue
			}
			voted[key][b.ForecasterID] = true
			groups[key] = append(groups[key], vote{
				forecaster: name,
				confidence: rec.Confidence,
				target:     rec.TargetPrice,
				entry:      rec.EntryPrice,
			})
		}
	}

	var picks []contracts.WinnerPick
	for _, key := range order {
		votes := groups[key]
		if len(votes) < s.rules.Quorum {
			continue
		}

		var sumConf, sumTarget, sumEntry float64
		names := make([]string, 0, len(votes))
		for _, v := range votes {
			sumConf += v.confidence
			sumTarget += v.target
			sumEntry += v.entry
			names = append(names, v.forecaster)
		}
		n := float64(len(votes))
		avgConf, avgTarget, avgEntry := sumConf/n, sumTarget/n, sumEntry/n
		if avgEntry == 0 {
			continue
		}

		move := math.Abs(avgTarget-avgEntry) / avgEntry * 100
		picks = append(picks, contracts.WinnerPick{
			Date:            date,
			Ticker:          key.ticker,
			Direction:       key.direction,
			AvgConfidence:   round(avgConf, 4),
			AvgTarget:       round(avgTarget, 2),
			AvgEntry:        round(avgEntry, 2),
			ExpectedMovePct: round(move, 2),
			Score:           round(avgConf*move, 4),
			Forecasters:     names,
			ModelCount:      len(votes),
			HighConviction:  avgConf >= s.rules.HighConviction,
		})
	}
	return picks
}

// Select returns the highest-scoring candidate, or nil when no group reaches quorum.
// 동점이면 먼저 발견된 그룹이 이긴다 (배치 순서 -> 레코드 순서).
func (s *Selector) Select(date string, batches []contracts.ForecastBatch) *contracts.WinnerPick {
	picks := s.Candidates(date, batches)
	if len(picks) == 0 {
		s.log.Info().
			Str("date", date).
			Int("quorum", s.rules.Quorum).
			Msg("no consensus winner")
		return nil
	}

	best := 0
	for i := 1; i < len(picks); i++ {
		if picks[i].Score > picks[best].Score {
			best = i
		}
	}

	w := picks[best]
	s.log.Info().
		Str("date", date).
		Str("ticker", w.Ticker).
		Str("direction", string(w.Direction)).
		Int("models", w.ModelCount).
		Float64("score", w.Score).
		Msg("consensus winner selected")
	return &w
}
