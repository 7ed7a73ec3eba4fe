package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/predictarena/internal/contracts"
)

// =============================================================================
// Typed document helpers
// =============================================================================

// LoadBatches returns every persisted batch for a date, in forecaster id order
func LoadBatches(ctx context.Context, s Store, date string) ([]contracts.ForecastBatch, error) {
	keys, err := s.List(ctx, CategoryPredictions, date)
	if err != nil {
		return nil, err
	}

	batches := make([]contracts.ForecastBatch, 0, len(keys))
	for _, k := range keys {
		var b contracts.ForecastBatch
		if err := s.Get(ctx, k, &b); err != nil {
			return nil, fmt.Errorf("load batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, nil
}

// LoadScores returns the score document for a date (empty when absent)
func LoadScores(ctx context.Context, s Store, date string) (contracts.ScoreDocument, error) {
	var doc contracts.ScoreDocument
	err := s.Get(ctx, ScoresKey(date), &doc)
	if errors.Is(err, ErrNotFound) {
		return contracts.ScoreDocument{Date: date}, nil
	}
	return doc, err
}

// LoadLeaderboard returns the persisted leaderboard (empty when absent)
func LoadLeaderboard(ctx context.Context, s Store) (contracts.Leaderboard, error) {
	var lb contracts.Leaderboard
	err := s.Get(ctx, LeaderboardKey, &lb)
	if errors.Is(err, ErrNotFound) {
		return contracts.Leaderboard{}, nil
	}
	return lb, err
}

// LoadWinner returns today's winner document (nil when absent)
func LoadWinner(ctx context.Context, s Store) (*contracts.WinnerDocument, error) {
	var doc contracts.WinnerDocument
	err := s.Get(ctx, WinnerKey, &doc)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadSimulator returns the simulator state, or initial when none is stored
func LoadSimulator(ctx context.Context, s Store, initial contracts.SimulatorState) (contracts.SimulatorState, error) {
	var state contracts.SimulatorState
	err := s.Get(ctx, SimulatorKey, &state)
	if errors.Is(err, ErrNotFound) {
		return initial, nil
	}
	return state, err
}
