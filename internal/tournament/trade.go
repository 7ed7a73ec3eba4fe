package tournament

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/papertrade"
	"github.com/wonny/predictarena/internal/store"
)

// SelectWinner computes and persists the consensus pick for date.
// A nil pick (no quorum) is a valid outcome and is persisted as such.
func (r *Runner) SelectWinner(ctx context.Context, date time.Time) (pick *contracts.WinnerPick, err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveStep("winner", start, err) }()

	day := contracts.FormatDate(date)
	batches, err := store.LoadBatches(ctx, r.store, day)
	if err != nil {
		return nil, err
	}

	pick = r.selector.Select(day, batches)
	if err := r.store.Put(ctx, store.WinnerKey, contracts.WinnerDocument{Date: day, Winner: pick}); err != nil {
		return nil, fmt.Errorf("save winner: %w", err)
	}
	return pick, nil
}

// isStateConflict reports papertrade invariant violations (logged no-ops)
func isStateConflict(err error) bool {
	return errors.Is(err, papertrade.ErrTradeAlreadyOpen) ||
		errors.Is(err, papertrade.ErrNoOpenTrade) ||
		errors.Is(err, papertrade.ErrInvalidEntry) ||
		errors.Is(err, papertrade.ErrInvalidExit) ||
		errors.Is(err, papertrade.ErrInsufficientBalance)
}

// OpenTrade opens a position from pick unless one is already open.
// Returns the new trade, or nil when nothing was opened.
func (r *Runner) OpenTrade(ctx context.Context, date time.Time, pick contracts.WinnerPick) (opened *contracts.Trade, err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveStep("open", start, err) }()

	day := contracts.FormatDate(date)
	err = r.withLock(ctx, store.LockSimulator, func() error {
		state, err := store.LoadSimulator(ctx, r.store, r.simulator.Initial())
		if err != nil {
			return err
		}

		next, err := r.simulator.Open(state, pick, day)
		if isStateConflict(err) {
			r.metrics.Trade("open_skipped", state.Balance)
			return nil
		}
		if err != nil {
			return err
		}

		if err := r.store.Put(ctx, store.SimulatorKey, next); err != nil {
			return fmt.Errorf("save simulator: %w", err)
		}
		t := next.Trades[next.OpenTrade()]
		opened = &t
		r.metrics.Trade("open", next.Balance)
		return nil
	})
	return opened, err
}

// CloseTrade closes the open position at date's oracle close.
// Returns the closed trade, or nil when nothing was closed.
func (r *Runner) CloseTrade(ctx context.Context, date time.Time) (closed *contracts.Trade, err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveStep("close", start, err) }()

	day := contracts.FormatDate(date)
	err = r.withLock(ctx, store.LockSimulator, func() error {
		state, err := store.LoadSimulator(ctx, r.store, r.simulator.Initial())
		if err != nil {
			return err
		}

		i := state.OpenTrade()
		if i < 0 {
			r.log.Info().Str("date", day).Msg("no open trade to close")
			return nil
		}
		open := state.Trades[i]
		if open.DateOpened > day {
			r.log.Warn().
				Str("ticker", open.Ticker).
				Str("opened", open.DateOpened).
				Str("date", day).
				Msg("open trade is newer than close date, leaving open")
			return nil
		}

		price, ok := r.prices.ClosingPrice(ctx, open.Ticker, date)
		if !ok {
			r.log.Warn().Str("ticker", open.Ticker).Str("date", day).Msg("no closing price, trade stays open")
			return nil
		}

		next, err := r.simulator.Close(state, price, day)
		if isStateConflict(err) {
			r.metrics.Trade("close_skipped", state.Balance)
			return nil
		}
		if err != nil {
			return err
		}

		if err := r.store.Put(ctx, store.SimulatorKey, next); err != nil {
			return fmt.Errorf("save simulator: %w", err)
		}
		t := next.Trades[i]
		closed = &t
		r.metrics.Trade("close", next.Balance)
		return nil
	})
	return closed, err
}
