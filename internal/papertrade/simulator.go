package papertrade

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/wonny/predictarena/internal/contracts"
)

// State invariant violations. Open/Close return the unchanged state
// together with one of these; callers log and continue.
var (
	ErrTradeAlreadyOpen    = errors.New("papertrade: a trade is already open")
	ErrNoOpenTrade         = errors.New("papertrade: no open trade to close")
	ErrInvalidEntry        = errors.New("papertrade: entry price must be > 0")
	ErrInvalidExit         = errors.New("papertrade: closing price must be > 0")
	ErrInsufficientBalance = errors.New("papertrade: balance too small for one share")
)

// Simulator 단일 포지션 모의 계좌 (OPEN -> CLOSED)
// ⭐ SSOT: 잔고는 Close 시점에만 변한다.
// 상태는 값으로 받아서 새 값으로 돌려준다 (입력 state 는 변경하지 않음).
type Simulator struct {
	startingBalance float64
	newID           func() string
	log             zerolog.Logger
}

// NewSimulator creates a simulator with the given starting balance
func NewSimulator(startingBalance float64, log zerolog.Logger) *Simulator {
	return &Simulator{
		startingBalance: startingBalance,
		newID:           uuid.NewString,
		log:             log.With().Str("component", "papertrade.simulator").Logger(),
	}
}

// Initial returns a fresh account
func (s *Simulator) Initial() contracts.SimulatorState {
	return contracts.SimulatorState{
		Balance:         s.startingBalance,
		StartingBalance: s.startingBalance,
		Trades:          []contracts.Trade{},
	}
}

// Open starts a fully-invested position from the day's consensus pick.
// Balance is not decremented here.
func (s *Simulator) Open(state contracts.SimulatorState, pick contracts.WinnerPick, date string) (contracts.SimulatorState, error) {
	if i := state.OpenTrade(); i >= 0 {
		open := state.Trades[i]
		s.log.Warn().
			Str("open_ticker", open.Ticker).
			Str("open_date", open.DateOpened).
			Str("pick_ticker", pick.Ticker).
			Msg("trade already open, skipping")
		return state, ErrTradeAlreadyOpen
	}

	if pick.AvgEntry <= 0 {
		s.log.Warn().Str("ticker", pick.Ticker).Float64("entry", pick.AvgEntry).Msg("invalid entry price, skipping")
		return state, ErrInvalidEntry
	}

	entry := decimal.NewFromFloat(pick.AvgEntry)
	shares := decimal.NewFromFloat(state.Balance).Div(entry).Floor().IntPart()
	if shares <= 0 {
		s.log.Warn().
			Float64("balance", state.Balance).
			Float64("entry", pick.AvgEntry).
			Msg("insufficient balance for trade")
		return state, ErrInsufficientBalance
	}

	next := state.Clone()
	next.Trades = append(next.Trades, contracts.Trade{
		ID:          s.newID(),
		DateOpened:  date,
		Ticker:      pick.Ticker,
		Direction:   pick.Direction,
		EntryPrice:  pick.AvgEntry,
		Shares:      shares,
		Forecasters: append([]string(nil), pick.Forecasters...),
		Confidence:  pick.AvgConfidence,
		Status:      contracts.TradeOpen,
	})

	s.log.Info().
		Str("ticker", pick.Ticker).
		Str("direction", string(pick.Direction)).
		Int64("shares", shares).
		Float64("entry", pick.AvgEntry).
		Msg("opened trade")
	return next, nil
}

// Close settles the open position at closingPrice and books the P&L.
// 잔고가 변하는 유일한 지점
func (s *Simulator) Close(state contracts.SimulatorState, closingPrice float64, date string) (contracts.SimulatorState, error) {
	i := state.OpenTrade()
	if i < 0 {
		s.log.Warn().Msg("no open trade to close")
		return state, ErrNoOpenTrade
	}
	if closingPrice <= 0 {
		s.log.Warn().Str("ticker", state.Trades[i].Ticker).Float64("close", closingPrice).Msg("invalid closing price")
		return state, ErrInvalidExit
	}

	next := state.Clone()
	t := &next.Trades[i]

	entry := decimal.NewFromFloat(t.EntryPrice)
	exit := decimal.NewFromFloat(closingPrice)
	shares := decimal.NewFromInt(t.Shares)

	move := exit.Sub(entry)
	if t.Direction == contracts.DirectionDown {
		move = entry.Sub(exit)
	}
	pnl := move.Mul(shares).Round(2)

	pnlPct := decimal.Zero
	if cost := entry.Mul(shares); !cost.IsZero() {
		pnlPct = pnl.Div(cost).Mul(decimal.NewFromInt(100)).Round(2)
	}

	t.ExitPrice = floatPtr(closingPrice)
	t.PnL = floatPtr(pnl.InexactFloat64())
	t.PnLPct = floatPtr(pnlPct.InexactFloat64())
	t.Status = contracts.TradeClosed
	t.DateClosed = date

	next.Balance = decimal.NewFromFloat(state.Balance).Add(pnl).Round(2).InexactFloat64()

	s.log.Info().
		Str("ticker", t.Ticker).
		Float64("exit", closingPrice).
		Float64("pnl", *t.PnL).
		Float64("pnl_pct", *t.PnLPct).
		Float64("balance", next.Balance).
		Msg("closed trade")
	return next, nil
}

func floatPtr(v float64) *float64 {
	return &v
}
