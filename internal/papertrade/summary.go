package papertrade

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/predictarena/internal/contracts"
)

// Summary 계좌 요약 (화면/API 표시용)
type Summary struct {
	Balance     float64          `json:"balance"`
	TotalPnL    float64          `json:"total_pnl"`
	TotalPnLPct float64          `json:"total_pnl_pct"`
	Closed      int              `json:"closed_trades"`
	Wins        int              `json:"wins"`
	WinRate     float64          `json:"win_rate"`
	Open        *contracts.Trade `json:"open_trade,omitempty"`
}

// Summarize derives display figures from the persisted state
func Summarize(state contracts.SimulatorState) Summary {
	start := decimal.NewFromFloat(state.StartingBalance)
	total := decimal.NewFromFloat(state.Balance).Sub(start)

	sum := Summary{
		Balance:  state.Balance,
		TotalPnL: total.Round(2).InexactFloat64(),
	}
	if !start.IsZero() {
		sum.TotalPnLPct = total.Div(start).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	for i, t := range state.Trades {
		switch t.Status {
		case contracts.TradeClosed:
			sum.Closed++
			if t.PnL != nil && *t.PnL > 0 {
				sum.Wins++
			}
		case contracts.TradeOpen:
			open := state.Trades[i]
			sum.Open = &open
		}
	}
	if sum.Closed > 0 {
		sum.WinRate = decimal.NewFromInt(int64(sum.Wins)).
			Div(decimal.NewFromInt(int64(sum.Closed))).
			Round(4).InexactFloat64()
	}
	return sum
}
