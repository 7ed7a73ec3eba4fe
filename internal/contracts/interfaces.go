package contracts

import (
	"context"
	"time"
)

// Producer returns one forecaster's raw batch for a date
// ⭐ SSOT: 예측 생성기 인터페이스 (LLM, 파일 inbox, HTTP 등)
type Producer interface {
	ID() string
	DisplayName() string
	Generate(ctx context.Context, date time.Time) ([]byte, error)
}

// PriceOracle resolves a ticker's closing price on a date.
// ok=false 는 unresolved (재시도/백오프는 구현체 책임).
type PriceOracle interface {
	ClosingPrice(ctx context.Context, ticker string, date time.Time) (price float64, ok bool)
}

// GameQuery identifies a sports matchup
type GameQuery struct {
	Sport    string
	HomeTeam string
	AwayTeam string
	Date     time.Time
}

// DrawOutcome is returned by an EventOracle when a game ends level
const DrawOutcome = "draw"

// EventOracle resolves a non-market event.
// ok=false 는 pending (경기 미종료/데이터 없음).
type EventOracle interface {
	GameResult(ctx context.Context, q GameQuery) (winner string, ok bool)
}
