package contracts

import (
	"fmt"
	"time"
)

// DateLayout 문서 키와 날짜 필드에 쓰는 형식
const DateLayout = "2006-01-02"

// FormatDate renders a date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// =============================================================================
// Prediction
// =============================================================================

// Direction 예측 방향
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid reports whether d is up or down
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// Timeframe 예측 만기
type Timeframe string

const (
	TimeframeEndOfDay   Timeframe = "end_of_day"
	TimeframeEndOfWeek  Timeframe = "end_of_week"
	TimeframeEndOfMonth Timeframe = "end_of_month"
)

// Valid reports whether t is one of the allowed timeframes
func (t Timeframe) Valid() bool {
	switch t {
	case TimeframeEndOfDay, TimeframeEndOfWeek, TimeframeEndOfMonth:
		return true
	}
	return false
}

// CategorySports marks a non-market (game outcome) prediction
const CategorySports = "sports"

// PredictionRecord 단일 예측 (배치에 속하며 생성 후 불변)
// JSON 키는 기존 공개 문서 형식을 유지한다.
type PredictionRecord struct {
	ID             string    `json:"id"`
	Ticker         string    `json:"ticker"`
	PredictionType string    `json:"prediction_type,omitempty"`
	Direction      Direction `json:"direction"`
	TargetPrice    float64   `json:"target_price"`
	EntryPrice     float64   `json:"current_price_at_prediction"`
	Timeframe      Timeframe `json:"timeframe"`
	Confidence     float64   `json:"confidence"`
	Reasoning      string    `json:"reasoning"`

	// Sports (category = "sports")
	Category        string `json:"category,omitempty"`
	Sport           string `json:"sport,omitempty"`
	Matchup         string `json:"matchup,omitempty"`
	HomeTeam        string `json:"home_team,omitempty"`
	AwayTeam        string `json:"away_team,omitempty"`
	PredictedWinner string `json:"predicted_winner,omitempty"`
}

// IsSports reports whether the record is a game-outcome prediction
func (p PredictionRecord) IsSports() bool {
	return p.Category == CategorySports
}

// ForecastBatch 한 예측자의 하루치 제출물
type ForecastBatch struct {
	ForecasterID  string             `json:"model"`
	DisplayName   string             `json:"model_display_name"`
	Date          string             `json:"date"`
	GeneratedAt   string             `json:"generated_at"`
	MarketContext string             `json:"market_context"`
	Predictions   []PredictionRecord `json:"predictions"`
}

// =============================================================================
// Scoring
// =============================================================================

// ScoreStatus 채점 상태
type ScoreStatus string

const (
	ScoreResolved   ScoreStatus = "resolved"
	ScoreUnresolved ScoreStatus = "unresolved"
)

// ScoreResult 예측 하나의 채점 결과 (append-only)
// 파생 필드는 unresolved 일 때 null 이다.
type ScoreResult struct {
	PredictionID       string      `json:"prediction_id"`
	ForecasterID       string      `json:"model"`
	DisplayName        string      `json:"model_display_name"`
	Ticker             string      `json:"ticker"`
	PredictedDirection Direction   `json:"predicted_direction"`
	PredictedTarget    float64     `json:"predicted_target"`
	ActualClose        *float64    `json:"actual_close"`
	ActualDirection    *Direction  `json:"actual_direction"`
	DirectionCorrect   *bool       `json:"direction_correct"`
	TargetAccuracy     *float64    `json:"target_accuracy"`
	Confidence         float64     `json:"confidence_at_prediction"`
	Score              float64     `json:"score"`
	Status             ScoreStatus `json:"status"`

	// Sports
	Category          string `json:"category,omitempty"`
	PredictedWinner   string `json:"predicted_winner,omitempty"`
	ActualWinner      string `json:"actual_winner,omitempty"`
	PredictionCorrect *bool  `json:"prediction_correct,omitempty"`
}

// Resolved reports whether the result carries an outcome
func (r ScoreResult) Resolved() bool {
	return r.Status == ScoreResolved
}

// Correct reports the resolved outcome; false when unresolved
func (r ScoreResult) Correct() bool {
	return r.DirectionCorrect != nil && *r.DirectionCorrect
}

// ScoreDocument scores/{date}.json
type ScoreDocument struct {
	Date     string        `json:"date"`
	ScoredAt string        `json:"scored_at"`
	Results  []ScoreResult `json:"results"`
}

// ScoredIDs returns the prediction ids already present
func (d *ScoreDocument) ScoredIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(d.Results))
	for _, r := range d.Results {
		ids[r.PredictionID] = struct{}{}
	}
	return ids
}

// =============================================================================
// Leaderboard
// =============================================================================

// LeaderboardEntry 예측자별 누적 통계 (fold 로만 갱신)
type LeaderboardEntry struct {
	ForecasterID      string  `json:"model"`
	DisplayName       string  `json:"model_display_name,omitempty"`
	TotalPredictions  int     `json:"total_predictions"`
	CorrectDirections int     `json:"correct_directions"`
	DirectionAccuracy float64 `json:"direction_accuracy"`
	TotalScore        float64 `json:"total_score"`
	CurrentStreak     int     `json:"current_streak"`
	BestStreak        int     `json:"best_streak"`
	WorstStreak       int     `json:"worst_streak"`
}

// Leaderboard leaderboard.json
//
// Folded maps a score date to how many of that date's results (a prefix of
// the append-only ScoreDocument.Results) are already in Models. 같은 문서
// 쓰기로 저장되므로 fold 와 워터마크가 어긋나지 않는다.
type Leaderboard struct {
	LastUpdated string             `json:"last_updated"`
	Models      []LeaderboardEntry `json:"models"`
	Folded      map[string]int     `json:"folded,omitempty"`
}

// FoldedThrough returns how many of day's score results are already folded
func (lb Leaderboard) FoldedThrough(day string) int {
	return lb.Folded[day]
}

// =============================================================================
// Consensus
// =============================================================================

// WinnerPick 하루의 컨센서스 픽
type WinnerPick struct {
	Date            string    `json:"date"`
	Ticker          string    `json:"ticker"`
	Direction       Direction `json:"direction"`
	AvgConfidence   float64   `json:"avg_confidence"`
	AvgTarget       float64   `json:"avg_target"`
	AvgEntry        float64   `json:"avg_entry"`
	ExpectedMovePct float64   `json:"expected_move_pct"`
	Score           float64   `json:"score"`
	Forecasters     []string  `json:"models"`
	ModelCount      int       `json:"model_count"`
	HighConviction  bool      `json:"high_conviction"`
}

// WinnerDocument winner-today.json (winner 는 null 가능)
type WinnerDocument struct {
	Date   string      `json:"date"`
	Winner *WinnerPick `json:"winner"`
}

// =============================================================================
// Paper trading
// =============================================================================

// TradeStatus 포지션 상태 (OPEN -> CLOSED)
type TradeStatus string

const (
	TradeOpen   TradeStatus = "OPEN"
	TradeClosed TradeStatus = "CLOSED"
)

// Trade 모의 포지션 하나
type Trade struct {
	ID          string      `json:"id,omitempty"`
	DateOpened  string      `json:"date"`
	DateClosed  string      `json:"date_closed,omitempty"`
	Ticker      string      `json:"ticker"`
	Direction   Direction   `json:"direction"`
	EntryPrice  float64     `json:"entry_price"`
	ExitPrice   *float64    `json:"exit_price"`
	Shares      int64       `json:"shares"`
	PnL         *float64    `json:"pnl"`
	PnLPct      *float64    `json:"pnl_pct"`
	Forecasters []string    `json:"models"`
	Confidence  float64     `json:"confidence"`
	Status      TradeStatus `json:"status"`
}

// SimulatorState simulator.json
// 불변식: OPEN 상태 Trade 는 최대 1개
type SimulatorState struct {
	Balance         float64 `json:"balance"`
	StartingBalance float64 `json:"starting_balance"`
	Trades          []Trade `json:"trades"`
}

// OpenTrade returns the index of the OPEN trade, or -1
func (s *SimulatorState) OpenTrade() int {
	for i := range s.Trades {
		if s.Trades[i].Status == TradeOpen {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so state transitions never alias the input
func (s SimulatorState) Clone() SimulatorState {
	out := s
	out.Trades = make([]Trade, len(s.Trades))
	for i, t := range s.Trades {
		t.Forecasters = append([]string(nil), t.Forecasters...)
		t.ExitPrice = clonePtr(t.ExitPrice)
		t.PnL = clonePtr(t.PnL)
		t.PnLPct = clonePtr(t.PnLPct)
		out.Trades[i] = t
	}
	return out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
