package tournamentconfig

// Config 토너먼트 설정 (YAML SSOT)
// 채점/컨센서스/시뮬레이터 상수는 모두 여기서만 정의한다.
type Config struct {
	Meta        MetaConfig         `yaml:"meta" json:"meta"`
	Forecasters []ForecasterConfig `yaml:"forecasters" json:"forecasters"`
	Validation  ValidationConfig   `yaml:"validation" json:"validation"`
	Scoring     ScoringConfig      `yaml:"scoring" json:"scoring"`
	Consensus   ConsensusConfig    `yaml:"consensus" json:"consensus"`
	Simulator   SimulatorConfig    `yaml:"simulator" json:"simulator"`
	Calendar    CalendarConfig     `yaml:"calendar" json:"calendar"`
	Schedule    ScheduleConfig     `yaml:"schedule" json:"schedule"`
}

// MetaConfig 토너먼트 식별 정보
type MetaConfig struct {
	TournamentID string `yaml:"tournament_id" json:"tournament_id"`
	Timezone     string `yaml:"timezone" json:"timezone"` // IANA, e.g. America/New_York
}

// Producer source kinds
const (
	SourceFile = "file" // {inbox}/{date}/{id}.json 또는 .txt
	SourceHTTP = "http" // POST {endpoint} {"date": ...}
)

// ForecasterConfig 예측자 한 명
type ForecasterConfig struct {
	ID          string `yaml:"id" json:"id"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	Source      string `yaml:"source" json:"source"`
	Inbox       string `yaml:"inbox,omitempty" json:"inbox,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	Disabled    bool   `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// ValidationConfig 배치 검증 규칙
type ValidationConfig struct {
	MajorIndices  []string `yaml:"major_indices" json:"major_indices"`
	MinRecords    int      `yaml:"min_records" json:"min_records"`
	MaxRecords    int      `yaml:"max_records" json:"max_records"`
	MinConfidence float64  `yaml:"min_confidence" json:"min_confidence"`
	MaxConfidence float64  `yaml:"max_confidence" json:"max_confidence"`
}

// ScoringConfig 채점 상수
type ScoringConfig struct {
	TargetBonus         float64 `yaml:"target_bonus" json:"target_bonus"`
	TargetBonusAccuracy float64 `yaml:"target_bonus_accuracy" json:"target_bonus_accuracy"`
}

// ConsensusConfig Winner 선택 규칙
type ConsensusConfig struct {
	ExcludedTickers    []string `yaml:"excluded_tickers" json:"excluded_tickers"`
	ExcludedSuffixes   []string `yaml:"excluded_suffixes" json:"excluded_suffixes"`
	ExcludedCategories []string `yaml:"excluded_categories" json:"excluded_categories"`
	Quorum             int      `yaml:"quorum" json:"quorum"`
	HighConviction     float64  `yaml:"high_conviction" json:"high_conviction"`
}

// SimulatorConfig 모의 계좌
type SimulatorConfig struct {
	StartingBalance float64 `yaml:"starting_balance" json:"starting_balance"`
}

// CalendarConfig 휴장일 (YYYY-MM-DD)
type CalendarConfig struct {
	Holidays []string `yaml:"holidays" json:"holidays"`
}

// ScheduleConfig cron spec (초 포함 6필드)
type ScheduleConfig struct {
	Morning string `yaml:"morning" json:"morning"`
	Evening string `yaml:"evening" json:"evening"`
}

// EnabledForecasters returns the roster minus disabled entries, in file order
func (c *Config) EnabledForecasters() []ForecasterConfig {
	out := make([]ForecasterConfig, 0, len(c.Forecasters))
	for _, f := range c.Forecasters {
		if !f.Disabled {
			out = append(out, f)
		}
	}
	return out
}

// Default returns the reference tournament
func Default() *Config {
	return &Config{
		Meta: MetaConfig{
			TournamentID: "daily_market_arena",
			Timezone:     "America/New_York",
		},
		Forecasters: []ForecasterConfig{
			{ID: "claude", DisplayName: "Claude", Source: SourceFile},
			{ID: "gpt", DisplayName: "GPT", Source: SourceFile},
			{ID: "gemini", DisplayName: "Gemini", Source: SourceFile},
			{ID: "grok", DisplayName: "Grok", Source: SourceFile},
			{ID: "perplexity", DisplayName: "Perplexity", Source: SourceFile},
		},
		Validation: ValidationConfig{
			MajorIndices:  []string{"SPY", "QQQ", "DIA"},
			MinRecords:    3,
			MaxRecords:    5,
			MinConfidence: 0.50,
			MaxConfidence: 0.95,
		},
		Scoring: ScoringConfig{
			TargetBonus:         0.5,
			TargetBonusAccuracy: 0.99,
		},
		Consensus: ConsensusConfig{
			ExcludedTickers:    []string{"SPY", "QQQ", "DIA", "VIX", "IWM"},
			ExcludedSuffixes:   []string{"-USD"},
			ExcludedCategories: []string{"sports"},
			Quorum:             4,
			HighConviction:     0.85,
		},
		Simulator: SimulatorConfig{
			StartingBalance: 25000,
		},
		Calendar: CalendarConfig{
			Holidays: []string{
				// 2025
				"2025-01-01", "2025-01-20", "2025-02-17", "2025-04-18", "2025-05-26",
				"2025-06-19", "2025-07-04", "2025-09-01", "2025-11-27", "2025-11-28",
				"2025-12-25",
				// 2026
				"2026-01-01", "2026-01-19", "2026-02-16", "2026-04-03", "2026-05-25",
				"2026-06-19", "2026-07-03", "2026-09-07", "2026-11-26", "2026-12-25",
			},
		},
		Schedule: ScheduleConfig{
			Morning: "0 30 8 * * 1-5",
			Evening: "0 30 17 * * 1-5",
		},
	}
}
