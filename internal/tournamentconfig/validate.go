package tournamentconfig

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidationError 설정 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.TournamentID == "" {
		return ValidationError{"meta.tournament_id", "required"}
	}
	if _, err := time.LoadLocation(cfg.Meta.Timezone); err != nil {
		return ValidationError{"meta.timezone", err.Error()}
	}

	// === Forecasters ===
	if len(cfg.EnabledForecasters()) == 0 {
		return ValidationError{"forecasters", "at least one enabled forecaster required"}
	}
	seen := make(map[string]bool)
	for i, f := range cfg.Forecasters {
		field := fmt.Sprintf("forecasters[%d]", i)
		if f.ID == "" {
			return ValidationError{field + ".id", "required"}
		}
		if seen[f.ID] {
			return ValidationError{field + ".id", fmt.Sprintf("duplicate id %q", f.ID)}
		}
		seen[f.ID] = true

		switch f.Source {
		case SourceFile:
		case SourceHTTP:
			if f.Endpoint == "" {
				return ValidationError{field + ".endpoint", "required for http source"}
			}
		default:
			return ValidationError{field + ".source", "must be one of: file, http"}
		}
	}

	// === Validation ===
	v := cfg.Validation
	if len(v.MajorIndices) == 0 {
		return ValidationError{"validation.major_indices", "required"}
	}
	if v.MinRecords < 1 || v.MaxRecords < v.MinRecords {
		return ValidationError{"validation.min_records", "must satisfy 1 <= min_records <= max_records"}
	}
	if v.MinConfidence < 0 || v.MaxConfidence > 1 || v.MinConfidence > v.MaxConfidence {
		return ValidationError{"validation.min_confidence", "must satisfy 0 <= min <= max <= 1"}
	}

	// === Scoring ===
	if cfg.Scoring.TargetBonus < 0 {
		return ValidationError{"scoring.target_bonus", "must be >= 0"}
	}
	if cfg.Scoring.TargetBonusAccuracy <= 0 || cfg.Scoring.TargetBonusAccuracy > 1 {
		return ValidationError{"scoring.target_bonus_accuracy", "must be in (0, 1]"}
	}

	// === Consensus ===
	if cfg.Consensus.Quorum < 1 {
		return ValidationError{"consensus.quorum", "must be >= 1"}
	}
	if cfg.Consensus.HighConviction <= 0 || cfg.Consensus.HighConviction > 1 {
		return ValidationError{"consensus.high_conviction", "must be in (0, 1]"}
	}

	// === Simulator ===
	if cfg.Simulator.StartingBalance <= 0 {
		return ValidationError{"simulator.starting_balance", "must be > 0"}
	}

	// === Calendar ===
	for i, h := range cfg.Calendar.Holidays {
		if _, err := time.Parse("2006-01-02", h); err != nil {
			return ValidationError{fmt.Sprintf("calendar.holidays[%d]", i), "must be YYYY-MM-DD"}
		}
	}

	// === Schedule ===
	if _, err := cronParser.Parse(cfg.Schedule.Morning); err != nil {
		return ValidationError{"schedule.morning", err.Error()}
	}
	if _, err := cronParser.Parse(cfg.Schedule.Evening); err != nil {
		return ValidationError{"schedule.evening", err.Error()}
	}

	return nil
}
