package forecast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/tournamentconfig"
)

// =============================================================================
// Batch Validator
// =============================================================================

// Violation 검증 위반 (비치명적, 경고로 기록)
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// Report 배치 검증 결과
// Batch 에는 위반이 없는 레코드만 담긴다.
type Report struct {
	Violations []Violation               `json:"violations"`
	Batch      *contracts.ForecastBatch `json:"-"`
	Submitted  int                       `json:"submitted"`
	Usable     int                       `json:"usable"`
}

// Valid reports whether the batch had no violations at all
func (r *Report) Valid() bool {
	return len(r.Violations) == 0
}

// HasUsable reports whether at least one record survived validation
func (r *Report) HasUsable() bool {
	return r.Batch != nil && len(r.Batch.Predictions) > 0
}

var requiredBatchKeys = []string{
	"date", "model", "model_display_name", "generated_at", "market_context", "predictions",
}

var requiredMarketKeys = []string{
	"id", "ticker", "prediction_type", "direction", "target_price",
	"current_price_at_prediction", "timeframe", "confidence", "reasoning",
}

var requiredSportsKeys = []string{
	"id", "sport", "home_team", "away_team", "predicted_winner",
	"timeframe", "confidence", "reasoning",
}

// Validator 신뢰할 수 없는 생성기 출력의 구조/범위 검증
// ⭐ SSOT: 배치 검증 규칙
type Validator struct {
	rules tournamentconfig.ValidationConfig
	major map[string]struct{}
	log   zerolog.Logger
}

// NewValidator 새 검증기 생성
func NewValidator(rules tournamentconfig.ValidationConfig, log zerolog.Logger) *Validator {
	major := make(map[string]struct{}, len(rules.MajorIndices))
	for _, t := range rules.MajorIndices {
		major[strings.ToUpper(t)] = struct{}{}
	}
	return &Validator{
		rules: rules,
		major: major,
		log:   log.With().Str("component", "forecast.validator").Logger(),
	}
}

// Validate decodes raw JSON and checks it. An error is returned only when
// the payload is not a JSON object at all.
func (v *Validator) Validate(raw []byte) (*Report, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("batch is not a JSON object: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("batch is not a JSON object: null")
	}
	return v.ValidateDocument(doc), nil
}

// ValidateDocument checks a decoded batch. All checks run independently.
func (v *Validator) ValidateDocument(doc map[string]interface{}) *Report {
	report := &Report{}
	add := func(field, format string, args ...interface{}) {
		report.Violations = append(report.Violations, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	for _, k := range requiredBatchKeys {
		if _, ok := doc[k]; !ok {
			add(k, "missing top-level key")
		}
	}

	batch := &contracts.ForecastBatch{
		ForecasterID:  stringField(doc, "model"),
		DisplayName:   stringField(doc, "model_display_name"),
		Date:          stringField(doc, "date"),
		GeneratedAt:   stringField(doc, "generated_at"),
		MarketContext: stringField(doc, "market_context"),
	}

	rawPreds, present := doc["predictions"]
	preds, isList := rawPreds.([]interface{})
	if present && !isList {
		add("predictions", "must be a list")
	}
	report.Submitted = len(preds)

	// === Batch-level ===
	if isList || !present {
		if len(preds) < v.rules.MinRecords {
			add("predictions", "need at least %d predictions, got %d", v.rules.MinRecords, len(preds))
		}
		if len(preds) > v.rules.MaxRecords {
			add("predictions", "too many predictions: %d (max %d)", len(preds), v.rules.MaxRecords)
		}
		if !v.hasMajorIndex(preds) {
			add("predictions", "at least one prediction must be on %s", strings.Join(v.rules.MajorIndices, ", "))
		}
	}

	// === Record-level ===
	seen := make(map[string]bool)
	for i, p := range preds {
		prefix := fmt.Sprintf("predictions[%d]", i)
		obj, ok := p.(map[string]interface{})
		if !ok {
			add(prefix, "must be an object")
			continue
		}

		rec, violations := v.validateRecord(prefix, obj)
		if rec != nil && seen[rec.ID] {
			violations = append(violations, Violation{prefix + ".id", fmt.Sprintf("duplicate id %q", rec.ID)})
		}
		report.Violations = append(report.Violations, violations...)

		if len(violations) == 0 && rec != nil {
			seen[rec.ID] = true
			batch.Predictions = append(batch.Predictions, *rec)
		}
	}

	report.Usable = len(batch.Predictions)
	report.Batch = batch
	return report
}

func (v *Validator) hasMajorIndex(preds []interface{}) bool {
	for _, p := range preds {
		obj, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		if _, ok := v.major[strings.ToUpper(stringField(obj, "ticker"))]; ok {
			return true
		}
	}
	return false
}

// validateRecord returns the typed record (nil when unusable) and its violations
func (v *Validator) validateRecord(prefix string, obj map[string]interface{}) (*contracts.PredictionRecord, []Violation) {
	var out []Violation
	add := func(field, format string, args ...interface{}) {
		out = append(out, Violation{Field: prefix + "." + field, Message: fmt.Sprintf(format, args...)})
	}

	rec := &contracts.PredictionRecord{
		ID:              stringField(obj, "id"),
		Ticker:          stringField(obj, "ticker"),
		PredictionType:  stringField(obj, "prediction_type"),
		Direction:       contracts.Direction(stringField(obj, "direction")),
		Timeframe:       contracts.Timeframe(stringField(obj, "timeframe")),
		Reasoning:       stringField(obj, "reasoning"),
		Category:        stringField(obj, "category"),
		Sport:           stringField(obj, "sport"),
		Matchup:         stringField(obj, "matchup"),
		HomeTeam:        stringField(obj, "home_team"),
		AwayTeam:        stringField(obj, "away_team"),
		PredictedWinner: stringField(obj, "predicted_winner"),
	}

	required := requiredMarketKeys
	if rec.IsSports() {
		required = requiredSportsKeys
	}
	for _, k := range required {
		if _, ok := obj[k]; !ok {
			add(k, "missing key")
		}
	}
	if _, ok := obj["id"]; ok && rec.ID == "" {
		add("id", "must be a non-empty string")
	}

	if !rec.IsSports() && !rec.Direction.Valid() {
		add("direction", "invalid direction %q", rec.Direction)
	}
	if !rec.Timeframe.Valid() {
		add("timeframe", "invalid timeframe %q", rec.Timeframe)
	}

	if raw, ok := obj["confidence"]; ok {
		conf, isNum := numberField(raw)
		switch {
		case !isNum:
			add("confidence", "must be a finite number")
		case conf < v.rules.MinConfidence || conf > v.rules.MaxConfidence:
			add("confidence", "%.2f out of range [%.2f, %.2f]", conf, v.rules.MinConfidence, v.rules.MaxConfidence)
		default:
			rec.Confidence = conf
		}
	}

	if !rec.IsSports() {
		for _, key := range []string{"target_price", "current_price_at_prediction"} {
			raw, ok := obj[key]
			if !ok {
				continue
			}
			n, isNum := numberField(raw)
			if !isNum {
				add(key, "must be a finite number")
				continue
			}
			if key == "target_price" {
				rec.TargetPrice = n
			} else {
				rec.EntryPrice = n
			}
		}
	} else if rec.Matchup == "" && rec.HomeTeam != "" {
		rec.Matchup = rec.AwayTeam + " @ " + rec.HomeTeam
	}

	if len(out) > 0 {
		return nil, out
	}
	return rec, nil
}

func stringField(obj map[string]interface{}, key string) string {
	switch v := obj[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	}
	return ""
}

// numberField accepts finite JSON numbers and numeric strings.
// "NaN", "Inf" 같은 문자열은 ParseFloat 가 통과시키므로 따로 거른다.
func numberField(raw interface{}) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch v := raw.(type) {
	case json.Number:
		f, err = v.Float64()
	case float64:
		f = v
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// LogViolations writes each violation as a warning; never fatal
func (v *Validator) LogViolations(forecaster string, r *Report) {
	for _, viol := range r.Violations {
		v.log.Warn().
			Str("forecaster", forecaster).
			Str("field", viol.Field).
			Msg(viol.Message)
	}
}
