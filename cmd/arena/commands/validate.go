package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/forecast"
	"github.com/wonny/predictarena/internal/producer"
)

var validateForecaster string

// validateCmd checks a raw batch file without storing anything
var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "예측 배치 파일 검증 (저장하지 않음)",
	Long: `생성기 출력 파일(JSON 또는 코드펜스가 섞인 텍스트)을 검증 규칙으로 확인합니다.
--forecaster 를 주면 수집 시와 동일하게 model/date 메타데이터를 덮어쓴 뒤 검증합니다.

위반이 하나라도 있으면 종료 코드 1 을 반환합니다.

Example:
  go run ./cmd/arena validate data/inbox/2025-06-02/claude.json
  go run ./cmd/arena validate out.txt --forecaster claude --date 2025-06-02`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateForecaster, "forecaster", "", "stamp model/date as this roster id before validating")
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := loadBase()
	if err != nil {
		return err
	}

	text, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read batch: %w", err)
	}
	raw, err := producer.ExtractJSON(text)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if validateForecaster != "" {
		date, _, err := resolveDate(a.calendar)
		if err != nil {
			return err
		}
		name := validateForecaster
		for _, f := range a.tournament.Forecasters {
			if f.ID == validateForecaster {
				name = f.DisplayName
			}
		}
		raw, err = producer.StampMetadata(raw, validateForecaster, name, contracts.FormatDate(date))
		if err != nil {
			return err
		}
	}

	v := forecast.NewValidator(a.tournament.Validation, a.log.Zerolog())
	report, err := v.Validate(raw)
	if err != nil {
		PrintError(err.Error())
		return err
	}
	if jsonOut {
		if err := PrintJSON(report); err != nil {
			return err
		}
	} else {
		PrintHeader("Batch validation", args[0])
		PrintKeyValue("Submitted", fmt.Sprintf("%d", report.Submitted), 10)
		PrintKeyValue("Usable", fmt.Sprintf("%d", report.Usable), 10)
		for _, viol := range report.Violations {
			PrintWarning(viol.Error())
		}
	}

	switch {
	case report.Valid():
		if !jsonOut {
			PrintSuccess("Batch is valid")
		}
		return nil
	case report.HasUsable():
		return fmt.Errorf("%d violation(s); %d usable record(s) would be stored", len(report.Violations), report.Usable)
	default:
		return fmt.Errorf("%d violation(s); batch would be discarded", len(report.Violations))
	}
}
