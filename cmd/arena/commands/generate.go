package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/predictarena/internal/contracts"
)

// generateCmd represents the generate command (morning pass)
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "아침 패스: 예측 수집 -> Winner 선택 -> 포지션 진입",
	Long: `예측자별 배치를 수집/검증하여 저장하고, 컨센서스 Winner 를 골라
모의 계좌에 포지션을 엽니다.

이미 저장된 배치는 다시 생성하지 않습니다 (재실행 안전).
휴장일에는 --force 없이 실행되지 않습니다.

Example:
  go run ./cmd/arena generate
  go run ./cmd/arena generate --date 2025-06-02 --force`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	date, open, err := resolveDate(a.calendar)
	if err != nil {
		return err
	}
	day := contracts.FormatDate(date)
	if !open {
		PrintWarning("Market closed on " + day + " (use --force to run anyway)")
		return nil
	}

	res, err := a.runner.Morning(ctx, date)
	if jsonOut && res != nil {
		if perr := PrintJSON(res); perr != nil {
			return perr
		}
		return err
	}

	PrintHeader("Morning pass", day)
	if res != nil {
		fmt.Println(IngestTable(res.Ingest))
	}
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintWinner(res.Winner)
	PrintTrade("Opened:", res.Opened)
	PrintSuccess(fmt.Sprintf("%d batch(es) stored", res.Ingest.Saved()))
	return nil
}
