package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/predictarena/internal/contracts"
)

// winnerCmd re-runs consensus selection without ingesting or trading
var winnerCmd = &cobra.Command{
	Use:   "winner",
	Short: "컨센서스 Winner 선택 (저장된 배치 기준)",
	Long: `저장된 예측 배치로 컨센서스 Winner 를 다시 계산하여 winner-today.json 을 갱신합니다.
포지션은 열지 않습니다 (trade open 사용).

Example:
  go run ./cmd/arena winner --date 2025-06-02`,
	RunE: runWinner,
}

func init() {
	rootCmd.AddCommand(winnerCmd)
}

func runWinner(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	date, _, err := resolveDate(a.calendar)
	if err != nil {
		return err
	}

	pick, err := a.runner.SelectWinner(ctx, date)
	if err != nil {
		return err
	}
	if jsonOut {
		return PrintJSON(contracts.WinnerDocument{Date: contracts.FormatDate(date), Winner: pick})
	}

	PrintHeader("Consensus winner", contracts.FormatDate(date))
	PrintWinner(pick)
	return nil
}
