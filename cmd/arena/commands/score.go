package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/predictarena/internal/contracts"
)

// closesFile is a JSON {"TICKER": close} map consulted before the live oracle
var closesFile string

// scoreCmd represents the score command (evening pass)
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "저녁 패스: 채점 -> 리더보드 갱신 -> 포지션 청산",
	Long: `해당 날짜의 end_of_day 예측을 종가와 비교해 채점하고,
리더보드에 누적한 뒤 열린 포지션을 종가로 청산합니다.

이미 채점된 예측은 다시 채점하지 않습니다 (재실행 안전).
--closes 로 종가 파일을 주면 라이브 oracle 보다 먼저 사용합니다.

Example:
  go run ./cmd/arena score
  go run ./cmd/arena score --date 2025-06-02 --closes closes.json`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&closesFile, "closes", "", "JSON file of closing prices {\"TICKER\": price}")
}

func runScore(cmd *cobra.Command, args []string) error {
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

	res, err := a.runner.Evening(ctx, date)
	if jsonOut && res != nil {
		if perr := PrintJSON(res); perr != nil {
			return perr
		}
		return err
	}
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintHeader("Evening pass", day)
	PrintKeyValue("New results", fmt.Sprintf("%d", res.Score.New), 12)
	PrintKeyValue("Resolved", fmt.Sprintf("%d", res.Score.Resolved), 12)
	PrintKeyValue("Unresolved", fmt.Sprintf("%d", res.Score.Unresolved), 12)
	PrintKeyValue("Total", fmt.Sprintf("%d", res.Score.Total), 12)
	if res.Score.Unresolved > 0 {
		PrintWarning(fmt.Sprintf("%d prediction(s) unresolved (no closing price or game pending)", res.Score.Unresolved))
	}
	PrintTrade("Closed:", res.Closed)

	lb, err := loadLeaderboard(ctx, a)
	if err != nil {
		return err
	}
	fmt.Println(LeaderboardTable(lb))
	PrintSuccess("Scoring completed")
	return nil
}
