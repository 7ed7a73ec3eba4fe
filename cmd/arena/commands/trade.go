package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/store"
)

// tradeCmd represents the trade command
var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "모의 계좌 포지션 관리",
	Long: `모의 계좌 포지션을 수동으로 열거나 닫습니다.

Subcommands:
  open   - 저장된 Winner 로 포지션 진입
  close  - 열린 포지션을 종가로 청산

Example:
  go run ./cmd/arena trade open --date 2025-06-02
  go run ./cmd/arena trade close --date 2025-06-02 --closes closes.json`,
}

var (
	tradeOpenCmd = &cobra.Command{
		Use:   "open",
		Short: "저장된 Winner 로 포지션 진입",
		RunE:  runTradeOpen,
	}

	tradeCloseCmd = &cobra.Command{
		Use:   "close",
		Short: "열린 포지션을 종가로 청산",
		RunE:  runTradeClose,
	}
)

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeOpenCmd)
	tradeCmd.AddCommand(tradeCloseCmd)

	tradeCloseCmd.Flags().StringVar(&closesFile, "closes", "", "JSON file of closing prices {\"TICKER\": price}")
}

func runTradeOpen(cmd *cobra.Command, args []string) error {
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
	day := contracts.FormatDate(date)

	doc, err := store.LoadWinner(ctx, a.store)
	if err != nil {
		return err
	}
	if doc == nil || doc.Winner == nil || doc.Date != day {
		PrintWarning("No winner stored for " + day + " (run generate or winner first)")
		return nil
	}

	opened, err := a.runner.OpenTrade(ctx, date, *doc.Winner)
	if err != nil {
		return err
	}
	if jsonOut {
		return PrintJSON(opened)
	}
	if opened == nil {
		PrintWarning("No trade opened (a position is already open or already traded today)")
		return nil
	}
	PrintTrade("Opened:", opened)
	return nil
}

func runTradeClose(cmd *cobra.Command, args []string) error {
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

	closed, err := a.runner.CloseTrade(ctx, date)
	if err != nil {
		return err
	}
	if jsonOut {
		return PrintJSON(closed)
	}
	if closed == nil {
		PrintWarning(fmt.Sprintf("Nothing closed on %s (no open position or no closing price)", contracts.FormatDate(date)))
		return nil
	}
	PrintTrade("Closed:", closed)
	return nil
}
