package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/forecast"
	"github.com/wonny/predictarena/internal/papertrade"
	"github.com/wonny/predictarena/internal/store"
)

var showTrades bool

// leaderboardCmd prints the standings and the simulator account
var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "리더보드 / 모의 계좌 조회",
	Long: `누적 리더보드(총점 내림차순)와 모의 계좌 요약을 출력합니다.

Example:
  go run ./cmd/arena leaderboard
  go run ./cmd/arena leaderboard --trades
  go run ./cmd/arena leaderboard --json`,
	RunE: runLeaderboard,
}

func init() {
	rootCmd.AddCommand(leaderboardCmd)

	leaderboardCmd.Flags().BoolVar(&showTrades, "trades", false, "include trade history")
}

// standings is the --json shape of the leaderboard command
type standings struct {
	LastUpdated string                       `json:"last_updated"`
	Models      []contracts.LeaderboardEntry `json:"models"`
	Simulator   papertrade.Summary           `json:"simulator"`
	Trades      []contracts.Trade            `json:"trades,omitempty"`
}

func loadLeaderboard(ctx context.Context, a *app) (contracts.Leaderboard, error) {
	lb, err := store.LoadLeaderboard(ctx, a.store)
	if err != nil {
		return contracts.Leaderboard{}, fmt.Errorf("load leaderboard: %w", err)
	}
	return lb, nil
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	lb, err := loadLeaderboard(ctx, a)
	if err != nil {
		return err
	}
	initial := contracts.SimulatorState{
		Balance:         a.tournament.Simulator.StartingBalance,
		StartingBalance: a.tournament.Simulator.StartingBalance,
		Trades:          []contracts.Trade{},
	}
	state, err := store.LoadSimulator(ctx, a.store, initial)
	if err != nil {
		return fmt.Errorf("load simulator: %w", err)
	}

	if jsonOut {
		out := standings{
			LastUpdated: lb.LastUpdated,
			Models:      forecast.Ranked(lb),
			Simulator:   papertrade.Summarize(state),
		}
		if showTrades {
			out.Trades = state.Trades
		}
		return PrintJSON(out)
	}

	PrintHeader("Leaderboard", lb.LastUpdated)
	if len(lb.Models) == 0 {
		PrintInfo("No scored predictions yet")
	} else {
		fmt.Println(LeaderboardTable(lb))
	}

	PrintHeader("Paper account", "")
	PrintSimulator(state)
	if showTrades && len(state.Trades) > 0 {
		fmt.Println(TradesTable(state.Trades))
	}
	return nil
}
