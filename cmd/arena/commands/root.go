package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/predictarena/internal/calendar"
	"github.com/wonny/predictarena/internal/contracts"
)

var (
	// Global flags
	tournamentFile string
	dateFlag       string
	force          bool
	verbose        bool
	jsonOut        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "PredictArena - 일일 예측 토너먼트",
	Long: `PredictArena Unified CLI

여러 예측자(LLM 등)의 일일 예측을 수집/검증하고,
장 마감 후 채점하여 리더보드와 모의 계좌를 갱신합니다.

Usage:
  go run ./cmd/arena [command]

Examples:
  go run ./cmd/arena generate
  go run ./cmd/arena score --date 2025-06-02 --closes closes.json
  go run ./cmd/arena leaderboard
  go run ./cmd/arena serve --with-scheduler`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl+C / SIGTERM 은 context 취소로 전달된다 (진행 중인 패스는 다음 단계 전에 중단).
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&tournamentFile, "tournament", "", "tournament YAML (default: TOURNAMENT_CONFIG or built-in)")
	rootCmd.PersistentFlags().StringVar(&dateFlag, "date", "", "target date YYYY-MM-DD (default: today in exchange time)")
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, "run even when the market is closed")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")
}

// resolveDate returns the --date value or today's exchange date.
// ok=false 이면 휴장일이며 --force 없이는 실행하지 않는다.
func resolveDate(cal *calendar.Calendar) (time.Time, bool, error) {
	date := cal.Today(time.Now())
	if dateFlag != "" {
		d, err := contracts.ParseDate(dateFlag)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid --date %q: %w", dateFlag, err)
		}
		date = d
	}
	return date, force || cal.IsMarketDay(date), nil
}
