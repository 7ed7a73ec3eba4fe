package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/predictarena/internal/api"
	"github.com/wonny/predictarena/internal/api/handlers"
	"github.com/wonny/predictarena/internal/api/stream"
)

var (
	servePort     string
	withScheduler bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 시작 (선택적으로 스케줄러 포함)",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                               - Health check
  GET  /metrics                              - Prometheus metrics
  GET  /ws                                   - 문서 갱신 스트림 (websocket)
  GET  /api/leaderboard                      - 리더보드 (순위순)
  GET  /api/winner                           - 오늘의 Winner
  GET  /api/simulator                        - 모의 계좌
  GET  /api/scores/{date}                    - 날짜별 채점 결과
  GET  /api/predictions/{date}               - 날짜별 제출 예측자
  GET  /api/predictions/{date}/{forecaster}  - 예측 배치
  POST /api/runs/morning?date=&force=        - 아침 패스 수동 실행
  POST /api/runs/evening?date=&force=        - 저녁 패스 수동 실행

Example:
  go run ./cmd/arena serve
  go run ./cmd/arena serve --port 8080 --with-scheduler`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (default: PORT)")
	serveCmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "아침/저녁 패스 스케줄러도 함께 실행")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if servePort != "" {
		a.cfg.Port = servePort
	}

	// 1. Stream hub: every stored document is pushed to websocket clients
	hub := stream.NewHub(a.log)
	a.store.OnPublish(hub.Publish)

	// 2. Handlers + router
	router := api.NewRouter(api.RouterDeps{
		Documents: handlers.NewDocumentHandler(a.store, a.tournament.Simulator.StartingBalance, a.log),
		Runs:      handlers.NewRunHandler(a.runner, a.calendar, a.log),
		Hub:       hub,
		Metrics:   a.metrics,
		DB:        a.db,
	}, a.log)
	server := api.New(a.cfg, a.log, router)

	// 3. Optional scheduler
	if withScheduler {
		sched, _, err := newScheduler(a)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	PrintSuccess(fmt.Sprintf("Server running on http://localhost:%s (scheduler: %t)", a.cfg.Port, withScheduler))
	fmt.Println("Press Ctrl+C to stop")

	if err := g.Wait(); err != nil {
		return err
	}
	a.log.Info("Server stopped")
	return nil
}
