package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/predictarena/internal/tournamentconfig"
)

// checkCmd verifies configuration and connectivity
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "설정/연결 점검",
	Long: `설정과 외부 연결을 점검합니다.

이 명령어는:
- 환경변수 / tournament YAML 로드 및 검증
- 저장소 연결 (postgres 인 경우 Health Check)
- Redis Ping (REDIS_ENABLED=true 인 경우)

Example:
  go run ./cmd/arena check
  go run ./cmd/arena check --tournament configs/tournament.yaml`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	PrintHeader("PredictArena Check", "")

	// 1. Config + tournament
	a, err := bootstrap(cmd.Context())
	if err != nil {
		PrintError(err.Error())
		return err
	}
	defer a.Close()

	hash, err := tournamentconfig.Hash(a.tournament)
	if err != nil {
		return fmt.Errorf("hash tournament config: %w", err)
	}
	PrintSuccess(fmt.Sprintf("Config loaded (ENV: %s)", a.cfg.Env))
	PrintKeyValue("Tournament", a.tournament.Meta.TournamentID, 12)
	PrintKeyValue("Timezone", a.tournament.Meta.Timezone, 12)
	PrintKeyValue("Forecasters", fmt.Sprintf("%d enabled", len(a.tournament.EnabledForecasters())), 12)
	PrintKeyValue("Config hash", hash[:12], 12)

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	// 2. Store
	switch {
	case a.db != nil:
		PrintKeyValue("Database", maskPassword(a.cfg.Database.URL), 12)
		status := a.db.HealthCheck(ctx)
		if !status.Healthy {
			PrintError("Database unhealthy: " + status.Error)
			return fmt.Errorf("database health check failed: %s", status.Error)
		}
		PrintSuccess(fmt.Sprintf("Database healthy (%v, %d/%d idle)", status.ResponseTime, status.IdleConns, status.TotalConns))
	default:
		PrintSuccess("File store at " + a.cfg.DataDir)
	}
	if a.cfg.PublicDir != "" {
		PrintKeyValue("Mirror", a.cfg.PublicDir, 12)
	}

	// 3. Redis
	if a.redis.Enabled() {
		if err := a.redis.Redis().Ping(ctx).Err(); err != nil {
			PrintError("Redis ping failed: " + err.Error())
			return fmt.Errorf("redis ping: %w", err)
		}
		PrintSuccess("Redis ping successful")
	} else {
		PrintInfo("Redis disabled (in-process locks, no shared cache)")
	}

	if a.cfg.Odds.APIKey == "" {
		PrintWarning("ODDS_API_KEY not set: sports predictions stay pending")
	}

	PrintSuccess("All checks passed!")
	return nil
}

// maskPassword hides the password in a database URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
