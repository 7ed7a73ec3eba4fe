package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/predictarena/internal/scheduler"
	"github.com/wonny/predictarena/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `아침/저녁 패스를 cron 으로 실행하는 스케줄러를 관리합니다.

Subcommands:
  start   - 스케줄러 시작 (Ctrl+C 로 종료)
  list    - 등록된 작업과 다음 실행 시각
  run     - 특정 작업 즉시 실행 (완료까지 대기)

Example:
  go run ./cmd/arena scheduler start
  go run ./cmd/arena scheduler list
  go run ./cmd/arena scheduler run morning_pass`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업 (거래소 시간대 기준, tournament YAML 의 schedule 섹션):
- morning_pass: 평일 08:30 (예측 수집 -> Winner -> 진입)
- evening_pass: 평일 17:30 (채점 -> 리더보드 -> 청산)

휴장일에는 작업이 실행되어도 아무것도 하지 않습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// newScheduler registers the tournament passes on a, evaluated in exchange time
func newScheduler(a *app) (*scheduler.Scheduler, []scheduler.Job, error) {
	sched := scheduler.New(a.log,
		scheduler.WithLocation(a.calendar.Location()),
		scheduler.WithRetry(2, 5*time.Minute),
	)

	registered := []scheduler.Job{
		jobs.NewMorningJob(a.runner, a.calendar, a.tournament.Schedule.Morning, a.log),
		jobs.NewEveningJob(a.runner, a.calendar, a.tournament.Schedule.Evening, a.log),
	}
	for _, job := range registered {
		if err := sched.AddJob(job); err != nil {
			return nil, nil, err
		}
	}
	return sched, registered, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, _, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	PrintHeader("PredictArena Scheduler", "")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	PrintSuccess("Scheduler stopped")
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, _, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// cron 은 Start 이후에만 다음 실행 시각을 계산한다
	sched.Start()
	defer sched.Stop()

	fmt.Println("Registered jobs:")
	printJobs(sched)
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	stats := sched.GetJobStats()
	for _, name := range sched.GetAllJobs() {
		next := "-"
		if t, ok := sched.NextRun(name); ok && !t.IsZero() {
			next = t.Format("2006-01-02 15:04:05 MST")
		}
		fmt.Printf("  - %-14s %-18s next: %s\n", name, stats[name].Schedule, next)
	}
}

func runJob(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	jobName := args[0]

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	_, registered, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	for _, job := range registered {
		if job.Name() != jobName {
			continue
		}
		fmt.Printf("Running job: %s\n", jobName)
		start := time.Now()
		if err := job.Run(ctx); err != nil {
			PrintError(err.Error())
			return fmt.Errorf("run job: %w", err)
		}
		PrintSuccess(fmt.Sprintf("Job %s completed in %.2fs", jobName, time.Since(start).Seconds()))
		return nil
	}
	return fmt.Errorf("job %s not found", jobName)
}
