package jobs

import (
	"context"
	"time"

	"github.com/wonny/predictarena/internal/calendar"
	"github.com/wonny/predictarena/internal/tournament"
	"github.com/wonny/predictarena/pkg/logger"
)

// Passes is the part of tournament.Runner the jobs drive
type Passes interface {
	Morning(ctx context.Context, date time.Time) (*tournament.MorningResult, error)
	Evening(ctx context.Context, date time.Time) (*tournament.EveningResult, error)
}

// marketDay resolves today's exchange date; ok=false on weekends/holidays
func marketDay(cal *calendar.Calendar, now time.Time, job string, log *logger.Logger) (time.Time, bool) {
	date := cal.Today(now)
	if !cal.IsMarketDay(date) {
		log.WithFields(map[string]interface{}{
			"job":  job,
			"date": date.Format("2006-01-02"),
		}).Info("Market closed today, skipping")
		return date, false
	}
	return date, true
}

// MorningJob ingests today's batches, selects the winner and opens a trade
// Schedule: 8:30 AM ET weekdays (before the open)
type MorningJob struct {
	runner   Passes
	calendar *calendar.Calendar
	schedule string
	now      func() time.Time
	logger   *logger.Logger
}

// NewMorningJob creates a new morning job
func NewMorningJob(runner Passes, cal *calendar.Calendar, schedule string, log *logger.Logger) *MorningJob {
	return &MorningJob{runner: runner, calendar: cal, schedule: schedule, now: time.Now, logger: log}
}

// Name returns the job name
func (j *MorningJob) Name() string {
	return "morning_pass"
}

// Schedule returns the cron schedule
func (j *MorningJob) Schedule() string {
	return j.schedule
}

// Run executes the morning pass for today's market date
func (j *MorningJob) Run(ctx context.Context) error {
	date, ok := marketDay(j.calendar, j.now(), j.Name(), j.logger)
	if !ok {
		return nil
	}

	res, err := j.runner.Morning(ctx, date)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{
		"date":  date.Format("2006-01-02"),
		"saved": res.Ingest.Saved(),
	}
	if res.Winner != nil {
		fields["winner"] = res.Winner.Ticker
	}
	j.logger.WithFields(fields).Info("Morning pass completed")
	return nil
}

// EveningJob scores today's predictions and closes the open trade
// Schedule: 5:30 PM ET weekdays (after the close)
type EveningJob struct {
	runner   Passes
	calendar *calendar.Calendar
	schedule string
	now      func() time.Time
	logger   *logger.Logger
}

// NewEveningJob creates a new evening job
func NewEveningJob(runner Passes, cal *calendar.Calendar, schedule string, log *logger.Logger) *EveningJob {
	return &EveningJob{runner: runner, calendar: cal, schedule: schedule, now: time.Now, logger: log}
}

// Name returns the job name
func (j *EveningJob) Name() string {
	return "evening_pass"
}

// Schedule returns the cron schedule
func (j *EveningJob) Schedule() string {
	return j.schedule
}

// Run executes the evening pass for today's market date
func (j *EveningJob) Run(ctx context.Context) error {
	date, ok := marketDay(j.calendar, j.now(), j.Name(), j.logger)
	if !ok {
		return nil
	}

	res, err := j.runner.Evening(ctx, date)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"date":     date.Format("2006-01-02"),
		"new":      res.Score.New,
		"resolved": res.Score.Resolved,
		"closed":   res.Closed != nil,
	}).Info("Evening pass completed")
	return nil
}
