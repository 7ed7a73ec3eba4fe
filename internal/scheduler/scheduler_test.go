package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/predictarena/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failN    int32
	calls    int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }
func (j *countingJob) Run(context.Context) error {
	n := atomic.AddInt32(&j.calls, 1)
	if n <= atomic.LoadInt32(&j.failN) {
		return errors.New("transient")
	}
	return nil
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(&countingJob{name: "b", schedule: "0 30 8 * * 1-5"}))
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}))
	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}), "duplicate name")
	assert.Error(t, s.AddJob(&countingJob{name: "c", schedule: "not a cron"}))

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())

	require.NoError(t, s.RemoveJob("a"))
	assert.Error(t, s.RemoveJob("a"))
	assert.Equal(t, []string{"b"}, s.GetAllJobs())
}

func TestRunJob_RetriesThenSucceeds(t *testing.T) {
	s := New(logger.Nop(), WithRetry(3, 0))
	job := &countingJob{name: "flaky", schedule: "@daily", failN: 2}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("flaky"))
	assert.Eventually(t, func() bool {
		h, err := s.GetJobHistory("flaky")
		return err == nil && len(h.Runs) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, int32(3), atomic.LoadInt32(&job.calls))

	h, err := s.GetJobHistory("flaky")
	require.NoError(t, err)
	assert.Equal(t, 3, h.Runs[0].Attempts)

	stats := s.GetJobStats()["flaky"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.NotNil(t, stats.LastSuccess)

	assert.Error(t, s.RunJob("missing"))
}

func TestRunJob_FailsAfterRetries(t *testing.T) {
	s := New(logger.Nop(), WithRetry(1, 0))
	job := &countingJob{name: "broken", schedule: "@daily", failN: 100}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("broken"))
	assert.Eventually(t, func() bool {
		h, _ := s.GetJobHistory("broken")
		return len(h.Runs) == 1
	}, time.Second, 5*time.Millisecond)

	h, err := s.GetJobHistory("broken")
	require.NoError(t, err)
	assert.False(t, h.Runs[0].Success)
	assert.Equal(t, "transient", h.Runs[0].Error)
	assert.Equal(t, 2, h.Runs[0].Attempts)
	assert.Equal(t, int32(2), atomic.LoadInt32(&job.calls))
	assert.Equal(t, 0.0, h.SuccessRate())

	_, err = s.GetJobHistory("missing")
	assert.Error(t, err)
}

func TestNextRun(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	s := New(logger.Nop(), WithLocation(loc))
	require.NoError(t, s.AddJob(&countingJob{name: "morning", schedule: "0 30 8 * * 1-5"}))

	s.Start()
	defer s.Stop()

	next, ok := s.NextRun("morning")
	require.True(t, ok)
	next = next.In(loc)
	assert.Equal(t, 8, next.Hour())
	assert.Equal(t, 30, next.Minute())
	assert.NotEqual(t, time.Saturday, next.Weekday())
	assert.NotEqual(t, time.Sunday, next.Weekday())

	_, ok = s.NextRun("missing")
	assert.False(t, ok)
}

func TestRunHistory(t *testing.T) {
	h := &RunHistory{}
	_, ok := h.Last()
	assert.False(t, ok)
	assert.Equal(t, 0.0, h.SuccessRate())

	base := time.Date(2025, 3, 14, 8, 30, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		h.record(RunRecord{Started: base.Add(time.Duration(i) * time.Hour), Success: i%2 == 0})
	}
	require.Len(t, h.Runs, historyLimit)
	assert.Equal(t, base.Add(20*time.Hour), h.Runs[0].Started, "oldest runs are dropped first")
	assert.Equal(t, 50, h.Failures())
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)

	last, ok := h.Last()
	require.True(t, ok)
	assert.False(t, last.Success)

	lastOK, found := h.LastOutcome(true)
	require.True(t, found)
	assert.Equal(t, base.Add(118*time.Hour), lastOK.Started)

	snap := h.snapshot()
	h.record(RunRecord{Success: true})
	assert.Len(t, snap.Runs, historyLimit)
	assert.Equal(t, last, snap.Runs[len(snap.Runs)-1], "snapshots do not see later runs")
}
