package scheduler

import (
	"context"
	"time"
)

// Job is one cron-driven tournament pass (morning, evening, cleanup).
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string
	Run(ctx context.Context) error
	// Schedule is a 6-field cron spec, seconds first ("0 30 8 * * 1-5")
	Schedule() string
}

// historyLimit 작업별로 보관하는 최근 실행 수
const historyLimit = 100

// RunRecord is one execution of a job, retries folded in
type RunRecord struct {
	Job      string        `json:"job"`
	Started  time.Time     `json:"started"`
	Finished time.Time     `json:"finished"`
	Duration time.Duration `json:"duration"`
	Attempts int           `json:"attempts"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
}

// RunHistory holds a job's latest runs, oldest first.
// Scheduler.mu 아래에서만 변경되고, 밖으로는 복사본만 나간다.
type RunHistory struct {
	Runs []RunRecord `json:"runs"`
}

func (h *RunHistory) record(r RunRecord) {
	h.Runs = append(h.Runs, r)
	if over := len(h.Runs) - historyLimit; over > 0 {
		h.Runs = append(h.Runs[:0:0], h.Runs[over:]...)
	}
}

func (h *RunHistory) snapshot() RunHistory {
	return RunHistory{Runs: append([]RunRecord(nil), h.Runs...)}
}

// Last returns the most recent run
func (h RunHistory) Last() (RunRecord, bool) {
	if len(h.Runs) == 0 {
		return RunRecord{}, false
	}
	return h.Runs[len(h.Runs)-1], true
}

// LastOutcome returns the most recent run that succeeded (or failed)
func (h RunHistory) LastOutcome(success bool) (RunRecord, bool) {
	for i := len(h.Runs) - 1; i >= 0; i-- {
		if h.Runs[i].Success == success {
			return h.Runs[i], true
		}
	}
	return RunRecord{}, false
}

// Failures counts failed runs still in the window
func (h RunHistory) Failures() int {
	n := 0
	for _, r := range h.Runs {
		if !r.Success {
			n++
		}
	}
	return n
}

// SuccessRate is the share of successful runs in the window (0 when empty)
func (h RunHistory) SuccessRate() float64 {
	if len(h.Runs) == 0 {
		return 0
	}
	return float64(len(h.Runs)-h.Failures()) / float64(len(h.Runs))
}
