package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/valuescreen/pkg/logger"
)

type countingJob struct {
	name  string
	calls int32
	errs  []error // returned in order; nil after exhaustion
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return "0 0 3 * * *" }

func (j *countingJob) Run(ctx context.Context) error {
	n := atomic.AddInt32(&j.calls, 1)
	if int(n) <= len(j.errs) {
		return j.errs[n-1]
	}
	return nil
}

func newTestScheduler() *Scheduler {
	return New(logger.Nop()).WithRetry(2, time.Millisecond)
}

func TestAddJob_Duplicate(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "a"}))
	assert.Error(t, s.AddJob(&countingJob{name: "a"}))
	assert.Equal(t, []string{"a"}, s.GetAllJobs())
}

func TestAddJob_BadSchedule(t *testing.T) {
	s := newTestScheduler()
	err := s.AddJob(&badScheduleJob{})
	assert.Error(t, err)
	assert.Empty(t, s.GetAllJobs())
}

type badScheduleJob struct{ countingJob }

func (j *badScheduleJob) Name() string     { return "bad" }
func (j *badScheduleJob) Schedule() string { return "every now and then" }

func TestRunJobSync_RetriesTransient(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "flaky", errs: []error{errors.New("timeout")}}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync(context.Background(), "flaky")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	assert.EqualValues(t, 2, atomic.LoadInt32(&job.calls))
}

func TestRunJobSync_PermanentNotRetried(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "broken", errs: []error{Permanent(errors.New("schema drift"))}}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync(context.Background(), "broken")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Contains(t, result.Error, "schema drift")
}

func TestRunJobSync_GivesUp(t *testing.T) {
	s := newTestScheduler()
	boom := errors.New("down")
	job := &countingJob{name: "down", errs: []error{boom, boom, boom, boom}}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync(context.Background(), "down")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)

	history, err := s.GetJobHistory("down")
	require.NoError(t, err)
	assert.Len(t, history.Results, 1)

	stats := s.GetJobStats()["down"]
	assert.Equal(t, 1, stats.FailureCount)
	assert.NotNil(t, stats.LastFailure)
}

func TestRunJobSync_Unknown(t *testing.T) {
	_, err := newTestScheduler().RunJobSync(context.Background(), "nope")
	assert.Error(t, err)
}

func TestNextRun(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "a"}))
	s.Start()
	defer s.Stop()

	next, err := s.NextRun("a")
	require.NoError(t, err)
	assert.True(t, next.After(time.Now()))
	assert.Equal(t, 3, next.Hour())
}

func TestPermanent(t *testing.T) {
	assert.Nil(t, Permanent(nil))

	base := errors.New("bad data")
	err := Permanent(base)
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, base)
	assert.False(t, IsPermanent(base))
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.GetSuccessRate())
	assert.Empty(t, h.GetLatestResults(5))

	for i := 0; i < 105; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}
	assert.Len(t, h.Results, 100)
	assert.Len(t, h.GetLatestResults(10), 10)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 0.01)
}
