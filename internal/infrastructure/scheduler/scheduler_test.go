package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/alem-hub/wellness-hub/pkg/timeutil"
)

type countingJob struct {
	name string
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestRegister(t *testing.T) {
	s := New(Config{})
	job := &countingJob{name: "a"}

	require.NoError(t, s.Register(job, Every(time.Minute)))
	assert.ErrorIs(t, s.Register(job, Every(time.Minute)), ErrJobAlreadyExists)
	assert.ErrorIs(t, s.Register(nil, Every(time.Minute)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&countingJob{name: "b"}, nil), ErrNilSchedule)
	assert.Equal(t, "@every 1m0s", Every(time.Minute).String())
}

func TestRunNow(t *testing.T) {
	clock := timeutil.NewManualClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	s := New(Config{Clock: clock})
	boom := errors.New("boom")
	job := &countingJob{name: "flaky", err: boom}
	require.NoError(t, s.Register(job, Every(time.Hour)))

	res, err := s.RunNow(context.Background(), "flaky")
	assert.ErrorIs(t, err, boom)
	assert.True(t, res.Manual)

	info, err := s.Info("flaky")
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.Runs)
	assert.Equal(t, int64(1), info.Failures)
	assert.Equal(t, "boom", info.LastErr)
	assert.Equal(t, clock.Now().Add(time.Hour), info.NextRun)

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestStart_RunsDueJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := timeutil.NewManualClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	s := New(Config{Clock: clock, Tick: 5 * time.Millisecond})
	job := &countingJob{name: "resync"}
	require.NoError(t, s.Register(job, Every(time.Minute)))

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, job.runs.Load())

	clock.Advance(time.Minute)
	assert.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	// Not due again until the clock moves another minute.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), job.runs.Load())

	require.NoError(t, s.Stop())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
}
