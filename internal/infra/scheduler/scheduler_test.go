package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"record_repeater/internal/app"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (f *fakeProcessor) ListDue(ctx context.Context, asOf time.Time) ([]int64, error) {
	return nil, nil
}

func (f *fakeProcessor) ProcessDue(ctx context.Context, asOf time.Time) (app.RunReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, asOf)
	if _, ok := ctx.Deadline(); !ok {
		return app.RunReport{}, errors.New("run without deadline")
	}
	return app.RunReport{AsOf: asOf}, f.err
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestRunOnceUsesTodaysDate(t *testing.T) {
	proc := &fakeProcessor{}
	s := NewRepetitionScheduler(proc, testLogger(), "0 1 * * *")
	s.now = func() time.Time { return time.Date(2022, 10, 10, 1, 0, 3, 0, time.Local) }

	s.RunOnce()

	require.Len(t, proc.calls, 1)
	assert.Equal(t, time.Date(2022, 10, 10, 0, 0, 0, 0, time.UTC), proc.calls[0])
}

func TestRunOnceSurvivesProcessorError(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("database is down")}
	s := NewRepetitionScheduler(proc, testLogger(), "0 1 * * *")

	assert.NotPanics(t, s.RunOnce)
	assert.Len(t, proc.calls, 1)
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	s := NewRepetitionScheduler(&fakeProcessor{}, testLogger(), "not a cron spec")
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s := NewRepetitionScheduler(&fakeProcessor{}, testLogger(), "@every 1h")
	require.NoError(t, s.Start())
	assert.Len(t, s.cronEngine.Entries(), 1)
	s.Stop()
}
