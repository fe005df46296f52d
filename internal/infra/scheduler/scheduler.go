package scheduler

import (
	"context"
	"fmt"
	"time"

	"record_repeater/internal/app"
	"record_repeater/internal/domain/repetition"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const runTimeout = 10 * time.Minute

type RepetitionScheduler struct {
	cronEngine *cron.Cron
	processor  app.RepetitionProcessor
	logger     *logrus.Entry
	cronSpec   string // e.g., "0 1 * * *" (01:00 daily)
	now        func() time.Time
}

func NewRepetitionScheduler(processor app.RepetitionProcessor, logger *logrus.Entry, cronSpec string) *RepetitionScheduler {
	cronLogger := cron.PrintfLogger(logger)
	return &RepetitionScheduler{
		// A run that outlasts its interval makes the next tick a no-op instead of
		// a second concurrent pass over the same due rules.
		cronEngine: cron.New(
			cron.WithLocation(time.Local), // Use server's local time for cron
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		processor: processor,
		logger:    logger,
		cronSpec:  cronSpec,
		now:       time.Now,
	}
}

func (s *RepetitionScheduler) Start() error {
	s.logger.Info("Starting repetition scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.RunOnce); err != nil {
		return fmt.Errorf("could not add repetition cron job %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Repetition scheduler started.")
	return nil
}

// RunOnce processes the rules due today.
func (s *RepetitionScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	asOf := repetition.DateOf(s.now())
	s.logger.WithField("as_of", asOf.Format(repetition.DateLayout)).Info("Cron job triggered for due repetitions.")
	if _, err := s.processor.ProcessDue(ctx, asOf); err != nil {
		s.logger.WithError(err).Error("Error during repetition processing")
	}
}

func (s *RepetitionScheduler) Stop() {
	s.logger.Info("Stopping repetition scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Repetition scheduler gracefully stopped.")
}
