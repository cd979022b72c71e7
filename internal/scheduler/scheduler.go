package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"interviewprep/internal/service"
)

// bankTopUpTarget is the per-difficulty question count the nightly job
// generates toward for each topic.
const bankTopUpTarget = 5

// Scheduler runs the background maintenance jobs: the daily learning-cycle
// reset and the nightly question bank top-up.
type Scheduler struct {
	scheduler *gocron.Scheduler
	progress  *service.ProgressService
	bank      *service.BankService
	log       *zap.SugaredLogger
}

// New creates a scheduler instance
func New(progress *service.ProgressService, bank *service.BankService, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		progress:  progress,
		bank:      bank,
		log:       log,
	}
}

// Start registers the jobs and begins running them asynchronously
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Day().At("03:00").Do(s.resetExpiredCycles)
	s.scheduler.Every(1).Day().At("04:00").Do(s.topUpBank)
	s.scheduler.StartAsync()
	s.log.Infow("scheduler started")
}

// Stop terminates all scheduled jobs
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) resetExpiredCycles() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	reset, err := s.progress.ResetExpired(ctx)
	if err != nil {
		s.log.Errorw("learning cycle reset failed", "error", err)
		return
	}
	if reset > 0 {
		s.log.Infow("reset expired learning cycles", "count", reset)
	}
}

func (s *Scheduler) topUpBank() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	topics, err := s.bank.Topics(ctx)
	if err != nil {
		s.log.Errorw("bank top-up failed listing topics", "error", err)
		return
	}
	for _, topic := range topics {
		added, err := s.bank.Regenerate(ctx, topic, bankTopUpTarget)
		if err != nil {
			s.log.Warnw("bank top-up failed", "topic", topic, "error", err)
			continue
		}
		if added > 0 {
			s.log.Infow("topped up question bank", "topic", topic, "added", added)
		}
	}
}

// RunManualReset forces an immediate cycle reset, returning the count of
// restarted topics.
func (s *Scheduler) RunManualReset(ctx context.Context) (int, error) {
	return s.progress.ResetExpired(ctx)
}
