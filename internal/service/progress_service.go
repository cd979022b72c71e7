package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"interviewprep/internal/config"
	"interviewprep/internal/model"
	"interviewprep/internal/repository"
)

// ProgressService maintains the per (user, topic) learning-cycle aggregate.
// Progress left idle past the cycle window is deactivated and restarted so a
// returning user is not judged by stale accuracy.
type ProgressService struct {
	repo repository.ProgressRepo
	cfg  *config.LearningConfig
	now  func() time.Time
	log  *zap.SugaredLogger
}

// NewProgressService creates a topic progress service
func NewProgressService(repo repository.ProgressRepo, cfg *config.LearningConfig, log *zap.SugaredLogger) *ProgressService {
	return &ProgressService{repo: repo, cfg: cfg, now: time.Now, log: log}
}

// GetOrCreate returns the active progress for (user, topic), creating a fresh
// record when none exists
func (s *ProgressService) GetOrCreate(ctx context.Context, userID, topic string) (*model.TopicProgress, error) {
	p, err := s.repo.GetActive(ctx, userID, topic)
	if err != nil {
		return nil, fmt.Errorf("load topic progress: %w", err)
	}
	if p != nil {
		return p, nil
	}

	p = &model.TopicProgress{
		ID:        uuid.NewString(),
		UserID:    userID,
		Topic:     topic,
		Active:    true,
		StartDate: s.now(),
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("store topic progress: %w", err)
	}
	return p, nil
}

// RecordAttempt applies one answered question to the active progress
func (s *ProgressService) RecordAttempt(ctx context.Context, userID, topic string, correct bool) error {
	p, err := s.GetOrCreate(ctx, userID, topic)
	if err != nil {
		return err
	}
	p.RecordAttempt(correct, s.now())
	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("store topic progress: %w", err)
	}
	return nil
}

// ByUser returns all progress records for the user, including inactive cycles
func (s *ProgressService) ByUser(ctx context.Context, userID string) ([]model.TopicProgress, error) {
	return s.repo.ByUser(ctx, userID)
}

// ResetExpired deactivates progress idle past the cycle window and starts a
// fresh record for each. Returns how many records were reset.
func (s *ProgressService) ResetExpired(ctx context.Context) (int, error) {
	cutoff := s.now().AddDate(0, 0, -s.cfg.CycleDays)
	expired, err := s.repo.ActiveAttemptedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("find expired progress: %w", err)
	}

	for i := range expired {
		p := expired[i]
		p.Active = false
		if err := s.repo.Update(ctx, &p); err != nil {
			return 0, fmt.Errorf("deactivate topic progress: %w", err)
		}
		fresh := &model.TopicProgress{
			ID:        uuid.NewString(),
			UserID:    p.UserID,
			Topic:     p.Topic,
			Active:    true,
			StartDate: s.now(),
		}
		if err := s.repo.Insert(ctx, fresh); err != nil {
			return 0, fmt.Errorf("store fresh topic progress: %w", err)
		}
	}

	if len(expired) > 0 {
		s.log.Infow("reset expired topic progress", "count", len(expired))
	}
	return len(expired), nil
}
