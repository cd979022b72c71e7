package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"interviewprep/internal/cache"
	"interviewprep/internal/model"
)

// MomentumService tracks the short-horizon accuracy/speed signal for live
// sessions. Momentum only steers in-session difficulty; it is not persisted
// progress, so every accessor degrades to a zero value instead of erroring.
type MomentumService struct {
	cache cache.MomentumCache
	now   func() time.Time
	log   *zap.SugaredLogger
}

// NewMomentumService creates a momentum service
func NewMomentumService(cache cache.MomentumCache, log *zap.SugaredLogger) *MomentumService {
	return &MomentumService{cache: cache, now: time.Now, log: log}
}

// Initialize returns the existing momentum for the session or creates a
// zero-valued one. Idempotent.
func (s *MomentumService) Initialize(ctx context.Context, sessionID, userID string) (*model.SessionMomentum, error) {
	m, err := s.cache.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load momentum: %w", err)
	}
	if m != nil {
		return m, nil
	}

	m = &model.SessionMomentum{SessionID: sessionID, UserID: userID, UpdatedAt: s.now()}
	if err := s.cache.Set(ctx, m); err != nil {
		return nil, fmt.Errorf("store momentum: %w", err)
	}
	return m, nil
}

// RecordAnswer folds one answer into the session momentum
func (s *MomentumService) RecordAnswer(ctx context.Context, sessionID, userID string, correct bool, responseTimeMs int64) (*model.SessionMomentum, error) {
	m, err := s.Initialize(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	m.RecordAnswer(correct, responseTimeMs, s.now())
	if err := s.cache.Set(ctx, m); err != nil {
		return nil, fmt.Errorf("store momentum: %w", err)
	}
	s.log.Debugw("recorded momentum answer",
		"session", sessionID, "answered", m.QuestionsAnswered,
		"accuracy", m.AccuracyRate(), "momentum", m.MomentumScore)
	return m, nil
}

// Discard drops the momentum for an ended session
func (s *MomentumService) Discard(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, sessionID)
}

// get swallows lookup failures: a missing or unreadable record is treated as
// no momentum.
func (s *MomentumService) get(ctx context.Context, sessionID string) *model.SessionMomentum {
	m, err := s.cache.Get(ctx, sessionID)
	if err != nil {
		s.log.Warnw("momentum lookup failed", "session", sessionID, "error", err)
		return nil
	}
	return m
}

// Score returns the momentum score, 0 when no record exists
func (s *MomentumService) Score(ctx context.Context, sessionID string) float64 {
	if m := s.get(ctx, sessionID); m != nil {
		return m.MomentumScore
	}
	return 0
}

// Accuracy returns the session accuracy percentage, 0 when no record exists
func (s *MomentumService) Accuracy(ctx context.Context, sessionID string) float64 {
	if m := s.get(ctx, sessionID); m != nil {
		return m.AccuracyRate()
	}
	return 0
}

// AverageResponseTime returns the running average in milliseconds, 0 when no
// record exists
func (s *MomentumService) AverageResponseTime(ctx context.Context, sessionID string) int64 {
	if m := s.get(ctx, sessionID); m != nil {
		return m.AverageResponseTimeMs
	}
	return 0
}

// IsInFlow reports high momentum; false when no record exists
func (s *MomentumService) IsInFlow(ctx context.Context, sessionID string) bool {
	if m := s.get(ctx, sessionID); m != nil {
		return m.IsInFlow()
	}
	return false
}

// IsStruggling reports low momentum; false when no record exists
func (s *MomentumService) IsStruggling(ctx context.Context, sessionID string) bool {
	if m := s.get(ctx, sessionID); m != nil {
		return m.IsStruggling()
	}
	return false
}
