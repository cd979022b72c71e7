package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"interviewprep/internal/model"
	"interviewprep/internal/repository"
)

// SpacedRepetitionService runs the per (user, question) review scheduler.
// Records are created lazily on first exposure; an absent record means a new
// question, which is always due.
type SpacedRepetitionService struct {
	repo repository.RepetitionRepo
	now  func() time.Time
	log  *zap.SugaredLogger
}

// NewSpacedRepetitionService creates a spaced repetition service
func NewSpacedRepetitionService(repo repository.RepetitionRepo, log *zap.SugaredLogger) *SpacedRepetitionService {
	return &SpacedRepetitionService{repo: repo, now: time.Now, log: log}
}

// Initialize returns the existing record for (user, question) or creates one
// that is due immediately. Idempotent.
func (s *SpacedRepetitionService) Initialize(ctx context.Context, userID, questionID string) (*model.SpacedRepetitionRecord, error) {
	rec, err := s.repo.Get(ctx, userID, questionID)
	if err != nil {
		return nil, fmt.Errorf("load repetition record: %w", err)
	}
	if rec != nil {
		return rec, nil
	}

	rec = model.NewSpacedRepetitionRecord(userID, questionID, s.now())
	rec.ID = uuid.NewString()
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("store repetition record: %w", err)
	}
	s.log.Debugw("initialized spaced repetition record", "user", userID, "question", questionID)
	return rec, nil
}

// RecordAnswer applies one answer: ease factor first, then the schedule using
// the post-update ease factor against the pre-update interval.
func (s *SpacedRepetitionService) RecordAnswer(ctx context.Context, userID, questionID string, correct bool) (*model.SpacedRepetitionRecord, error) {
	rec, err := s.Initialize(ctx, userID, questionID)
	if err != nil {
		return nil, err
	}

	rec.UpdateEaseFactor(correct)
	rec.AdvanceSchedule(s.now())

	if err := s.repo.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("store repetition record: %w", err)
	}
	s.log.Debugw("updated spaced repetition record",
		"user", userID, "question", questionID, "correct", correct,
		"repetition", rec.RepetitionNumber, "easeFactor", rec.EaseFactor,
		"intervalDays", rec.IntervalDays, "nextReview", rec.NextReviewDate)
	return rec, nil
}

// DueQuestions returns records due for review, ascending by next review date.
// limit <= 0 returns everything due.
func (s *SpacedRepetitionService) DueQuestions(ctx context.Context, userID string, limit int) ([]model.SpacedRepetitionRecord, error) {
	return s.repo.DueByUser(ctx, userID, s.now(), int64(limit))
}

// IsDue reports whether the question is due for the user. Questions with no
// record are always due.
func (s *SpacedRepetitionService) IsDue(ctx context.Context, userID, questionID string) (bool, error) {
	rec, err := s.repo.Get(ctx, userID, questionID)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return true, nil
	}
	return rec.IsDue(s.now()), nil
}

// CountDue returns the number of due questions for the user
func (s *SpacedRepetitionService) CountDue(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountDue(ctx, userID, s.now())
}

// NextReviewDate returns when the question next comes due. A question with no
// record is due now.
func (s *SpacedRepetitionService) NextReviewDate(ctx context.Context, userID, questionID string) (time.Time, error) {
	rec, err := s.repo.Get(ctx, userID, questionID)
	if err != nil {
		return time.Time{}, err
	}
	if rec == nil {
		return s.now(), nil
	}
	return rec.NextReviewDate, nil
}
