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

// MasteryService tracks accuracy per question and per (topic, difficulty) and
// gates difficulty progression. Two thresholds apply: PassThreshold for basic
// proficiency and the stricter AdvanceThreshold for a formal level-up.
type MasteryService struct {
	performance repository.PerformanceRepo
	mastery     repository.MasteryRepo
	cfg         *config.LearningConfig
	now         func() time.Time
	log         *zap.SugaredLogger
}

// NewMasteryService creates a mastery service
func NewMasteryService(performance repository.PerformanceRepo, mastery repository.MasteryRepo, cfg *config.LearningConfig, log *zap.SugaredLogger) *MasteryService {
	return &MasteryService{
		performance: performance,
		mastery:     mastery,
		cfg:         cfg,
		now:         time.Now,
		log:         log,
	}
}

// RecordAttempt upserts both the per-question record and the (topic,
// difficulty) aggregate for one answered question.
func (s *MasteryService) RecordAttempt(ctx context.Context, userID, questionID, topic string, difficulty model.Difficulty, correct bool, responseTimeMs int64) error {
	now := s.now()

	perf, err := s.performance.Get(ctx, userID, questionID)
	if err != nil {
		return fmt.Errorf("load performance record: %w", err)
	}
	if perf == nil {
		perf = &model.PerformanceRecord{
			ID:         uuid.NewString(),
			UserID:     userID,
			QuestionID: questionID,
			Topic:      topic,
			Difficulty: difficulty,
		}
	}
	perf.RecordAttempt(correct, responseTimeMs, now)
	if err := s.performance.Upsert(ctx, perf); err != nil {
		return fmt.Errorf("store performance record: %w", err)
	}

	agg, err := s.mastery.Get(ctx, userID, topic, difficulty)
	if err != nil {
		return fmt.Errorf("load mastery record: %w", err)
	}
	if agg == nil {
		agg = &model.MasteryRecord{
			ID:         uuid.NewString(),
			UserID:     userID,
			Topic:      topic,
			Difficulty: difficulty,
		}
	}
	agg.RecordAttempt(correct, responseTimeMs, now)
	if err := s.mastery.Upsert(ctx, agg); err != nil {
		return fmt.Errorf("store mastery record: %w", err)
	}

	s.log.Debugw("recorded attempt",
		"user", userID, "question", questionID, "topic", topic,
		"difficulty", difficulty, "correct", correct,
		"accuracy", agg.AccuracyRate())
	return nil
}

// Performance returns the per-question record, nil when never attempted
func (s *MasteryService) Performance(ctx context.Context, userID, questionID string) (*model.PerformanceRecord, error) {
	return s.performance.Get(ctx, userID, questionID)
}

// AttemptedQuestionIDs returns the set of question ids the user has attempted
// within the topic
func (s *MasteryService) AttemptedQuestionIDs(ctx context.Context, userID, topic string) (map[string]bool, error) {
	records, err := s.performance.ByUserAndTopic(ctx, userID, topic)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(records))
	for _, rec := range records {
		ids[rec.QuestionID] = true
	}
	return ids, nil
}

// HasProficiency reports whether accuracy at (topic, difficulty) meets the
// pass threshold. No attempts means not proficient.
func (s *MasteryService) HasProficiency(ctx context.Context, userID, topic string, difficulty model.Difficulty) (bool, error) {
	rec, err := s.mastery.Get(ctx, userID, topic, difficulty)
	if err != nil {
		return false, err
	}
	if rec == nil || rec.TotalAttempts == 0 {
		return false, nil
	}
	return rec.AccuracyRate() >= s.cfg.PassThreshold, nil
}

// RecommendedDifficulty walks Easy to Hard and returns the first level the
// user is not yet proficient at; Hard is the ceiling when everything is
// mastered.
func (s *MasteryService) RecommendedDifficulty(ctx context.Context, userID, topic string) (model.Difficulty, error) {
	for _, d := range model.Difficulties {
		proficient, err := s.HasProficiency(ctx, userID, topic, d)
		if err != nil {
			return "", err
		}
		if !proficient {
			return d, nil
		}
	}
	return model.DifficultyHard, nil
}

/// ShouldAdvance applies the formal level-up gate: enough attempts and accuracy
// at or above the advancement threshold.
func (s *MasteryService) ShouldAdvance(ctx context.Context, userID, topic string, difficulty model.Difficulty) (bool, error) {
	rec, err := s.mastery.Get(ctx, userID, topic, difficulty)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}
	return rec.TotalAttempts >= s.cfg.MinQuestions && rec.AccuracyRate() >= s.cfg.AdvanceThreshold, nil
}

// MasteryByTopic returns all (topic, difficulty) aggregates for the user
func (s *MasteryService) MasteryByTopic(ctx context.Context, userID, topic string) ([]model.MasteryRecord, error) {
	return s.mastery.ByUserAndTopic(ctx, userID, topic)
}

// StrugglingQuestions lists per-question records with accuracy below 50%
func (s *MasteryService) StrugglingQuestions(ctx context.Context, userID, topic string) ([]model.PerformanceRecord, error) {
	return s.filterPerformance(ctx, userID, topic, func(rec *model.PerformanceRecord) bool {
		return rec.AccuracyRate() < 50
	})
}

// ExcellingQuestions lists per-question records with accuracy above 80%
func (s *MasteryService) ExcellingQuestions(ctx context.Context, userID, topic string) ([]model.PerformanceRecord, error) {
	return s.filterPerformance(ctx, userID, topic, func(rec *model.PerformanceRecord) bool {
		return rec.AccuracyRate() > 80
	})
}

func (s *MasteryService) filterPerformance(ctx context.Context, userID, topic string, keep func(*model.PerformanceRecord) bool) ([]model.PerformanceRecord, error) {
	records, err := s.performance.ByUserAndTopic(ctx, userID, topic)
	if err != nil {
		return nil, err
	}
	var out []model.PerformanceRecord
	for i := range records {
		if keep(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out, nil
}
