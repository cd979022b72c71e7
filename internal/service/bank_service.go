package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"interviewprep/internal/model"
	"interviewprep/internal/repository"
)

// BankService owns the pre-generated question pool. Sessions draw from the
// bank; regeneration tops it up from the content source via the generator.
type BankService struct {
	questions repository.QuestionRepo
	generator QuestionGenerator
	content   ContentSource
	log       *zap.SugaredLogger
}

// NewBankService creates a question bank service
func NewBankService(questions repository.QuestionRepo, generator QuestionGenerator, content ContentSource, log *zap.SugaredLogger) *BankService {
	return &BankService{questions: questions, generator: generator, content: content, log: log}
}

// QuestionsFor returns up to limit bank questions for the topic and difficulty
func (s *BankService) QuestionsFor(ctx context.Context, topic string, difficulty model.Difficulty, limit int) ([]model.Question, error) {
	return s.questions.ByTopicAndDifficulty(ctx, topic, difficulty, int64(limit))
}

// QuestionsByIDs resolves bank questions by id, preserving order
func (s *BankService) QuestionsByIDs(ctx context.Context, ids []string) ([]model.Question, error) {
	return s.questions.ByIDs(ctx, ids)
}

// Topics lists topics with bank questions or source content, deduplicated
func (s *BankService) Topics(ctx context.Context) ([]string, error) {
	banked, err := s.questions.Topics(ctx)
	if err != nil {
		return nil, err
	}
	sourced, err := s.content.ListTopics(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(banked)+len(sourced))
	var topics []string
	for _, t := range append(banked, sourced...) {
		if seen[t] {
			continue
		}
		seen[t] = true
		topics = append(topics, t)
	}
	return topics, nil
}

// Regenerate generates perDifficultyTarget questions for each difficulty from
// the topic's content and inserts them into the bank. Difficulties are
// generated concurrently; individual snippet failures are logged and skipped.
// Returns the number of questions added.
func (s *BankService) Regenerate(ctx context.Context, topic string, perDifficultyTarget int) (int, error) {
	content, err := s.content.ContentForTopic(ctx, topic)
	if err != nil {
		return 0, fmt.Errorf("load content for topic %s: %w", topic, err)
	}
	if len(content) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrTopicNotFound, topic)
	}

	results := make([][]model.Question, len(model.Difficulties))
	g, gctx := errgroup.WithContext(ctx)
	for i, difficulty := range model.Difficulties {
		i, difficulty := i, difficulty
		g.Go(func() error {
			var generated []model.Question
			for file, snippet := range content {
				if len(generated) >= perDifficultyTarget {
					break
				}
				q, err := s.generator.GenerateQuestion(gctx, snippet, topic, difficulty)
				if err != nil {
					s.log.Warnw("question generation failed",
						"topic", topic, "difficulty", difficulty, "file", file, "error", err)
					continue
				}
				q.SourceFile = file
				generated = append(generated, *q)
			}
			results[i] = generated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var all []model.Question
	for _, batch := range results {
		all = append(all, batch...)
	}
	if err := s.questions.InsertMany(ctx, all); err != nil {
		return 0, fmt.Errorf("store generated questions: %w", err)
	}

	s.log.Infow("regenerated question bank", "topic", topic, "added", len(all))
	return len(all), nil
}
