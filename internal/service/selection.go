package service

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"interviewprep/internal/model"
)

// SelectionService builds the question list for a session. Three pressures
// compete: spaced-repetition debt, mastery-gated progression, and the live
// momentum signal. Due questions always win; new questions fill the rest.
type SelectionService struct {
	bank       *BankService
	repetition *SpacedRepetitionService
	mastery    *MasteryService
	momentum   *MomentumService
	log        *zap.SugaredLogger
}

// NewSelectionService creates a question selection service
func NewSelectionService(bank *BankService, repetition *SpacedRepetitionService, mastery *MasteryService, momentum *MomentumService, log *zap.SugaredLogger) *SelectionService {
	return &SelectionService{
		bank:       bank,
		repetition: repetition,
		mastery:    mastery,
		momentum:   momentum,
		log:        log,
	}
}

// SelectForSession picks count questions for a new session: due reviews
// first, then new questions at the recommended difficulty. The result never
// contains duplicates and never exceeds count; fewer questions than requested
// means the bank ran dry and the caller decides how to surface that.
func (s *SelectionService) SelectForSession(ctx context.Context, userID, topic string, count int) ([]model.Question, error) {
	due, err := s.DueQuestions(ctx, userID, topic, count)
	if err != nil {
		return nil, err
	}
	if len(due) >= count {
		return due[:count], nil
	}

	fresh, err := s.LearningQuestions(ctx, userID, topic, count-len(due))
	if err != nil {
		return nil, err
	}

	return dedupe(append(due, fresh...), count), nil
}

// DueQuestions returns up to count due review questions for the topic,
// ordered by review date. Over-fetches from the scheduler because due records
// span all topics.
func (s *SelectionService) DueQuestions(ctx context.Context, userID, topic string, count int) ([]model.Question, error) {
	records, err := s.repetition.DueQuestions(ctx, userID, count*2)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.QuestionID)
	}
	questions, err := s.bank.QuestionsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	var due []model.Question
	for _, q := range questions {
		if q.Topic != topic {
			continue
		}
		due = append(due, q)
		if len(due) >= count {
			break
		}
	}
	s.log.Debugw("selected due questions", "user", userID, "topic", topic, "count", len(due))
	return due, nil
}

// LearningQuestions returns up to count unseen questions at the user's
// recommended difficulty, shuffled to avoid deterministic repeats across
// sessions.
func (s *SelectionService) LearningQuestions(ctx context.Context, userID, topic string, count int) ([]model.Question, error) {
	difficulty, err := s.mastery.RecommendedDifficulty(ctx, userID, topic)
	if err != nil {
		return nil, err
	}
	return s.freshAtDifficulty(ctx, userID, topic, difficulty, count)
}

// SelectByMomentum picks questions mid-session: one difficulty step down when
// struggling, one step up when in flow, the standard progression otherwise.
// At either extreme the current level is kept rather than erroring.
func (s *SelectionService) SelectByMomentum(ctx context.Context, userID, topic, sessionID string, count int) ([]model.Question, error) {
	switch {
	case s.momentum.IsStruggling(ctx, sessionID):
		return s.stepped(ctx, userID, topic, count, func(d model.Difficulty) (model.Difficulty, bool) { return d.Easier() })
	case s.momentum.IsInFlow(ctx, sessionID):
		return s.stepped(ctx, userID, topic, count, func(d model.Difficulty) (model.Difficulty, bool) { return d.Harder() })
	default:
		return s.LearningQuestions(ctx, userID, topic, count)
	}
}

func (s *SelectionService) stepped(ctx context.Context, userID, topic string, count int, step func(model.Difficulty) (model.Difficulty, bool)) ([]model.Question, error) {
	current, err := s.mastery.RecommendedDifficulty(ctx, userID, topic)
	if err != nil {
		return nil, err
	}
	target, _ := step(current)
	s.log.Debugw("momentum difficulty shift", "user", userID, "topic", topic, "from", current, "to", target)
	questions, err := s.bank.QuestionsFor(ctx, topic, target, count)
	if err != nil {
		return nil, err
	}
	return dedupe(questions, count), nil
}

func (s *SelectionService) freshAtDifficulty(ctx context.Context, userID, topic string, difficulty model.Difficulty, count int) ([]model.Question, error) {
	// Over-fetch so the attempted-question filter still leaves enough
	pool, err := s.bank.QuestionsFor(ctx, topic, difficulty, count*2)
	if err != nil {
		return nil, err
	}
	attempted, err := s.mastery.AttemptedQuestionIDs(ctx, userID, topic)
	if err != nil {
		return nil, err
	}

	var eligible []model.Question
	for _, q := range pool {
		if !attempted[q.ID] {
			eligible = append(eligible, q)
		}
	}
	rand.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	if len(eligible) > count {
		eligible = eligible[:count]
	}
	s.log.Debugw("selected new questions",
		"user", userID, "topic", topic, "difficulty", difficulty, "count", len(eligible))
	return eligible, nil
}

// dedupe drops repeated question ids, keeping first occurrence, capped at count
func dedupe(questions []model.Question, count int) []model.Question {
	seen := make(map[string]bool, len(questions))
	out := questions[:0]
	for _, q := range questions {
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		out = append(out, q)
		if len(out) >= count {
			break
		}
	}
	return out
}
