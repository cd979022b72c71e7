package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"interviewprep/internal/config"
	"interviewprep/internal/model"
	"interviewprep/internal/repository"
)

// QuizSessionService owns the session lifecycle: start, answer, end. All
// mutations of one session serialize on a striped per-session lock; different
// sessions proceed concurrently. The combined submit update (answer append,
// score, trackers) is best-effort: the answer is durable first and tracker
// updates that fail are logged, not rolled back.
type QuizSessionService struct {
	sessions   repository.SessionRepo
	selection  *SelectionService
	evaluator  AnswerEvaluator
	repetition *SpacedRepetitionService
	mastery    *MasteryService
	momentum   *MomentumService
	progress   *ProgressService
	cfg        *config.LearningConfig
	locks      [64]sync.Mutex
	now        func() time.Time
	log        *zap.SugaredLogger
}

// NewQuizSessionService creates a quiz session service
func NewQuizSessionService(
	sessions repository.SessionRepo,
	selection *SelectionService,
	evaluator AnswerEvaluator,
	repetition *SpacedRepetitionService,
	mastery *MasteryService,
	momentum *MomentumService,
	progress *ProgressService,
	cfg *config.LearningConfig,
	log *zap.SugaredLogger,
) *QuizSessionService {
	return &QuizSessionService{
		sessions:   sessions,
		selection:  selection,
		evaluator:  evaluator,
		repetition: repetition,
		mastery:    mastery,
		momentum:   momentum,
		progress:   progress,
		cfg:        cfg,
		now:        time.Now,
		log:        log,
	}
}

func (s *QuizSessionService) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%uint32(len(s.locks))]
}

// StartSession selects questions and opens a new session. Every selected
// question must carry a correct answer; a bank entry without one is a
// data-integrity fault that aborts session creation.
func (s *QuizSessionService) StartSession(ctx context.Context, userID, topic string, difficulty model.Difficulty, count int) (*model.QuizSession, error) {
	questions, err := s.selection.SelectForSession(ctx, userID, topic, count)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: topic %s", ErrNotEnoughQuestions, topic)
	}
	for _, q := range questions {
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return nil, fmt.Errorf("%w: question %s", ErrMissingCorrectAnswer, q.ID)
		}
	}

	session := &model.QuizSession{
		ID:         uuid.NewString(),
		UserID:     userID,
		Topic:      topic,
		Difficulty: difficulty,
		Status:     model.SessionInProgress,
		Questions:  questions,
		Answers:    []model.UserAnswer{},
		StartTime:  s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	if _, err := s.momentum.Initialize(ctx, session.ID, userID); err != nil {
		s.log.Warnw("momentum init failed", "session", session.ID, "error", err)
	}

	s.log.Infow("started session",
		"session", session.ID, "user", userID, "topic", topic,
		"difficulty", difficulty, "questions", len(questions))
	return session.ClientView(), nil
}

// SubmitAnswer validates and records one answer. Validation failures reject
// the operation without touching session state. responseTimeMs <= 0 falls
// back to the server-measured time since the previous answer (or the session
// start).
func (s *QuizSessionService) SubmitAnswer(ctx context.Context, sessionID, questionID, answer string, responseTimeMs int64) (*model.QuizSession, error) {
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if session.Status != model.SessionInProgress {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotInProgress, sessionID)
	}

	question := session.QuestionByID(questionID)
	if question == nil {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
	}

	now := s.now()
	if responseTimeMs <= 0 {
		since := session.StartTime
		if n := len(session.Answers); n > 0 {
			since = session.Answers[n-1].AnsweredAt
		}
		responseTimeMs = now.Sub(since).Milliseconds()
	}

	correct, feedback, err := s.validateAnswer(ctx, question, answer)
	if err != nil {
		return nil, err
	}
	question.Feedback = feedback

	// Resubmitting an already-answered question appends a second entry;
	// every submission counts toward the score.
	session.Answers = append(session.Answers, model.UserAnswer{
		QuestionID: questionID,
		Answer:     answer,
		Correct:    correct,
		AnsweredAt: now,
	})
	session.Score = session.CalculateScore()
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.updateTrackers(ctx, session, question, correct, responseTimeMs)

	s.log.Debugw("answer submitted",
		"session", sessionID, "question", questionID, "correct", correct,
		"score", session.Score)
	return session.ClientView(), nil
}

// updateTrackers applies one answer to mastery, spaced repetition, momentum
// and topic progress. Failures here are logged and absorbed: the recorded
// answer is the source of truth and the trackers catch up on the next
// submission.
func (s *QuizSessionService) updateTrackers(ctx context.Context, session *model.QuizSession, q *model.Question, correct bool, responseTimeMs int64) {
	if err := s.mastery.RecordAttempt(ctx, session.UserID, q.ID, q.Topic, q.Difficulty, correct, responseTimeMs); err != nil {
		s.log.Errorw("mastery update failed", "session", session.ID, "question", q.ID, "error", err)
	}
	if _, err := s.repetition.RecordAnswer(ctx, session.UserID, q.ID, correct); err != nil {
		s.log.Errorw("spaced repetition update failed", "session", session.ID, "question", q.ID, "error", err)
	}
	if _, err := s.momentum.RecordAnswer(ctx, session.ID, session.UserID, correct, responseTimeMs); err != nil {
		s.log.Errorw("momentum update failed", "session", session.ID, "error", err)
	}
	if err := s.progress.RecordAttempt(ctx, session.UserID, q.Topic, correct); err != nil {
		s.log.Errorw("topic progress update failed", "session", session.ID, "error", err)
	}
}

// validateAnswer dispatches on question type. Malformed answers for the
// structured types reject with ErrInvalidAnswer; free-text evaluation never
// fails, it degrades.
func (s *QuizSessionService) validateAnswer(ctx context.Context, q *model.Question, answer string) (bool, *model.AnswerFeedback, error) {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return false, nil, nil
	}

	switch q.Type {
	case model.QuestionTypeMultipleChoice:
		found := false
		for _, opt := range q.Options {
			if opt == trimmed {
				found = true
				break
			}
		}
		if !found {
			return false, nil, fmt.Errorf("%w: %q is not one of the options", ErrInvalidAnswer, trimmed)
		}
		return trimmed == strings.TrimSpace(q.CorrectAnswer), nil, nil

	case model.QuestionTypeTrueFalse:
		normalized := strings.ToLower(trimmed)
		if normalized != "true" && normalized != "false" {
			return false, nil, fmt.Errorf("%w: true/false answer must be 'true' or 'false'", ErrInvalidAnswer)
		}
		return normalized == strings.ToLower(strings.TrimSpace(q.CorrectAnswer)), nil, nil

	case model.QuestionTypeShortAnswer, model.QuestionTypeScenarioBased:
		feedback := s.evaluator.EvaluateAnswer(ctx, q, trimmed)
		return feedback.SimilarityScore >= s.cfg.SimilarityCutoff, feedback, nil

	default:
		return false, nil, fmt.Errorf("unsupported question type: %s", q.Type)
	}
}

// EndSession seals the session: unanswered questions become blank incorrect
// answers that count against mastery and progress, correct answers are
// revealed, and the final score is computed over the full question count.
func (s *QuizSessionService) EndSession(ctx context.Context, sessionID string) (*model.QuizSession, error) {
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if session.Status == model.SessionCompleted {
		return nil, fmt.Errorf("%w: %s", ErrSessionCompleted, sessionID)
	}

	now := s.now()
	for i := range session.Questions {
		q := &session.Questions[i]
		if session.AnswerFor(q.ID) != nil {
			continue
		}
		session.Answers = append(session.Answers, model.UserAnswer{
			QuestionID: q.ID,
			Answer:     "",
			Correct:    false,
			AnsweredAt: now,
		})
		if err := s.mastery.RecordAttempt(ctx, session.UserID, q.ID, q.Topic, q.Difficulty, false, 0); err != nil {
			s.log.Errorw("mastery update failed for unanswered question", "session", sessionID, "question", q.ID, "error", err)
		}
		if err := s.progress.RecordAttempt(ctx, session.UserID, q.Topic, false); err != nil {
			s.log.Errorw("topic progress update failed for unanswered question", "session", sessionID, "error", err)
		}
	}

	session.Status = model.SessionCompleted
	session.EndTime = &now
	session.Score = session.CalculateScore()
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	if err := s.momentum.Discard(ctx, sessionID); err != nil {
		s.log.Warnw("momentum discard failed", "session", sessionID, "error", err)
	}

	s.log.Infow("ended session",
		"session", sessionID, "score", session.Score,
		"answered", len(session.Answers), "questions", len(session.Questions))
	return session.ClientView(), nil
}

// NextQuestions suggests up to count follow-up questions for an in-progress
// session, difficulty-steered by the live momentum signal. Questions already
// in the session are excluded, so fewer suggestions than requested can come
// back.
func (s *QuizSessionService) NextQuestions(ctx context.Context, sessionID string, count int) ([]model.Question, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if session.Status != model.SessionInProgress {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotInProgress, sessionID)
	}

	// Over-fetch so the in-session filter still leaves enough
	candidates, err := s.selection.SelectByMomentum(ctx, session.UserID, session.Topic, sessionID, count*2)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}

	inSession := make(map[string]bool, len(session.Questions))
	for _, q := range session.Questions {
		inSession[q.ID] = true
	}
	out := make([]model.Question, 0, count)
	for _, q := range candidates {
		if inSession[q.ID] {
			continue
		}
		out = append(out, q.Visible())
		if len(out) >= count {
			break
		}
	}
	return out, nil
}

// GetSession returns the client-visible session, or nil when it does not
// exist
func (s *QuizSessionService) GetSession(ctx context.Context, sessionID string) (*model.QuizSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, nil
	}
	return session.ClientView(), nil
}
