package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"interviewprep/internal/cache"
	"interviewprep/internal/config"
	"interviewprep/internal/model"
	"interviewprep/internal/repository"
)

// stubEvaluator returns a fixed similarity score for every free-text answer
type stubEvaluator struct {
	score float64
}

func (e stubEvaluator) EvaluateAnswer(ctx context.Context, q *model.Question, answer string) *model.AnswerFeedback {
	return &model.AnswerFeedback{
		Correct:         e.score >= 80,
		SimilarityScore: e.score,
		Feedback:        "stubbed",
		CorrectAnswer:   q.CorrectAnswer,
	}
}

type sessionFixture struct {
	svc        *QuizSessionService
	questions  repository.QuestionRepo
	sessions   repository.SessionRepo
	mastery    *MasteryService
	momentum   *MomentumService
	repetition *SpacedRepetitionService
	progress   *ProgressService
	now        time.Time
}

func newSessionFixture(t *testing.T, evaluator AnswerEvaluator) *sessionFixture {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	log := zap.NewNop().Sugar()
	cfg := testLearningConfig()

	questions := repository.NewMemoryQuestionRepo()
	sessions := repository.NewMemorySessionRepo()
	bank := NewBankService(questions, nil, newStubContent(), log)

	repetition := NewSpacedRepetitionService(repository.NewMemoryRepetitionRepo(), log)
	repetition.now = func() time.Time { return now }
	mastery := NewMasteryService(
		repository.NewMemoryPerformanceRepo(), repository.NewMemoryMasteryRepo(), cfg, log)
	mastery.now = func() time.Time { return now }
	momentum := NewMomentumService(cache.NewMemoryMomentumCache(), log)
	momentum.now = func() time.Time { return now }
	progress := NewProgressService(repository.NewMemoryProgressRepo(), cfg, log)
	progress.now = func() time.Time { return now }
	selection := NewSelectionService(bank, repetition, mastery, momentum, log)

	svc := NewQuizSessionService(
		sessions, selection, evaluator, repetition, mastery, momentum, progress, cfg, log)
	svc.now = func() time.Time { return now }

	return &sessionFixture{
		svc:        svc,
		questions:  questions,
		sessions:   sessions,
		mastery:    mastery,
		momentum:   momentum,
		repetition: repetition,
		progress:   progress,
		now:        now,
	}
}

func (f *sessionFixture) seedMultipleChoice(t *testing.T, topic string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, f.questions.Insert(context.Background(), &model.Question{
			ID:            fmt.Sprintf("%s-q%d", topic, i),
			Topic:         topic,
			Difficulty:    model.DifficultyEasy,
			Type:          model.QuestionTypeMultipleChoice,
			Content:       "pick a",
			Options:       []string{"a", "b", "c"},
			CorrectAnswer: "a",
		}))
	}
}

func TestQuizSession_StartHidesCorrectAnswers(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	f.seedMultipleChoice(t, "go", 5)
	ctx := context.Background()

	session, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 5)
	require.NoError(t, err)
	assert.Equal(t, model.SessionInProgress, session.Status)
	assert.Equal(t, float64(0), session.Score)
	require.Len(t, session.Questions, 5)
	for _, q := range session.Questions {
		assert.Empty(t, q.CorrectAnswer, "correct answer leaked for %s", q.ID)
		assert.Empty(t, q.Explanation)
	}

	// The stored copy keeps the answers
	stored, err := f.sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	for _, q := range stored.Questions {
		assert.Equal(t, "a", q.CorrectAnswer)
	}
}

func TestQuizSession_StartFailsWithEmptyBank(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	ctx := context.Background()

	_, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 5)
	assert.ErrorIs(t, err, ErrNotEnoughQuestions)
}

func TestQuizSession_StartRejectsQuestionWithoutAnswer(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	ctx := context.Background()
	require.NoError(t, f.questions.Insert(ctx, &model.Question{
		ID:         "broken",
		Topic:      "go",
		Difficulty: model.DifficultyEasy,
		Type:       model.QuestionTypeMultipleChoice,
		Content:    "no answer recorded",
		Options:    []string{"a", "b"},
	}))

	_, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 1)
	assert.ErrorIs(t, err, ErrMissingCorrectAnswer)
}

func TestQuizSession_SubmitMultipleChoice(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	f.seedMultipleChoice(t, "go", 2)
	ctx := context.Background()

	session, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 2)
	require.NoError(t, err)

	// Correct, with surrounding whitespace trimmed
	updated, err := f.svc.SubmitAnswer(ctx, session.ID, session.Questions[0].ID, "  a  ", 3000)
	require.NoError(t, err)
	require.Len(t, updated.Answers, 1)
	assert.True(t, updated.Answers[0].Correct)
	assert.Equal(t, float64(100), updated.Score)

	// Wrong option, still a valid submission
	updated, err = f.svc.SubmitAnswer(ctx, session.ID, session.Questions[1].ID, "b", 3000)
	require.NoError(t, err)
	require.Len(t, updated.Answers, 2)
	assert.False(t, updated.Answers[1].Correct)
	assert.Equal(t, float64(50), updated.Score)
}

func TestQuizSession_SubmitRejectsUnknownOption(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	f.seedMultipleChoice(t, "go", 1)
	ctx := context.Background()

	session, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 1)
	require.NoError(t, err)

	_, err = f.svc.SubmitAnswer(ctx, session.ID, session.Questions[0].ID, "z", 1000)
	assert.ErrorIs(t, err, ErrInvalidAnswer)

	// The rejected submission left no trace
	after, err := f.svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, after.Answers)
	assert.Equal(t, float64(0), after.Score)
}

func TestQuizSession_SubmitTrueFalseNormalizes(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	ctx := context.Background()
	require.NoError(t, f.questions.Insert(ctx, &model.Question{
		ID:            "tf1",
		Topic:         "go",
		Difficulty:    model.DifficultyEasy,
		Type:          model.QuestionTypeTrueFalse,
		Content:       "goroutines are cheap",
		CorrectAnswer: "True",
	}))

	session, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 1)
	require.NoError(t, err)

	updated, err := f.svc.SubmitAnswer(ctx, session.ID, "tf1", "  TRUE ", 1000)
	require.NoError(t, err)
	assert.True(t, updated.Answers[0].Correct)

	_, err = f.svc.SubmitAnswer(ctx, session.ID, "tf1", "yes", 1000)
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestQuizSession_FreeTextUsesEvaluatorCutoff(t *testing.T) {
	ctx := context.Background()
	seed := func(f *sessionFixture) {
		require.NoError(t, f.questions.Insert(ctx, &model.Question{
			ID:            "sa1",
			Topic:         "go",
			Difficulty:    model.DifficultyEasy,
			Type:          model.QuestionTypeShortAnswer,
			Content:       "what does defer do",
			CorrectAnswer: "Runs a function call when the surrounding function returns",
		}))
	}

	// At the cutoff: correct
	f := newSessionFixture(t, stubEvaluator{score: 80})
	seed(f)
	session, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 1)
	require.NoError(t, err)
	updated, err := f.svc.SubmitAnswer(ctx, session.ID, "sa1", "delays a call until return", 0)
	require.NoError(t, err)
	assert.True(t, updated.Answers[0].Correct)

	// Below the cutoff: incorrect, but still a recorded answer
	f = newSessionFixture(t, stubEvaluator{score: 79})
	seed(f)
	session, err = f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 1)
	require.NoError(t, err)
	updated, err = f.svc.SubmitAnswer(ctx, session.ID, "sa1", "something vague", 0)
	require.NoError(t, err)
	assert.False(t, updated.Answers[0].Correct)
	require.Len(t, updated.Answers, 1)
}

func TestQuizSession_FreeTextFallbackComparison(t *testing.T) {
	// No API key configured: the evaluator degrades to case-insensitive
	// string comparison and flags the verdict as degraded
	evaluator := NewEvaluatorService(&config.AIConfig{TimeoutMS: 1000}, zap.NewNop().Sugar())
	f := newSessionFixture(t, evaluator)
	ctx := context.Background()
	require.NoError(t, f.questions.Insert(ctx, &model.Question{
		ID:            "sa1",
		Topic:         "go",
		Difficulty:    model.DifficultyEasy,
		Type:          model.QuestionTypeShortAnswer,
		Content:       "what is a nil map read",
		CorrectAnswer: "Zero Value",
	}))

	session, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 1)
	require.NoError(t, err)

	updated, err := f.svc.SubmitAnswer(ctx, session.ID, "sa1", "zero value", 1000)
	require.NoError(t, err)
	require.Len(t, updated.Answers, 1)
	assert.True(t, updated.Answers[0].Correct)
	require.NotNil(t, updated.Questions[0].Feedback)
	assert.True(t, updated.Questions[0].Feedback.Degraded)
}

func TestQuizSession_ScoreDenominatorChangesOnEnd(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	f.seedMultipleChoice(t, "go", 5)
	ctx := context.Background()

	session, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 5)
	require.NoError(t, err)

	// Answer 3 of 5: two correct, one wrong
	answers := []string{"a", "a", "b"}
	var updated *model.QuizSession
	for i, ans := range answers {
		updated, err = f.svc.SubmitAnswer(ctx, session.ID, session.Questions[i].ID, ans, 2000)
		require.NoError(t, err)
	}
	// In progress: 2/3
	assert.InDelta(t, 200.0/3.0, updated.Score, 1e-9)

	ended, err := f.svc.EndSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, ended.Status)
	require.NotNil(t, ended.EndTime)
	// Completed: 2/5, the unanswered pair counts against the score
	assert.Equal(t, float64(40), ended.Score)
	require.Len(t, ended.Answers, 5)
	for _, a := range ended.Answers[3:] {
		assert.Empty(t, a.Answer)
		assert.False(t, a.Correct)
	}

	// Completed sessions reveal every correct answer
	for _, q := range ended.Questions {
		assert.Equal(t, "a", q.CorrectAnswer)
	}
}

func TestQuizSession_UnansweredQuestionsHitMastery(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	f.seedMultipleChoice(t, "go", 2)
	ctx := context.Background()

	session, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 2)
	require.NoError(t, err)
	_, err = f.svc.EndSession(ctx, session.ID)
	require.NoError(t, err)

	records, err := f.mastery.MasteryByTopic(ctx, "u1", "go")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].TotalAttempts)
	assert.Equal(t, 0, records[0].CorrectAttempts)
}

func TestQuizSession_LifecycleErrors(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	f.seedMultipleChoice(t, "go", 1)
	ctx := context.Background()

	_, err := f.svc.SubmitAnswer(ctx, "nope", "q", "a", 1000)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.EndSession(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	session, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 1)
	require.NoError(t, err)

	_, err = f.svc.SubmitAnswer(ctx, session.ID, "unknown-question", "a", 1000)
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	_, err = f.svc.EndSession(ctx, session.ID)
	require.NoError(t, err)

	_, err = f.svc.SubmitAnswer(ctx, session.ID, session.Questions[0].ID, "a", 1000)
	assert.ErrorIs(t, err, ErrSessionNotInProgress)

	_, err = f.svc.EndSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionCompleted)
}

func TestQuizSession_GetSessionMissingIsNil(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	ctx := context.Background()

	session, err := f.svc.GetSession(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestQuizSession_ConcurrentSubmissionsAllLand(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	f.seedMultipleChoice(t, "go", 8)
	ctx := context.Background()

	session, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 8)
	require.NoError(t, err)
	require.Len(t, session.Questions, 8)

	// One goroutine per question: submissions against the same session
	// serialize on its lock, so every append survives
	var wg sync.WaitGroup
	errs := make(chan error, len(session.Questions))
	for _, q := range session.Questions {
		wg.Add(1)
		go func(qid string) {
			defer wg.Done()
			_, err := f.svc.SubmitAnswer(ctx, session.ID, qid, "a", 1000)
			errs <- err
		}(q.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	final, err := f.svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, final.Answers, 8)
	assert.Equal(t, float64(100), final.Score)

	// Tracker updates are best-effort per answer but none went missing here
	records, err := f.mastery.MasteryByTopic(ctx, "u1", "go")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 8, records[0].TotalAttempts)
	assert.Equal(t, 8, records[0].CorrectAttempts)
	assert.Equal(t, 8, f.momentum.get(ctx, session.ID).QuestionsAnswered)

	progress, err := f.progress.ByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, 8, progress[0].QuestionsAttempted)
}

func TestQuizSession_SessionsProceedIndependently(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	f.seedMultipleChoice(t, "go", 4)
	f.seedMultipleChoice(t, "sql", 4)
	ctx := context.Background()

	s1, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 4)
	require.NoError(t, err)
	s2, err := f.svc.StartSession(ctx, "u2", "sql", model.DifficultyMedium, 4)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for _, s := range []*model.QuizSession{s1, s2} {
		for _, q := range s.Questions {
			wg.Add(1)
			go func(sid, qid string) {
				defer wg.Done()
				_, err := f.svc.SubmitAnswer(ctx, sid, qid, "a", 1000)
				errs <- err
			}(s.ID, q.ID)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for _, sid := range []string{s1.ID, s2.ID} {
		final, err := f.svc.GetSession(ctx, sid)
		require.NoError(t, err)
		assert.Len(t, final.Answers, 4)
		assert.Equal(t, float64(100), final.Score)
	}
}

func TestQuizSession_ResubmissionAppendsAnswer(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	f.seedMultipleChoice(t, "go", 1)
	ctx := context.Background()

	session, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 1)
	require.NoError(t, err)
	qid := session.Questions[0].ID

	_, err = f.svc.SubmitAnswer(ctx, session.ID, qid, "a", 1000)
	require.NoError(t, err)
	updated, err := f.svc.SubmitAnswer(ctx, session.ID, qid, "a", 1000)
	require.NoError(t, err)

	// Both submissions are recorded; the in-progress score counts each one
	require.Len(t, updated.Answers, 2)
	assert.Equal(t, float64(100), updated.Score)

	// The completed score divides by the question count, so a resubmitted
	// session can land above 100
	ended, err := f.svc.EndSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(200), ended.Score)
}

func TestQuizSession_NextQuestionsStepUpInFlow(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	f.seedMultipleChoice(t, "go", 2)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		require.NoError(t, f.questions.Insert(ctx, &model.Question{
			ID:            fmt.Sprintf("go-hard-q%d", i),
			Topic:         "go",
			Difficulty:    model.DifficultyHard,
			Type:          model.QuestionTypeMultipleChoice,
			Content:       "pick a",
			Options:       []string{"a", "b"},
			CorrectAnswer: "a",
		}))
	}

	session, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 2)
	require.NoError(t, err)

	// Two fast correct easy answers: the session is in flow and easy is now
	// proficient, so the step up from the recommended medium lands on hard
	for _, q := range session.Questions {
		_, err = f.svc.SubmitAnswer(ctx, session.ID, q.ID, "a", 1000)
		require.NoError(t, err)
	}

	next, err := f.svc.NextQuestions(ctx, session.ID, 2)
	require.NoError(t, err)
	require.Len(t, next, 2)
	inSession := map[string]bool{session.Questions[0].ID: true, session.Questions[1].ID: true}
	for _, q := range next {
		assert.Equal(t, model.DifficultyHard, q.Difficulty)
		assert.False(t, inSession[q.ID], "suggested a question already in the session")
		assert.Empty(t, q.CorrectAnswer)
	}
}

func TestQuizSession_NextQuestionsStayEasyWhenStruggling(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	f.seedMultipleChoice(t, "go", 4)
	ctx := context.Background()

	session, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 2)
	require.NoError(t, err)

	// Two slow wrong answers: struggling, and easy has no lower step
	for _, q := range session.Questions {
		_, err = f.svc.SubmitAnswer(ctx, session.ID, q.ID, "b", 200000)
		require.NoError(t, err)
	}

	next, err := f.svc.NextQuestions(ctx, session.ID, 2)
	require.NoError(t, err)
	require.Len(t, next, 2)
	inSession := map[string]bool{session.Questions[0].ID: true, session.Questions[1].ID: true}
	for _, q := range next {
		assert.Equal(t, model.DifficultyEasy, q.Difficulty)
		assert.False(t, inSession[q.ID])
	}
}

func TestQuizSession_NextQuestionsLifecycleErrors(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	f.seedMultipleChoice(t, "go", 1)
	ctx := context.Background()

	_, err := f.svc.NextQuestions(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	session, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 1)
	require.NoError(t, err)
	_, err = f.svc.EndSession(ctx, session.ID)
	require.NoError(t, err)

	_, err = f.svc.NextQuestions(ctx, session.ID, 1)
	assert.ErrorIs(t, err, ErrSessionNotInProgress)
}

func TestQuizSession_SubmitFeedsTrackers(t *testing.T) {
	f := newSessionFixture(t, stubEvaluator{score: 100})
	f.seedMultipleChoice(t, "go", 1)
	ctx := context.Background()

	session, err := f.svc.StartSession(ctx, "u1", "go", model.DifficultyMedium, 1)
	require.NoError(t, err)
	qid := session.Questions[0].ID

	_, err = f.svc.SubmitAnswer(ctx, session.ID, qid, "a", 4000)
	require.NoError(t, err)

	perf, err := f.mastery.Performance(ctx, "u1", qid)
	require.NoError(t, err)
	require.NotNil(t, perf)
	assert.Equal(t, 1, perf.CorrectAttempts)
	assert.Equal(t, int64(4000), perf.AverageResponseTimeMs)

	due, err := f.repetition.IsDue(ctx, "u1", qid)
	require.NoError(t, err)
	assert.False(t, due, "answered question should be scheduled for later review")

	assert.Equal(t, 1, f.momentum.get(ctx, session.ID).QuestionsAnswered)

	progress, err := f.progress.ByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, 1, progress[0].QuestionsAttempted)
}
