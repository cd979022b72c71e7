package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"interviewprep/internal/model"
	"interviewprep/internal/repository"
)

func newRepetitionService(now time.Time) (*SpacedRepetitionService, repository.RepetitionRepo) {
	repo := repository.NewMemoryRepetitionRepo()
	svc := NewSpacedRepetitionService(repo, zap.NewNop().Sugar())
	svc.now = func() time.Time { return now }
	return svc, repo
}

func TestSpacedRepetition_InitializeIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newRepetitionService(now)
	ctx := context.Background()

	first, err := svc.Initialize(ctx, "u1", "q1")
	require.NoError(t, err)
	assert.Equal(t, model.InitialEaseFactor, first.EaseFactor)
	assert.Equal(t, 0, first.RepetitionNumber)
	assert.True(t, first.IsDue(now))

	second, err := svc.Initialize(ctx, "u1", "q1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestSpacedRepetition_IntervalProgression(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newRepetitionService(now)
	ctx := context.Background()

	// First correct answer: ease 2.5 -> 2.6, interval 1 day
	rec, err := svc.RecordAnswer(ctx, "u1", "q1", true)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.RepetitionNumber)
	assert.InDelta(t, 2.6, rec.EaseFactor, 1e-9)
	assert.Equal(t, 1, rec.IntervalDays)
	assert.Equal(t, now.AddDate(0, 0, 1), rec.NextReviewDate)

	// Second: 2.6 -> 2.7, interval 6 days
	rec, err = svc.RecordAnswer(ctx, "u1", "q1", true)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.RepetitionNumber)
	assert.InDelta(t, 2.7, rec.EaseFactor, 1e-9)
	assert.Equal(t, 6, rec.IntervalDays)

	// Third: 2.7 -> 2.8, interval round(6 * 2.8) = 17 days
	rec, err = svc.RecordAnswer(ctx, "u1", "q1", true)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.RepetitionNumber)
	assert.InDelta(t, 2.8, rec.EaseFactor, 1e-9)
	assert.Equal(t, 17, rec.IntervalDays)
	assert.Equal(t, now.AddDate(0, 0, 17), rec.NextReviewDate)
}

func TestSpacedRepetition_MissShrinksEaseButAdvancesSchedule(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newRepetitionService(now)
	ctx := context.Background()

	rec, err := svc.RecordAnswer(ctx, "u1", "q1", false)
	require.NoError(t, err)
	assert.InDelta(t, 2.3, rec.EaseFactor, 1e-9)
	// The repetition number still advances on a miss
	assert.Equal(t, 1, rec.RepetitionNumber)
	assert.Equal(t, 1, rec.IntervalDays)
	assert.Equal(t, 1, rec.ConsecutiveIncorrect)
	assert.Equal(t, 0, rec.ConsecutiveCorrect)
}

func TestSpacedRepetition_EaseFactorFloor(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newRepetitionService(now)
	ctx := context.Background()

	var rec *model.SpacedRepetitionRecord
	var err error
	for i := 0; i < 10; i++ {
		rec, err = svc.RecordAnswer(ctx, "u1", "q1", false)
		require.NoError(t, err)
	}
	assert.Equal(t, model.MinEaseFactor, rec.EaseFactor)
	assert.Equal(t, 10, rec.ConsecutiveIncorrect)
}

func TestSpacedRepetition_NoUpperEaseClamp(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newRepetitionService(now)
	ctx := context.Background()

	var rec *model.SpacedRepetitionRecord
	var err error
	for i := 0; i < 30; i++ {
		rec, err = svc.RecordAnswer(ctx, "u1", "q1", true)
		require.NoError(t, err)
	}
	assert.InDelta(t, 2.5+30*0.1, rec.EaseFactor, 1e-9)
}

func TestSpacedRepetition_DueQuestionsOrderedByReviewDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, repo := newRepetitionService(now)
	ctx := context.Background()

	for i, q := range []struct {
		id   string
		days int
	}{{"q-later", -1}, {"q-earliest", -5}, {"q-middle", -3}, {"q-future", 4}} {
		rec := model.NewSpacedRepetitionRecord("u1", q.id, now)
		rec.ID = q.id
		rec.NextReviewDate = now.AddDate(0, 0, q.days)
		require.NoError(t, repo.Upsert(ctx, rec), "record %d", i)
	}

	due, err := svc.DueQuestions(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, "q-earliest", due[0].QuestionID)
	assert.Equal(t, "q-middle", due[1].QuestionID)
	assert.Equal(t, "q-later", due[2].QuestionID)

	count, err := svc.CountDue(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestSpacedRepetition_UnseenQuestionIsDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newRepetitionService(now)
	ctx := context.Background()

	due, err := svc.IsDue(ctx, "u1", "never-seen")
	require.NoError(t, err)
	assert.True(t, due)

	next, err := svc.NextReviewDate(ctx, "u1", "never-seen")
	require.NoError(t, err)
	assert.Equal(t, now, next)
}
