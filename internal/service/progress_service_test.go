package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"interviewprep/internal/repository"
)

func newProgressService(now time.Time) *ProgressService {
	svc := NewProgressService(repository.NewMemoryProgressRepo(), testLearningConfig(), zap.NewNop().Sugar())
	svc.now = func() time.Time { return now }
	return svc
}

func TestProgress_RecordAttemptTracksScore(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newProgressService(now)
	ctx := context.Background()

	require.NoError(t, svc.RecordAttempt(ctx, "u1", "go", true))
	require.NoError(t, svc.RecordAttempt(ctx, "u1", "go", true))
	require.NoError(t, svc.RecordAttempt(ctx, "u1", "go", false))

	all, err := svc.ByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 3, all[0].QuestionsAttempted)
	assert.Equal(t, 2, all[0].QuestionsCorrect)
	assert.InDelta(t, 200.0/3.0, all[0].OverallScore, 1e-9)
	assert.True(t, all[0].Active)
}

func TestProgress_ResetExpiredRestartsIdleCycles(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newProgressService(start)
	ctx := context.Background()

	require.NoError(t, svc.RecordAttempt(ctx, "u1", "go", true))
	require.NoError(t, svc.RecordAttempt(ctx, "u1", "sql", false))

	// Nine days later nothing has expired against the ten-day cycle
	svc.now = func() time.Time { return start.AddDate(0, 0, 9) }
	reset, err := svc.ResetExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, reset)

	// Eleven days later both topics restart
	svc.now = func() time.Time { return start.AddDate(0, 0, 11) }
	reset, err = svc.ResetExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, reset)

	all, err := svc.ByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 4)

	active := 0
	for _, p := range all {
		if p.Active {
			active++
			assert.Equal(t, 0, p.QuestionsAttempted, "fresh cycle must start empty")
		}
	}
	assert.Equal(t, 2, active)
}

func TestProgress_ResetIsIdempotentAcrossRuns(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newProgressService(start)
	ctx := context.Background()

	require.NoError(t, svc.RecordAttempt(ctx, "u1", "go", true))

	svc.now = func() time.Time { return start.AddDate(0, 0, 11) }
	reset, err := svc.ResetExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, reset)

	// The replacement cycle has no attempts yet and sits inside the window
	reset, err = svc.ResetExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, reset)
}
