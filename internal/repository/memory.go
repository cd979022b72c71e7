package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"interviewprep/internal/model"
)

// In-memory implementations of the repository interfaces. They back the
// server when no MONGO_URI is configured and every package test. Each store
// copies records on the way in and out so callers never share memory with the
// store.

type memoryQuestionRepo struct {
	mu        sync.RWMutex
	questions map[string]model.Question
	order     []string
}

// NewMemoryQuestionRepo creates an in-memory question repository
func NewMemoryQuestionRepo() QuestionRepo {
	return &memoryQuestionRepo{questions: make(map[string]model.Question)}
}

func (r *memoryQuestionRepo) Insert(_ context.Context, q *model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.questions[q.ID]; !ok {
		r.order = append(r.order, q.ID)
	}
	r.questions[q.ID] = *q
	return nil
}

func (r *memoryQuestionRepo) InsertMany(ctx context.Context, qs []model.Question) error {
	for i := range qs {
		if err := r.Insert(ctx, &qs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryQuestionRepo) ByID(_ context.Context, id string) (*model.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if q, ok := r.questions[id]; ok {
		return &q, nil
	}
	return nil, nil
}

func (r *memoryQuestionRepo) ByIDs(_ context.Context, ids []string) ([]model.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := r.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *memoryQuestionRepo) ByTopicAndDifficulty(_ context.Context, topic string, difficulty model.Difficulty, limit int64) ([]model.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Question
	for _, id := range r.order {
		q := r.questions[id]
		if q.Topic != topic || q.Difficulty != difficulty {
			continue
		}
		out = append(out, q)
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (r *memoryQuestionRepo) Topics(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var topics []string
	for _, id := range r.order {
		q := r.questions[id]
		if !seen[q.Topic] {
			seen[q.Topic] = true
			topics = append(topics, q.Topic)
		}
	}
	return topics, nil
}

type repetitionKey struct{ userID, questionID string }

type memoryRepetitionRepo struct {
	mu      sync.RWMutex
	records map[repetitionKey]model.SpacedRepetitionRecord
}

// NewMemoryRepetitionRepo creates an in-memory spaced-repetition repository
func NewMemoryRepetitionRepo() RepetitionRepo {
	return &memoryRepetitionRepo{records: make(map[repetitionKey]model.SpacedRepetitionRecord)}
}

func (r *memoryRepetitionRepo) Get(_ context.Context, userID, questionID string) (*model.SpacedRepetitionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rec, ok := r.records[repetitionKey{userID, questionID}]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (r *memoryRepetitionRepo) Upsert(_ context.Context, rec *model.SpacedRepetitionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[repetitionKey{rec.UserID, rec.QuestionID}] = *rec
	return nil
}

func (r *memoryRepetitionRepo) DueByUser(_ context.Context, userID string, before time.Time, limit int64) ([]model.SpacedRepetitionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var due []model.SpacedRepetitionRecord
	for key, rec := range r.records {
		if key.userID == userID && !rec.NextReviewDate.After(before) {
			due = append(due, rec)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].NextReviewDate.Before(due[j].NextReviewDate)
	})
	if limit > 0 && int64(len(due)) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *memoryRepetitionRepo) CountDue(ctx context.Context, userID string, before time.Time) (int64, error) {
	due, err := r.DueByUser(ctx, userID, before, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(due)), nil
}

type memoryPerformanceRepo struct {
	mu      sync.RWMutex
	records map[repetitionKey]model.PerformanceRecord
}

// NewMemoryPerformanceRepo creates an in-memory performance repository
func NewMemoryPerformanceRepo() PerformanceRepo {
	return &memoryPerformanceRepo{records: make(map[repetitionKey]model.PerformanceRecord)}
}

func (r *memoryPerformanceRepo) Get(_ context.Context, userID, questionID string) (*model.PerformanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rec, ok := r.records[repetitionKey{userID, questionID}]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (r *memoryPerformanceRepo) Upsert(_ context.Context, rec *model.PerformanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[repetitionKey{rec.UserID, rec.QuestionID}] = *rec
	return nil
}

func (r *memoryPerformanceRepo) ByUserAndTopic(_ context.Context, userID, topic string) ([]model.PerformanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.PerformanceRecord
	for key, rec := range r.records {
		if key.userID == userID && rec.Topic == topic {
			out = append(out, rec)
		}
	}
	return out, nil
}

type masteryKey struct {
	userID, topic string
	difficulty    model.Difficulty
}

type memoryMasteryRepo struct {
	mu      sync.RWMutex
	records map[masteryKey]model.MasteryRecord
}

// NewMemoryMasteryRepo creates an in-memory mastery repository
func NewMemoryMasteryRepo() MasteryRepo {
	return &memoryMasteryRepo{records: make(map[masteryKey]model.MasteryRecord)}
}

func (r *memoryMasteryRepo) Get(_ context.Context, userID, topic string, difficulty model.Difficulty) (*model.MasteryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rec, ok := r.records[masteryKey{userID, topic, difficulty}]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (r *memoryMasteryRepo) Upsert(_ context.Context, rec *model.MasteryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[masteryKey{rec.UserID, rec.Topic, rec.Difficulty}] = *rec
	return nil
}

func (r *memoryMasteryRepo) ByUserAndTopic(_ context.Context, userID, topic string) ([]model.MasteryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.MasteryRecord
	for key, rec := range r.records {
		if key.userID == userID && key.topic == topic {
			out = append(out, rec)
		}
	}
	return out, nil
}

type memoryProgressRepo struct {
	mu      sync.RWMutex
	records map[string]model.TopicProgress
}

// NewMemoryProgressRepo creates an in-memory topic progress repository
func NewMemoryProgressRepo() ProgressRepo {
	return &memoryProgressRepo{records: make(map[string]model.TopicProgress)}
}

func (r *memoryProgressRepo) GetActive(_ context.Context, userID, topic string) (*model.TopicProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.UserID == userID && rec.Topic == topic && rec.Active {
			out := rec
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memoryProgressRepo) Insert(_ context.Context, p *model.TopicProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[p.ID] = *p
	return nil
}

func (r *memoryProgressRepo) Update(_ context.Context, p *model.TopicProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[p.ID] = *p
	return nil
}

func (r *memoryProgressRepo) ByUser(_ context.Context, userID string) ([]model.TopicProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.TopicProgress
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memoryProgressRepo) ActiveAttemptedBefore(_ context.Context, cutoff time.Time) ([]model.TopicProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.TopicProgress
	for _, rec := range r.records {
		if !rec.Active {
			continue
		}
		last := rec.StartDate
		if rec.LastAttemptDate != nil {
			last = *rec.LastAttemptDate
		}
		if last.Before(cutoff) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type memorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]model.QuizSession
}

// NewMemorySessionRepo creates an in-memory session repository
func NewMemorySessionRepo() SessionRepo {
	return &memorySessionRepo{sessions: make(map[string]model.QuizSession)}
}

func (r *memorySessionRepo) Create(_ context.Context, s *model.QuizSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *copySession(s)
	return nil
}

func (r *memorySessionRepo) Get(_ context.Context, id string) (*model.QuizSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[id]; ok {
		return copySession(&s), nil
	}
	return nil, nil
}

func (r *memorySessionRepo) Update(_ context.Context, s *model.QuizSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *copySession(s)
	return nil
}

func copySession(s *model.QuizSession) *model.QuizSession {
	c := *s
	c.Questions = append([]model.Question(nil), s.Questions...)
	c.Answers = append([]model.UserAnswer(nil), s.Answers...)
	return &c
}
