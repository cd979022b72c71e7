package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"interviewprep/internal/model"
)

// QuestionRepo is the persisted question bank
type QuestionRepo interface {
	Insert(ctx context.Context, q *model.Question) error
	InsertMany(ctx context.Context, qs []model.Question) error
	ByID(ctx context.Context, id string) (*model.Question, error)
	ByIDs(ctx context.Context, ids []string) ([]model.Question, error)
	ByTopicAndDifficulty(ctx context.Context, topic string, difficulty model.Difficulty, limit int64) ([]model.Question, error)
	Topics(ctx context.Context) ([]string, error)
}

type questionRepo struct {
	collection *mongo.Collection
}

// NewQuestionRepo creates a Mongo-backed question repository
func NewQuestionRepo(db *mongo.Database) QuestionRepo {
	return &questionRepo{collection: db.Collection("questions")}
}

func (r *questionRepo) Insert(ctx context.Context, q *model.Question) error {
	_, err := r.collection.InsertOne(ctx, q)
	return err
}

func (r *questionRepo) InsertMany(ctx context.Context, qs []model.Question) error {
	if len(qs) == 0 {
		return nil
	}
	docs := make([]interface{}, len(qs))
	for i := range qs {
		docs[i] = qs[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *questionRepo) ByID(ctx context.Context, id string) (*model.Question, error) {
	var q model.Question
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionRepo) ByIDs(ctx context.Context, ids []string) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []model.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}

	// Preserve the requested order; $in does not guarantee it
	byID := make(map[string]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	ordered := make([]model.Question, 0, len(questions))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

func (r *questionRepo) ByTopicAndDifficulty(ctx context.Context, topic string, difficulty model.Difficulty, limit int64) ([]model.Question, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{"topic": topic, "difficulty": difficulty}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []model.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) Topics(ctx context.Context) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "topic", bson.M{})
	if err != nil {
		return nil, err
	}
	topics := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			topics = append(topics, s)
		}
	}
	return topics, nil
}
