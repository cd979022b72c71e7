package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"interviewprep/internal/model"
)

// PerformanceRepo stores per (user, question) attempt history
type PerformanceRepo interface {
	Get(ctx context.Context, userID, questionID string) (*model.PerformanceRecord, error)
	Upsert(ctx context.Context, rec *model.PerformanceRecord) error
	ByUserAndTopic(ctx context.Context, userID, topic string) ([]model.PerformanceRecord, error)
}

// MasteryRepo stores per (user, topic, difficulty) aggregates
type MasteryRepo interface {
	Get(ctx context.Context, userID, topic string, difficulty model.Difficulty) (*model.MasteryRecord, error)
	Upsert(ctx context.Context, rec *model.MasteryRecord) error
	ByUserAndTopic(ctx context.Context, userID, topic string) ([]model.MasteryRecord, error)
}

type performanceRepo struct {
	collection *mongo.Collection
}

// NewPerformanceRepo creates a Mongo-backed performance repository
func NewPerformanceRepo(db *mongo.Database) PerformanceRepo {
	return &performanceRepo{collection: db.Collection("question_performance")}
}

func (r *performanceRepo) Get(ctx context.Context, userID, questionID string) (*model.PerformanceRecord, error) {
	var rec model.PerformanceRecord
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "questionId": questionID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *performanceRepo) Upsert(ctx context.Context, rec *model.PerformanceRecord) error {
	filter := bson.M{"userId": rec.UserID, "questionId": rec.QuestionID}
	_, err := r.collection.ReplaceOne(ctx, filter, rec, options.Replace().SetUpsert(true))
	return err
}

func (r *performanceRepo) ByUserAndTopic(ctx context.Context, userID, topic string) ([]model.PerformanceRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID, "topic": topic})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []model.PerformanceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

type masteryRepo struct {
	collection *mongo.Collection
}

// NewMasteryRepo creates a Mongo-backed mastery repository
func NewMasteryRepo(db *mongo.Database) MasteryRepo {
	return &masteryRepo{collection: db.Collection("mastery")}
}

func (r *masteryRepo) Get(ctx context.Context, userID, topic string, difficulty model.Difficulty) (*model.MasteryRecord, error) {
	var rec model.MasteryRecord
	filter := bson.M{"userId": userID, "topic": topic, "difficulty": difficulty}
	err := r.collection.FindOne(ctx, filter).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *masteryRepo) Upsert(ctx context.Context, rec *model.MasteryRecord) error {
	filter := bson.M{"userId": rec.UserID, "topic": rec.Topic, "difficulty": rec.Difficulty}
	_, err := r.collection.ReplaceOne(ctx, filter, rec, options.Replace().SetUpsert(true))
	return err
}

func (r *masteryRepo) ByUserAndTopic(ctx context.Context, userID, topic string) ([]model.MasteryRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID, "topic": topic})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []model.MasteryRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
