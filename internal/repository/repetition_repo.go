package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"interviewprep/internal/model"
)

// RepetitionRepo stores per (user, question) spaced-repetition state
type RepetitionRepo interface {
	// Get returns nil when no record exists; an absent record is the valid
	// "new question" state, not an error.
	Get(ctx context.Context, userID, questionID string) (*model.SpacedRepetitionRecord, error)
	Upsert(ctx context.Context, rec *model.SpacedRepetitionRecord) error
	// DueByUser returns records with nextReviewDate <= before, ascending by
	// nextReviewDate. limit <= 0 means no limit.
	DueByUser(ctx context.Context, userID string, before time.Time, limit int64) ([]model.SpacedRepetitionRecord, error)
	CountDue(ctx context.Context, userID string, before time.Time) (int64, error)
}

type repetitionRepo struct {
	collection *mongo.Collection
}

// NewRepetitionRepo creates a Mongo-backed spaced-repetition repository
func NewRepetitionRepo(db *mongo.Database) RepetitionRepo {
	return &repetitionRepo{collection: db.Collection("spaced_repetition")}
}

func (r *repetitionRepo) Get(ctx context.Context, userID, questionID string) (*model.SpacedRepetitionRecord, error) {
	var rec model.SpacedRepetitionRecord
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "questionId": questionID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repetitionRepo) Upsert(ctx context.Context, rec *model.SpacedRepetitionRecord) error {
	filter := bson.M{"userId": rec.UserID, "questionId": rec.QuestionID}
	_, err := r.collection.ReplaceOne(ctx, filter, rec, options.Replace().SetUpsert(true))
	return err
}

func (r *repetitionRepo) DueByUser(ctx context.Context, userID string, before time.Time, limit int64) ([]model.SpacedRepetitionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "nextReviewDate", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	filter := bson.M{"userId": userID, "nextReviewDate": bson.M{"$lte": before}}
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []model.SpacedRepetitionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repetitionRepo) CountDue(ctx context.Context, userID string, before time.Time) (int64, error) {
	filter := bson.M{"userId": userID, "nextReviewDate": bson.M{"$lte": before}}
	return r.collection.CountDocuments(ctx, filter)
}
