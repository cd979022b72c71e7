package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"interviewprep/internal/model"
)

// ProgressRepo stores per (user, topic) learning-cycle aggregates. Reset
// history is kept: deactivated records stay in the collection.
type ProgressRepo interface {
	GetActive(ctx context.Context, userID, topic string) (*model.TopicProgress, error)
	Insert(ctx context.Context, p *model.TopicProgress) error
	Update(ctx context.Context, p *model.TopicProgress) error
	ByUser(ctx context.Context, userID string) ([]model.TopicProgress, error)
	// ActiveAttemptedBefore returns active records whose last attempt is older
	// than the cutoff; records never attempted are judged by their start date.
	ActiveAttemptedBefore(ctx context.Context, cutoff time.Time) ([]model.TopicProgress, error)
}

type progressRepo struct {
	collection *mongo.Collection
}

// NewProgressRepo creates a Mongo-backed topic progress repository
func NewProgressRepo(db *mongo.Database) ProgressRepo {
	return &progressRepo{collection: db.Collection("topic_progress")}
}

func (r *progressRepo) GetActive(ctx context.Context, userID, topic string) (*model.TopicProgress, error) {
	var p model.TopicProgress
	filter := bson.M{"userId": userID, "topic": topic, "active": true}
	err := r.collection.FindOne(ctx, filter).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *progressRepo) Insert(ctx context.Context, p *model.TopicProgress) error {
	_, err := r.collection.InsertOne(ctx, p)
	return err
}

func (r *progressRepo) Update(ctx context.Context, p *model.TopicProgress) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	return err
}

func (r *progressRepo) ByUser(ctx context.Context, userID string) ([]model.TopicProgress, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []model.TopicProgress
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *progressRepo) ActiveAttemptedBefore(ctx context.Context, cutoff time.Time) ([]model.TopicProgress, error) {
	filter := bson.M{
		"active": true,
		"$or": []bson.M{
			{"lastAttemptDate": bson.M{"$lt": cutoff}},
			{"lastAttemptDate": nil, "startDate": bson.M{"$lt": cutoff}},
		},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []model.TopicProgress
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
