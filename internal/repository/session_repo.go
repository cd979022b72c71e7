package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"interviewprep/internal/model"
)

// SessionRepo stores quiz sessions. Sessions outlive process restarts so an
// in-flight quiz can resume.
type SessionRepo interface {
	Create(ctx context.Context, s *model.QuizSession) error
	// Get returns nil when the session does not exist
	Get(ctx context.Context, id string) (*model.QuizSession, error)
	Update(ctx context.Context, s *model.QuizSession) error
}

type sessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo creates a Mongo-backed session repository
func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{collection: db.Collection("quiz_sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, s *model.QuizSession) error {
	_, err := r.collection.InsertOne(ctx, s)
	return err
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*model.QuizSession, error) {
	var s model.QuizSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) Update(ctx context.Context, s *model.QuizSession) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	return err
}
