package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campsite/pkg/model"
)

const CollectionName = "Sessions"

var ErrSessionNotFound = errors.New("session not found")

// Store is the keyed session persistence collaborator. Expiry is enforced
// both by the TTL index and by the Find guard below, since Mongo's reaper
// only runs periodically.
type Store interface {
	Find(ctx context.Context, token string) (*model.Session, error)
	Save(ctx context.Context, sess *model.Session) error
	Delete(ctx context.Context, token string) error
}

type mongoStore struct {
	collection *mongo.Collection
	opTimeout  time.Duration
}

func NewMongoStore(db *mongo.Database, opTimeout time.Duration) Store {
	return &mongoStore{
		collection: db.Collection(CollectionName),
		opTimeout:  opTimeout,
	}
}

func (s *mongoStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *mongoStore) Find(ctx context.Context, token string) (*model.Session, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var sess model.Session
	err := s.collection.FindOne(ctx, bson.M{"_id": token}).Decode(&sess)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	if time.Now().After(sess.ExpiresAt) {
		return nil, ErrSessionNotFound
	}

	return &sess, nil
}

func (s *mongoStore) Save(ctx context.Context, sess *model.Session) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": sess.Token}, sess, opts); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *mongoStore) Delete(ctx context.Context, token string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
