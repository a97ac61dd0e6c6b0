package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"swipeinterview/internal/model"
)

type mongoSessionStore struct {
	collection *mongo.Collection
}

// NewMongoSessionStore keeps one document per session in the "sessions"
// collection and replaces the collection contents on every save.
func NewMongoSessionStore(db *mongo.Database) SessionStore {
	return &mongoSessionStore{
		collection: db.Collection(SessionsKey),
	}
}

func (s *mongoSessionStore) Load(ctx context.Context) ([]*model.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *mongoSessionStore) Save(ctx context.Context, sessions []*model.Session) error {
	ids := make([]string, 0, len(sessions))
	writes := make([]mongo.WriteModel, 0, len(sessions))
	for _, sess := range sessions {
		ids = append(ids, sess.ID)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": sess.ID}).
			SetReplacement(sess).
			SetUpsert(true))
	}

	// drop sessions that left the collection
	if _, err := s.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": ids}}); err != nil {
		return err
	}
	if len(writes) == 0 {
		return nil
	}
	_, err := s.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}
