package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/esouk/onboarding/internal/onboarding/domain"
)

const snapshotCollectionName = "onboarding_snapshots"

type mongoSnapshot struct {
	Key       string    `bson:"_id"`
	VendorID  string    `bson:"vendor_id"`
	State     string    `bson:"state"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type MongoStateStore struct {
	collection *mongo.Collection
}

func NewMongoStateStore(db *mongo.Database) *MongoStateStore {
	return &MongoStateStore{collection: db.Collection(snapshotCollectionName)}
}

func (s *MongoStateStore) Save(ctx context.Context, vendorID string, snapshot []byte) error {
	key := domain.StateKey(vendorID)
	doc := mongoSnapshot{Key: key, VendorID: vendorID, State: string(snapshot), UpdatedAt: time.Now()}

	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save onboarding snapshot: %w", err)
	}
	return nil
}

func (s *MongoStateStore) Load(ctx context.Context, vendorID string) ([]byte, error) {
	var doc mongoSnapshot
	err := s.collection.FindOne(ctx, bson.M{"_id": domain.StateKey(vendorID)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find onboarding snapshot: %w", err)
	}
	return []byte(doc.State), nil
}

func (s *MongoStateStore) Delete(ctx context.Context, vendorID string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": domain.StateKey(vendorID)})
	if err != nil {
		return fmt.Errorf("failed to delete onboarding snapshot: %w", err)
	}
	return nil
}

func (s *MongoStateStore) Ping(ctx context.Context) error {
	return s.collection.Database().Client().Ping(ctx, readpref.Primary())
}
