package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gsbingo17/tms-migrate/pkg/attachment"
	"github.com/gsbingo17/tms-migrate/pkg/logger"
)

// MongoStore persists attachments in a MongoDB collection. Documents are
// keyed by attachment id (_id) and carry the owner id for scoping.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	log        *logger.Logger
}

// NewMongoStore connects to MongoDB and returns a store over the given
// database and collection.
func NewMongoStore(connectionString, databaseName, collectionName string, log *logger.Logger) (*MongoStore, error) {
	// Set client options
	clientOptions := options.Client().
		ApplyURI(connectionString).
		SetMaxPoolSize(64).
		SetConnectTimeout(30 * time.Second).
		SetSocketTimeout(120 * time.Second)

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(databaseName).Collection(collectionName),
		log:        log,
	}, nil
}

// Put stores the attachment under the given owner
func (s *MongoStore) Put(ctx context.Context, ownerID string, att attachment.Attachment) error {
	att.OwnerID = ownerID

	// Conversions always produce fresh ids, so a replace with upsert keeps
	// Put idempotent without a second round trip.
	filter := bson.M{"_id": att.ID, "ownerId": ownerID}
	_, err := s.collection.ReplaceOne(ctx, filter, att, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to store attachment %s: %w", att.ID, err)
	}
	return nil
}

// Get returns the attachment and whether it exists
func (s *MongoStore) Get(ctx context.Context, ownerID, attachmentID string) (attachment.Attachment, bool, error) {
	var att attachment.Attachment
	filter := bson.M{"_id": attachmentID, "ownerId": ownerID}

	err := s.collection.FindOne(ctx, filter).Decode(&att)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return attachment.Attachment{}, false, nil
	}
	if err != nil {
		return attachment.Attachment{}, false, fmt.Errorf("failed to read attachment %s: %w", attachmentID, err)
	}
	return att, true, nil
}

// Delete removes the attachment
func (s *MongoStore) Delete(ctx context.Context, ownerID, attachmentID string) error {
	filter := bson.M{"_id": attachmentID, "ownerId": ownerID}
	if _, err := s.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete attachment %s: %w", attachmentID, err)
	}
	return nil
}

// Close closes the MongoDB connection
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
