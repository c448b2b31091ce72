package history

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/gitlanes/pkg/errors"
)

// MongoConfig holds MongoDB connection settings for the event store.
type MongoConfig struct {
	URI        string // e.g. "mongodb://localhost:27017"
	Database   string // defaults to "gitlanes"
	Collection string // defaults to "merge_events"
}

// MongoStore keeps merge events in a Mongo collection, one document per
// event, indexed by repository.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore connects to MongoDB and prepares the event collection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "gitlanes"
	}
	if cfg.Collection == "" {
		cfg.Collection = "merge_events"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "repo_id", Value: 1}, {Key: "recorded_at", Value: 1}}},
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create event indexes")
	}

	return &MongoStore{client: client, collection: coll}, nil
}

func (s *MongoStore) Record(ctx context.Context, event Event) error {
	if _, err := s.collection.InsertOne(ctx, event); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "insert merge event")
	}
	return nil
}

func (s *MongoStore) Events(ctx context.Context, repoID string) ([]Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{"repo_id": repoID}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "query merge events")
	}
	defer cursor.Close(ctx)

	events := []Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode merge events")
	}
	return events, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
