package storage

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/matzehuels/licensetower/pkg/errors"
)

const (
	mongoDefaultDatabase = "licensetower"
	mongoCollection      = "snapshots"
)

// Mongo stores each blob as one document keyed by blob name.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDoc struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// OpenMongo connects to the deployment described by a mongodb:// URI. The
// database named in the URI path is used, defaulting to "licensetower".
func OpenMongo(ctx context.Context, uri string) (*Mongo, error) {
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse mongo URI")
	}
	database := cs.Database
	if database == "" {
		database = mongoDefaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongo")
	}
	return &Mongo{
		client: client,
		coll:   client.Database(database).Collection(mongoCollection),
	}, nil
}

// Get reads the blob stored under key.
func (m *Mongo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc mongoDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStorage, err, "read %s", key)
	}
	return doc.Value, true, nil
}

// Update upserts the blob stored under key.
func (m *Mongo) Update(ctx context.Context, key string, data []byte) error {
	update := bson.M{"$set": bson.M{"value": data, "updatedAt": time.Now().UTC()}}
	_, err := m.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", key)
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

var _ Store = (*Mongo)(nil)
