package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/tablelayout/pkg/errors"
	"github.com/matzehuels/tablelayout/pkg/program"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "tablelayout"
	DefaultMongoCollection = "programs"
)

// MongoOptions configures NewMongoStore.
type MongoOptions struct {
	URI        string
	Database   string // Defaults to DefaultMongoDatabase
	Collection string // Defaults to DefaultMongoCollection
	Timeout    time.Duration
}

// MongoStore keeps one BSON document per record, keyed by _id.
type MongoStore struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
	now     func() time.Time
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo URI is required")
	}
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI).SetTimeout(opts.Timeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}

	s := NewMongoStoreFromCollection(client.Database(opts.Database).Collection(opts.Collection))
	s.client = client
	s.timeout = opts.Timeout
	return s, nil
}

// NewMongoStoreFromCollection wraps an existing collection. Close does not
// disconnect a client it did not create.
func NewMongoStoreFromCollection(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll, timeout: 10 * time.Second, now: time.Now}
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := errors.ValidateProgramID(id); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.get(ctx, id)
}

func (s *MongoStore) get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, classify(err, "get %s", id)
	}
	return &rec, nil
}

func (s *MongoStore) Put(ctx context.Context, id string, doc *program.Document) (*Record, error) {
	if err := errors.ValidateProgramID(id); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prev, err := s.get(ctx, id)
	if err != nil && !errors.Is(err, errors.ErrCodeProgramNotFound) {
		return nil, err
	}
	rec, err := newRecord(prev, id, doc, s.now().UTC().Truncate(time.Millisecond))
	if err != nil {
		return nil, err
	}

	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": id}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, classify(err, "put %s", id)
	}
	return rec, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateProgramID(id); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify(err, "delete %s", id)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, classify(err, "list")
	}
	var out []*Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, classify(err, "list")
	}
	return out, nil
}

// Close disconnects the client if NewMongoStore created it.
func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// classify maps driver errors onto error codes.
func classify(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	switch {
	case mongo.IsTimeout(err):
		return errors.Wrap(errors.ErrCodeTimeout, err, "%s", msg)
	case mongo.IsNetworkError(err):
		return errors.Wrap(errors.ErrCodeNetwork, err, "%s", msg)
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "%s", msg)
}

var _ Store = (*MongoStore)(nil)
