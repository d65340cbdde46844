package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/endocare/internal/config"
	"github.com/terraincognita07/endocare/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const countersCollection = "counters"

// Store keeps each record kind in its own collection. Numeric ids come from
// a per-kind sequence in the counters collection so records look the same
// as in the relational backends.
type Store struct {
	client   *mongo.Client
	database *mongo.Database
	timeout  time.Duration
}

func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Store{
		client:   client,
		database: client.Database(cfg.Database),
		timeout:  timeout,
	}, nil
}

func (store *Store) Name() string {
	return config.BackendMongo
}

func (store *Store) Insert(ctx context.Context, record models.Record) error {
	if record == nil {
		return fmt.Errorf("insert: nil record")
	}
	collectionName := record.Kind().Table()
	if collectionName == "" {
		return fmt.Errorf("insert: unknown record kind %q", record.Kind())
	}

	id, err := store.nextID(ctx, collectionName)
	if err != nil {
		return err
	}
	record.SetRecordID(id)

	if _, err := store.database.Collection(collectionName).InsertOne(ctx, record); err != nil {
		record.SetRecordID(0)
		return fmt.Errorf("insert into %s: %w", collectionName, err)
	}
	return nil
}

func (store *Store) List(ctx context.Context, kind models.Kind, ownerID uint) ([]models.Record, error) {
	collectionName := kind.Table()
	if collectionName == "" {
		return nil, fmt.Errorf("list: unknown record kind %q", kind)
	}

	cursor, err := store.database.Collection(collectionName).Find(ctx, ownerFilter(ownerID), listOptions())
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", collectionName, err)
	}
	defer cursor.Close(ctx)

	records := make([]models.Record, 0)
	for cursor.Next(ctx) {
		record := kind.New()
		if err := cursor.Decode(record); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", collectionName, err)
		}
		records = append(records, record)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collectionName, err)
	}
	return records, nil
}

func (store *Store) LatestCreatedAt(ctx context.Context, kind models.Kind) (time.Time, error) {
	collectionName := kind.Table()
	if collectionName == "" {
		return time.Time{}, fmt.Errorf("latest created_at: unknown record kind %q", kind)
	}

	var newest struct {
		CreatedAt time.Time `bson:"created_at"`
	}
	err := store.database.Collection(collectionName).FindOne(ctx, bson.M{}, latestOptions()).Decode(&newest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("latest created_at in %s: %w", collectionName, err)
	}
	return newest.CreatedAt, nil
}

// EnsureIndexes creates the owner/date index every list query uses.
func (store *Store) EnsureIndexes(ctx context.Context) ([]string, error) {
	created := make([]string, 0, len(models.AllKinds()))
	for _, kind := range models.AllKinds() {
		name, err := store.database.Collection(kind.Table()).Indexes().CreateOne(ctx, listIndex())
		if err != nil {
			return created, fmt.Errorf("create index on %s: %w", kind.Table(), err)
		}
		created = append(created, kind.Table()+"."+name)
	}
	return created, nil
}

func (store *Store) Ping(ctx context.Context) error {
	return store.client.Ping(ctx, nil)
}

func (store *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), store.timeout)
	defer cancel()
	return store.client.Disconnect(ctx)
}

func (store *Store) nextID(ctx context.Context, sequence string) (uint, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := store.database.Collection(countersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": sequence}, counterIncrement(), counterOptions()).
		Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next id for %s: %w", sequence, err)
	}
	if counter.Seq <= 0 {
		return 0, fmt.Errorf("next id for %s: invalid sequence value %d", sequence, counter.Seq)
	}
	return uint(counter.Seq), nil
}

func ownerFilter(ownerID uint) bson.M {
	return bson.M{"owner_id": ownerID}
}

func listOptions() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
}

func latestOptions() *options.FindOneOptions {
	return options.FindOne().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"created_at": 1})
}

func listIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "date", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName("owner_date_id"),
	}
}

func counterIncrement() bson.M {
	return bson.M{"$inc": bson.M{"seq": int64(1)}}
}

func counterOptions() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
}
