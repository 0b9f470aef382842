package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	currency "github.com/malusev998/currency-board"
)

type (
	mongoStorage struct {
		ctx        context.Context
		client     *mongo.Client
		collection *mongo.Collection
	}

	mongoSnapshot struct {
		ID        interface{}        `bson:"_id,omitempty"`
		Base      string             `bson:"base"`
		Provider  string             `bson:"provider"`
		Rates     map[string]float64 `bson:"rates"`
		FetchedAt time.Time          `bson:"fetchedAt"`
	}
)

func (m mongoStorage) Store(ctx context.Context, snapshot currency.Snapshot) (currency.SnapshotWithID, error) {
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = time.Now()
	}

	rates := make(map[string]float64, len(snapshot.Rates))
	for code, rate := range snapshot.Rates {
		rates[code.String()] = rate
	}

	opts := options.FindOneAndReplace().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored mongoSnapshot

	err := m.collection.FindOneAndReplace(ctx, bson.M{"base": snapshot.Base.String()}, mongoSnapshot{
		Base:      snapshot.Base.String(),
		Provider:  string(snapshot.Provider),
		Rates:     rates,
		FetchedAt: snapshot.FetchedAt,
	}, opts).Decode(&stored)

	if err != nil {
		return currency.SnapshotWithID{}, err
	}

	return currency.SnapshotWithID{
		Snapshot: snapshot,
		ID:       stored.ID,
	}, nil
}

func (m mongoStorage) Latest(ctx context.Context, base currency.Code) (currency.SnapshotWithID, error) {
	var stored mongoSnapshot

	err := m.collection.FindOne(ctx, bson.M{"base": base.String()}).Decode(&stored)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return currency.SnapshotWithID{}, fmt.Errorf("%w: %s", currency.ErrSnapshotNotFound, base)
	}

	if err != nil {
		return currency.SnapshotWithID{}, err
	}

	rates := make(currency.Rates, len(stored.Rates))
	for code, rate := range stored.Rates {
		rates.Set(currency.Code(code), rate)
	}

	return currency.SnapshotWithID{
		Snapshot: currency.Snapshot{
			Base:      base,
			Rates:     rates,
			Provider:  currency.Provider(stored.Provider),
			FetchedAt: stored.FetchedAt,
		},
		ID: stored.ID,
	}, nil
}

func (m mongoStorage) GetStorageProviderName() string {
	return string(MongoDB)
}

func (m mongoStorage) Migrate() error {
	_, err := m.collection.Indexes().CreateOne(m.ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "base", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return err
}

func (m mongoStorage) Drop() error {
	return m.collection.Drop(m.ctx)
}

func (m mongoStorage) Close() error {
	if m.client == nil {
		return nil
	}

	return m.client.Disconnect(m.ctx)
}

func NewMongoStorage(config MongoDBConfig) (currency.Storage, error) {
	ctx := config.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.ConnectionString))
	if err != nil {
		return nil, err
	}

	collection := config.Collection
	if collection == "" {
		collection = DefaultTableName
	}

	storage := mongoStorage{
		ctx:        ctx,
		client:     client,
		collection: client.Database(config.Database).Collection(collection),
	}

	if config.Migrate {
		if err := storage.Migrate(); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
	}

	return storage, nil
}
