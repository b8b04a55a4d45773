package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	fxsync "github.com/unhappyben/fx-sync"
)

type mongoStorage struct {
	ctx        context.Context
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoStorage(config MongoDBConfig) (fxsync.Storage, error) {
	ctx := config.Ctx

	if ctx == nil {
		ctx = context.Background()
	}

	client, err := mongo.NewClient(options.Client().ApplyURI(config.ConnectionString))

	if err != nil {
		return nil, err
	}

	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	storage := mongoStorage{
		ctx:        ctx,
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
	}

	if config.Migrate {
		if err := storage.Migrate(); err != nil {
			return nil, err
		}
	}

	return storage, nil
}

func NewMongoStorageWithCollection(ctx context.Context, collection *mongo.Collection) fxsync.Storage {
	return mongoStorage{
		ctx:        ctx,
		collection: collection,
	}
}

func (m mongoStorage) Store(records []fxsync.RateRecord) ([]fxsync.StoredRate, error) {
	stored := make([]fxsync.StoredRate, 0, len(records))
	createdAt := time.Now()
	upsert := options.Update().SetUpsert(true)

	for _, record := range records {
		rate, _ := record.Rate.Float64()
		inverse, _ := record.InverseRate.Float64()

		result, err := m.collection.UpdateOne(
			m.ctx,
			keyFilter(record),
			bson.M{
				"$setOnInsert": bson.M{
					"rateDate":    asUTCDate(record.Date),
					"base":        record.Base,
					"currency":    record.Quote,
					"source":      string(record.Source),
					"rate":        rate,
					"inverseRate": inverse,
					"createdAt":   createdAt,
				},
			},
			upsert,
		)

		if err != nil {
			return nil, err
		}

		stored = append(stored, fxsync.StoredRate{
			RateRecord: record,
			ID:         result.UpsertedID,
		})
	}

	return stored, nil
}

func (m mongoStorage) Filter(records []fxsync.RateRecord) ([]fxsync.RateRecord, error) {
	if len(records) == 0 {
		return records, nil
	}

	start, end := dateRange(records)

	cursor, err := m.collection.Find(m.ctx, bson.M{
		"rateDate": bson.M{
			"$gte": asUTCDate(start),
			"$lte": asUTCDate(end),
		},
	})

	if err != nil {
		return nil, err
	}

	defer cursor.Close(m.ctx)

	journaled := make(map[fxsync.RateKey]struct{})

	for cursor.Next(m.ctx) {
		current := cursor.Current

		journaled[fxsync.RateKey{
			Date:   current.Lookup("rateDate").Time().UTC().Format(fxsync.DateLayout),
			Base:   current.Lookup("base").StringValue(),
			Quote:  current.Lookup("currency").StringValue(),
			Source: fxsync.Provider(current.Lookup("source").StringValue()),
		}] = struct{}{}
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return withoutJournaled(records, journaled), nil
}

func (m mongoStorage) GetStorageProviderName() string {
	return string(MongoDB)
}

func (m mongoStorage) Migrate() error {
	_, err := m.collection.Indexes().CreateOne(m.ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "rateDate", Value: 1},
			{Key: "base", Value: 1},
			{Key: "currency", Value: 1},
			{Key: "source", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("uploaded_rate"),
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

func keyFilter(record fxsync.RateRecord) bson.M {
	return bson.M{
		"rateDate": asUTCDate(record.Date),
		"base":     record.Base,
		"currency": record.Quote,
		"source":   string(record.Source),
	}
}

func asUTCDate(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}
