package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo implements Gateway on a MongoDB database.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	log    *slog.Logger
}

// Connect dials the MongoDB deployment at uri and pings it before
// returning a ready Gateway.
func Connect(ctx context.Context, uri, dbName string, log *slog.Logger) (*Mongo, error) {
	if uri == "" {
		return nil, errors.New("database: connection URI is empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	log.Info("connected to mongodb", "database", dbName)
	return &Mongo{client: client, db: client.Database(dbName), log: log}, nil
}

func (m *Mongo) FindMany(ctx context.Context, collection string, filter bson.M, sort bson.D, out any) error {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	cur, err := m.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("finding in %s: %w", collection, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decoding %s results: %w", collection, err)
	}
	return nil
}

func (m *Mongo) FindOne(ctx context.Context, collection string, filter bson.M, out any) error {
	err := m.db.Collection(collection).FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoDocument
	}
	if err != nil {
		return fmt.Errorf("finding one in %s: %w", collection, err)
	}
	return nil
}

func (m *Mongo) InsertOne(ctx context.Context, collection string, doc any) (primitive.ObjectID, error) {
	res, err := m.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("inserting into %s: %w", collection, err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("inserting into %s: unexpected id type %T", collection, res.InsertedID)
	}
	return id, nil
}

func (m *Mongo) UpdateOne(ctx context.Context, collection string, filter bson.M, update any, out any) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.db.Collection(collection).FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoDocument
	}
	if err != nil {
		return fmt.Errorf("updating in %s: %w", collection, err)
	}
	return nil
}

func (m *Mongo) DeleteOne(ctx context.Context, collection string, filter bson.M) (bool, error) {
	res, err := m.db.Collection(collection).DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("deleting from %s: %w", collection, err)
	}
	return res.DeletedCount > 0, nil
}

func (m *Mongo) DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error) {
	res, err := m.db.Collection(collection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("deleting from %s: %w", collection, err)
	}
	return res.DeletedCount, nil
}

func (m *Mongo) AggregateJoin(ctx context.Context, collection string, join JoinSpec, out any) error {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         join.From,
			"localField":   join.LocalField,
			"foreignField": join.ForeignField,
			"as":           join.As,
		}}},
		// $unwind drops documents whose lookup came back empty, making
		// this an inner join.
		{{Key: "$unwind", Value: "$" + join.As}},
	}
	if len(join.Sort) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: join.Sort}})
	}

	cur, err := m.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregating %s: %w", collection, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decoding %s aggregation: %w", collection, err)
	}
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting from mongodb: %w", err)
	}
	m.log.Info("mongodb connection closed")
	return nil
}
