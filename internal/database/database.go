package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names used by the repositories.
const (
	ColIngredients = "ingredients"
	ColBatches     = "batches"
	ColMenuItems   = "menu_items"
)

// ErrNoDocument is returned by FindOne and UpdateOne when no document
// matches the filter.
var ErrNoDocument = errors.New("database: no matching document")

// JoinSpec describes an inner join from one collection to another: each
// document's LocalField is resolved against ForeignField in From, and the
// single matched document is embedded under As. Documents with no match
// are dropped from the result.
type JoinSpec struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	Sort         bson.D
}

// Gateway is the persistence interface the repositories are built on.
// It is constructed once at process start and passed in explicitly; the
// Memory implementation backs the tests.
//
// Filters and sorts use bson types. UpdateOne accepts either a bson.M
// update document ($set style) or a mongo.Pipeline for conditional
// updates, and decodes the post-update document into out.
type Gateway interface {
	FindMany(ctx context.Context, collection string, filter bson.M, sort bson.D, out any) error
	FindOne(ctx context.Context, collection string, filter bson.M, out any) error
	InsertOne(ctx context.Context, collection string, doc any) (primitive.ObjectID, error)
	UpdateOne(ctx context.Context, collection string, filter bson.M, update any, out any) error
	DeleteOne(ctx context.Context, collection string, filter bson.M) (bool, error)
	DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error)
	AggregateJoin(ctx context.Context, collection string, join JoinSpec, out any) error
	Close(ctx context.Context) error
}
