package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type record struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Name   string             `bson:"name"`
	Amount float64            `bson:"amount"`
	At     time.Time          `bson:"at"`
	Done   *time.Time         `bson:"done"`
}

func TestMemoryInsertAndFindOne(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()

	id, err := db.InsertOne(ctx, "records", record{Name: "Milk", Amount: 5})
	require.NoError(t, err)
	assert.False(t, id.IsZero())

	var got record
	require.NoError(t, db.FindOne(ctx, "records", bson.M{"_id": id}, &got))
	assert.Equal(t, "Milk", got.Name)
	assert.Equal(t, 5.0, got.Amount)

	err = db.FindOne(ctx, "records", bson.M{"_id": primitive.NewObjectID()}, &got)
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestMemoryFindManySorted(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"b", "a", "c"} {
		_, err := db.InsertOne(ctx, "records", record{Name: name, At: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	var byName []record
	require.NoError(t, db.FindMany(ctx, "records", nil, bson.D{{Key: "name", Value: 1}}, &byName))
	require.Len(t, byName, 3)
	assert.Equal(t, "a", byName[0].Name)
	assert.Equal(t, "c", byName[2].Name)

	var newestFirst []record
	require.NoError(t, db.FindMany(ctx, "records", nil, bson.D{{Key: "at", Value: -1}}, &newestFirst))
	assert.Equal(t, "c", newestFirst[0].Name)
	assert.Equal(t, "b", newestFirst[2].Name)
}

func TestMemoryRegexFilter(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()

	_, err := db.InsertOne(ctx, "records", record{Name: "Whole Milk"})
	require.NoError(t, err)

	filter := bson.M{"name": bson.M{"$regex": "^whole milk$", "$options": "i"}}
	var got record
	assert.NoError(t, db.FindOne(ctx, "records", filter, &got))

	filter = bson.M{"name": bson.M{"$regex": "^milk$", "$options": "i"}}
	assert.ErrorIs(t, db.FindOne(ctx, "records", filter, &got), ErrNoDocument)
}

func TestMemoryUpdateSet(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()

	id, err := db.InsertOne(ctx, "records", record{Name: "Beans", Amount: 8})
	require.NoError(t, err)

	var updated record
	err = db.UpdateOne(ctx, "records", bson.M{"_id": id}, bson.M{"$set": bson.M{"amount": 2.5}}, &updated)
	require.NoError(t, err)
	assert.Equal(t, 2.5, updated.Amount)
	assert.Equal(t, "Beans", updated.Name)

	err = db.UpdateOne(ctx, "records", bson.M{"_id": primitive.NewObjectID()}, bson.M{"$set": bson.M{"amount": 1.0}}, &updated)
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestMemoryPipelineUpdate(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	now := time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC)

	id, err := db.InsertOne(ctx, "records", record{Name: "Milk", Amount: 3})
	require.NoError(t, err)

	decrement := func(amount float64) mongo.Pipeline {
		return mongo.Pipeline{
			{{Key: "$set", Value: bson.M{
				"amount": bson.M{"$max": bson.A{0.0, bson.M{"$subtract": bson.A{"$amount", amount}}}},
			}}},
			{{Key: "$set", Value: bson.M{
				"done": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$amount", 0.0}}, now, "$done"}},
			}}},
		}
	}

	filter := bson.M{"_id": id, "amount": bson.M{"$gt": 0}}

	var got record
	require.NoError(t, db.UpdateOne(ctx, "records", filter, decrement(1), &got))
	assert.Equal(t, 2.0, got.Amount)
	assert.Nil(t, got.Done)

	// Deduct past zero: clamps and stamps done.
	require.NoError(t, db.UpdateOne(ctx, "records", filter, decrement(10), &got))
	assert.Equal(t, 0.0, got.Amount)
	require.NotNil(t, got.Done)
	assert.Equal(t, now.Unix(), got.Done.Unix())

	// Guard rejects a third deduction.
	err = db.UpdateOne(ctx, "records", filter, decrement(1), &got)
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()

	owner := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		_, err := db.InsertOne(ctx, "children", bson.M{"owner": owner, "n": i})
		require.NoError(t, err)
	}
	_, err := db.InsertOne(ctx, "children", bson.M{"owner": primitive.NewObjectID(), "n": 9})
	require.NoError(t, err)

	removed, err := db.DeleteMany(ctx, "children", bson.M{"owner": owner})
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.Equal(t, 1, db.Count("children"))

	ok, err := db.DeleteOne(ctx, "children", bson.M{"n": 9})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.DeleteOne(ctx, "children", bson.M{"n": 9})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryAggregateJoin(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	ownerID, err := db.InsertOne(ctx, "owners", bson.M{"name": "Milk"})
	require.NoError(t, err)

	_, err = db.InsertOne(ctx, "children", bson.M{"owner_id": ownerID, "at": base})
	require.NoError(t, err)
	_, err = db.InsertOne(ctx, "children", bson.M{"owner_id": ownerID, "at": base.Add(time.Hour)})
	require.NoError(t, err)
	// Orphan: its owner does not exist, so the join must drop it.
	_, err = db.InsertOne(ctx, "children", bson.M{"owner_id": primitive.NewObjectID(), "at": base.Add(2 * time.Hour)})
	require.NoError(t, err)

	type joined struct {
		At    time.Time `bson:"at"`
		Owner struct {
			Name string `bson:"name"`
		} `bson:"owner"`
	}

	var got []joined
	join := JoinSpec{
		From:         "owners",
		LocalField:   "owner_id",
		ForeignField: "_id",
		As:           "owner",
		Sort:         bson.D{{Key: "at", Value: -1}},
	}
	require.NoError(t, db.AggregateJoin(ctx, "children", join, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Milk", got[0].Owner.Name)
	assert.True(t, got[0].At.After(got[1].At))
}
