package inventory

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cortado/internal/database"
	"cortado/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func TestIngredientCreate(t *testing.T) {
	ctx := context.Background()
	db := database.NewMemory()
	repo := NewIngredientRepository(db, testLogger())

	created, err := repo.Create(ctx, CreateIngredientInput{
		Name:           "  Whole Milk  ",
		RequiredAmount: floatPtr(20),
		Unit:           "liters",
	})
	require.NoError(t, err)
	assert.Equal(t, "Whole Milk", created.Name)
	assert.Equal(t, 20.0, created.RequiredAmount)
	assert.False(t, created.ID.IsZero())
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.ModifiedAt)
}

func TestIngredientCreateValidation(t *testing.T) {
	ctx := context.Background()
	repo := NewIngredientRepository(database.NewMemory(), testLogger())

	cases := []struct {
		name string
		in   CreateIngredientInput
	}{
		{"missing name", CreateIngredientInput{RequiredAmount: floatPtr(1), Unit: "kg"}},
		{"blank name", CreateIngredientInput{Name: "   ", RequiredAmount: floatPtr(1), Unit: "kg"}},
		{"missing required_amount", CreateIngredientInput{Name: "Sugar", Unit: "kg"}},
		{"missing unit", CreateIngredientInput{Name: "Sugar", RequiredAmount: floatPtr(1)}},
		{"negative required_amount", CreateIngredientInput{Name: "Sugar", RequiredAmount: floatPtr(-1), Unit: "kg"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Create(ctx, tc.in)
			assert.True(t, models.IsKind(err, models.KindValidation), "got %v", err)
		})
	}
}

func TestIngredientCreateDuplicateName(t *testing.T) {
	ctx := context.Background()
	repo := NewIngredientRepository(database.NewMemory(), testLogger())

	_, err := repo.Create(ctx, CreateIngredientInput{Name: "Milk", RequiredAmount: floatPtr(5), Unit: "liters"})
	require.NoError(t, err)

	// Same name, different case.
	_, err = repo.Create(ctx, CreateIngredientInput{Name: "milk", RequiredAmount: floatPtr(5), Unit: "liters"})
	assert.True(t, models.IsKind(err, models.KindConflict), "got %v", err)

	// A name that merely contains the other is fine.
	_, err = repo.Create(ctx, CreateIngredientInput{Name: "Oat Milk", RequiredAmount: floatPtr(5), Unit: "liters"})
	assert.NoError(t, err)
}

func TestIngredientListSorted(t *testing.T) {
	ctx := context.Background()
	repo := NewIngredientRepository(database.NewMemory(), testLogger())

	for _, name := range []string{"Sugar", "Beans", "Milk"} {
		_, err := repo.Create(ctx, CreateIngredientInput{Name: name, RequiredAmount: floatPtr(1), Unit: "kg"})
		require.NoError(t, err)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Beans", list[0].Name)
	assert.Equal(t, "Milk", list[1].Name)
	assert.Equal(t, "Sugar", list[2].Name)
}

func TestIngredientUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewIngredientRepository(database.NewMemory(), testLogger())

	created, err := repo.Create(ctx, CreateIngredientInput{Name: "Beans", RequiredAmount: floatPtr(8), Unit: "kg"})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID.Hex(), UpdateIngredientInput{
		Name:           strPtr("  Espresso Beans "),
		RequiredAmount: floatPtr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "Espresso Beans", updated.Name)
	assert.Equal(t, 10.0, updated.RequiredAmount)
	assert.Equal(t, "kg", updated.Unit)
	assert.True(t, updated.ModifiedAt.After(created.ModifiedAt) || updated.ModifiedAt.Equal(created.ModifiedAt))
}

func TestIngredientUpdateNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewIngredientRepository(database.NewMemory(), testLogger())

	_, err := repo.Update(ctx, "66f000000000000000000000", UpdateIngredientInput{Name: strPtr("x")})
	assert.True(t, models.IsKind(err, models.KindNotFound), "got %v", err)

	_, err = repo.Update(ctx, "not-a-hex-id", UpdateIngredientInput{Name: strPtr("x")})
	assert.True(t, models.IsKind(err, models.KindNotFound), "got %v", err)
}

func TestIngredientDeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := database.NewMemory()
	log := testLogger()
	ingredients := NewIngredientRepository(db, log)
	batches := NewBatchRepository(db, log)

	milk, err := ingredients.Create(ctx, CreateIngredientInput{Name: "Milk", RequiredAmount: floatPtr(5), Unit: "liters"})
	require.NoError(t, err)
	beans, err := ingredients.Create(ctx, CreateIngredientInput{Name: "Beans", RequiredAmount: floatPtr(8), Unit: "kg"})
	require.NoError(t, err)

	expiry := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	for i := 0; i < 3; i++ {
		_, err := batches.Create(ctx, CreateBatchInput{
			IngredientID:   milk.ID.Hex(),
			InitialAmount:  floatPtr(2),
			ExpirationDate: expiry,
			TotalCost:      floatPtr(4),
		})
		require.NoError(t, err)
	}
	_, err = batches.Create(ctx, CreateBatchInput{
		IngredientID:   beans.ID.Hex(),
		InitialAmount:  floatPtr(1),
		ExpirationDate: expiry,
		TotalCost:      floatPtr(12),
	})
	require.NoError(t, err)

	removed, err := ingredients.Delete(ctx, milk.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	// Only the beans batch survives.
	remaining, err := batches.ListPlain(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, beans.ID, remaining[0].IngredientID)

	_, err = ingredients.Delete(ctx, milk.ID.Hex())
	assert.True(t, models.IsKind(err, models.KindNotFound), "got %v", err)
}
