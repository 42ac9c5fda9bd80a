package inventory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"philcali.me/kitchen/internal/data"
	"philcali.me/kitchen/internal/exceptions"
	"philcali.me/kitchen/internal/fulfillment"
	"philcali.me/kitchen/internal/table"
	"philcali.me/kitchen/internal/test"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newService(kitchen *test.MemoryKitchen) *Service {
	service := NewService(kitchen, slog.New(slog.NewTextHandler(io.Discard, nil)))
	service.Now = func() time.Time { return fixedNow }
	return service
}

func TestApply(t *testing.T) {
	salt := data.Ingredient{IngredientId: "ing-salt", Name: "Salt", Quantity: 5, Unit: "g"}

	updated, err := Apply(salt, -5, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.Quantity)
	assert.Equal(t, "g", updated.Unit)
	assert.Equal(t, fixedNow, *updated.LastUpdated)

	_, err = Apply(salt, -5.5, fixedNow)
	var ie *exceptions.InvalidInputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "Quantity cannot go below zero.", ie.Message)
	assert.Equal(t, 5.0, salt.Quantity)
}

func TestParseAction(t *testing.T) {
	action, err := ParseAction("Increase")
	require.NoError(t, err)
	assert.Equal(t, Increase, action)
	_, err = ParseAction("double")
	assert.Error(t, err)
}

func TestCache(t *testing.T) {
	cache := &Cache{}
	assert.False(t, cache.Loaded())
	items := []data.Ingredient{{IngredientId: "ing-a"}, {IngredientId: "ing-b"}}
	cache.Replace(items)
	items[0].IngredientId = "ing-z"

	assert.Equal(t, []string{"ing-a", "ing-b"}, ids(cache.Items()), "replace copies the list")
	cache.Remove("ing-a")
	assert.Equal(t, []string{"ing-b"}, ids(cache.Items()))

	cache.Replace(nil)
	assert.True(t, cache.Loaded())
	assert.Empty(t, cache.Items())
}

func TestServiceAdd(t *testing.T) {
	ctx := context.Background()
	kitchen := test.NewMemoryKitchen()
	service := newService(kitchen)

	ingredient, err := service.Add(ctx, "  Sea Salt ", 100, "g")
	require.NoError(t, err)
	assert.Equal(t, "ing-sea-salt", ingredient.IngredientId)
	assert.Equal(t, "Sea Salt", ingredient.Name)
	assert.Equal(t, 100.0, kitchen.Stock("ing-sea-salt"))
	assert.Equal(t, []string{"ing-sea-salt"}, ids(service.Cache.Items()), "add refreshes the cache")

	t.Run("same name replaces", func(t *testing.T) {
		_, err := service.Add(ctx, "Sea Salt", 50, "g")
		require.NoError(t, err)
		assert.Equal(t, 50.0, kitchen.Stock("ing-sea-salt"))
	})

	t.Run("different name with the same id conflicts", func(t *testing.T) {
		_, err := service.Add(ctx, "sea   SALT", 1, "g")
		var ce *exceptions.ConflictError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, 50.0, kitchen.Stock("ing-sea-salt"))
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, err := service.Add(ctx, "Pepper", -1, "g")
		assert.Error(t, err)
	})

	t.Run("unknown unit", func(t *testing.T) {
		_, err := service.Add(ctx, "Pepper", 1, "bushel")
		assert.Error(t, err)
	})
}

func TestServiceAdjust(t *testing.T) {
	ctx := context.Background()
	kitchen := test.NewMemoryKitchen().Stocked("ing-salt", "Salt", 10, "g")
	service := newService(kitchen)

	t.Run("decrease", func(t *testing.T) {
		updated, err := service.Adjust(ctx, "ing-salt", Decrease, 4)
		require.NoError(t, err)
		assert.Equal(t, 6.0, updated.Quantity)
		assert.Equal(t, 6.0, kitchen.Stock("ing-salt"))
	})

	t.Run("increase", func(t *testing.T) {
		updated, err := service.Adjust(ctx, "ing-salt", Increase, 1.5)
		require.NoError(t, err)
		assert.Equal(t, 7.5, updated.Quantity)
	})

	t.Run("never below zero", func(t *testing.T) {
		writes := kitchen.CallCount("PUT ingredients/ing-salt")
		_, err := service.Adjust(ctx, "ing-salt", Decrease, 8)
		var ie *exceptions.InvalidInputError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, 7.5, kitchen.Stock("ing-salt"))
		assert.Equal(t, writes, kitchen.CallCount("PUT ingredients/ing-salt"))
	})

	t.Run("amount must be positive", func(t *testing.T) {
		_, err := service.Adjust(ctx, "ing-salt", Increase, 0)
		assert.Error(t, err)
	})

	t.Run("unknown ingredient", func(t *testing.T) {
		_, err := service.Adjust(ctx, "ing-saffron", Increase, 1)
		var nfe *exceptions.NotFoundError
		require.ErrorAs(t, err, &nfe)
		assert.Equal(t, "ing-saffron", nfe.Id)
	})

	t.Run("failed write leaves stock", func(t *testing.T) {
		kitchen.Fail("PUT ingredients/ing-salt", errors.New("boom"))
		_, err := service.Adjust(ctx, "ing-salt", Increase, 1)
		assert.Error(t, err)
		assert.Equal(t, 7.5, kitchen.Stock("ing-salt"))
	})
}

func TestServiceAdjustAfterFinish(t *testing.T) {
	ctx := context.Background()
	kitchen := test.NewMemoryKitchen().Stocked("ing-salt", "Salt", 10, "g")
	kitchen.Recipes["rec-soup"] = data.Recipe{
		RecipeId:    "rec-soup",
		DishName:    "Soup",
		Ingredients: []string{"ing-salt"},
		Amounts:     []float64{2},
		Units:       []string{"g"},
	}
	soup := data.Order{OrderId: "order-1", TableNumber: 3, DishName: "Soup", Quantity: 3, Timestamp: fixedNow}
	kitchen.Orders["order-1"] = soup
	service := newService(kitchen)
	_, err := service.Refresh(ctx)
	require.NoError(t, err)

	reconciler := fulfillment.NewReconciler(kitchen, service.Logger)
	_, err = reconciler.Finish(ctx, soup)
	require.NoError(t, err)
	require.Equal(t, 4.0, kitchen.Stock("ing-salt"))

	t.Run("increase starts from the stored stock", func(t *testing.T) {
		updated, err := service.Adjust(ctx, "ing-salt", Increase, 1)
		require.NoError(t, err)
		assert.Equal(t, 5.0, updated.Quantity)
		assert.Equal(t, 5.0, kitchen.Stock("ing-salt"))
	})

	t.Run("below zero is checked against the stored stock", func(t *testing.T) {
		_, err := service.Adjust(ctx, "ing-salt", Decrease, 8)
		var ie *exceptions.InvalidInputError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, 5.0, kitchen.Stock("ing-salt"))
	})

	t.Run("cache follows the write", func(t *testing.T) {
		items := service.Cache.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 5.0, items[0].Quantity)
	})
}

func TestServiceList(t *testing.T) {
	ctx := context.Background()
	kitchen := test.NewMemoryKitchen().Stocked("ing-salt", "Salt", 10, "g")
	service := newService(kitchen)
	outage := exceptions.Unavailable("ingredients", errors.New("connection refused"))

	t.Run("nothing cached surfaces the outage", func(t *testing.T) {
		kitchen.Fail("GET ingredients", outage)
		_, err := service.List(ctx)
		var ue *exceptions.UnavailableError
		assert.ErrorAs(t, err, &ue)
	})

	t.Run("fresh list fills the cache", func(t *testing.T) {
		kitchen.Fail("GET ingredients", nil)
		items, err := service.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"ing-salt"}, ids(items))
	})

	t.Run("outage serves the cached list", func(t *testing.T) {
		kitchen.Fail("GET ingredients", outage)
		items, err := service.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"ing-salt"}, ids(items))
	})

	t.Run("other failures are not masked", func(t *testing.T) {
		kitchen.Fail("GET ingredients", &exceptions.ServiceError{StatusCode: 500})
		_, err := service.List(ctx)
		assert.Error(t, err)
	})
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	kitchen := test.NewMemoryKitchen().Stocked("ing-salt", "Salt", 10, "g").Stocked("ing-oil", "Oil", 1, "l")
	service := newService(kitchen)
	_, err := service.Refresh(ctx)
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, "ing-salt"))
	assert.Equal(t, []string{"ing-oil"}, ids(service.Cache.Items()))

	var nfe *exceptions.NotFoundError
	assert.ErrorAs(t, service.Delete(ctx, "ing-salt"), &nfe)
}

func TestColumns(t *testing.T) {
	later := fixedNow.Add(time.Hour)
	rows := []data.Ingredient{
		{IngredientId: "ing-b", Quantity: 10, LastUpdated: &later},
		{IngredientId: "ing-a", Quantity: 9},
		{IngredientId: "ing-c", Quantity: 2, LastUpdated: &fixedNow},
	}
	byQuantity, err := Columns.Sort(rows, "quantity", table.Number)
	require.NoError(t, err)
	assert.Equal(t, []string{"ing-c", "ing-a", "ing-b"}, ids(byQuantity))

	byDate, err := Columns.Sort(rows, "lastUpdated", table.Date)
	require.NoError(t, err)
	assert.Equal(t, []string{"ing-a", "ing-c", "ing-b"}, ids(byDate))
}

func ids(rows []data.Ingredient) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.IngredientId
	}
	return out
}
