package provider

import (
	"context"

	"philcali.me/kitchen/internal/data"
)

type OrderStore interface {
	ListOrders(ctx context.Context, query data.OrderQuery) ([]data.Order, error)
	PutOrder(ctx context.Context, order data.Order) error
	DeleteOrder(ctx context.Context, orderId string) error
}

type RecipeStore interface {
	ListRecipes(ctx context.Context) ([]data.Recipe, error)
	GetRecipe(ctx context.Context, recipeId string) (data.Recipe, error)
	PutRecipe(ctx context.Context, recipe data.Recipe) error
}

type IngredientStore interface {
	ListIngredients(ctx context.Context) ([]data.Ingredient, error)
	GetIngredient(ctx context.Context, ingredientId string) (data.Ingredient, error)
	PutIngredient(ctx context.Context, ingredient data.Ingredient) error
	DeleteIngredient(ctx context.Context, ingredientId string) error
}

// KitchenProvider is the whole remote kitchen API.
type KitchenProvider interface {
	OrderStore
	RecipeStore
	IngredientStore
}
