package test

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"philcali.me/kitchen/internal/data"
	"philcali.me/kitchen/internal/exceptions"
)

// MemoryKitchen is an in-memory provider.KitchenProvider. Calls are keyed
// "METHOD resource[/id]", e.g. "DELETE orders/order-1", and any key can be
// made to fail with Fail.
type MemoryKitchen struct {
	Orders      map[string]data.Order
	Recipes     map[string]data.Recipe
	Ingredients map[string]data.Ingredient
	// Delay is applied to every ingredient lookup.
	Delay time.Duration

	mutex       sync.Mutex
	failures    map[string]error
	calls       []string
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func NewMemoryKitchen() *MemoryKitchen {
	return &MemoryKitchen{
		Orders:      make(map[string]data.Order),
		Recipes:     make(map[string]data.Recipe),
		Ingredients: make(map[string]data.Ingredient),
		failures:    make(map[string]error),
	}
}

func (mk *MemoryKitchen) Fail(call string, err error) {
	mk.mutex.Lock()
	defer mk.mutex.Unlock()
	mk.failures[call] = err
}

func (mk *MemoryKitchen) Calls() []string {
	mk.mutex.Lock()
	defer mk.mutex.Unlock()
	return append([]string(nil), mk.calls...)
}

// CallCount counts the recorded calls equal to call.
func (mk *MemoryKitchen) CallCount(call string) int {
	count := 0
	for _, c := range mk.Calls() {
		if c == call {
			count++
		}
	}
	return count
}

func (mk *MemoryKitchen) MaxInFlight() int {
	return int(mk.maxInFlight.Load())
}

func (mk *MemoryKitchen) Stock(ingredientId string) float64 {
	mk.mutex.Lock()
	defer mk.mutex.Unlock()
	return mk.Ingredients[ingredientId].Quantity
}

func (mk *MemoryKitchen) HasOrder(orderId string) bool {
	mk.mutex.Lock()
	defer mk.mutex.Unlock()
	_, ok := mk.Orders[orderId]
	return ok
}

func (mk *MemoryKitchen) record(call string) error {
	mk.mutex.Lock()
	defer mk.mutex.Unlock()
	mk.calls = append(mk.calls, call)
	return mk.failures[call]
}

func (mk *MemoryKitchen) ListOrders(ctx context.Context, query data.OrderQuery) ([]data.Order, error) {
	if err := mk.record("GET orders"); err != nil {
		return nil, err
	}
	mk.mutex.Lock()
	defer mk.mutex.Unlock()
	orders := make([]data.Order, 0, len(mk.Orders))
	for _, order := range mk.Orders {
		if query.TableNumber != "" && strconv.Itoa(order.TableNumber) != query.TableNumber {
			continue
		}
		if query.DishType != "" && order.DishType != query.DishType {
			continue
		}
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].OrderId < orders[j].OrderId
	})
	return orders, nil
}

func (mk *MemoryKitchen) PutOrder(ctx context.Context, order data.Order) error {
	if err := mk.record("PUT orders"); err != nil {
		return err
	}
	mk.mutex.Lock()
	defer mk.mutex.Unlock()
	mk.Orders[order.OrderId] = order
	return nil
}

func (mk *MemoryKitchen) DeleteOrder(ctx context.Context, orderId string) error {
	if err := mk.record("DELETE orders/" + orderId); err != nil {
		return err
	}
	mk.mutex.Lock()
	defer mk.mutex.Unlock()
	if _, ok := mk.Orders[orderId]; !ok {
		return exceptions.NotFound("order", orderId)
	}
	delete(mk.Orders, orderId)
	return nil
}

func (mk *MemoryKitchen) ListRecipes(ctx context.Context) ([]data.Recipe, error) {
	if err := mk.record("GET recipes"); err != nil {
		return nil, err
	}
	mk.mutex.Lock()
	defer mk.mutex.Unlock()
	recipes := make([]data.Recipe, 0, len(mk.Recipes))
	for _, recipe := range mk.Recipes {
		recipes = append(recipes, recipe)
	}
	sort.Slice(recipes, func(i, j int) bool {
		return recipes[i].RecipeId < recipes[j].RecipeId
	})
	return recipes, nil
}

func (mk *MemoryKitchen) GetRecipe(ctx context.Context, recipeId string) (data.Recipe, error) {
	if err := mk.record("GET recipes/" + recipeId); err != nil {
		return data.Recipe{}, err
	}
	mk.mutex.Lock()
	defer mk.mutex.Unlock()
	recipe, ok := mk.Recipes[recipeId]
	if !ok {
		return recipe, exceptions.NotFound("recipe", recipeId)
	}
	return recipe, nil
}

func (mk *MemoryKitchen) PutRecipe(ctx context.Context, recipe data.Recipe) error {
	if err := mk.record("PUT recipes"); err != nil {
		return err
	}
	mk.mutex.Lock()
	defer mk.mutex.Unlock()
	mk.Recipes[recipe.RecipeId] = recipe
	return nil
}

func (mk *MemoryKitchen) ListIngredients(ctx context.Context) ([]data.Ingredient, error) {
	if err := mk.record("GET ingredients"); err != nil {
		return nil, err
	}
	mk.mutex.Lock()
	defer mk.mutex.Unlock()
	ingredients := make([]data.Ingredient, 0, len(mk.Ingredients))
	for _, ingredient := range mk.Ingredients {
		ingredients = append(ingredients, ingredient)
	}
	sort.Slice(ingredients, func(i, j int) bool {
		return ingredients[i].IngredientId < ingredients[j].IngredientId
	})
	return ingredients, nil
}

func (mk *MemoryKitchen) GetIngredient(ctx context.Context, ingredientId string) (data.Ingredient, error) {
	current := mk.inFlight.Add(1)
	defer mk.inFlight.Add(-1)
	for {
		seen := mk.maxInFlight.Load()
		if current <= seen || mk.maxInFlight.CompareAndSwap(seen, current) {
			break
		}
	}
	if mk.Delay > 0 {
		select {
		case <-time.After(mk.Delay):
		case <-ctx.Done():
			return data.Ingredient{}, ctx.Err()
		}
	}
	if err := mk.record("GET ingredients/" + ingredientId); err != nil {
		return data.Ingredient{}, err
	}
	mk.mutex.Lock()
	defer mk.mutex.Unlock()
	ingredient, ok := mk.Ingredients[ingredientId]
	if !ok {
		return ingredient, exceptions.NotFound("ingredient", ingredientId)
	}
	return ingredient, nil
}

func (mk *MemoryKitchen) PutIngredient(ctx context.Context, ingredient data.Ingredient) error {
	if err := mk.record("PUT ingredients/" + ingredient.IngredientId); err != nil {
		return err
	}
	mk.mutex.Lock()
	defer mk.mutex.Unlock()
	mk.Ingredients[ingredient.IngredientId] = ingredient
	return nil
}

func (mk *MemoryKitchen) DeleteIngredient(ctx context.Context, ingredientId string) error {
	if err := mk.record("DELETE ingredients/" + ingredientId); err != nil {
		return err
	}
	mk.mutex.Lock()
	defer mk.mutex.Unlock()
	if _, ok := mk.Ingredients[ingredientId]; !ok {
		return exceptions.NotFound("ingredient", ingredientId)
	}
	delete(mk.Ingredients, ingredientId)
	return nil
}

// Stocked seeds an ingredient with quantity in unit.
func (mk *MemoryKitchen) Stocked(ingredientId string, name string, quantity float64, unit string) *MemoryKitchen {
	mk.Ingredients[ingredientId] = data.Ingredient{
		IngredientId: ingredientId,
		Name:         name,
		Quantity:     quantity,
		Unit:         unit,
	}
	return mk
}

func (mk *MemoryKitchen) String() string {
	return fmt.Sprintf("orders=%v ingredients=%v", mk.Orders, mk.Ingredients)
}
