// Package fulfillment finishes orders: it checks the recipe's ingredients
// against current stock, removes the order and writes back the decremented
// stock.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"philcali.me/kitchen/internal/data"
	"philcali.me/kitchen/internal/exceptions"
	"philcali.me/kitchen/internal/provider"
	"philcali.me/kitchen/internal/slug"
)

type State string

const (
	Idle                 State = "Idle"
	RecipeFetching       State = "RecipeFetching"
	IngredientValidating State = "IngredientValidating"
	Aborted              State = "Aborted"
	Committing           State = "Committing"
	Committed            State = "Committed"
	DeleteFailed         State = "DeleteFailed"
	AlreadyFinished      State = "AlreadyFinished"
)

const DefaultConcurrency = 8

type Shortage struct {
	IngredientId string  `json:"ingredientId"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	Available    float64 `json:"available"`
	Needed       float64 `json:"needed"`
}

// Report describes what a finish action did. Updates are the staged stock
// changes; they were written unless listed in Failures.
type Report struct {
	OrderId   string                `json:"orderId"`
	RecipeId  string                `json:"recipeId"`
	DishName  string                `json:"dishName"`
	Quantity  int                   `json:"quantity"`
	State     State                 `json:"state"`
	History   []State               `json:"history"`
	Message   string                `json:"message"`
	Updates   []data.StockUpdateDTO `json:"updates"`
	Shortages []Shortage            `json:"shortages,omitempty"`
	Missing   []string              `json:"missing,omitempty"`
	Failures  []string              `json:"failures,omitempty"`
}

func (r *Report) transition(state State) {
	r.State = state
	r.History = append(r.History, state)
}

type Reconciler struct {
	Orders      provider.OrderStore
	Recipes     provider.RecipeStore
	Ingredients provider.IngredientStore
	// Journal is optional; every terminal outcome is appended to it.
	Journal     data.FinishRepository
	AccountId   string
	Retention   time.Duration
	Concurrency int
	Logger      *slog.Logger
	Now         func() time.Time
}

func NewReconciler(kitchen provider.KitchenProvider, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		Orders:      kitchen,
		Recipes:     kitchen,
		Ingredients: kitchen,
		Concurrency: DefaultConcurrency,
		Logger:      logger,
		Now:         time.Now,
	}
}

// WithAccount returns a copy of the reconciler journaling under accountId.
func (r *Reconciler) WithAccount(accountId string) *Reconciler {
	scoped := *r
	if accountId != "" {
		scoped.AccountId = accountId
	}
	return &scoped
}

type requirement struct {
	ingredientId string
	unit         string
	amount       float64
}

type check struct {
	requirement
	ingredient data.Ingredient
	kind       Kind
	cause      error
}

func (r *Reconciler) _limit() int {
	if r.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return r.Concurrency
}

// requirements scales the recipe by quantity, summing repeated ingredients
// and keeping the recipe's order.
func requirements(recipe data.Recipe, quantity int) ([]requirement, error) {
	if len(recipe.Amounts) != len(recipe.Ingredients) || len(recipe.Units) != len(recipe.Ingredients) {
		return nil, fmt.Errorf("recipe %s lists %d ingredients, %d amounts and %d units",
			recipe.RecipeId, len(recipe.Ingredients), len(recipe.Amounts), len(recipe.Units))
	}
	index := make(map[string]int, len(recipe.Ingredients))
	needs := make([]requirement, 0, len(recipe.Ingredients))
	for i, ingredientId := range recipe.Ingredients {
		amount := recipe.Amounts[i]
		if ingredientId == "" || amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return nil, fmt.Errorf("recipe %s has an invalid entry at position %d", recipe.RecipeId, i)
		}
		scaled := amount * float64(quantity)
		if at, ok := index[ingredientId]; ok {
			needs[at].amount += scaled
			continue
		}
		index[ingredientId] = len(needs)
		needs = append(needs, requirement{
			ingredientId: ingredientId,
			unit:         recipe.Units[i],
			amount:       scaled,
		})
	}
	return needs, nil
}

func (r *Reconciler) _check(ctx context.Context, need requirement) check {
	result := check{requirement: need}
	ingredient, err := r.Ingredients.GetIngredient(ctx, need.ingredientId)
	if err != nil {
		result.kind = IngredientNotFound
		result.cause = err
		return result
	}
	if ingredient.IngredientId != need.ingredientId || ingredient.Quantity < 0 || math.IsNaN(ingredient.Quantity) {
		result.kind = IngredientNotFound
		result.cause = fmt.Errorf("malformed ingredient record for %s", need.ingredientId)
		return result
	}
	result.ingredient = ingredient
	if ingredient.Quantity-need.amount < 0 {
		result.kind = InsufficientStock
	}
	return result
}

// validate runs every stock check concurrently and waits for all of them.
func (r *Reconciler) _validate(ctx context.Context, needs []requirement) []check {
	checks := make([]check, len(needs))
	group := &errgroup.Group{}
	group.SetLimit(r._limit())
	for i, need := range needs {
		i, need := i, need
		group.Go(func() error {
			checks[i] = r._check(ctx, need)
			return nil
		})
	}
	group.Wait()
	return checks
}

func (r *Reconciler) _abort(ctx context.Context, report *Report, state State, fe *FinishError) (*Report, error) {
	report.transition(state)
	report.Message = fe.Error()
	r.Logger.WarnContext(ctx, "finish aborted",
		"action", "finish.abort",
		"orderId", report.OrderId,
		"state", state,
		"kind", fe.Kind,
		"error", fe)
	r._record(ctx, report, fe)
	return report, fe
}

// Finish fulfills order. Nothing is mutated unless every recipe ingredient
// is stocked. A nil error with an AlreadyFinished report means another
// finish removed the order first.
func (r *Reconciler) Finish(ctx context.Context, order data.Order) (*Report, error) {
	if err := data.Validate(order); err != nil {
		return nil, err
	}
	report := &Report{
		OrderId:  order.OrderId,
		RecipeId: slug.RecipeId(order.DishName),
		DishName: order.DishName,
		Quantity: order.Quantity,
		State:    Idle,
		History:  []State{Idle},
		Updates:  []data.StockUpdateDTO{},
	}

	report.transition(RecipeFetching)
	recipe, err := r.Recipes.GetRecipe(ctx, report.RecipeId)
	if err != nil {
		kind := RecipeNotFound
		var ue *exceptions.UnavailableError
		if errors.As(err, &ue) {
			kind = NetworkError
		}
		return r._abort(ctx, report, Aborted, &FinishError{
			Kind:    kind,
			OrderId: order.OrderId,
			Message: fmt.Sprintf("Could not load recipe %s for %s", report.RecipeId, order.DishName),
			Cause:   err,
		})
	}
	r.Logger.DebugContext(ctx, "recipe resolved", "action", "finish.recipe", "orderId", order.OrderId, "recipeId", recipe.RecipeId)
	needs, err := requirements(recipe, order.Quantity)
	if err != nil {
		return r._abort(ctx, report, Aborted, &FinishError{
			Kind:    RecipeMalformed,
			OrderId: order.OrderId,
			Message: fmt.Sprintf("Recipe %s is malformed", report.RecipeId),
			Cause:   err,
		})
	}

	report.transition(IngredientValidating)
	checks := r._validate(ctx, needs)
	var first *FinishError
	for _, c := range checks {
		switch c.kind {
		case IngredientNotFound:
			report.Missing = append(report.Missing, c.ingredientId)
			if first == nil {
				first = &FinishError{
					Kind:         IngredientNotFound,
					OrderId:      order.OrderId,
					IngredientId: c.ingredientId,
					Message:      fmt.Sprintf("Could not load ingredient %s", c.ingredientId),
					Cause:        c.cause,
				}
			}
		case InsufficientStock:
			report.Shortages = append(report.Shortages, Shortage{
				IngredientId: c.ingredientId,
				Name:         c.ingredient.Name,
				Unit:         c.ingredient.Unit,
				Available:    c.ingredient.Quantity,
				Needed:       c.amount,
			})
			if first == nil {
				first = &FinishError{
					Kind:         InsufficientStock,
					OrderId:      order.OrderId,
					IngredientId: c.ingredientId,
					Message: fmt.Sprintf("Not enough %s: need %g %s, have %g %s",
						c.ingredient.Name, c.amount, c.ingredient.Unit, c.ingredient.Quantity, c.ingredient.Unit),
				}
			}
		default:
			if c.unit != c.ingredient.Unit {
				r.Logger.WarnContext(ctx, "recipe unit differs from stock unit",
					"action", "finish.validate",
					"ingredientId", c.ingredientId,
					"recipeUnit", c.unit,
					"stockUnit", c.ingredient.Unit)
			}
			report.Updates = append(report.Updates, data.StockUpdateDTO{
				IngredientId: c.ingredientId,
				Name:         c.ingredient.Name,
				Unit:         c.ingredient.Unit,
				Previous:     c.ingredient.Quantity,
				Amount:       c.amount,
				Quantity:     c.ingredient.Quantity - c.amount,
			})
		}
	}
	if first != nil {
		report.Updates = []data.StockUpdateDTO{}
		return r._abort(ctx, report, Aborted, first)
	}
	r.Logger.DebugContext(ctx, "stock validated", "action", "finish.validate", "orderId", order.OrderId, "ingredients", len(checks))

	report.transition(Committing)
	if err := r.Orders.DeleteOrder(ctx, order.OrderId); err != nil {
		var nfe *exceptions.NotFoundError
		if errors.As(err, &nfe) {
			report.transition(AlreadyFinished)
			report.Updates = []data.StockUpdateDTO{}
			report.Message = fmt.Sprintf("Order %s was already finished.", order.OrderId)
			r.Logger.InfoContext(ctx, "order already finished", "action", "finish.commit", "orderId", order.OrderId)
			r._record(ctx, report, nil)
			return report, nil
		}
		report.Updates = []data.StockUpdateDTO{}
		return r._abort(ctx, report, DeleteFailed, &FinishError{
			Kind:    OrderDeleteFailed,
			OrderId: order.OrderId,
			Message: fmt.Sprintf("Could not remove order %s", order.OrderId),
			Cause:   err,
		})
	}

	// The order is gone, so the writes must not be cut short by the caller.
	failures := r._commit(context.WithoutCancel(ctx), report.Updates)
	report.transition(Committed)
	if len(failures) > 0 {
		report.Failures = failures
		fe := &FinishError{
			Kind:         IngredientWriteFailed,
			OrderId:      order.OrderId,
			IngredientId: failures[0],
			Message:      fmt.Sprintf("Order %s finished but %d ingredient update(s) failed", order.OrderId, len(failures)),
		}
		report.Message = fe.Error()
		r.Logger.ErrorContext(ctx, "ingredient writes failed after order removal",
			"action", "finish.commit",
			"orderId", order.OrderId,
			"failures", failures)
		r._record(ctx, report, fe)
		return report, fe
	}
	report.Message = fmt.Sprintf("Order %s finished.", order.OrderId)
	r.Logger.InfoContext(ctx, "order finished", "action", "finish.commit", "orderId", order.OrderId, "updates", len(report.Updates))
	r._record(ctx, report, nil)
	return report, nil
}

// commit writes every staged update and returns the ids whose write failed,
// in update order.
func (r *Reconciler) _commit(ctx context.Context, updates []data.StockUpdateDTO) []string {
	now := r.Now().UTC()
	failed := make([]bool, len(updates))
	group := &errgroup.Group{}
	group.SetLimit(r._limit())
	for i, update := range updates {
		i, update := i, update
		group.Go(func() error {
			err := r.Ingredients.PutIngredient(ctx, data.Ingredient{
				IngredientId: update.IngredientId,
				Name:         update.Name,
				Quantity:     update.Quantity,
				Unit:         update.Unit,
				LastUpdated:  &now,
			})
			if err != nil {
				r.Logger.ErrorContext(ctx, "failed to write ingredient",
					"action", "finish.commit",
					"ingredientId", update.IngredientId,
					"error", err)
				failed[i] = true
			}
			return nil
		})
	}
	group.Wait()
	var failures []string
	for i, update := range updates {
		if failed[i] {
			failures = append(failures, update.IngredientId)
		}
	}
	return failures
}
