// Package inventory manages ingredient stock outside of order fulfillment:
// adding ingredients, manual adjustments and deletes.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"philcali.me/kitchen/internal/data"
	"philcali.me/kitchen/internal/exceptions"
	"philcali.me/kitchen/internal/provider"
	"philcali.me/kitchen/internal/slug"
	"philcali.me/kitchen/internal/table"
)

type Action string

const (
	Increase Action = "increase"
	Decrease Action = "decrease"
)

// Units offered when adding an ingredient.
var Units = []string{"g", "kg", "ml", "l", "tsp", "tbsp", "cup", "oz", "lb", "pcs"}

func ParseAction(action string) (Action, error) {
	switch Action(strings.ToLower(action)) {
	case Increase:
		return Increase, nil
	case Decrease:
		return Decrease, nil
	}
	return "", exceptions.InvalidInput(fmt.Sprintf("Unknown adjustment: %s", action))
}

// Apply returns ingredient with its quantity moved by delta, or an error if
// that would take it below zero.
func Apply(ingredient data.Ingredient, delta float64, now time.Time) (data.Ingredient, error) {
	quantity := ingredient.Quantity + delta
	if quantity < 0 {
		return ingredient, exceptions.InvalidInput("Quantity cannot go below zero.")
	}
	updated := now.UTC()
	return data.Ingredient{
		IngredientId: ingredient.IngredientId,
		Name:         ingredient.Name,
		Quantity:     quantity,
		Unit:         ingredient.Unit,
		LastUpdated:  &updated,
	}, nil
}

var Columns = table.Columns[data.Ingredient]{
	"ingredientId": func(i data.Ingredient) string { return i.IngredientId },
	"name":         func(i data.Ingredient) string { return i.Name },
	"quantity":     func(i data.Ingredient) string { return strconv.FormatFloat(i.Quantity, 'f', -1, 64) },
	"unit":         func(i data.Ingredient) string { return i.Unit },
	"lastUpdated": func(i data.Ingredient) string {
		if i.LastUpdated == nil {
			return ""
		}
		return i.LastUpdated.Format(time.RFC3339Nano)
	},
}

type Service struct {
	Store  provider.IngredientStore
	Cache  *Cache
	Logger *slog.Logger
	Now    func() time.Time
}

func NewService(store provider.IngredientStore, logger *slog.Logger) *Service {
	return &Service{
		Store:  store,
		Cache:  &Cache{},
		Logger: logger,
		Now:    time.Now,
	}
}

// Refresh lists every ingredient and replaces the cache with the result.
func (s *Service) Refresh(ctx context.Context) ([]data.Ingredient, error) {
	items, err := s.Store.ListIngredients(ctx)
	if err != nil {
		return nil, err
	}
	s.Cache.Replace(items)
	return items, nil
}

// List refreshes the ingredient list. When the store cannot be reached the
// last cached list is served instead, if there is one.
func (s *Service) List(ctx context.Context) ([]data.Ingredient, error) {
	items, err := s.Refresh(ctx)
	var ue *exceptions.UnavailableError
	if err != nil && errors.As(err, &ue) && s.Cache.Loaded() {
		s.Logger.WarnContext(ctx, "serving cached ingredients", "action", "inventory.list", "error", err)
		return s.Cache.Items(), nil
	}
	return items, err
}

func (s *Service) _refreshQuietly(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil {
		s.Logger.WarnContext(ctx, "failed to refresh ingredients", "action", "inventory.refresh", "error", err)
	}
}

func (s *Service) Add(ctx context.Context, name string, quantity float64, unit string) (data.Ingredient, error) {
	name = strings.TrimSpace(name)
	now := s.Now().UTC()
	ingredient := data.Ingredient{
		IngredientId: slug.IngredientId(name),
		Name:         name,
		Quantity:     quantity,
		Unit:         unit,
		LastUpdated:  &now,
	}
	if err := data.Validate(ingredient); err != nil {
		return ingredient, err
	}
	if !slices.Contains(Units, unit) {
		return ingredient, exceptions.InvalidInput(fmt.Sprintf("Unknown unit: %s", unit))
	}
	existing, err := s.Store.GetIngredient(ctx, ingredient.IngredientId)
	var nfe *exceptions.NotFoundError
	switch {
	case err == nil:
		if slug.Collides(existing.Name, name) {
			return ingredient, exceptions.Conflict("ingredient", ingredient.IngredientId)
		}
	case !errors.As(err, &nfe):
		return ingredient, err
	}
	if err := s.Store.PutIngredient(ctx, ingredient); err != nil {
		return ingredient, err
	}
	s.Logger.InfoContext(ctx, "ingredient added", "action", "inventory.add", "ingredientId", ingredient.IngredientId)
	s._refreshQuietly(ctx)
	return ingredient, nil
}

// Adjust increases or decreases the stored stock of an ingredient and
// writes the full record back. The current quantity is always read from the
// store, never from the cache.
func (s *Service) Adjust(ctx context.Context, ingredientId string, action Action, amount float64) (data.Ingredient, error) {
	if ingredientId == "" || amount <= 0 {
		return data.Ingredient{}, exceptions.InvalidInput("Please select an ingredient and enter an amount.")
	}
	delta := amount
	if action == Decrease {
		delta = -amount
	}
	ingredient, err := s.Store.GetIngredient(ctx, ingredientId)
	if err != nil {
		return data.Ingredient{}, err
	}
	updated, err := Apply(ingredient, delta, s.Now())
	if err != nil {
		return ingredient, err
	}
	if err := s.Store.PutIngredient(ctx, updated); err != nil {
		return ingredient, err
	}
	s.Logger.InfoContext(ctx, "ingredient adjusted",
		"action", "inventory.adjust",
		"ingredientId", ingredientId,
		"previous", ingredient.Quantity,
		"quantity", updated.Quantity)
	s._refreshQuietly(ctx)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, ingredientId string) error {
	if err := s.Store.DeleteIngredient(ctx, ingredientId); err != nil {
		return err
	}
	s.Cache.Remove(ingredientId)
	s.Logger.InfoContext(ctx, "ingredient deleted", "action", "inventory.delete", "ingredientId", ingredientId)
	return nil
}
