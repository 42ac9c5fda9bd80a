package data

import (
	"errors"
	"strings"
	"testing"

	"philcali.me/kitchen/internal/exceptions"
)

func TestValidate(t *testing.T) {
	t.Run("valid records", func(t *testing.T) {
		records := []interface{}{
			Order{OrderId: "order-1", TableNumber: 4, DishName: "Soup", Quantity: 3},
			Recipe{RecipeId: "rec-soup", DishName: "Soup", Ingredients: []string{"ing-salt"}, Amounts: []float64{2}, Units: []string{"g"}},
			Ingredient{IngredientId: "ing-salt", Name: "Salt", Quantity: 0, Unit: "g"},
		}
		for _, record := range records {
			if err := Validate(record); err != nil {
				t.Fatalf("Expected %v to be valid: %s", record, err)
			}
		}
	})

	t.Run("order quantity >= 1", func(t *testing.T) {
		err := Validate(Order{OrderId: "order-1", DishName: "Soup", Quantity: 0})
		var ie *exceptions.InvalidInputError
		if !errors.As(err, &ie) {
			t.Fatalf("Expected invalid input, got %v", err)
		}
		if !strings.Contains(ie.Message, "quantity") {
			t.Fatalf("Expected the message to name quantity: %s", ie.Message)
		}
	})

	t.Run("ingredient quantity >= 0", func(t *testing.T) {
		err := Validate(Ingredient{IngredientId: "ing-salt", Name: "Salt", Quantity: -1})
		if err == nil {
			t.Fatal("Expected negative stock to be rejected")
		}
	})

	t.Run("recipe lists have equal length", func(t *testing.T) {
		err := Validate(Recipe{
			RecipeId:    "rec-soup",
			DishName:    "Soup",
			Ingredients: []string{"ing-salt", "ing-water"},
			Amounts:     []float64{2},
			Units:       []string{"g", "ml"},
		})
		if err == nil {
			t.Fatal("Expected mismatched amounts to be rejected")
		}
		if !strings.Contains(err.Error(), "amounts must have as many entries as ingredients") {
			t.Fatalf("Unexpected message: %s", err)
		}
	})

	t.Run("recipe needs ingredients", func(t *testing.T) {
		if err := Validate(Recipe{RecipeId: "rec-air", DishName: "Air"}); err == nil {
			t.Fatal("Expected an empty recipe to be rejected")
		}
	})
}
