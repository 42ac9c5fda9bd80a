package menu

import (
	"fmt"
	"strconv"
	"strings"

	"philcali.me/kitchen/internal/data"
	"philcali.me/kitchen/internal/exceptions"
	"philcali.me/kitchen/internal/slug"
)

// Form is the add-recipe form: list fields are comma separated.
type Form struct {
	DishName    string `json:"dishName"`
	DishType    string `json:"dishType"`
	Ingredients string `json:"ingredients"`
	Amounts     string `json:"amounts"`
	Units       string `json:"units"`
}

func _split(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	parts := strings.Split(field, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

func ParseForm(form Form) (data.Recipe, error) {
	rawAmounts := _split(form.Amounts)
	amounts := make([]float64, len(rawAmounts))
	for i, raw := range rawAmounts {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return data.Recipe{}, exceptions.InvalidInput(fmt.Sprintf("Amount %q is not a number", raw))
		}
		amounts[i] = amount
	}
	return NewRecipe(form.DishName, form.DishType, _split(form.Ingredients), amounts, _split(form.Units))
}

// NewRecipe derives the recipe id from the dish name. Ingredients may be
// given as ids or as display names.
func NewRecipe(dishName string, dishType string, ingredients []string, amounts []float64, units []string) (data.Recipe, error) {
	ids := make([]string, len(ingredients))
	for i, ingredient := range ingredients {
		if strings.HasPrefix(ingredient, slug.IngredientPrefix) {
			ids[i] = ingredient
		} else {
			ids[i] = slug.IngredientId(ingredient)
		}
	}
	recipe := data.Recipe{
		RecipeId:    slug.RecipeId(dishName),
		DishName:    strings.TrimSpace(dishName),
		DishType:    strings.TrimSpace(dishType),
		Ingredients: ids,
		Amounts:     amounts,
		Units:       units,
	}
	if slug.Slugify(dishName) == "" {
		return recipe, exceptions.InvalidInput("dishName is required")
	}
	return recipe, data.Validate(recipe)
}

// Collision rejects storing incoming over an existing recipe that belongs to
// a different dish whose name happens to share the same id.
func Collision(existing data.Recipe, incoming data.Recipe) error {
	if existing.RecipeId == incoming.RecipeId && existing.DishName != incoming.DishName {
		return exceptions.Conflict("recipe", incoming.RecipeId)
	}
	return nil
}
