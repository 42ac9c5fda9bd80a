package data

// Recipe maps a dish to its ingredients. Ingredients, Amounts and Units are
// positional: Amounts[i] of Units[i] of Ingredients[i] per single dish.
type Recipe struct {
	RecipeId    string    `json:"recipeId" validate:"required"`
	DishName    string    `json:"dishName" validate:"required"`
	DishType    string    `json:"dishType"`
	Ingredients []string  `json:"ingredients" validate:"min=1,dive,required"`
	Amounts     []float64 `json:"amounts" validate:"dive,gte=0"`
	Units       []string  `json:"units"`
}
