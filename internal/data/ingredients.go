package data

import "time"

type Ingredient struct {
	IngredientId string     `json:"ingredientId" validate:"required"`
	Name         string     `json:"name" validate:"required"`
	Quantity     float64    `json:"quantity" validate:"gte=0"`
	Unit         string     `json:"unit"`
	LastUpdated  *time.Time `json:"lastUpdated,omitempty"`
}
