package data

import "time"

type StockUpdateDTO struct {
	IngredientId string  `dynamodbav:"ingredientId" json:"ingredientId"`
	Name         string  `dynamodbav:"name" json:"name"`
	Unit         string  `dynamodbav:"unit" json:"unit"`
	Previous     float64 `dynamodbav:"previous" json:"previous"`
	Amount       float64 `dynamodbav:"amount" json:"amount"`
	Quantity     float64 `dynamodbav:"quantity" json:"quantity"`
}

type FinishDTO struct {
	PK         string           `dynamodbav:"PK"`
	SK         string           `dynamodbav:"SK"`
	OrderId    string           `dynamodbav:"orderId"`
	RecipeId   string           `dynamodbav:"recipeId"`
	DishName   string           `dynamodbav:"dishName"`
	Quantity   int              `dynamodbav:"quantity"`
	State      string           `dynamodbav:"state"`
	ErrorKind  *string          `dynamodbav:"errorKind"`
	Message    *string          `dynamodbav:"message"`
	Updates    []StockUpdateDTO `dynamodbav:"updates"`
	Failures   []string         `dynamodbav:"failures"`
	ExpiresIn  *int64           `dynamodbav:"expiresIn"`
	CreateTime time.Time        `dynamodbav:"createTime"`
	UpdateTime time.Time        `dynamodbav:"updateTime"`
}

type FinishInputDTO struct {
	OrderId   *string
	RecipeId  *string
	DishName  *string
	Quantity  *int
	State     *string
	ErrorKind *string
	Message   *string
	Updates   *[]StockUpdateDTO
	Failures  *[]string
	ExpiresIn *int64
}

type FinishRepository interface {
	Repository[FinishDTO, FinishInputDTO]
}
