package data

import "time"

type Order struct {
	OrderId     string    `json:"orderId" validate:"required"`
	TableNumber int       `json:"tableNumber" validate:"gte=0"`
	DishName    string    `json:"dishName" validate:"required"`
	DishType    string    `json:"dishType"`
	Quantity    int       `json:"quantity" validate:"min=1"`
	Timestamp   time.Time `json:"timestamp"`
}

// OrderQuery narrows GET /orders. Empty fields are not sent.
type OrderQuery struct {
	TableNumber string
	DishType    string
}
