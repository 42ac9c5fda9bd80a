package orders

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"golang.org/x/exp/maps"
	"philcali.me/kitchen/internal/data"
	"philcali.me/kitchen/internal/table"
)

// NewOrder stamps a new order with an id derived from now.
func NewOrder(tableNumber int, dishName string, dishType string, quantity int, now time.Time) (data.Order, error) {
	order := data.Order{
		OrderId:     fmt.Sprintf("order-%d", now.UnixMilli()),
		TableNumber: tableNumber,
		DishName:    dishName,
		DishType:    dishType,
		Quantity:    quantity,
		Timestamp:   now.UTC(),
	}
	return order, data.Validate(order)
}

// Filter keeps the orders a GET /orders with the same query would return.
func Filter(orders []data.Order, query data.OrderQuery) []data.Order {
	filtered := make([]data.Order, 0, len(orders))
	for _, order := range orders {
		if query.TableNumber != "" && strconv.Itoa(order.TableNumber) != query.TableNumber {
			continue
		}
		if query.DishType != "" && order.DishType != query.DishType {
			continue
		}
		filtered = append(filtered, order)
	}
	return filtered
}

// DishTypes lists the distinct non-empty dish types, sorted.
func DishTypes(orders []data.Order) []string {
	seen := make(map[string]struct{}, len(orders))
	for _, order := range orders {
		if order.DishType != "" {
			seen[order.DishType] = struct{}{}
		}
	}
	types := maps.Keys(seen)
	sort.Strings(types)
	return types
}

var Columns = table.Columns[data.Order]{
	"orderId":     func(o data.Order) string { return o.OrderId },
	"tableNumber": func(o data.Order) string { return strconv.Itoa(o.TableNumber) },
	"dishName":    func(o data.Order) string { return o.DishName },
	"dishType":    func(o data.Order) string { return o.DishType },
	"quantity":    func(o data.Order) string { return strconv.Itoa(o.Quantity) },
	"timestamp": func(o data.Order) string {
		if o.Timestamp.IsZero() {
			return ""
		}
		return o.Timestamp.Format(time.RFC3339Nano)
	},
}
