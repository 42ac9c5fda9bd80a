package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/kitchen/internal/data"
	"philcali.me/kitchen/internal/exceptions"
	"philcali.me/kitchen/internal/fulfillment"
	"philcali.me/kitchen/internal/orders"
	"philcali.me/kitchen/internal/provider"
	"philcali.me/kitchen/internal/routes"
	"philcali.me/kitchen/internal/routes/util"
	"philcali.me/kitchen/internal/slug"
)

type OrderInput struct {
	TableNumber int    `json:"tableNumber"`
	DishName    string `json:"dishName"`
	DishType    string `json:"dishType"`
	Quantity    int    `json:"quantity"`
}

type OrderService struct {
	orders     provider.OrderStore
	recipes    provider.RecipeStore
	reconciler *fulfillment.Reconciler
	now        func() time.Time
}

func NewRoute(kitchen provider.KitchenProvider, reconciler *fulfillment.Reconciler) routes.Service {
	return &OrderService{
		orders:     kitchen,
		recipes:    kitchen,
		reconciler: reconciler,
		now:        time.Now,
	}
}

func (ors *OrderService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/orders":                  ors.ListOrders,
		"GET:/orders/dish-types":       ors.ListDishTypes,
		"POST:/orders":                 ors.CreateOrder,
		"DELETE:/orders/:orderId":      ors.DeleteOrder,
		"POST:/orders/:orderId/finish": ors.FinishOrder,
	}
}

func (ors *OrderService) ListOrders(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	query := data.OrderQuery{
		TableNumber: event.QueryStringParameters["tableNumber"],
		DishType:    event.QueryStringParameters["dishType"],
	}
	items, err := ors.orders.ListOrders(ctx, query)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	sorted, err := util.SortRows(event, orders.Columns, orders.Filter(items, query))
	return util.SerializeResponseOK(util.Identity[[]data.Order], sorted, err)
}

func (ors *OrderService) ListDishTypes(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	items, err := ors.orders.ListOrders(ctx, data.OrderQuery{})
	return util.SerializeResponseOK(orders.DishTypes, items, err)
}

// CreateOrder places an order for a dish on the menu. The dish type comes
// from the recipe unless the request names one.
func (ors *OrderService) CreateOrder(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.ParseBody[OrderInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if strings.TrimSpace(input.DishName) == "" {
		return events.APIGatewayV2HTTPResponse{}, exceptions.InvalidInput("dishName is required")
	}
	recipe, err := ors.recipes.GetRecipe(ctx, slug.RecipeId(input.DishName))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	dishType := input.DishType
	if dishType == "" {
		dishType = recipe.DishType
	}
	order, err := orders.NewOrder(input.TableNumber, recipe.DishName, dishType, input.Quantity, ors.now())
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	err = ors.orders.PutOrder(ctx, order)
	return util.SerializeResponseOK(util.Identity[data.Order], order, err)
}

func (ors *OrderService) DeleteOrder(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	return util.SerializeResponseNoContent(ors.orders.DeleteOrder(ctx, util.RequestParam(ctx, "orderId")))
}

func (ors *OrderService) _resolveOrder(event events.APIGatewayV2HTTPRequest, ctx context.Context, orderId string) (data.Order, error) {
	if strings.TrimSpace(event.Body) != "" {
		order, err := util.ParseBody[data.Order](event)
		if err != nil {
			return order, err
		}
		if order.OrderId != "" && order.OrderId != orderId {
			return order, exceptions.InvalidInput("orderId does not match the path")
		}
		order.OrderId = orderId
		return order, nil
	}
	items, err := ors.orders.ListOrders(ctx, data.OrderQuery{})
	if err != nil {
		return data.Order{}, err
	}
	for _, order := range items {
		if order.OrderId == orderId {
			return order, nil
		}
	}
	return data.Order{}, exceptions.NotFound("order", orderId)
}

// FinishOrder finishes the posted order, or the stored order when no body
// is sent. Failed finishes still answer with the report.
func (ors *OrderService) FinishOrder(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	order, err := ors._resolveOrder(event, ctx, util.RequestParam(ctx, "orderId"))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	report, err := ors.reconciler.WithAccount(event.RequestContext.AccountID).Finish(ctx, order)
	var fe *fulfillment.FinishError
	if errors.As(err, &fe) {
		return util.SerializeResponse(util.Identity[*fulfillment.Report], report, nil, fe.ToServiceError().StatusCode)
	}
	return util.SerializeResponseOK(util.Identity[*fulfillment.Report], report, err)
}
