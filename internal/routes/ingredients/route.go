package ingredients

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/kitchen/internal/data"
	"philcali.me/kitchen/internal/inventory"
	"philcali.me/kitchen/internal/routes"
	"philcali.me/kitchen/internal/routes/util"
)

type IngredientInput struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

type AdjustInput struct {
	Action string  `json:"action"`
	Amount float64 `json:"amount"`
}

type IngredientService struct {
	inventory *inventory.Service
}

func NewRoute(service *inventory.Service) routes.Service {
	return &IngredientService{
		inventory: service,
	}
}

func (is *IngredientService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/ingredients":                       is.ListIngredients,
		"GET:/ingredients/units":                 is.ListUnits,
		"POST:/ingredients":                      is.CreateIngredient,
		"POST:/ingredients/:ingredientId/adjust": is.AdjustIngredient,
		"DELETE:/ingredients/:ingredientId":      is.DeleteIngredient,
	}
}

func (is *IngredientService) ListIngredients(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	items, err := is.inventory.List(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	sorted, err := util.SortRows(event, inventory.Columns, items)
	return util.SerializeResponseOK(util.Identity[[]data.Ingredient], sorted, err)
}

func (is *IngredientService) ListUnits(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	return util.SerializeResponseOK(util.Identity[[]string], inventory.Units, nil)
}

func (is *IngredientService) CreateIngredient(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.ParseBody[IngredientInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	created, err := is.inventory.Add(ctx, input.Name, input.Quantity, input.Unit)
	return util.SerializeResponseOK(util.Identity[data.Ingredient], created, err)
}

func (is *IngredientService) AdjustIngredient(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.ParseBody[AdjustInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	action, err := inventory.ParseAction(input.Action)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	updated, err := is.inventory.Adjust(ctx, util.RequestParam(ctx, "ingredientId"), action, input.Amount)
	return util.SerializeResponseOK(util.Identity[data.Ingredient], updated, err)
}

func (is *IngredientService) DeleteIngredient(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	return util.SerializeResponseNoContent(is.inventory.Delete(ctx, util.RequestParam(ctx, "ingredientId")))
}
