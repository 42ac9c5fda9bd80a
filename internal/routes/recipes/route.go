package recipes

import (
	"context"
	"encoding/base64"
	"errors"
	"mime"
	"net/http"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/kitchen/internal/data"
	"philcali.me/kitchen/internal/exceptions"
	"philcali.me/kitchen/internal/menu"
	"philcali.me/kitchen/internal/provider"
	"philcali.me/kitchen/internal/routes"
	"philcali.me/kitchen/internal/routes/util"
)

type RecipeInput struct {
	DishName    string    `json:"dishName"`
	DishType    string    `json:"dishType"`
	Ingredients []string  `json:"ingredients"`
	Amounts     []float64 `json:"amounts"`
	Units       []string  `json:"units"`
}

type RecipeService struct {
	recipes provider.RecipeStore
}

func NewRoute(recipes provider.RecipeStore) routes.Service {
	return &RecipeService{
		recipes: recipes,
	}
}

func (rs *RecipeService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/recipes":  rs.ListRecipes,
		"POST:/recipes": rs.CreateRecipe,
	}
}

func (rs *RecipeService) ListRecipes(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	items, err := rs.recipes.ListRecipes(ctx)
	return util.SerializeResponseOK(util.Identity[[]data.Recipe], items, err)
}

func _header(event events.APIGatewayV2HTTPRequest, name string) string {
	for key, value := range event.Headers {
		if http.CanonicalHeaderKey(key) == http.CanonicalHeaderKey(name) {
			return value
		}
	}
	return ""
}

// _parseRecipe accepts either a JSON recipe or the url encoded add-recipe
// form with comma separated lists.
func _parseRecipe(event events.APIGatewayV2HTTPRequest) (data.Recipe, error) {
	mediaType, _, _ := mime.ParseMediaType(_header(event, "Content-Type"))
	if mediaType != "application/x-www-form-urlencoded" {
		input, err := util.ParseBody[RecipeInput](event)
		if err != nil {
			return data.Recipe{}, err
		}
		return menu.NewRecipe(input.DishName, input.DishType, input.Ingredients, input.Amounts, input.Units)
	}
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return data.Recipe{}, exceptions.InvalidInput("Invalid request body")
		}
		body = string(decoded)
	}
	values, err := url.ParseQuery(body)
	if err != nil {
		return data.Recipe{}, exceptions.InvalidInput("Invalid request body")
	}
	return menu.ParseForm(menu.Form{
		DishName:    values.Get("dishName"),
		DishType:    values.Get("dishType"),
		Ingredients: values.Get("ingredients"),
		Amounts:     values.Get("amounts"),
		Units:       values.Get("units"),
	})
}

func (rs *RecipeService) CreateRecipe(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	recipe, err := _parseRecipe(event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	existing, err := rs.recipes.GetRecipe(ctx, recipe.RecipeId)
	var nfe *exceptions.NotFoundError
	switch {
	case err == nil:
		if err := menu.Collision(existing, recipe); err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}
	case !errors.As(err, &nfe):
		return events.APIGatewayV2HTTPResponse{}, err
	}
	err = rs.recipes.PutRecipe(ctx, recipe)
	return util.SerializeResponseOK(util.Identity[data.Recipe], recipe, err)
}
