package routes_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/kitchen/internal/data"
	"philcali.me/kitchen/internal/fulfillment"
	"philcali.me/kitchen/internal/inventory"
	"philcali.me/kitchen/internal/routes"
	finishRoutes "philcali.me/kitchen/internal/routes/finishes"
	"philcali.me/kitchen/internal/routes/ingredients"
	"philcali.me/kitchen/internal/routes/orders"
	"philcali.me/kitchen/internal/routes/recipes"
	"philcali.me/kitchen/internal/routes/util"
	"philcali.me/kitchen/internal/test"
)

type LocalServer struct {
	Router  *routes.Router
	Kitchen *test.MemoryKitchen
	Journal *test.MemoryJournal
}

func NewLocalServer(t *testing.T) *LocalServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kitchen := test.NewMemoryKitchen()
	journal := &test.MemoryJournal{}
	reconciler := fulfillment.NewReconciler(kitchen, logger)
	reconciler.Journal = journal
	reconciler.Retention = time.Hour
	router := routes.NewRouter(logger,
		orders.NewRoute(kitchen, reconciler),
		ingredients.NewRoute(inventory.NewService(kitchen, logger)),
		recipes.NewRoute(kitchen),
		finishRoutes.NewRoute(journal),
	)
	return &LocalServer{
		Router:  router,
		Kitchen: kitchen,
		Journal: journal,
	}
}

func (ls *LocalServer) Request(t *testing.T, method string, path string, body string, headers map[string]string, params map[string]string, out any) events.APIGatewayV2HTTPResponse {
	request := events.APIGatewayV2HTTPRequest{
		RawPath:               path,
		Headers:               headers,
		QueryStringParameters: params,
		Body:                  body,
	}
	request.RequestContext.AccountID = "012345678912"
	request.RequestContext.HTTP.Method = method
	request.RequestContext.HTTP.Path = path
	response := ls.Router.Invoke(request, context.TODO())
	if out != nil {
		if err := json.Unmarshal([]byte(response.Body), out); err != nil {
			t.Fatalf("Failed to deserialize payload for %s %s: %s", method, path, response.Body)
		}
	}
	return response
}

func (ls *LocalServer) Get(t *testing.T, out any, path string, params map[string]string) events.APIGatewayV2HTTPResponse {
	return ls.Request(t, "GET", path, "", nil, params, out)
}

func (ls *LocalServer) Post(t *testing.T, out any, path string, body any) events.APIGatewayV2HTTPResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to serialize input: %s", err)
	}
	return ls.Request(t, "POST", path, string(payload), map[string]string{"content-type": "application/json"}, nil, out)
}

func (ls *LocalServer) Delete(t *testing.T, path string) events.APIGatewayV2HTTPResponse {
	return ls.Request(t, "DELETE", path, "", nil, nil, nil)
}

func TestRouter(t *testing.T) {
	server := NewLocalServer(t)

	t.Run("Preflight", func(t *testing.T) {
		response := server.Request(t, "OPTIONS", "/orders", "", nil, nil, nil)
		if response.StatusCode != 200 || response.Headers["access-control-allow-origin"] != "*" {
			t.Fatalf("Unexpected preflight response %d: %v", response.StatusCode, response.Headers)
		}
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		var body map[string]string
		response := server.Get(t, &body, "/menus", nil)
		if response.StatusCode != 404 || body["message"] == "" {
			t.Fatalf("Expected 404 with a message, got %d: %s", response.StatusCode, response.Body)
		}
	})

	t.Run("IngredientWorkflow", func(t *testing.T) {
		var created data.Ingredient
		response := server.Post(t, &created, "/ingredients", ingredients.IngredientInput{Name: "Sea Salt", Quantity: 10, Unit: "g"})
		if response.StatusCode != 200 || created.IngredientId != "ing-sea-salt" {
			t.Fatalf("Failed to create ingredient %d: %s", response.StatusCode, response.Body)
		}
		conflict := server.Post(t, nil, "/ingredients", ingredients.IngredientInput{Name: "sea  salt", Quantity: 1, Unit: "g"})
		if conflict.StatusCode != 409 {
			t.Fatalf("Expected 409 for a colliding name, got %d: %s", conflict.StatusCode, conflict.Body)
		}
		server.Post(t, nil, "/ingredients", ingredients.IngredientInput{Name: "Water", Quantity: 2, Unit: "l"})

		var adjusted data.Ingredient
		response = server.Post(t, &adjusted, "/ingredients/ing-sea-salt/adjust", ingredients.AdjustInput{Action: "increase", Amount: 5})
		if response.StatusCode != 200 || adjusted.Quantity != 15 {
			t.Fatalf("Failed to adjust %d: %s", response.StatusCode, response.Body)
		}
		var failure map[string]string
		response = server.Post(t, &failure, "/ingredients/ing-sea-salt/adjust", ingredients.AdjustInput{Action: "decrease", Amount: 16})
		if response.StatusCode != 400 || failure["message"] != "Quantity cannot go below zero." {
			t.Fatalf("Expected 400 below zero, got %d: %s", response.StatusCode, response.Body)
		}

		var listed []data.Ingredient
		server.Get(t, &listed, "/ingredients", map[string]string{"sortBy": "quantity", "sortKind": "number"})
		if len(listed) != 2 || listed[0].IngredientId != "ing-water" {
			t.Fatalf("Expected water first by quantity, got %v", listed)
		}
		bad := server.Get(t, nil, "/ingredients", map[string]string{"sortBy": "colour"})
		if bad.StatusCode != 400 {
			t.Fatalf("Expected 400 for an unknown column, got %d", bad.StatusCode)
		}
		var units []string
		server.Get(t, &units, "/ingredients/units", nil)
		if len(units) == 0 {
			t.Fatal("Expected units")
		}

		if deleted := server.Delete(t, "/ingredients/ing-water"); deleted.StatusCode != 204 {
			t.Fatalf("Failed to delete %d: %s", deleted.StatusCode, deleted.Body)
		}
		if deleted := server.Delete(t, "/ingredients/ing-water"); deleted.StatusCode != 404 {
			t.Fatalf("Expected 404 on second delete, got %d", deleted.StatusCode)
		}
	})

	t.Run("RecipeWorkflow", func(t *testing.T) {
		var created data.Recipe
		response := server.Post(t, &created, "/recipes", recipes.RecipeInput{
			DishName:    "Tomato Soup",
			DishType:    "Starter",
			Ingredients: []string{"ing-sea-salt"},
			Amounts:     []float64{2},
			Units:       []string{"g"},
		})
		if response.StatusCode != 200 || created.RecipeId != "rec-tomato-soup" {
			t.Fatalf("Failed to create recipe %d: %s", response.StatusCode, response.Body)
		}
		form := url.Values{
			"dishName":    {"Chocolate Cake"},
			"dishType":    {"Dessert"},
			"ingredients": {"Sea Salt, ing-cocoa"},
			"amounts":     {"0.5, 100"},
			"units":       {"g, g"},
		}
		response = server.Request(t, "POST", "/recipes", form.Encode(),
			map[string]string{"Content-Type": "application/x-www-form-urlencoded"}, nil, &created)
		if response.StatusCode != 200 || created.Ingredients[0] != "ing-sea-salt" || created.Amounts[1] != 100 {
			t.Fatalf("Failed to create recipe from form %d: %s", response.StatusCode, response.Body)
		}
		conflict := server.Post(t, nil, "/recipes", recipes.RecipeInput{
			DishName:    "tomato soup",
			Ingredients: []string{"ing-sea-salt"},
			Amounts:     []float64{1},
			Units:       []string{"g"},
		})
		if conflict.StatusCode != 409 {
			t.Fatalf("Expected 409 for a colliding dish, got %d", conflict.StatusCode)
		}
		invalid := server.Post(t, nil, "/recipes", recipes.RecipeInput{
			DishName:    "Broth",
			Ingredients: []string{"ing-sea-salt", "ing-water"},
			Amounts:     []float64{1},
			Units:       []string{"g", "l"},
		})
		if invalid.StatusCode != 400 {
			t.Fatalf("Expected 400 for mismatched lists, got %d", invalid.StatusCode)
		}
		var listed []data.Recipe
		server.Get(t, &listed, "/recipes", nil)
		if len(listed) != 2 {
			t.Fatalf("Expected 2 recipes, got %v", listed)
		}
	})

	t.Run("OrderWorkflow", func(t *testing.T) {
		var first data.Order
		response := server.Post(t, &first, "/orders", orders.OrderInput{TableNumber: 10, DishName: "tomato soup", Quantity: 3})
		if response.StatusCode != 200 || first.DishType != "Starter" || first.DishName != "Tomato Soup" {
			t.Fatalf("Failed to create order %d: %s", response.StatusCode, response.Body)
		}
		if missing := server.Post(t, nil, "/orders", orders.OrderInput{TableNumber: 1, DishName: "Pizza", Quantity: 1}); missing.StatusCode != 404 {
			t.Fatalf("Expected 404 for a dish without a recipe, got %d", missing.StatusCode)
		}
		server.Kitchen.Stocked("ing-cocoa", "Cocoa", 50, "g")
		server.Kitchen.PutOrder(context.TODO(), data.Order{OrderId: "order-2", TableNumber: 2, DishName: "Chocolate Cake", DishType: "Dessert", Quantity: 20})

		var listed []data.Order
		server.Get(t, &listed, "/orders", map[string]string{"sortBy": "tableNumber", "sortKind": "number"})
		if len(listed) != 2 || listed[0].OrderId != "order-2" {
			t.Fatalf("Expected order-2 first by table, got %v", listed)
		}
		server.Get(t, &listed, "/orders", map[string]string{"dishType": "Starter"})
		if len(listed) != 1 || listed[0].OrderId != first.OrderId {
			t.Fatalf("Expected only the soup, got %v", listed)
		}
		var dishTypes []string
		server.Get(t, &dishTypes, "/orders/dish-types", nil)
		if len(dishTypes) != 2 || dishTypes[0] != "Dessert" {
			t.Fatalf("Unexpected dish types %v", dishTypes)
		}

		var short fulfillment.Report
		response = server.Post(t, &short, "/orders/order-2/finish", listed[0])
		if response.StatusCode != 400 {
			t.Fatalf("Expected 400 for a mismatched order id, got %d: %s", response.StatusCode, response.Body)
		}
		response = server.Request(t, "POST", "/orders/order-2/finish", "", nil, nil, &short)
		if response.StatusCode != 409 || short.State != fulfillment.Aborted || len(short.Shortages) != 1 || short.Shortages[0].IngredientId != "ing-cocoa" {
			t.Fatalf("Expected an aborted finish, got %d: %s", response.StatusCode, response.Body)
		}

		var report fulfillment.Report
		response = server.Post(t, &report, "/orders/"+first.OrderId+"/finish", first)
		if response.StatusCode != 200 || report.State != fulfillment.Committed {
			t.Fatalf("Failed to finish %d: %s", response.StatusCode, response.Body)
		}
		if server.Kitchen.Stock("ing-sea-salt") != 9 {
			t.Fatalf("Expected 15 - 2 x 3 = 9 salt, got %v", server.Kitchen.Stock("ing-sea-salt"))
		}
		response = server.Post(t, &report, "/orders/"+first.OrderId+"/finish", first)
		if response.StatusCode != 200 || report.State != fulfillment.AlreadyFinished {
			t.Fatalf("Expected an already finished order, got %d: %s", response.StatusCode, response.Body)
		}

		if deleted := server.Delete(t, "/orders/order-2"); deleted.StatusCode != 204 {
			t.Fatalf("Failed to delete order %d: %s", deleted.StatusCode, deleted.Body)
		}
		if finish := server.Request(t, "POST", "/orders/order-2/finish", "", nil, nil, nil); finish.StatusCode != 404 {
			t.Fatalf("Expected 404 finishing a deleted order, got %d", finish.StatusCode)
		}
	})

	t.Run("FinishJournal", func(t *testing.T) {
		var page util.Page[finishRoutes.Finish]
		response := server.Get(t, &page, "/finishes", map[string]string{"limit": "10"})
		if response.StatusCode != 200 || len(page.Items) != 3 {
			t.Fatalf("Expected 3 journaled finishes, got %d: %s", response.StatusCode, response.Body)
		}
		if page.Items[0].State != "Aborted" || page.Items[0].ExpiresIn == nil {
			t.Fatalf("Unexpected first finish %v", page.Items[0])
		}
		var finish finishRoutes.Finish
		response = server.Get(t, &finish, "/finishes/"+page.Items[1].Id, nil)
		if response.StatusCode != 200 || finish.State != "Committed" || len(finish.Updates) != 1 {
			t.Fatalf("Unexpected finish %d: %s", response.StatusCode, response.Body)
		}
		if bad := server.Get(t, nil, "/finishes", map[string]string{"limit": "ten"}); bad.StatusCode != 400 {
			t.Fatalf("Expected 400 for a bad limit, got %d", bad.StatusCode)
		}
	})
}
