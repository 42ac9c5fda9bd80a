package test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"philcali.me/kitchen/internal/data"
	"philcali.me/kitchen/internal/exceptions"
	"philcali.me/kitchen/internal/provider"
)

// StartKitchenServer serves the kitchen REST surface from kitchen until the
// test ends.
func StartKitchenServer(t *testing.T, kitchen provider.KitchenProvider) *httptest.Server {
	server := httptest.NewServer(&kitchenHandler{kitchen: kitchen})
	t.Cleanup(server.Close)
	return server
}

type kitchenHandler struct {
	kitchen provider.KitchenProvider
}

func (kh *kitchenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.EscapedPath(), "/"), "/")
	var id string
	if len(parts) == 2 {
		unescaped, err := url.PathUnescape(parts[1])
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id = unescaped
	}
	ctx := r.Context()
	var out interface{}
	var err error
	switch r.Method + " " + parts[0] {
	case "GET orders":
		out, err = kh.kitchen.ListOrders(ctx, data.OrderQuery{
			TableNumber: r.URL.Query().Get("tableNumber"),
			DishType:    r.URL.Query().Get("dishType"),
		})
	case "PUT orders":
		var order data.Order
		if err = json.NewDecoder(r.Body).Decode(&order); err == nil {
			err = kh.kitchen.PutOrder(ctx, order)
		}
	case "DELETE orders":
		err = kh.kitchen.DeleteOrder(ctx, id)
	case "GET recipes":
		if id == "" {
			out, err = kh.kitchen.ListRecipes(ctx)
		} else {
			out, err = kh.kitchen.GetRecipe(ctx, id)
		}
	case "PUT recipes":
		var recipe data.Recipe
		if err = json.NewDecoder(r.Body).Decode(&recipe); err == nil {
			err = kh.kitchen.PutRecipe(ctx, recipe)
		}
	case "GET ingredients":
		if id == "" {
			out, err = kh.kitchen.ListIngredients(ctx)
		} else {
			out, err = kh.kitchen.GetIngredient(ctx, id)
		}
	case "PUT ingredients":
		var ingredient data.Ingredient
		if err = json.NewDecoder(r.Body).Decode(&ingredient); err == nil {
			err = kh.kitchen.PutIngredient(ctx, ingredient)
		}
	case "DELETE ingredients":
		err = kh.kitchen.DeleteIngredient(ctx, id)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		status := http.StatusInternalServerError
		var re exceptions.RequestError
		var se *exceptions.ServiceError
		if errors.As(err, &re) {
			status = re.ToServiceError().StatusCode
		} else if errors.As(err, &se) {
			status = se.StatusCode
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if out != nil {
		json.NewEncoder(w).Encode(out)
	}
}
