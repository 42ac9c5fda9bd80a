package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"philcali.me/kitchen/internal/data"
	"philcali.me/kitchen/internal/exceptions"
	"philcali.me/kitchen/internal/provider"
)

// KitchenAPI talks to the remote order, recipe and ingredient stores.
type KitchenAPI struct {
	Endpoint *url.URL
	Client   *http.Client
}

func _resourceURL(kc *KitchenAPI, params url.Values, resource ...string) string {
	escaped := make([]string, len(resource))
	for i, part := range resource {
		escaped[i] = url.PathEscape(part)
	}
	target := kc.Endpoint.JoinPath(escaped...)
	if len(params) > 0 {
		target.RawQuery = params.Encode()
	}
	return target.String()
}

func _apiRequest(ctx context.Context, kc *KitchenAPI, method string, body interface{}, params url.Values, resource ...string) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		content, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(content)
	}
	req, err := http.NewRequestWithContext(ctx, method, _resourceURL(kc, params, resource...), payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := kc.Client.Do(req)
	if err != nil {
		return nil, exceptions.Unavailable(resource[0], err)
	}
	defer resp.Body.Close()
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, exceptions.Unavailable(resource[0], err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, _statusError(resp.StatusCode, content, resource...)
	}
	return content, nil
}

func _statusError(statusCode int, body []byte, resource ...string) error {
	id := ""
	if len(resource) > 1 {
		id = resource[len(resource)-1]
	}
	if statusCode == http.StatusNotFound && id != "" {
		return exceptions.NotFound(_singular(resource[0]), id)
	}
	return &exceptions.ServiceError{
		StatusCode: statusCode,
		Cause:      fmt.Errorf("%s request failed with status %d: %s", resource[0], statusCode, bytes.TrimSpace(body)),
	}
}

func _singular(resource string) string {
	switch resource {
	case "orders":
		return "order"
	case "recipes":
		return "recipe"
	case "ingredients":
		return "ingredient"
	}
	return resource
}

func _getJSON[T interface{}](ctx context.Context, kc *KitchenAPI, params url.Values, resource ...string) (T, error) {
	var out T
	body, err := _apiRequest(ctx, kc, http.MethodGet, nil, params, resource...)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("malformed %s response: %w", resource[0], err)
	}
	return out, nil
}

func _send(ctx context.Context, kc *KitchenAPI, method string, body interface{}, resource ...string) error {
	_, err := _apiRequest(ctx, kc, method, body, nil, resource...)
	return err
}

func (kc *KitchenAPI) ListOrders(ctx context.Context, query data.OrderQuery) ([]data.Order, error) {
	params := url.Values{}
	if query.TableNumber != "" {
		params.Set("tableNumber", query.TableNumber)
	}
	if query.DishType != "" {
		params.Set("dishType", query.DishType)
	}
	return _getJSON[[]data.Order](ctx, kc, params, "orders")
}

func (kc *KitchenAPI) PutOrder(ctx context.Context, order data.Order) error {
	return _send(ctx, kc, http.MethodPut, order, "orders")
}

func (kc *KitchenAPI) DeleteOrder(ctx context.Context, orderId string) error {
	return _send(ctx, kc, http.MethodDelete, nil, "orders", orderId)
}

func (kc *KitchenAPI) ListRecipes(ctx context.Context) ([]data.Recipe, error) {
	return _getJSON[[]data.Recipe](ctx, kc, nil, "recipes")
}

func (kc *KitchenAPI) GetRecipe(ctx context.Context, recipeId string) (data.Recipe, error) {
	return _getJSON[data.Recipe](ctx, kc, nil, "recipes", recipeId)
}

func (kc *KitchenAPI) PutRecipe(ctx context.Context, recipe data.Recipe) error {
	return _send(ctx, kc, http.MethodPut, recipe, "recipes")
}

func (kc *KitchenAPI) ListIngredients(ctx context.Context) ([]data.Ingredient, error) {
	return _getJSON[[]data.Ingredient](ctx, kc, nil, "ingredients")
}

func (kc *KitchenAPI) GetIngredient(ctx context.Context, ingredientId string) (data.Ingredient, error) {
	return _getJSON[data.Ingredient](ctx, kc, nil, "ingredients", ingredientId)
}

func (kc *KitchenAPI) PutIngredient(ctx context.Context, ingredient data.Ingredient) error {
	return _send(ctx, kc, http.MethodPut, ingredient, "ingredients")
}

func (kc *KitchenAPI) DeleteIngredient(ctx context.Context, ingredientId string) error {
	return _send(ctx, kc, http.MethodDelete, nil, "ingredients", ingredientId)
}

func NewKitchenClient(endpoint string, timeout time.Duration) (provider.KitchenProvider, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid kitchen endpoint %s: %w", endpoint, err)
	}
	return &KitchenAPI{
		Endpoint: parsed,
		Client:   &http.Client{Timeout: timeout},
	}, nil
}
