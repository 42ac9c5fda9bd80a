package util

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/kitchen/internal/data"
	"philcali.me/kitchen/internal/exceptions"
	"philcali.me/kitchen/internal/routes"
	"philcali.me/kitchen/internal/table"
)

// RequestParam returns the named path parameter of the matched route.
func RequestParam(ctx context.Context, name string) string {
	if params, ok := ctx.Value(routes.ParamsKey).(map[string]string); ok {
		return params[name]
	}
	return ""
}

func Identity[T interface{}](thing T) T {
	return thing
}

// ParseBody decodes a JSON request body into T.
func ParseBody[T interface{}](event events.APIGatewayV2HTTPRequest) (T, error) {
	var input T
	if err := json.Unmarshal([]byte(event.Body), &input); err != nil {
		return input, exceptions.InvalidInput(fmt.Sprintf("Invalid request body: %s", err))
	}
	return input, nil
}

// SortRows applies the sortBy and sortKind query parameters, if present.
func SortRows[T interface{}](event events.APIGatewayV2HTTPRequest, columns table.Columns[T], rows []T) ([]T, error) {
	sortBy, ok := event.QueryStringParameters["sortBy"]
	if !ok || sortBy == "" {
		return rows, nil
	}
	kind, err := table.ParseKind(event.QueryStringParameters["sortKind"])
	if err != nil {
		return nil, err
	}
	return columns.Sort(rows, sortBy, kind)
}

func QueryParams(event events.APIGatewayV2HTTPRequest) (data.QueryParams, error) {
	params := data.QueryParams{}
	if sLimit, ok := event.QueryStringParameters["limit"]; ok {
		limit, err := strconv.Atoi(sLimit)
		if err != nil {
			return params, exceptions.InvalidInput("Limit parameter was not a number type.")
		}
		params.Limit = limit
	}
	if token, ok := event.QueryStringParameters["nextToken"]; ok {
		params.NextToken = []byte(token)
	}
	return params, nil
}

func SerializeResponse[T interface{}, R interface{}](delayed func(T) R, thing T, err error, statusCode int) (events.APIGatewayV2HTTPResponse, error) {
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	body, err := json.Marshal(delayed(thing))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	headers := map[string]string{
		"Content-Type":   "application/json",
		"Content-Length": strconv.Itoa(len(body)),
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

func SerializeResponseOK[T interface{}, R interface{}](delayed func(T) R, thing T, err error) (events.APIGatewayV2HTTPResponse, error) {
	return SerializeResponse(delayed, thing, err, 200)
}

func SerializeResponseNoContent(err error) (events.APIGatewayV2HTTPResponse, error) {
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: 204,
	}, nil
}

// Page is a QueryResults as sent to clients: the next token is passed back
// verbatim in the nextToken query parameter.
type Page[T interface{}] struct {
	Items     []T     `json:"items"`
	NextToken *string `json:"nextToken"`
}

func NewPage[T interface{}](results data.QueryResults[T]) Page[T] {
	page := Page[T]{Items: results.Items}
	if page.Items == nil {
		page.Items = make([]T, 0)
	}
	if len(results.NextToken) > 0 {
		nextToken := string(results.NextToken)
		page.NextToken = &nextToken
	}
	return page
}

func ConvertQueryResults[D interface{}, R interface{}](items data.QueryResults[D], thunk func(D) R) data.QueryResults[R] {
	if items.Items == nil {
		return data.QueryResults[R]{
			Items: make([]R, 0),
		}
	}
	newItems := make([]R, len(items.Items))
	for i, rd := range items.Items {
		newItems[i] = thunk(rd)
	}
	return data.QueryResults[R]{
		Items:     newItems,
		NextToken: items.NextToken,
	}
}
