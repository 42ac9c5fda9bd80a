package fulfillment

import (
	"fmt"
	"net/http"

	"philcali.me/kitchen/internal/exceptions"
)

type Kind string

const (
	RecipeNotFound        Kind = "RecipeNotFound"
	RecipeMalformed       Kind = "RecipeMalformed"
	IngredientNotFound    Kind = "IngredientNotFound"
	InsufficientStock     Kind = "InsufficientStock"
	OrderDeleteFailed     Kind = "OrderDeleteFailed"
	IngredientWriteFailed Kind = "IngredientWriteFailed"
	NetworkError          Kind = "NetworkError"
)

var statusCodes = map[Kind]int{
	RecipeNotFound:        http.StatusNotFound,
	RecipeMalformed:       http.StatusUnprocessableEntity,
	IngredientNotFound:    http.StatusNotFound,
	InsufficientStock:     http.StatusConflict,
	OrderDeleteFailed:     http.StatusBadGateway,
	IngredientWriteFailed: http.StatusBadGateway,
	NetworkError:          http.StatusBadGateway,
}

// FinishError is the failure of one finish action.
type FinishError struct {
	Kind    Kind
	OrderId string
	// IngredientId names the first offending ingredient, if any.
	IngredientId string
	Message      string
	Cause        error
}

func (fe *FinishError) Error() string {
	if fe.Cause != nil {
		return fmt.Sprintf("%s: %v", fe.Message, fe.Cause)
	}
	return fe.Message
}

func (fe *FinishError) Unwrap() error {
	return fe.Cause
}

func (fe *FinishError) ToServiceError() *exceptions.ServiceError {
	status, ok := statusCodes[fe.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &exceptions.ServiceError{
		StatusCode: status,
		Cause:      fe,
	}
}
