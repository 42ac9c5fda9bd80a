package data

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"philcali.me/kitchen/internal/exceptions"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateRecipeLists, Recipe{})
	return v
}

func validateRecipeLists(sl validator.StructLevel) {
	recipe := sl.Current().Interface().(Recipe)
	if len(recipe.Amounts) != len(recipe.Ingredients) {
		sl.ReportError(recipe.Amounts, "amounts", "Amounts", "eqlen", "ingredients")
	}
	if len(recipe.Units) != len(recipe.Ingredients) {
		sl.ReportError(recipe.Units, "units", "Units", "eqlen", "ingredients")
	}
}

// Validate checks an Order, Recipe or Ingredient and returns an
// InvalidInputError naming every failing field.
func Validate(record interface{}) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return exceptions.InvalidInput(err.Error())
	}
	messages := make([]string, len(fieldErrors))
	for i, fe := range fieldErrors {
		messages[i] = describe(fe)
	}
	return exceptions.InvalidInput(strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s cannot be below %s", fe.Field(), fe.Param())
	case "eqlen":
		return fmt.Sprintf("%s must have as many entries as %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
