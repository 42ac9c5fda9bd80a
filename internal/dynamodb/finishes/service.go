package finishes

import (
	"time"

	"philcali.me/kitchen/internal/data"
	"philcali.me/kitchen/internal/dynamodb/services"
	"philcali.me/kitchen/internal/dynamodb/token"
)

func _value[V interface{}](ptr *V) V {
	var empty V
	if ptr == nil {
		return empty
	}
	return *ptr
}

func NewFinishService(tableName string, client services.DynamoDBAPI, marshaler token.TokenMarshaler) data.FinishRepository {
	return &services.RepositoryDynamoDBService[data.FinishDTO, data.FinishInputDTO]{
		DynamoDB:       client,
		TableName:      tableName,
		TokenMarshaler: marshaler,
		Name:           "Finish",
		Shim: func(pk, sk string) data.FinishDTO {
			return data.FinishDTO{PK: pk, SK: sk}
		},
		GetSK: func(fd data.FinishDTO) string {
			return fd.SK
		},
		OnCreate: func(input data.FinishInputDTO, now time.Time, pk, sk string) data.FinishDTO {
			return data.FinishDTO{
				PK:         pk,
				SK:         sk,
				OrderId:    _value(input.OrderId),
				RecipeId:   _value(input.RecipeId),
				DishName:   _value(input.DishName),
				Quantity:   _value(input.Quantity),
				State:      _value(input.State),
				ErrorKind:  input.ErrorKind,
				Message:    input.Message,
				Updates:    _value(input.Updates),
				Failures:   _value(input.Failures),
				ExpiresIn:  input.ExpiresIn,
				CreateTime: now,
				UpdateTime: now,
			}
		},
	}
}
