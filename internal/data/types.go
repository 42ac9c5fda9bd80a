package data

import "context"

type QueryParams struct {
	Limit     int    `json:"limit"`
	NextToken []byte `json:"nextToken"`
}

func (q *QueryParams) GetLimit() *int32 {
	limit := int32(q.Limit)
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return &limit
}

type QueryResults[T interface{}] struct {
	Items     []T    `json:"items"`
	NextToken []byte `json:"nextToken"`
}

type NextToken map[string]map[string]string

type Repository[T interface{}, I interface{}] interface {
	List(ctx context.Context, accountId string, params QueryParams) (QueryResults[T], error)
	Get(ctx context.Context, accountId string, itemId string) (T, error)
	Create(ctx context.Context, accountId string, input I) (T, error)
	Delete(ctx context.Context, accountId string, itemId string) error
}
