package test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MemoryTable is a single DynamoDB table keyed by string PK and SK. Query
// only understands a key condition on PK, which is all the repositories
// issue.
type MemoryTable struct {
	mutex sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func NewMemoryTable() *MemoryTable {
	return &MemoryTable{items: make(map[string]map[string]types.AttributeValue)}
}

func _stringAttr(item map[string]types.AttributeValue, name string) string {
	if sv, ok := item[name].(*types.AttributeValueMemberS); ok {
		return sv.Value
	}
	return ""
}

func _itemKey(item map[string]types.AttributeValue) string {
	return _stringAttr(item, "PK") + "|" + _stringAttr(item, "SK")
}

func (mt *MemoryTable) Len() int {
	mt.mutex.Lock()
	defer mt.mutex.Unlock()
	return len(mt.items)
}

func (mt *MemoryTable) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	mt.mutex.Lock()
	defer mt.mutex.Unlock()
	return &dynamodb.GetItemOutput{Item: mt.items[_itemKey(params.Key)]}, nil
}

func (mt *MemoryTable) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	mt.mutex.Lock()
	defer mt.mutex.Unlock()
	key := _itemKey(params.Item)
	if _, exists := mt.items[key]; exists && params.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	mt.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (mt *MemoryTable) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	mt.mutex.Lock()
	defer mt.mutex.Unlock()
	delete(mt.items, _itemKey(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (mt *MemoryTable) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if len(params.ExpressionAttributeValues) != 1 {
		return nil, fmt.Errorf("memory table only supports a single PK condition")
	}
	var pk string
	for _, value := range params.ExpressionAttributeValues {
		sv, ok := value.(*types.AttributeValueMemberS)
		if !ok {
			return nil, fmt.Errorf("memory table only supports string keys")
		}
		pk = sv.Value
	}
	mt.mutex.Lock()
	defer mt.mutex.Unlock()
	var matches []map[string]types.AttributeValue
	for _, item := range mt.items {
		if _stringAttr(item, "PK") == pk {
			matches = append(matches, item)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return _stringAttr(matches[i], "SK") < _stringAttr(matches[j], "SK")
	})
	if params.ExclusiveStartKey != nil {
		start := _stringAttr(params.ExclusiveStartKey, "SK")
		at := sort.Search(len(matches), func(i int) bool {
			return _stringAttr(matches[i], "SK") > start
		})
		matches = matches[at:]
	}
	output := &dynamodb.QueryOutput{}
	limit := len(matches)
	if params.Limit != nil && int(*params.Limit) < limit {
		limit = int(*params.Limit)
	}
	output.Items = matches[:limit]
	output.Count = int32(limit)
	if limit > 0 && limit < len(matches) {
		last := matches[limit-1]
		output.LastEvaluatedKey = map[string]types.AttributeValue{
			"PK": last["PK"],
			"SK": last["SK"],
		}
	}
	return output, nil
}
