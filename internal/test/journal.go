package test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"philcali.me/kitchen/internal/data"
	"philcali.me/kitchen/internal/exceptions"
)

// MemoryJournal is an in-memory data.FinishRepository that keeps entries in
// insertion order and ignores pagination.
type MemoryJournal struct {
	Err error

	mutex   sync.Mutex
	entries []data.FinishDTO
}

func (mj *MemoryJournal) Entries() []data.FinishDTO {
	mj.mutex.Lock()
	defer mj.mutex.Unlock()
	return append([]data.FinishDTO(nil), mj.entries...)
}

func (mj *MemoryJournal) List(ctx context.Context, accountId string, params data.QueryParams) (data.QueryResults[data.FinishDTO], error) {
	mj.mutex.Lock()
	defer mj.mutex.Unlock()
	if mj.Err != nil {
		return data.QueryResults[data.FinishDTO]{}, mj.Err
	}
	items := []data.FinishDTO{}
	for _, entry := range mj.entries {
		if entry.PK == accountId+":Finish" {
			items = append(items, entry)
		}
	}
	return data.QueryResults[data.FinishDTO]{Items: items}, nil
}

func (mj *MemoryJournal) Get(ctx context.Context, accountId string, itemId string) (data.FinishDTO, error) {
	mj.mutex.Lock()
	defer mj.mutex.Unlock()
	for _, entry := range mj.entries {
		if entry.PK == accountId+":Finish" && entry.SK == itemId {
			return entry, nil
		}
	}
	return data.FinishDTO{}, exceptions.NotFound("finish", itemId)
}

func (mj *MemoryJournal) Create(ctx context.Context, accountId string, input data.FinishInputDTO) (data.FinishDTO, error) {
	mj.mutex.Lock()
	defer mj.mutex.Unlock()
	if mj.Err != nil {
		return data.FinishDTO{}, mj.Err
	}
	now := time.Now()
	entry := data.FinishDTO{
		PK:         accountId + ":Finish",
		SK:         fmt.Sprintf("finish-%d", len(mj.entries)+1),
		OrderId:    *input.OrderId,
		RecipeId:   *input.RecipeId,
		DishName:   *input.DishName,
		Quantity:   *input.Quantity,
		State:      *input.State,
		ErrorKind:  input.ErrorKind,
		Message:    input.Message,
		ExpiresIn:  input.ExpiresIn,
		CreateTime: now,
		UpdateTime: now,
	}
	if input.Updates != nil {
		entry.Updates = *input.Updates
	}
	if input.Failures != nil {
		entry.Failures = *input.Failures
	}
	mj.entries = append(mj.entries, entry)
	return entry, nil
}

func (mj *MemoryJournal) Delete(ctx context.Context, accountId string, itemId string) error {
	mj.mutex.Lock()
	defer mj.mutex.Unlock()
	for i, entry := range mj.entries {
		if entry.PK == accountId+":Finish" && entry.SK == itemId {
			mj.entries = append(mj.entries[:i], mj.entries[i+1:]...)
			return nil
		}
	}
	return exceptions.NotFound("finish", itemId)
}
