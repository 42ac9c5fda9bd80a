package inventory

import (
	"sync"

	"philcali.me/kitchen/internal/data"
)

// Cache holds the last fetched ingredient list for listing when the store
// is unreachable. It is only ever replaced as a whole, apart from evicting
// deleted ingredients.
type Cache struct {
	mutex  sync.RWMutex
	items  []data.Ingredient
	loaded bool
}

func (c *Cache) Replace(items []data.Ingredient) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items = append([]data.Ingredient(nil), items...)
	c.loaded = true
}

func (c *Cache) Loaded() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.loaded
}

func (c *Cache) Items() []data.Ingredient {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return append([]data.Ingredient(nil), c.items...)
}

func (c *Cache) Remove(ingredientId string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	kept := make([]data.Ingredient, 0, len(c.items))
	for _, item := range c.items {
		if item.IngredientId != ingredientId {
			kept = append(kept, item)
		}
	}
	c.items = kept
}
