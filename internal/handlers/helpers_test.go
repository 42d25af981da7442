package handlers

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vetaris/storefront-golang/internal/catalog"
	"github.com/vetaris/storefront-golang/internal/models"
)

func TestSessionLocksSerializeOneVisitor(t *testing.T) {
	var locks sessionLocks
	var wg sync.WaitGroup
	counter := 0

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("visitor-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Empty(t, locks.locks, "released locks are forgotten")
}

func TestCategoriesGroupActiveProducts(t *testing.T) {
	cat := catalog.New([]models.Product{
		{ID: 1, Name: "Mug", Category: "Mutfak Eşyaları", IsActive: true, Price: decimal.NewFromInt(1)},
		{ID: 2, Name: "Cup", Category: "Mutfak Eşyaları", IsActive: true, Price: decimal.NewFromInt(1)},
		{ID: 3, Name: "Rug", Category: "Decor", IsActive: true, Price: decimal.NewFromInt(1)},
		{ID: 4, Name: "Lamp", Category: "Lighting", Price: decimal.NewFromInt(1)},
		{ID: 5, Name: "Box", IsActive: true, Price: decimal.NewFromInt(1)},
	})

	got := categories(cat)
	assert.Equal(t, []CategoryView{
		{Name: "Decor", Slug: "decor", Count: 1},
		{Name: "Mutfak Eşyaları", Slug: "mutfak-esyalari", Count: 2},
	}, got)
}

func TestCountPending(t *testing.T) {
	orders := []models.Order{
		{Status: models.OrderStatusPreparing},
		{Status: models.OrderStatusCompleted},
		{Status: models.OrderStatusPreparing},
	}
	assert.Equal(t, 2, countPending(orders))
}

func TestStatusClassAndInitial(t *testing.T) {
	assert.Equal(t, "completed", statusClass(models.OrderStatusCompleted))
	assert.Equal(t, "preparing", statusClass(models.OrderStatusShipped))

	assert.Equal(t, "Ö", initial("özge@example.com"))
	assert.Equal(t, "", initial(""))
}
