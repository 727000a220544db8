package selection

import (
	"sync"
	"testing"

	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestStore_Setters(t *testing.T) {
	initial := models.FilterSelection{Range: models.TimeRange{Start: "2024-01-01", End: "2024-01-07"}}
	store := NewStore(initial)

	sel, version := store.Snapshot()
	assert.Equal(t, initial, sel)
	assert.Equal(t, uint64(0), version)

	store.SetBrand("A")
	store.SetModel("gpt")
	updated := store.SetTimeRange(models.TimeRange{Start: "2024-02-01", End: "2024-02-29"})

	assert.Equal(t, "A", updated.BrandID)
	assert.Equal(t, "gpt", updated.ModelID)
	assert.Equal(t, "2024-02-01", updated.Range.Start)
	assert.Equal(t, uint64(3), store.Version())

	store.SetBrand("")
	sel, _ = store.Snapshot()
	assert.True(t, sel.AllBrands())
	assert.False(t, sel.AllModels())
}

func TestStore_LastWriteWins(t *testing.T) {
	store := NewStore(models.FilterSelection{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.SetModel("gpt")
		}()
	}
	wg.Wait()
	store.Set(models.FilterSelection{ModelID: "claude"})

	sel, version := store.Snapshot()
	assert.Equal(t, "claude", sel.ModelID)
	assert.Equal(t, uint64(51), version)
}
