package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eatzone/internal/catalog"
	"eatzone/internal/domain"
)

func newCachedCatalog(t *testing.T) (*CatalogService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewCatalogService(catalog.Default(), time.Minute)
	svc.SetRedisClient(client)
	return svc, mr
}

func TestSearchCacheKey(t *testing.T) {
	assert.Equal(t, "catalog:search:all:nasi", SearchCacheKey(" Nasi ", ""))
	assert.Equal(t, "catalog:search:canteen-2:", SearchCacheKey("", "canteen-2"))
}

func TestCatalogService_SearchWithoutCache(t *testing.T) {
	svc := NewCatalogService(catalog.Default(), time.Minute)

	items, err := svc.Search(context.Background(), "bakso", "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2", items[0].ID)
	assert.Equal(t, "3", items[1].ID)

	items, err = svc.Search(context.Background(), "", "canteen-3")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	assert.NoError(t, svc.WarmupCatalogCache(context.Background()))
}

func TestCatalogService_SearchPopulatesCache(t *testing.T) {
	svc, mr := newCachedCatalog(t)
	ctx := context.Background()

	items, err := svc.Search(ctx, "Ayam", "")
	require.NoError(t, err)
	assert.Len(t, items, 3)

	key := SearchCacheKey("Ayam", "")
	require.True(t, mr.Exists(key))
	ttl := mr.TTL(key)
	assert.Equal(t, time.Minute, ttl)

	var cached []domain.MenuItem
	raw, err := mr.Get(key)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, items, cached)
}

func TestCatalogService_SearchReadsThroughCache(t *testing.T) {
	svc, mr := newCachedCatalog(t)
	key := SearchCacheKey("nasi", "")

	stale, err := json.Marshal([]domain.MenuItem{CreateMockMenuItem("99", "Menu Lama", 5000)})
	require.NoError(t, err)
	require.NoError(t, mr.Set(key, string(stale)))

	items, err := svc.Search(context.Background(), "nasi", "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Menu Lama", items[0].Name)
}

func TestCatalogService_SearchSurvivesCacheOutage(t *testing.T) {
	svc, mr := newCachedCatalog(t)
	mr.Close()

	items, err := svc.Search(context.Background(), "gado", "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Gado-Gado", items[0].Name)
}

func TestCatalogService_WarmupCatalogCache(t *testing.T) {
	svc, mr := newCachedCatalog(t)

	require.NoError(t, svc.WarmupCatalogCache(context.Background()))

	for _, id := range []string{catalog.AllCanteens, "canteen-1", "canteen-2", "canteen-3"} {
		key := SearchCacheKey("", id)
		assert.True(t, mr.Exists(key), key)
		assert.Equal(t, 5*time.Minute, mr.TTL(key))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, svc.WarmupCatalogCache(ctx), context.Canceled)
}

func TestCatalogService_Delegates(t *testing.T) {
	svc := NewCatalogService(catalog.Default(), time.Minute)

	item, ok := svc.Item("4")
	require.True(t, ok)
	assert.Equal(t, "Ayam Goreng Crispy", item.Name)
	assert.Len(t, svc.Canteens(), 3)
	assert.Equal(t, "Kantin Teknik", svc.SellerName("seller-2"))
	assert.Equal(t, "Penjual", svc.SellerName("seller-9"))
	assert.True(t, svc.HasSeller("seller-3"))
	assert.False(t, svc.HasSeller("seller-9"))
}
