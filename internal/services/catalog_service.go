package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"eatzone/internal/catalog"
	"eatzone/internal/domain"
)

// CatalogService fronts the static catalog with an optional redis cache.
type CatalogService struct {
	source      catalog.Source
	redisClient *redis.Client
	ttl         time.Duration
	group       singleflight.Group
}

func NewCatalogService(src catalog.Source, ttl time.Duration) *CatalogService {
	return &CatalogService{source: src, ttl: ttl}
}

func (u *CatalogService) SetRedisClient(client *redis.Client) {
	u.redisClient = client
}

func (u *CatalogService) Item(id string) (domain.MenuItem, bool) {
	return u.source.Item(id)
}

func (u *CatalogService) Canteens() []domain.Canteen {
	return u.source.Canteens()
}

func (u *CatalogService) SellerName(sellerID string) string {
	return u.source.SellerName(sellerID)
}

func (u *CatalogService) HasSeller(sellerID string) bool {
	return u.source.HasSeller(sellerID)
}

func SearchCacheKey(query, canteenID string) string {
	if canteenID == "" {
		canteenID = catalog.AllCanteens
	}
	return "catalog:search:" + canteenID + ":" + strings.ToLower(strings.TrimSpace(query))
}

// Search is a read-through lookup: redis first, then the catalog. Cache
// failures only cost a recomputation.
func (u *CatalogService) Search(ctx context.Context, query, canteenID string) ([]domain.MenuItem, error) {
	key := SearchCacheKey(query, canteenID)

	if u.redisClient != nil {
		cached, err := u.redisClient.Get(ctx, key).Result()
		if err == nil {
			var items []domain.MenuItem
			if err := json.Unmarshal([]byte(cached), &items); err == nil {
				return items, nil
			}
		} else if err != redis.Nil {
			zap.L().Debug("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, _ := u.group.Do(key, func() (any, error) {
		items := u.source.Search(strings.TrimSpace(query), canteenID)
		u.store(ctx, key, items, u.ttl)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.MenuItem(nil), v.([]domain.MenuItem)...), nil
}

// WarmupCatalogCache preloads the unfiltered listing of every canteen.
func (u *CatalogService) WarmupCatalogCache(ctx context.Context) error {
	if u.redisClient == nil {
		return nil
	}

	ids := []string{catalog.AllCanteens}
	for _, c := range u.source.Canteens() {
		ids = append(ids, c.ID)
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		u.store(ctx, SearchCacheKey("", id), u.source.Search("", id), 5*time.Minute)
	}
	return nil
}

func (u *CatalogService) store(ctx context.Context, key string, items []domain.MenuItem, ttl time.Duration) {
	if u.redisClient == nil {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := u.redisClient.Set(ctx, key, data, ttl).Err(); err != nil {
		zap.L().Debug("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
