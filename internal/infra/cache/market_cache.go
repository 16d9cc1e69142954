package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"limpopo-api/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

func NewRedis(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// マーケット一覧のTTLキャッシュ。
// redisが落ちていても一覧は返せる（DBに素通しするだけ）
type MarketListingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewMarketListingCache(rdb *redis.Client, ttl time.Duration) *MarketListingCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &MarketListingCache{rdb: rdb, ttl: ttl}
}

func listKey(limit int, offset int) string {
	return fmt.Sprintf("market:list:%d:%d", limit, offset)
}

func (c *MarketListingCache) GetList(ctx context.Context, limit int, offset int) ([]model.MarketItem, bool) {
	raw, err := c.rdb.Get(ctx, listKey(limit, offset)).Bytes()
	if err != nil {
		return nil, false
	}

	var items []model.MarketItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (c *MarketListingCache) SetList(ctx context.Context, limit int, offset int, items []model.MarketItem) {
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, listKey(limit, offset), raw, c.ttl).Err()
}

// 出品の作成・更新・削除でページキャッシュを落とす
func (c *MarketListingCache) DropLists(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, "market:list:*", 100).Iterator()

	keys := make([]string, 0, 16)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if iter.Err() != nil || len(keys) == 0 {
		return
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}
