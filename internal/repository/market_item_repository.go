package repository

import (
	"context"
	"errors"

	"limpopo-api/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧取得の条件
type MarketItemListQuery struct {
	Limit  int
	Offset int
}

// 出品の永続化（保存・取得）だけを約束。
type MarketItemRepository interface {
	List(ctx context.Context, q MarketItemListQuery) ([]model.MarketItem, error)
	FindByID(ctx context.Context, id string) (model.MarketItem, error)

	//注文トランザクション用。指定IDをまとめて1クエリで取る
	FindByIDs(ctx context.Context, ids []string) ([]model.MarketItem, error)

	Create(ctx context.Context, item model.MarketItem) (model.MarketItem, error)
	Update(ctx context.Context, item model.MarketItem) error
	SoftDelete(ctx context.Context, id string) error

	//在庫が足りるときだけ減算（nil在庫の出品には呼ばない）
	DecreaseStockIfEnough(ctx context.Context, itemID string, qty int64) (bool, error)
}
