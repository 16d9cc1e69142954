package repository

import (
	"context"
	"errors"

	"limpopo-api/internal/domain/model"
	repo "limpopo-api/internal/repository"

	"gorm.io/gorm"
)

type MarketItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewMarketItemGormRepository(db *gorm.DB) *MarketItemGormRepository {
	return &MarketItemGormRepository{db: db}
}

// 削除済みを除いて新しい順に返す
func (r *MarketItemGormRepository) List(ctx context.Context, q repo.MarketItemListQuery) ([]model.MarketItem, error) {
	var items []model.MarketItem
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&items).Error
	if err != nil {
		return []model.MarketItem{}, err
	}
	return items, nil
}

func (r *MarketItemGormRepository) FindByID(ctx context.Context, id string) (model.MarketItem, error) {
	var item model.MarketItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.MarketItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.MarketItem{}, err
	}
	return item, nil
}

// 注文作成用。見つからなかったIDの検出は呼び出し側でやる
func (r *MarketItemGormRepository) FindByIDs(ctx context.Context, ids []string) ([]model.MarketItem, error) {
	var items []model.MarketItem
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	if err != nil {
		return []model.MarketItem{}, err
	}
	return items, nil
}

func (r *MarketItemGormRepository) Create(ctx context.Context, item model.MarketItem) (model.MarketItem, error) {
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return model.MarketItem{}, err
	}
	return item, nil
}

func (r *MarketItemGormRepository) Update(ctx context.Context, item model.MarketItem) error {
	res := r.db.WithContext(ctx).Model(&model.MarketItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"title":         item.Title,
		"description":   item.Description,
		"price":         item.Price,
		"currency":      item.Currency,
		"stock":         item.Stock,
		"shipping_info": item.ShippingInfo,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MarketItemGormRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.MarketItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 在庫が足りるときだけ減らす
// 条件付きUPDATEなので同時実行でも売り越さない
func (r *MarketItemGormRepository) DecreaseStockIfEnough(ctx context.Context, itemID string, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.MarketItem{}).
		Where("id = ? AND stock IS NOT NULL AND stock >= ?", itemID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}
