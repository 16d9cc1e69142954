package usecase

import (
	"context"
	"errors"
	"net/http"

	"limpopo-api/internal/domain/model"
	repo "limpopo-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// 一覧のTTLキャッシュ。外れても失敗してもDBから読めばいいので
// 実装側はエラーを返さない
type ListingCache interface {
	GetList(ctx context.Context, limit int, offset int) ([]model.MarketItem, bool)
	SetList(ctx context.Context, limit int, offset int, items []model.MarketItem)
	DropLists(ctx context.Context)
}

type MarketItemUsecase struct {
	items repo.MarketItemRepository
	cache ListingCache
	idGen IDGenerator
}

func NewMarketItemUsecase(items repo.MarketItemRepository, cache ListingCache, idGen IDGenerator) *MarketItemUsecase {
	return &MarketItemUsecase{items: items, cache: cache, idGen: idGen}
}

func (u *MarketItemUsecase) List(ctx context.Context, limit int, offset int) ([]model.MarketItem, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	if u.cache != nil {
		if items, ok := u.cache.GetList(ctx, limit, offset); ok {
			return items, nil
		}
	}

	items, err := u.items.List(ctx, repo.MarketItemListQuery{Limit: limit, Offset: offset})
	if err != nil {
		return []model.MarketItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cache != nil {
		u.cache.SetList(ctx, limit, offset, items)
	}
	return items, nil
}

func (u *MarketItemUsecase) Get(ctx context.Context, id string) (model.MarketItem, error) {
	if id == "" {
		return model.MarketItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	item, err := u.items.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.MarketItem{}, NewHTTPError(http.StatusNotFound, "Item not found.")
	}
	if err != nil {
		return model.MarketItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return item, nil
}

type CreateMarketItemInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Currency    string
	//nil = 無制限在庫
	Stock        *int64
	ShippingInfo datatypes.JSON
}

func (u *MarketItemUsecase) Create(ctx context.Context, sellerID string, in CreateMarketItemInput) (model.MarketItem, error) {
	if sellerID == "" {
		return model.MarketItem{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Title == "" {
		return model.MarketItem{}, NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if in.Price.IsNegative() {
		return model.MarketItem{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return model.MarketItem{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if in.Currency == "" {
		in.Currency = "ZAR"
	}

	item, err := u.items.Create(ctx, model.MarketItem{
		ID:           u.idGen.NewID(),
		SellerID:     sellerID,
		Title:        in.Title,
		Description:  in.Description,
		Price:        in.Price,
		Currency:     in.Currency,
		Stock:        in.Stock,
		ShippingInfo: in.ShippingInfo,
	})
	if err != nil {
		return model.MarketItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cache != nil {
		u.cache.DropLists(ctx)
	}
	return item, nil
}

// 部分更新。nilのフィールドは今の値のまま
type UpdateMarketItemInput struct {
	Title        *string
	Description  *string
	Price        *decimal.Decimal
	Currency     *string
	Stock        *int64
	ShippingInfo datatypes.JSON
}

func (u *MarketItemUsecase) Update(ctx context.Context, callerID string, callerRole model.Role, id string, in UpdateMarketItemInput) (model.MarketItem, error) {
	item, err := u.findOwned(ctx, callerID, callerRole, id)
	if err != nil {
		return model.MarketItem{}, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return model.MarketItem{}, NewHTTPError(http.StatusBadRequest, "title is required")
		}
		item.Title = *in.Title
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return model.MarketItem{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
		}
		item.Price = *in.Price
	}
	if in.Currency != nil {
		item.Currency = *in.Currency
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return model.MarketItem{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
		}
		item.Stock = in.Stock
	}
	if in.ShippingInfo != nil {
		item.ShippingInfo = in.ShippingInfo
	}

	if err := u.items.Update(ctx, item); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.MarketItem{}, NewHTTPError(http.StatusNotFound, "Item not found.")
		}
		return model.MarketItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cache != nil {
		u.cache.DropLists(ctx)
	}
	return item, nil
}

func (u *MarketItemUsecase) Delete(ctx context.Context, callerID string, callerRole model.Role, id string) error {
	if _, err := u.findOwned(ctx, callerID, callerRole, id); err != nil {
		return err
	}

	if err := u.items.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Item not found.")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cache != nil {
		u.cache.DropLists(ctx)
	}
	return nil
}

// 出品を取って所有チェック。adminは他人の出品も触れる
func (u *MarketItemUsecase) findOwned(ctx context.Context, callerID string, callerRole model.Role, id string) (model.MarketItem, error) {
	if callerID == "" {
		return model.MarketItem{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id == "" {
		return model.MarketItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	item, err := u.items.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.MarketItem{}, NewHTTPError(http.StatusNotFound, "Item not found.")
	}
	if err != nil {
		return model.MarketItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if item.SellerID != callerID && callerRole != model.RoleAdmin {
		return model.MarketItem{}, NewHTTPError(http.StatusForbidden, "You can only manage your own items.")
	}
	return item, nil
}
