package handler

import (
	"net/http"
	"strconv"

	"limpopo-api/internal/domain/model"
	"limpopo-api/internal/middleware"
	"limpopo-api/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500。内部の詳細はクライアントに出さない
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}

// /market/items のAPI
type MarketItemHandler struct {
	uc *usecase.MarketItemUsecase
}

// DI
func NewMarketItemHandler(uc *usecase.MarketItemUsecase) *MarketItemHandler {
	return &MarketItemHandler{uc: uc}
}

// 一覧・詳細は公開、書き込みはbusiness/adminのみ
func (h *MarketItemHandler) RegisterRoutes(e *echo.Echo, guard *middleware.AuthGuard) {
	e.GET("/market/items", h.list)
	e.GET("/market/items/:id", h.detail)

	sellerOnly := guard.WithAuth(model.RoleAdmin, model.RoleBusiness)
	e.POST("/market/items", h.create, sellerOnly)
	e.PUT("/market/items/:id", h.update, sellerOnly)
	e.DELETE("/market/items/:id", h.delete, sellerOnly)
}

func (h *MarketItemHandler) list(c echo.Context) error {
	// limit（default 10）
	limit := 10
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	// offset（default 0）
	offset := 0
	if v := c.QueryParam("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
		}
		offset = o
	}

	items, err := h.uc.List(c.Request().Context(), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *MarketItemHandler) detail(c echo.Context) error {
	item, err := h.uc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

type createItemRequest struct {
	Title        string          `json:"title" validate:"required,max=255"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency" validate:"omitempty,len=3,alpha"`
	Stock        *int64          `json:"stock" validate:"omitempty,gte=0"`
	ShippingInfo datatypes.JSON  `json:"shipping_info"`
}

func (h *MarketItemHandler) create(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	item, err := h.uc.Create(c.Request().Context(), user.ID, usecase.CreateMarketItemInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Currency:     req.Currency,
		Stock:        req.Stock,
		ShippingInfo: req.ShippingInfo,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// 部分更新。来なかったフィールドは触らない
type updateItemRequest struct {
	Title        *string          `json:"title" validate:"omitempty,max=255"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	Currency     *string          `json:"currency" validate:"omitempty,len=3,alpha"`
	Stock        *int64           `json:"stock" validate:"omitempty,gte=0"`
	ShippingInfo datatypes.JSON   `json:"shipping_info"`
}

func (h *MarketItemHandler) update(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	item, err := h.uc.Update(c.Request().Context(), user.ID, user.Role, c.Param("id"), usecase.UpdateMarketItemInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Currency:     req.Currency,
		Stock:        req.Stock,
		ShippingInfo: req.ShippingInfo,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *MarketItemHandler) delete(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.Delete(c.Request().Context(), user.ID, user.Role, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
