package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"limpopo-api/internal/domain/model"
	repo "limpopo-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// 決済はスタブ実装を差し込む
type PaymentService interface {
	Pay(ctx context.Context, orderID string) error
}

type OrderUsecase struct {
	tx      repo.TransactionManager
	orders  repo.OrderRepository
	idGen   IDGenerator
	payment PaymentService
}

func NewOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, idGen IDGenerator, payment PaymentService) *OrderUsecase {
	return &OrderUsecase{tx: tx, orders: orders, idGen: idGen, payment: payment}
}

type OrderLineInput struct {
	ItemID string `json:"market_item_id"`
	Qty    int64  `json:"quantity"`
}

type CreateOrderInput struct {
	Items []OrderLineInput
	//中身は解釈せずそのまま保存する
	ShippingAddress datatypes.JSON
}

type OrderOutput struct {
	Order model.Order       `json:"order"`
	Items []model.OrderItem `json:"items"`
}

// 在庫チェック・注文作成・明細作成・在庫減算を1トランザクションで行う。
// 途中で失敗したら全部ロールバックして部分状態を残さない
func (u *OrderUsecase) CreateOrder(ctx context.Context, buyerID string, in CreateOrderInput) (OrderOutput, error) {
	if buyerID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(in.Items) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "An array of items is required.")
	}
	for _, line := range in.Items {
		if line.ItemID == "" {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "market_item_id is required")
		}
		if line.Qty <= 0 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be positive")
		}
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//参照される出品を1クエリでまとめて取る
		ids := make([]string, 0, len(in.Items))
		for _, line := range in.Items {
			ids = append(ids, line.ItemID)
		}

		dbItems, err := r.MarketItems().FindByIDs(ctx, ids)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		itemsByID := make(map[string]model.MarketItem, len(dbItems))
		for _, it := range dbItems {
			itemsByID[it.ID] = it
		}

		//行ごとに存在・在庫を確認しながら合計を積む（価格は今の値）
		total := decimal.Zero
		for _, line := range in.Items {
			dbItem, ok := itemsByID[line.ItemID]
			if !ok {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Item with ID %s not found.", line.ItemID))
			}
			if dbItem.Stock != nil && *dbItem.Stock < line.Qty {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Not enough stock for item %s.", dbItem.ID))
			}
			total = total.Add(dbItem.Price.Mul(decimal.NewFromInt(line.Qty)))
		}

		//注文作成
		order, err := r.Orders().Create(ctx, model.Order{
			ID:              u.idGen.NewID(),
			BuyerID:         buyerID,
			Total:           total,
			Status:          model.OrderStatusPending,
			ShippingAddress: in.ShippingAddress,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//明細作成（unit_priceは読んだ時点の価格で凍結）
		orderItems := make([]model.OrderItem, 0, len(in.Items))
		for _, line := range in.Items {
			dbItem := itemsByID[line.ItemID]
			orderItems = append(orderItems, model.OrderItem{
				ID:        u.idGen.NewID(),
				ItemID:    line.ItemID,
				Qty:       line.Qty,
				UnitPrice: dbItem.Price,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//在庫減算。条件付きUPDATEなので同時注文があっても売り越さない
		//（減らせなかった＝他の注文が先に取った）
		for _, line := range in.Items {
			dbItem := itemsByID[line.ItemID]
			if dbItem.Stock == nil {
				//無制限在庫は減らさない
				continue
			}
			ok, err := r.MarketItems().DecreaseStockIfEnough(ctx, line.ItemID, line.Qty)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Not enough stock for item %s.", dbItem.ID))
			}
		}

		out = OrderOutput{Order: order, Items: orderItems}
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, buyerID string, limit int, offset int) ([]OrderOutput, error) {
	if buyerID == "" {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByBuyerID(ctx, buyerID, limit, offset)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, OrderOutput{Order: o, Items: items})
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrder(ctx context.Context, buyerID string, orderID string) (OrderOutput, error) {
	if buyerID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Order not found.")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.BuyerID != buyerID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "Order not found.")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = OrderOutput{Order: o, Items: items}
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

type PayOrderOutput struct {
	Message     string            `json:"message"`
	OrderStatus model.OrderStatus `json:"orderStatus"`
}

// pending以外は支払えない。支払いが通ったらpaidへ進める
func (u *OrderUsecase) PayOrder(ctx context.Context, buyerID string, orderID string) (PayOrderOutput, error) {
	if buyerID == "" {
		return PayOrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return PayOrderOutput{}, NewHTTPError(http.StatusBadRequest, "Order ID is required.")
	}

	order, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return PayOrderOutput{}, NewHTTPError(http.StatusNotFound, "Order not found.")
	}
	if err != nil {
		return PayOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if order.BuyerID != buyerID {
		return PayOrderOutput{}, NewHTTPError(http.StatusForbidden, "You cannot pay for an order that is not yours.")
	}

	if order.Status != model.OrderStatusPending || !order.Status.CanTransitionTo(model.OrderStatusPaid) {
		return PayOrderOutput{}, NewHTTPError(http.StatusConflict, fmt.Sprintf("Order is already %s.", order.Status))
	}

	if err := u.payment.Pay(ctx, orderID); err != nil {
		return PayOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "Payment processing failed.")
	}

	if err := u.orders.UpdateStatus(ctx, orderID, model.OrderStatusPaid); err != nil {
		return PayOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return PayOrderOutput{
		Message:     "Payment successful",
		OrderStatus: model.OrderStatusPaid,
	}, nil
}
