package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ステータスは前進のみ（戻す遷移は無い）
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusPaid || next == OrderStatusCancelled
	case OrderStatusPaid:
		return next == OrderStatusShipped || next == OrderStatusCancelled
	case OrderStatusShipped:
		return next == OrderStatusCompleted
	default:
		//completed / cancelled は終端
		return false
	}
}

type Order struct {
	ID      string          `gorm:"type:uuid;primaryKey" json:"id"`
	BuyerID string          `gorm:"type:uuid;not null;index" json:"buyer_id"`
	Total   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Status  OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`

	//配送先。そのまま保存してそのまま返すだけ
	ShippingAddress datatypes.JSON `gorm:"type:jsonb" json:"shipping_address,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
