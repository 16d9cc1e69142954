package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細
// UnitPriceは購入時点のスナップショット（出品価格が変わっても動かない）
type OrderItem struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   string          `gorm:"type:uuid;not null;index" json:"order_id"`
	ItemID    string          `gorm:"type:uuid;not null;index" json:"item_id"`
	Qty       int64           `gorm:"not null" json:"qty"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
