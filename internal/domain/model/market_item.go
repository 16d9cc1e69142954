package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// マーケット出品
// Stockがnilなら在庫無制限（在庫チェックも減算もしない）
type MarketItem struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	SellerID    string          `gorm:"type:uuid;not null;index" json:"seller_id"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'ZAR'" json:"currency"`

	//nil = 無制限
	Stock *int64 `gorm:"" json:"stock"`

	//配送条件など。中身はクライアント任せで解釈しない
	ShippingInfo datatypes.JSON `gorm:"type:jsonb" json:"shipping_info,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
