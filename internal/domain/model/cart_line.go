package model

import "time"

// カート明細
// (user_id, product_id) で一意。同じ商品を追加したら数量加算。
type CartLine struct {
	UserID    int64     `gorm:"primaryKey" json:"user_id"`
	ProductID int64     `gorm:"primaryKey" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
