package model

import "time"

// 注文明細
// IDは注文内での1始まりの連番。(order_id, id) で一意。
// UnitPriceは注文時点の価格スナップショットで、以後変更しない。
type OrderDetail struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	OrderID   int64     `gorm:"primaryKey" json:"order_id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"`
	Subtotal  int64     `gorm:"not null" json:"subtotal"` // Quantity × UnitPrice
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
