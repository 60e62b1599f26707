package model

import (
	"errors"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
	OrderStatusFailed  OrderStatus = "FAILED"
)

var ErrOrderNotPending = errors.New("order is not pending")

type Order struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64       `gorm:"not null;index" json:"user_id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Total     int64       `gorm:"not null" json:"total"` // 明細小計の合計（セント）
	CreatedAt time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Details []OrderDetail `gorm:"-" json:"details,omitempty"`
}

// MarkPaid はPENDING→PAIDの一方向遷移だけを許可する。
func (o *Order) MarkPaid() error {
	if o.Status != OrderStatusPending {
		return ErrOrderNotPending
	}
	o.Status = OrderStatusPaid
	return nil
}
