package model

import (
	"errors"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

var ErrPaymentNotPending = errors.New("payment is not pending")

// 決済レコード（1注文につき1試行）
// ExternalPaymentIDは最初のWebhookが届くまで空。
type Payment struct {
	ID                int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID           int64         `gorm:"not null;index" json:"order_id"`
	Amount            int64         `gorm:"not null" json:"amount"` // 作成時点のOrder.Totalと一致
	Currency          string        `gorm:"type:varchar(8);not null" json:"currency"`
	ExternalPaymentID string        `gorm:"type:varchar(64);index" json:"external_payment_id"`
	Status            PaymentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentAt         *time.Time    `json:"payment_at"` // PAIDになった時だけ入る
	CreatedAt         time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// MarkPaid はPENDINGからだけ遷移できる。非PENDINGは終端。
func (p *Payment) MarkPaid(at time.Time) error {
	if p.Status != PaymentStatusPending {
		return ErrPaymentNotPending
	}
	p.Status = PaymentStatusPaid
	p.PaymentAt = &at
	return nil
}

// MarkFailed はPENDINGからだけ遷移できる。注文側はPENDINGのまま（再決済可）。
func (p *Payment) MarkFailed() error {
	if p.Status != PaymentStatusPending {
		return ErrPaymentNotPending
	}
	p.Status = PaymentStatusFailed
	return nil
}
