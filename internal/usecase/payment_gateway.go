package usecase

import (
	"context"
	"errors"
	"time"
)

// 決済プロバイダが送るイベント種別
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// 署名が一致しなかった印（GatewayのVerifyWebhookが返す）
var ErrSignatureMismatch = errors.New("webhook signature mismatch")

type PaymentIntentInput struct {
	PaymentID      int64
	Amount         int64
	Currency       string
	IdempotencyKey string
}

// 検証済みWebhookイベント
type WebhookEvent struct {
	ID       string
	Type     string
	IntentID string // プロバイダ採番のpayment intent ID
	Created  time.Time
	Metadata map[string]string
}

// 外部決済ゲートウェイ
type PaymentGateway interface {
	// 支払いインテントを作成し、プロバイダ採番のIDを返す。
	CreatePaymentIntent(ctx context.Context, in PaymentIntentInput) (string, error)
	// 生のリクエストボディと署名ヘッダでWebhookの真正性を検証し、
	// デコード済みイベントを返す。不正なら ErrSignatureMismatch。
	VerifyWebhook(rawBody []byte, signature string) (WebhookEvent, error)
}
