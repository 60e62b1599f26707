package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
)

type PaymentUsecase struct {
	tx       repo.TransactionManager
	orders   repo.OrderRepository
	payments repo.PaymentRepository
	gateway  PaymentGateway
	currency string
}

func NewPaymentUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	payments repo.PaymentRepository,
	gateway PaymentGateway,
	currency string,
) *PaymentUsecase {
	return &PaymentUsecase{
		tx:       tx,
		orders:   orders,
		payments: payments,
		gateway:  gateway,
		currency: currency,
	}
}

type PaymentOutput struct {
	ID                int64      `json:"id"`
	OrderID           int64      `json:"order_id"`
	Amount            int64      `json:"amount"`
	Currency          string     `json:"currency"`
	ExternalPaymentID string     `json:"external_payment_id"`
	Status            string     `json:"status"`
	PaymentAt         *time.Time `json:"payment_at"`
}

// CreatePayment は注文に紐づく決済レコードを作り、外部ゲートウェイに
// 支払いインテントを要求する。レコードはゲートウェイ呼び出しの前に
// 確定させる。インテント作成に失敗してもレコードは残る（再発行で再利用）。
func (u *PaymentUsecase) CreatePayment(ctx context.Context, orderID int64, userID int64) (PaymentOutput, error) {
	order, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return PaymentOutput{}, ErrOrderNotFound
	}
	if err != nil {
		return PaymentOutput{}, err
	}
	if order.UserID != userID {
		return PaymentOutput{}, ErrOrderNotOwned
	}

	payment, err := u.payments.Create(ctx, model.Payment{
		OrderID:  order.ID,
		Amount:   order.Total, // 作成時点のOrder.Totalと必ず一致させる
		Currency: u.currency,
		Status:   model.PaymentStatusPending,
	})
	if err != nil {
		return PaymentOutput{}, err
	}

	// インテントにはpayment_idをメタデータとして載せる。
	// Webhook側はこのメタデータだけを手がかりに決済レコードへ戻る。
	intentID, err := u.gateway.CreatePaymentIntent(ctx, PaymentIntentInput{
		PaymentID:      payment.ID,
		Amount:         payment.Amount,
		Currency:       payment.Currency,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		slog.WarnContext(ctx, "payment intent creation failed, payment row kept",
			"payment_id", payment.ID, "order_id", order.ID, "error", err)
		return PaymentOutput{}, ErrGatewayUnavailable
	}

	slog.InfoContext(ctx, "payment intent created",
		"payment_id", payment.ID, "intent_id", intentID)

	return toPaymentOutput(payment), nil
}

// ProcessPayment はWebhookで届いた決済イベントを突合して
// Payment/Orderの状態を更新する。再配送されても二重適用しない：
// 注文が既に非PENDINGなら ErrOrderAlreadySettled で弾く。
func (u *PaymentUsecase) ProcessPayment(ctx context.Context, paymentID int64, rawBody []byte, signature string, paymentAt time.Time) (PaymentOutput, error) {
	var out PaymentOutput

	err := u.tx.WithinTx(ctx, func(ctx context.Context) error {
		payment, err := u.payments.FindByID(ctx, paymentID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrPaymentNotFound
		}
		if err != nil {
			return err
		}

		order, err := u.orders.FindByID(ctx, payment.OrderID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		// 再配送・同一注文への古いインテントに対する冪等ガード
		if order.Status != model.OrderStatusPending {
			return ErrOrderAlreadySettled
		}

		// 検証前のペイロードは信用しない
		ev, err := u.gateway.VerifyWebhook(rawBody, signature)
		if err != nil {
			return ErrWebhookSignatureInvalid
		}

		// プロバイダ採番のインテントIDを記録する
		payment.ExternalPaymentID = ev.IntentID

		switch ev.Type {
		case EventPaymentSucceeded:
			if err := payment.MarkPaid(paymentAt); err != nil {
				return ErrPaymentAlreadySettled
			}
			if err := u.orders.UpdateStatus(ctx, order.ID, model.OrderStatusPaid); err != nil {
				return err
			}
		case EventPaymentFailed:
			// 注文はPENDINGのまま残して再決済を許す
			if err := payment.MarkFailed(); err != nil {
				return ErrPaymentAlreadySettled
			}
		default:
			// 知らないイベントは黙殺せず明示的に拒否する
			return ErrUnhandledEventType
		}

		updated, err := u.payments.Update(ctx, payment)
		if err != nil {
			return err
		}

		out = toPaymentOutput(updated)
		return nil
	})

	if err != nil {
		return PaymentOutput{}, err
	}

	slog.InfoContext(ctx, "payment reconciled",
		"payment_id", out.ID, "order_id", out.OrderID, "status", out.Status)

	return out, nil
}

func toPaymentOutput(p model.Payment) PaymentOutput {
	return PaymentOutput{
		ID:                p.ID,
		OrderID:           p.OrderID,
		Amount:            p.Amount,
		Currency:          p.Currency,
		ExternalPaymentID: p.ExternalPaymentID,
		Status:            string(p.Status),
		PaymentAt:         p.PaymentAt,
	}
}
