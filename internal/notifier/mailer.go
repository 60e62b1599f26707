package notifier

import (
	"context"
	"log/slog"

	"app/internal/domain/model"
)

// メール配送は外部コラボレータ。ここは契約だけ。
type Mailer interface {
	SendLowStockAlert(ctx context.Context, userID int64, product model.Product) error
}

// 配送基盤が無い環境向けに、送る代わりにログへ出す実装
type SlogMailer struct {
	logger *slog.Logger
}

func NewSlogMailer(logger *slog.Logger) *SlogMailer {
	return &SlogMailer{logger: logger}
}

func (m *SlogMailer) SendLowStockAlert(ctx context.Context, userID int64, product model.Product) error {
	m.logger.InfoContext(ctx, "low stock alert",
		"user_id", userID,
		"product_id", product.ID,
		"product_name", product.Name,
		"stock", product.Stock,
	)
	return nil
}
