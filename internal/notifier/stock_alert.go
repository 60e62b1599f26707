package notifier

import (
	"context"
	"errors"
	"log/slog"

	"app/internal/event"
	repo "app/internal/repository"
)

// StockAlertDispatcher はStockUpdatedを受けて、在庫が閾値以下の商品に
// ついて「最後にいいねした未購入ユーザー」へベストエフォートで通知する。
// ここでの失敗はチェックアウトへ絶対に伝播させない。
type StockAlertDispatcher struct {
	products  repo.ProductRepository
	likes     repo.LikeRepository
	mailer    Mailer
	threshold int64
	logger    *slog.Logger
}

func NewStockAlertDispatcher(
	products repo.ProductRepository,
	likes repo.LikeRepository,
	mailer Mailer,
	threshold int64,
	logger *slog.Logger,
) *StockAlertDispatcher {
	return &StockAlertDispatcher{
		products:  products,
		likes:     likes,
		mailer:    mailer,
		threshold: threshold,
		logger:    logger,
	}
}

func (d *StockAlertDispatcher) HandleStockUpdated(ctx context.Context, ev event.StockUpdated) {
	for _, productID := range ev.ProductIDs {
		// イベント発行後にも在庫は動くので読み直す
		p, err := d.products.FindByID(ctx, productID)
		if err != nil {
			d.logger.WarnContext(ctx, "stock alert: product read failed",
				"product_id", productID, "error", err)
			continue
		}
		if p.Stock > d.threshold {
			continue
		}

		userID, err := d.likes.FindLatestLikerWithoutPurchase(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			// 通知対象がいなければ何もしない
			continue
		}
		if err != nil {
			d.logger.WarnContext(ctx, "stock alert: liker lookup failed",
				"product_id", productID, "error", err)
			continue
		}

		if err := d.mailer.SendLowStockAlert(ctx, userID, p); err != nil {
			// 落とした通知はそのまま失われる（リトライは未定義）
			d.logger.WarnContext(ctx, "stock alert: send failed",
				"product_id", productID, "user_id", userID, "error", err)
		}
	}
}
