package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/event"
	repo "app/internal/repository"
)

type OrderUsecase struct {
	tx       repo.TransactionManager
	carts    repo.CartRepository
	products repo.ProductRepository
	orders   repo.OrderRepository
	bus      event.Bus
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	carts repo.CartRepository,
	products repo.ProductRepository,
	orders repo.OrderRepository,
	bus event.Bus,
) *OrderUsecase {
	return &OrderUsecase{
		tx:       tx,
		carts:    carts,
		products: products,
		orders:   orders,
		bus:      bus,
	}
}

type OrderDetailOutput struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
	Subtotal  int64 `json:"subtotal"`
}

type OrderOutput struct {
	ID        int64               `json:"id"`
	UserID    int64               `json:"user_id"`
	Status    string              `json:"status"`
	Total     int64               `json:"total"`
	CreatedAt time.Time           `json:"created_at"`
	Details   []OrderDetailOutput `json:"details"`
}

// CreateOrderFromCart はカートを注文に変換する。
// 注文作成・在庫減算・カート削除は1トランザクションで全か無か。
// コミット後に StockUpdated を発行する（発行失敗は注文を巻き戻さない）。
func (u *OrderUsecase) CreateOrderFromCart(ctx context.Context, userID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	// 空カートはTxを開く前に弾く
	lines, err := u.carts.ListByUser(ctx, userID)
	if err != nil {
		return OrderOutput{}, err
	}
	if len(lines) == 0 {
		return OrderOutput{}, ErrEmptyCart
	}

	var out OrderOutput
	var productIDs []int64

	err = u.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Tx内のスナップショットで読み直す
		lines, err := u.carts.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		ids := make([]int64, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.ProductID)
		}

		products, err := u.products.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[int64]model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		// 明細の組み立てと価格スナップショット
		details := make([]model.OrderDetail, 0, len(lines))
		var total int64
		for i, line := range lines {
			p, ok := byID[line.ProductID]
			if !ok {
				return ErrProductNotFound
			}
			// 在庫不足は注文を作る前に拒否する
			if p.Stock < line.Quantity {
				return ErrInsufficientStock
			}

			subtotal := line.Quantity * p.Price
			details = append(details, model.OrderDetail{
				ID:        int64(i + 1), // 注文内の1始まり連番
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: p.Price, // ここで読んだ価格を固定（後で読み直さない）
				Subtotal:  subtotal,
			})
			total += subtotal
		}

		now := time.Now()
		created, err := u.orders.CreateFullOrder(ctx, model.Order{
			UserID:    userID,
			Status:    model.OrderStatusPending,
			Total:     total,
			CreatedAt: now,
			UpdatedAt: now,
		}, details, userID)
		if err != nil {
			// 並行チェックアウトとの競合はここで最終的に止まる
			if errors.Is(err, repo.ErrInsufficientStock) {
				return ErrInsufficientStock
			}
			return err
		}

		productIDs = ids
		out = toOrderOutput(created)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	// コミット後の在庫更新イベント（通知できなくても注文は成立）
	if err := u.bus.Publish(ctx, event.StockUpdated{OrderID: out.ID, ProductIDs: productIDs}); err != nil {
		slog.WarnContext(ctx, "publish stock.updated failed", "order_id", out.ID, "error", err)
	}

	return out, nil
}

// GetOrder は自分の注文を明細つきで取得する。
func (u *OrderUsecase) GetOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, ErrOrderNotFound
	}
	if err != nil {
		return OrderOutput{}, err
	}
	if o.UserID != userID {
		//他人の注文は「存在しない扱い」にする
		return OrderOutput{}, ErrOrderNotFound
	}

	details, err := u.orders.ListDetails(ctx, orderID)
	if err != nil {
		return OrderOutput{}, err
	}
	o.Details = details

	return toOrderOutput(o), nil
}

func toOrderOutput(o model.Order) OrderOutput {
	details := make([]OrderDetailOutput, 0, len(o.Details))
	for _, d := range o.Details {
		details = append(details, OrderDetailOutput{
			ID:        d.ID,
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
			Subtotal:  d.Subtotal,
		})
	}

	return OrderOutput{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    string(o.Status),
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
		Details:   details,
	}
}
