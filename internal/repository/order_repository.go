package repository

import (
	"context"

	"app/internal/domain/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (int64, error)
	CreateDetails(ctx context.Context, orderID int64, details []model.OrderDetail) error
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListDetails(ctx context.Context, orderID int64) ([]model.OrderDetail, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	// 注文作成・在庫減算・カート削除を束ねた書き込み。
	// 呼び出し側のトランザクション内で実行される前提。
	CreateFullOrder(ctx context.Context, order model.Order, details []model.OrderDetail, userID int64) (model.Order, error)
}
