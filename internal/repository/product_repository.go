package repository

import (
	"context"

	"app/internal/domain/model"
)

// 商品の永続化（在庫スライス）だけを約束。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	// 在庫が足りるときだけ減算し、更新後の商品を返す。
	// 足りなければ ErrInsufficientStock。
	DecrementStock(ctx context.Context, productID int64, qty int64) (model.Product, error)
}
