package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 在庫が足りない時に減算を拒否した印
var ErrInsufficientStock = errors.New("insufficient stock")

type CartRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]model.CartLine, error)
	// 同一商品は数量加算
	Upsert(ctx context.Context, userID int64, productID int64, addQty int64) error
	// ユーザーのカート明細を一括削除
	ClearByUser(ctx context.Context, userID int64) error
}
