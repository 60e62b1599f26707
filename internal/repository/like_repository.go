package repository

import "context"

type LikeRepository interface {
	// 商品に最後にいいねした、まだその商品を購入していないユーザーを返す。
	// 該当なしは ErrNotFound。
	FindLatestLikerWithoutPurchase(ctx context.Context, productID int64) (int64, error)
}
