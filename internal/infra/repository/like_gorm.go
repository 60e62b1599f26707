package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	"app/internal/infra/db"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type LikeGormRepository struct {
	db *gorm.DB
}

func NewLikeGormRepository(gdb *gorm.DB) *LikeGormRepository {
	return &LikeGormRepository{db: gdb}
}

func (r *LikeGormRepository) conn(ctx context.Context) *gorm.DB {
	return db.FromContext(ctx, r.db).WithContext(ctx)
}

// 商品に最後にいいねした、まだ購入していないユーザーを返す
func (r *LikeGormRepository) FindLatestLikerWithoutPurchase(ctx context.Context, productID int64) (int64, error) {
	var like model.ProductLike

	err := r.conn(ctx).
		Where(`product_id = ? AND NOT EXISTS (
			SELECT 1 FROM order_details od
			JOIN orders o ON o.id = od.order_id
			WHERE od.product_id = product_likes.product_id
			  AND o.user_id = product_likes.user_id
		)`, productID).
		Order("created_at desc").
		First(&like).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, repo.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return like.UserID, nil
}
