package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	"app/internal/infra/db"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(gdb *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: gdb}
}

func (r *ProductGormRepository) conn(ctx context.Context) *gorm.DB {
	return db.FromContext(ctx, r.db).WithContext(ctx)
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.conn(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// ID集合で商品を一括取得
func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	var products []model.Product
	if err := r.conn(ctx).
		Where("id IN ?", ids).
		Find(&products).Error; err != nil {
		return []model.Product{}, err
	}

	return products, nil
}

// 在庫が足りるときだけ減らし、更新後の商品を返す
func (r *ProductGormRepository) DecrementStock(ctx context.Context, productID int64, qty int64) (model.Product, error) {
	res := r.conn(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if res.Error != nil {
		return model.Product{}, res.Error
	}
	if res.RowsAffected == 0 {
		// 行が無いのか在庫不足なのかを区別する
		if _, err := r.FindByID(ctx, productID); err != nil {
			return model.Product{}, err
		}
		return model.Product{}, repo.ErrInsufficientStock
	}

	return r.FindByID(ctx, productID)
}
