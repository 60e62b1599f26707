package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/db"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(gdb *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: gdb}
}

func (r *CartGormRepository) conn(ctx context.Context) *gorm.DB {
	return db.FromContext(ctx, r.db).WithContext(ctx)
}

// ユーザーのカート明細を一覧取得
func (r *CartGormRepository) ListByUser(ctx context.Context, userID int64) ([]model.CartLine, error) {
	var lines []model.CartLine

	if err := r.conn(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&lines).Error; err != nil {
		return []model.CartLine{}, err
	}

	return lines, nil
}

// 同一商品は数量加算
func (r *CartGormRepository) Upsert(ctx context.Context, userID int64, productID int64, addQty int64) error {
	if addQty <= 0 {
		return errors.New("invalid quantity")
	}

	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var line model.CartLine

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			First(&line).Error

		if err == nil {
			// 既存ありだったら数量を増やす
			res := tx.Model(&model.CartLine{}).
				Where("user_id = ? AND product_id = ?", userID, productID).
				Update("quantity", line.Quantity+addQty)

			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		//無い場合は新規作成
		now := time.Now()
		newLine := model.CartLine{
			UserID:    userID,
			ProductID: productID,
			Quantity:  addQty,
			CreatedAt: now,
			UpdatedAt: now,
		}

		return tx.Create(&newLine).Error
	})
}

// ユーザーのカート明細を全削除
func (r *CartGormRepository) ClearByUser(ctx context.Context, userID int64) error {
	return r.conn(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartLine{}).Error
}
