package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	"app/internal/infra/db"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(gdb *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: gdb}
}

func (r *PaymentGormRepository) conn(ctx context.Context) *gorm.DB {
	return db.FromContext(ctx, r.db).WithContext(ctx)
}

func (r *PaymentGormRepository) Create(ctx context.Context, payment model.Payment) (model.Payment, error) {
	if err := r.conn(ctx).Create(&payment).Error; err != nil {
		return model.Payment{}, err
	}
	return payment, nil
}

func (r *PaymentGormRepository) FindByID(ctx context.Context, paymentID int64) (model.Payment, error) {
	var p model.Payment
	err := r.conn(ctx).Where("id = ?", paymentID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Payment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Payment{}, err
	}
	return p, nil
}

// 状態遷移で動くフィールドだけを更新する
func (r *PaymentGormRepository) Update(ctx context.Context, payment model.Payment) (model.Payment, error) {
	res := r.conn(ctx).Model(&model.Payment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]interface{}{
			"external_payment_id": payment.ExternalPaymentID,
			"status":              payment.Status,
			"payment_at":          payment.PaymentAt,
		})

	if res.Error != nil {
		return model.Payment{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Payment{}, repo.ErrNotFound
	}
	return payment, nil
}
