package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	"app/internal/infra/db"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db       *gorm.DB
	products *ProductGormRepository
	carts    *CartGormRepository
}

func NewOrderGormRepository(gdb *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{
		db:       gdb,
		products: NewProductGormRepository(gdb),
		carts:    NewCartGormRepository(gdb),
	}
}

func (r *OrderGormRepository) conn(ctx context.Context) *gorm.DB {
	return db.FromContext(ctx, r.db).WithContext(ctx)
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	order.Details = nil
	if err := r.conn(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) CreateDetails(ctx context.Context, orderID int64, details []model.OrderDetail) error {
	if len(details) == 0 {
		return nil
	}
	for i := range details {
		details[i].OrderID = orderID
	}
	return r.conn(ctx).Create(&details).Error
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.conn(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListDetails(ctx context.Context, orderID int64) ([]model.OrderDetail, error) {
	var details []model.OrderDetail
	if err := r.conn(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&details).Error; err != nil {
		return []model.OrderDetail{}, err
	}
	return details, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	res := r.conn(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// CreateFullOrder は注文＋明細の作成、明細ぶんの在庫減算、カート削除を
// まとめて行う。呼び出し側のトランザクション（contextに載ったTx）の中で
// 実行される前提で、途中で失敗すれば全体がロールバックされる。
func (r *OrderGormRepository) CreateFullOrder(ctx context.Context, order model.Order, details []model.OrderDetail, userID int64) (model.Order, error) {
	orderID, err := r.Create(ctx, order)
	if err != nil {
		return model.Order{}, err
	}

	if err := r.CreateDetails(ctx, orderID, details); err != nil {
		return model.Order{}, err
	}

	// 明細ごとに在庫を減らす（足りなければ ErrInsufficientStock）
	for _, d := range details {
		if _, err := r.products.DecrementStock(ctx, d.ProductID, d.Quantity); err != nil {
			return model.Order{}, err
		}
	}

	if err := r.carts.ClearByUser(ctx, userID); err != nil {
		return model.Order{}, err
	}

	order.ID = orderID
	order.Details = details
	return order, nil
}
