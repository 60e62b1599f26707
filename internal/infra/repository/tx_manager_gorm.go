package repository

import (
	"context"

	"app/internal/infra/db"

	"gorm.io/gorm"
)

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(gdb *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: gdb}
}

// WithinTx はfnを1つのトランザクションで実行する。
// 既にトランザクション内なら新しく開かず、そのまま合流する。
// fnがerrorを返せばロールバック、nilならコミット。
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if db.TxFromContext(ctx) != nil {
		return fn(ctx)
	}
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(db.WithTx(ctx, tx))
	})
}
