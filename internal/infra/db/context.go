package db

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx はアクティブなトランザクションをcontextに載せる。
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext はcontext上のトランザクションを返す。無ければnil。
func TxFromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

// FromContext はトランザクション中ならそれを、無ければfallbackを返す。
// Repositoryは毎回これで接続を解決する。
func FromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return fallback
}
