package db_test

import (
	"context"
	"testing"

	"app/internal/infra/db"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTxFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, db.TxFromContext(ctx))

	tx := &gorm.DB{}
	ctx = db.WithTx(ctx, tx)
	assert.Same(t, tx, db.TxFromContext(ctx))
}

func TestFromContext_PrefersTx(t *testing.T) {
	fallback := &gorm.DB{}
	tx := &gorm.DB{}

	assert.Same(t, fallback, db.FromContext(context.Background(), fallback))
	assert.Same(t, tx, db.FromContext(db.WithTx(context.Background(), tx), fallback))
}
