package repository

import "context"

// UsecaseからTxの開始/commit/rollbackを隠す。
// アクティブなトランザクションはcontext経由で引き回す。
// 既にトランザクション内で呼ばれたら新しく開かず合流する（再入可）。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
