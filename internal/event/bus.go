package event

import (
	"context"
	"sync"
)

// 注文コミット後に発行される在庫更新イベント
type StockUpdated struct {
	OrderID    int64   `json:"order_id"`
	ProductIDs []int64 `json:"product_ids"`
}

type Handler func(ctx context.Context, ev StockUpdated)

// at-least-once・fire-and-forgetの配送契約。
// 強い耐久性が要るならここがoutbox/キューを差し込む継ぎ目になる。
type Bus interface {
	Publish(ctx context.Context, ev StockUpdated) error
	Subscribe(h Handler)
}

// 単一プロセス用のインメモリ実装
type MemoryBus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

func (b *MemoryBus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *MemoryBus) Publish(ctx context.Context, ev StockUpdated) error {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	// 発行元のリクエストが終わってもハンドラは走り続けられるようにする
	ctx = context.WithoutCancel(ctx)
	for _, h := range handlers {
		go h(ctx, ev)
	}
	return nil
}
