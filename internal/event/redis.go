package event

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const stockUpdatedChannel = "stock.updated"

// 複数プロセス向けのredis pub/sub実装
type RedisBus struct {
	client *redis.Client
}

func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

func (b *RedisBus) Publish(ctx context.Context, ev StockUpdated) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, stockUpdatedChannel, data).Err()
}

func (b *RedisBus) Subscribe(h Handler) {
	sub := b.client.Subscribe(context.Background(), stockUpdatedChannel)

	go func() {
		for msg := range sub.Channel() {
			var ev StockUpdated
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.Warn("drop malformed stock.updated payload", "error", err)
				continue
			}
			h(context.Background(), ev)
		}
	}()
}
