package model

import "time"

// 商品への「いいね」
// 在庫僅少アラートの通知先選定（最後にいいねした未購入ユーザー）に使う。
type ProductLike struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
