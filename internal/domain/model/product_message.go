package model

import "time"

// チャンネルに投稿済みのメッセージIDの記録。
// 1商品につき常に1世代分だけ（旧世代を消してから新世代を入れる）。
type ProductMessage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	MessageID int       `gorm:"not null" json:"message_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
