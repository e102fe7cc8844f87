package model

import (
	"time"
)

type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	URL         string    `gorm:"type:text" json:"url"`
	Stock       *int64    `json:"stock"`
	Visible     bool      `gorm:"not null;default:false" json:"visible"`
	NeedsUpdate bool      `gorm:"not null;default:false;index" json:"needs_update"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 在庫ありかどうか（NULL・0以下は在庫なし扱い）
func (p Product) InStock() bool {
	return p.Stock != nil && *p.Stock > 0
}

// チャンネルに掲載できる状態かどうか
func (p Product) Postable() bool {
	return p.Visible && p.InStock()
}
