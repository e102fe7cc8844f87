package model

// 商品に紐づく画像URL。Positionは送信順。
type ProductImage struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	ImageURL  string `gorm:"type:text;not null" json:"image_url"`
	Position  int    `gorm:"not null;default:0" json:"position"`
}
