package repository

import (
	"context"

	"github.com/Alisher2102/TumiTGBot/internal/domain/model"

	"gorm.io/gorm"
)

type MessageGormRepository struct {
	db *gorm.DB
}

// DI
func NewMessageGormRepository(db *gorm.DB) *MessageGormRepository {
	return &MessageGormRepository{db: db}
}

// 投稿記録のある商品ID
func (r *MessageGormRepository) ListTrackedProductIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.ProductMessage{}).
		Distinct("product_id").
		Order("product_id asc").
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// 記録済みメッセージID（挿入順）
func (r *MessageGormRepository) ListMessageIDs(ctx context.Context, productID int64) ([]int, error) {
	var ids []int
	err := r.db.WithContext(ctx).
		Model(&model.ProductMessage{}).
		Where("product_id = ?", productID).
		Order("id asc").
		Pluck("message_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// 旧世代の削除・新世代の挿入・needs_updateクリアを1トランザクションで行う。
// 送信成功後の記録がここで失敗した場合、何も書かずに戻る（needs_updateは立ったまま）。
func (r *MessageGormRepository) Replace(ctx context.Context, productID int64, messageIDs []int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).
			Delete(&model.ProductMessage{}).Error; err != nil {
			return err
		}

		rows := make([]model.ProductMessage, 0, len(messageIDs))
		for _, mid := range messageIDs {
			rows = append(rows, model.ProductMessage{ProductID: productID, MessageID: mid})
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		// メッセージIDの記録とフラグクリアは必ず同時に確定させる
		return tx.Model(&model.Product{}).
			Where("id = ?", productID).
			Update("needs_update", false).Error
	})
}

// 記録の全削除のみ
func (r *MessageGormRepository) Clear(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&model.ProductMessage{}).Error
}
