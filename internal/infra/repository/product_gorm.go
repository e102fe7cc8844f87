package repository

import (
	"context"
	"errors"

	"github.com/Alisher2102/TumiTGBot/internal/domain/model"
	repo "github.com/Alisher2102/TumiTGBot/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 更新待ちの商品ID（公開・在庫あり・needs_update=1）
func (r *ProductGormRepository) ListNeedingUpdate(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("visible = ?", true).
		Where("stock IS NOT NULL AND stock > 0").
		Where("needs_update = ?", true).
		Order("id asc").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// 商品の画像URLをPosition順に返す
func (r *ProductGormRepository) ListImageURLs(ctx context.Context, productID int64) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).
		Model(&model.ProductImage{}).
		Where("product_id = ?", productID).
		Where("image_url <> ''").
		Order("position asc").Order("id asc").
		Pluck("image_url", &urls).Error
	if err != nil {
		return nil, err
	}
	return urls, nil
}

// needs_updateフラグを落とす
func (r *ProductGormRepository) ClearNeedsUpdate(ctx context.Context, productID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("needs_update", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
