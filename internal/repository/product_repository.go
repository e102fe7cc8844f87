package repository

import (
	"context"
	"errors"

	"github.com/Alisher2102/TumiTGBot/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品の読み取りとneeds_updateフラグの操作だけを約束。
// カタログ本体（作成・編集）はショップ側が持つ。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)

	// visible=1 かつ stock>0 かつ needs_update=1 の商品ID
	ListNeedingUpdate(ctx context.Context) ([]int64, error)

	// Position順の画像URL
	ListImageURLs(ctx context.Context, productID int64) ([]string, error)

	ClearNeedsUpdate(ctx context.Context, productID int64) error
}
