package usecase_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Alisher2102/TumiTGBot/internal/domain/model"
	infraRepo "github.com/Alisher2102/TumiTGBot/internal/infra/repository"
	"github.com/Alisher2102/TumiTGBot/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// 実DB（sqlite）を使った商品ライフサイクルの通し検証。
// 投稿→再実行（何も起きない）→在庫切れ→撤去→そのまま、を辿る。
func TestLifecycle_PostThenOutOfStock(t *testing.T) {
	ctx := context.Background()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "bot.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Product{}, &model.ProductImage{}, &model.ProductMessage{}))

	pRepo := infraRepo.NewProductGormRepository(db)
	mRepo := infraRepo.NewMessageGormRepository(db)

	calls := &callLog{}
	tr := &TransportMock{calls: calls}
	sl := &recordingSleeper{}
	eng := usecase.NewSyncUsecase(pRepo, mRepo, tr, nil, usecase.SyncConfig{}, sl.sleep)

	require.NoError(t, db.Create(&model.Product{
		ID:          7,
		Name:        "Widget",
		Description: "<p>Great</p><br>Buy now",
		URL:         "https://shop.example/p/7",
		Stock:       int64ptr(5),
		Visible:     true,
		NeedsUpdate: true,
	}).Error)

	// 1サイクル目: テキスト1通が投稿され、記録とフラグが確定する
	tr.On("SendText", mock.Anything, "🛒 <b>Widget</b>\n\nGreat\n\nBuy now\n\n🔗 More info: https://shop.example/p/7").Return(501, nil)
	require.NoError(t, eng.RunCycle(ctx))

	ids, err := mRepo.ListMessageIDs(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []int{501}, ids)

	p, err := pRepo.FindByID(ctx, 7)
	require.NoError(t, err)
	assert.False(t, p.NeedsUpdate)

	// 2サイクル目: カタログに変化がなければチャンネル操作は一切ない
	before := len(calls.snapshot())
	require.NoError(t, eng.RunCycle(ctx))
	assert.Equal(t, before, len(calls.snapshot()))

	// 在庫切れにする
	require.NoError(t, db.Model(&model.Product{}).Where("id = ?", 7).Update("stock", 0).Error)

	// 3サイクル目: 撤去される
	tr.On("DeleteMessage", mock.Anything, 501).Return(nil)
	require.NoError(t, eng.RunCycle(ctx))

	ids, err = mRepo.ListMessageIDs(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, ids)

	// 4サイクル目: 在庫切れのままなら何もしない
	before = len(calls.snapshot())
	require.NoError(t, eng.RunCycle(ctx))
	assert.Equal(t, before, len(calls.snapshot()))
}

// 更新（再投稿）: 旧メッセージを消してから新しい世代だけが残る
func TestLifecycle_Repost(t *testing.T) {
	ctx := context.Background()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "bot.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Product{}, &model.ProductImage{}, &model.ProductMessage{}))

	pRepo := infraRepo.NewProductGormRepository(db)
	mRepo := infraRepo.NewMessageGormRepository(db)

	calls := &callLog{}
	tr := &TransportMock{calls: calls}
	sl := &recordingSleeper{}
	eng := usecase.NewSyncUsecase(pRepo, mRepo, tr, nil, usecase.SyncConfig{}, sl.sleep)

	require.NoError(t, db.Create(&model.Product{
		ID:          8,
		Name:        "Gadget",
		Description: "desc",
		URL:         "https://shop.example/p/8",
		Stock:       int64ptr(2),
		Visible:     true,
		NeedsUpdate: true,
	}).Error)
	require.NoError(t, db.Create(&[]model.ProductImage{
		{ProductID: 8, ImageURL: "https://img/1.jpg", Position: 0},
		{ProductID: 8, ImageURL: "https://img/2.jpg", Position: 1},
	}).Error)

	tr.On("SendPhotoGroup", mock.Anything, []string{"https://img/1.jpg", "https://img/2.jpg"}, mock.Anything).
		Return([]int{601, 602}, nil).Once()
	require.NoError(t, eng.RunCycle(ctx))

	// 編集されたことにして再投稿させる
	require.NoError(t, db.Model(&model.Product{}).Where("id = ?", 8).Update("needs_update", true).Error)

	tr.On("DeleteMessage", mock.Anything, 601).Return(nil)
	tr.On("DeleteMessage", mock.Anything, 602).Return(nil)
	tr.On("SendPhotoGroup", mock.Anything, []string{"https://img/1.jpg", "https://img/2.jpg"}, mock.Anything).
		Return([]int{701, 702}, nil).Once()
	require.NoError(t, eng.RunCycle(ctx))

	ids, err := mRepo.ListMessageIDs(ctx, 8)
	require.NoError(t, err)
	// 世代が混ざらない
	assert.Equal(t, []int{701, 702}, ids)
}
