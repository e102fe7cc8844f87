package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Alisher2102/TumiTGBot/internal/caption"
	"github.com/Alisher2102/TumiTGBot/internal/channel"
	repo "github.com/Alisher2102/TumiTGBot/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Sleeper は待ち時間の差し替え口（テストでは実時間を待たない）。
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext はキャンセル可能なsleep。
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// 1サイクル分の作業対象。ToUpdateとToDeleteは重ならない。
type WorkSet struct {
	ToUpdate []int64
	ToDelete []int64
}

func (w WorkSet) Empty() bool {
	return len(w.ToUpdate) == 0 && len(w.ToDelete) == 0
}

type SyncConfig struct {
	MaxRetries   int           // スロットル時の最大試行回数
	ProductDelay time.Duration // 商品間の固定ウェイト
	Concurrency  int           // 同時に処理する商品数
}

type SyncUsecase struct {
	productRepo repo.ProductRepository
	messageRepo repo.MessageRepository
	transport   channel.Transport
	log         *slog.Logger
	sleep       Sleeper
	cfg         SyncConfig
}

// DI（sleepはnilで実時間sleep）
func NewSyncUsecase(
	productRepo repo.ProductRepository,
	messageRepo repo.MessageRepository,
	transport channel.Transport,
	log *slog.Logger,
	cfg SyncConfig,
	sleep Sleeper,
) *SyncUsecase {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if sleep == nil {
		sleep = SleepContext
	}
	if log == nil {
		log = slog.Default()
	}
	return &SyncUsecase{
		productRepo: productRepo,
		messageRepo: messageRepo,
		transport:   transport,
		log:         log,
		sleep:       sleep,
		cfg:         cfg,
	}
}

// Resolve は今サイクルの作業対象を分類する。
//
// ToUpdate: 公開・在庫あり・needs_update=1
// ToDelete: 投稿記録があるのに、商品が消えた・非公開・在庫切れ
//
// 両方に該当するデータ不整合はToDelete優先（古い情報を出し続けるより消す）。
func (u *SyncUsecase) Resolve(ctx context.Context) (WorkSet, error) {
	tracked, err := u.messageRepo.ListTrackedProductIDs(ctx)
	if err != nil {
		return WorkSet{}, err
	}

	toDelete := make([]int64, 0)
	deleteSet := make(map[int64]struct{})
	for _, id := range tracked {
		p, err := u.productRepo.FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			toDelete = append(toDelete, id)
			deleteSet[id] = struct{}{}
			continue
		}
		if err != nil {
			return WorkSet{}, err
		}
		if !p.Postable() {
			toDelete = append(toDelete, id)
			deleteSet[id] = struct{}{}
		}
	}

	needing, err := u.productRepo.ListNeedingUpdate(ctx)
	if err != nil {
		return WorkSet{}, err
	}

	toUpdate := make([]int64, 0, len(needing))
	for _, id := range needing {
		if _, gone := deleteSet[id]; gone {
			continue
		}
		toUpdate = append(toUpdate, id)
	}

	return WorkSet{ToUpdate: toUpdate, ToDelete: toDelete}, nil
}

// RunCycle は1回分の同期を行う。
// 撤去を先に直列で済ませてから、更新を並列上限つきで流す。
// 商品単位の失敗はログに残して次の商品へ進む（サイクルは止めない）。
func (u *SyncUsecase) RunCycle(ctx context.Context) error {
	log := u.log.With("run_id", uuid.NewString())

	ws, err := u.Resolve(ctx)
	if err != nil {
		return err
	}
	if ws.Empty() {
		log.Debug("no work")
		return nil
	}

	log.Info("cycle start", "to_update", len(ws.ToUpdate), "to_delete", len(ws.ToDelete))

	for _, id := range ws.ToDelete {
		if err := ctx.Err(); err != nil {
			return err
		}
		u.removeProduct(ctx, log, id)
	}

	g := new(errgroup.Group)
	g.SetLimit(u.cfg.Concurrency)
	for _, id := range ws.ToUpdate {
		id := id
		g.Go(func() error {
			u.publishProduct(ctx, log, id)
			return nil
		})
	}
	_ = g.Wait()

	return nil
}

// publishProduct は1商品の「旧投稿削除→送信→記録」を最後まで進める。
// 失敗時はneeds_updateを立てたままにして次サイクルに任せる。
func (u *SyncUsecase) publishProduct(ctx context.Context, log *slog.Logger, productID int64) {
	log = log.With("product_id", productID)

	// 解決時点から状態が変わっていることがあるので読み直す
	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		log.Warn("product disappeared before posting")
		return
	}
	if err != nil {
		log.Error("load product", "err", err)
		return
	}
	if !p.Postable() {
		log.Info("product no longer postable, skipping")
		return
	}

	imageURLs, err := u.productRepo.ListImageURLs(ctx, productID)
	if err != nil {
		log.Error("load images", "err", err)
		return
	}

	// 旧世代を先に消す。二重掲載の窓を作らないため、送信より前に必ず行う。
	if err := u.deleteTracked(ctx, log, productID); err != nil {
		return
	}

	// 送信を試みた後は成否に関わらず商品間ウェイトを置く（レート対策）
	defer func() { _ = u.sleep(ctx, u.cfg.ProductDelay) }()

	text := caption.Build(p.Name, p.Description, p.URL)

	messageIDs, ok := u.sendWithRetry(ctx, log, imageURLs, text)
	if !ok {
		return
	}

	// メッセージIDの記録とフラグクリアは1トランザクション
	if err := u.messageRepo.Replace(ctx, productID, messageIDs); err != nil {
		// 投稿は成功しているのに記録できなかった（既知のギャップ）。
		// needs_updateは立ったままなので次サイクルで再投稿される。
		log.Error("posted but failed to record message ids", "message_ids", messageIDs, "err", err)
		return
	}

	log.Info("product posted", "message_ids", messageIDs)
}

// removeProduct は在庫切れ・非公開になった商品の投稿を撤去する。
func (u *SyncUsecase) removeProduct(ctx context.Context, log *slog.Logger, productID int64) {
	log = log.With("product_id", productID)
	if err := u.deleteTracked(ctx, log, productID); err != nil {
		return
	}
	log.Info("product removed from channel")
}

// deleteTracked は記録済みメッセージをチャンネルから消し、記録行も消す。
// 「すでに無い」は正常系。その他の削除失敗もIDは記録から落とす
// （古い記録行が今後の投稿を塞いではいけない）。
func (u *SyncUsecase) deleteTracked(ctx context.Context, log *slog.Logger, productID int64) error {
	messageIDs, err := u.messageRepo.ListMessageIDs(ctx, productID)
	if err != nil {
		log.Error("list tracked messages", "err", err)
		return err
	}

	for _, mid := range messageIDs {
		err := u.transport.DeleteMessage(ctx, mid)
		switch {
		case err == nil:
			log.Info("deleted old message", "message_id", mid)
		case errors.Is(err, channel.ErrAlreadyGone):
			log.Info("old message already gone", "message_id", mid)
		default:
			log.Warn("delete old message", "message_id", mid, "err", err)
		}
	}

	if len(messageIDs) == 0 {
		return nil
	}

	if err := u.messageRepo.Clear(ctx, productID); err != nil {
		log.Error("clear tracked messages", "err", err)
		return err
	}
	return nil
}

// sendWithRetry は画像枚数に応じた形で送信する。
// スロットル時はwait×試行回数だけ待って再試行し、上限で諦める。
// その他の送信エラーは即諦める。
func (u *SyncUsecase) sendWithRetry(ctx context.Context, log *slog.Logger, imageURLs []string, text string) ([]int, bool) {
	for attempt := 1; attempt <= u.cfg.MaxRetries; attempt++ {
		ids, err := u.sendOnce(ctx, imageURLs, text)
		if err == nil {
			return ids, true
		}

		te, throttled := channel.AsThrottled(err)
		if !throttled {
			log.Error("send failed", "attempt", attempt, "err", err)
			return nil, false
		}

		if attempt == u.cfg.MaxRetries {
			break
		}

		backoff := te.Wait * time.Duration(attempt)
		log.Warn("throttled, backing off", "attempt", attempt, "wait", backoff)
		if err := u.sleep(ctx, backoff); err != nil {
			return nil, false
		}
	}

	log.Warn("send retries exhausted", "max_retries", u.cfg.MaxRetries)
	return nil, false
}

func (u *SyncUsecase) sendOnce(ctx context.Context, imageURLs []string, text string) ([]int, error) {
	switch len(imageURLs) {
	case 0:
		id, err := u.transport.SendText(ctx, text)
		if err != nil {
			return nil, err
		}
		return []int{id}, nil
	case 1:
		id, err := u.transport.SendPhoto(ctx, imageURLs[0], text)
		if err != nil {
			return nil, err
		}
		return []int{id}, nil
	default:
		return u.transport.SendPhotoGroup(ctx, imageURLs, text)
	}
}
