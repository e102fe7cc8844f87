// Package channel はチャンネルへの投稿・削除の送信口を定義する。
package channel

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// 削除対象のメッセージがすでに存在しない（撤去パスでは正常系扱い）
var ErrAlreadyGone = errors.New("message already gone")

// レート制限。Waitの間待ってから再試行せよ、というシグナル。
type ThrottledError struct {
	Wait time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("throttled: retry after %s", e.Wait)
}

func AsThrottled(err error) (*ThrottledError, bool) {
	var te *ThrottledError
	ok := errors.As(err, &te)
	return te, ok
}

// チャンネルAPIの呼び出しだけを約束。戻り値はメッセージID。
type Transport interface {
	SendText(ctx context.Context, text string) (int, error)
	SendPhoto(ctx context.Context, imageURL, caption string) (int, error)

	// 複数画像を1グループで送る。キャプションは先頭にだけ付く。
	// 戻り値は送信順のメッセージID。
	SendPhotoGroup(ctx context.Context, imageURLs []string, caption string) ([]int, error)

	DeleteMessage(ctx context.Context, messageID int) error
}
