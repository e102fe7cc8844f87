package repository

import "context"

// 投稿済みメッセージID集合の永続化を約束。
type MessageRepository interface {
	// product_messagesに行を持つ商品ID（投稿を記録済みの商品）
	ListTrackedProductIDs(ctx context.Context) ([]int64, error)

	// 記録済みメッセージID（挿入順）
	ListMessageIDs(ctx context.Context, productID int64) ([]int, error)

	// 旧世代の全削除→新世代の挿入→needs_updateクリアを1トランザクションで行う。
	// 途中で失敗したら何も残さない（世代が混ざった状態を作らない）。
	Replace(ctx context.Context, productID int64, messageIDs []int) error

	// 記録の全削除のみ（在庫切れ・非公開の撤去パス）
	Clear(ctx context.Context, productID int64) error
}
