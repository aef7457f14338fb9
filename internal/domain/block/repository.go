package block

import (
	"context"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/transaction"
)

// Repository はブロック日リポジトリのインターフェース
type Repository interface {
	// Create はブロックを作成する（同じ日付が存在する場合は ErrBlockAlreadyExists）
	Create(ctx context.Context, block *DateBlock) error

	// GetByDate は日付からブロックを取得する
	GetByDate(ctx context.Context, date calendar.Date) (*DateBlock, error)

	// Delete は日付のブロックを削除する（存在しない場合は ErrBlockNotFound）
	Delete(ctx context.Context, date calendar.Date) error

	// ListInRange は区間内のブロックを日付の昇順で取得する
	ListInRange(ctx context.Context, tx transaction.Tx, r calendar.Range) ([]*DateBlock, error)
}
