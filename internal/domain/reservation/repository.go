package reservation

import (
	"context"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
// tx に nil を渡した場合はトランザクション外で実行する
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, reservation *Reservation) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, tx transaction.Tx, id string) (*Reservation, error)

	// List は全予約を作成日時の新しい順に取得する
	List(ctx context.Context) ([]*Reservation, error)

	// FindOverlapping は区間と重なる予約のうち、指定ステータスのものを取得する
	FindOverlapping(ctx context.Context, tx transaction.Tx, r calendar.Range, statuses ...Status) ([]*Reservation, error)

	// Update は予約を更新する
	// 確定済み予約同士が重なる更新は ErrDatesUnavailable を返す
	Update(ctx context.Context, tx transaction.Tx, reservation *Reservation) error

	// Delete は予約を物理削除する
	Delete(ctx context.Context, id string) error

	// CountByStatus はステータスごとの件数を返す
	CountByStatus(ctx context.Context) (map[Status]int, error)
}
