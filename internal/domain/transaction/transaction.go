package transaction

import "context"

// Tx はトランザクションを表すインターフェース
// ドメイン層がインフラ層（sqlx等）に依存しないようにするための抽象化
type Tx interface {
	// Commit はトランザクションをコミットする
	Commit() error
	// Rollback はトランザクションをロールバックする
	Rollback() error
}

// Manager はトランザクションを管理するインターフェース
type Manager interface {
	// Begin は新しいトランザクションを開始する
	Begin(ctx context.Context) (Tx, error)

	// LockMonths はトランザクション終了まで保持される月単位の暦ロックを取得する
	// キーは "2006-01" 形式で、呼び出し側が昇順に並べて渡す
	LockMonths(ctx context.Context, tx Tx, monthKeys []string) error
}
