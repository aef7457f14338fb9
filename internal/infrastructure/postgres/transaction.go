package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/transaction"
)

// TxWrapper は sqlx.Tx を transaction.Tx インターフェースでラップする
type TxWrapper struct {
	*sqlx.Tx
}

// TxManager は sqlx.DB を使用したトランザクションマネージャー
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager は新しい TxManager を作成する
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// Begin は新しいトランザクションを開始する
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, transaction.Wrap("トランザクション開始に失敗", err)
	}
	return &TxWrapper{Tx: tx}, nil
}

// LockMonths は月キーごとにトランザクションスコープのアドバイザリロックを取得する
// 同じ月に触れる予約作成はコミットまで直列化される
func (m *TxManager) LockMonths(ctx context.Context, tx transaction.Tx, monthKeys []string) error {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return fmt.Errorf("暦ロックにはトランザクションが必要です")
	}
	for _, key := range monthKeys {
		if _, err := sqlTx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "calendar:"+key); err != nil {
			return transaction.Wrap("暦ロック取得に失敗", err)
		}
	}
	return nil
}

// UnwrapTx は transaction.Tx から sqlx.Tx を取り出す
// リポジトリ実装で使用する
func UnwrapTx(tx transaction.Tx) *sqlx.Tx {
	if wrapper, ok := tx.(*TxWrapper); ok {
		return wrapper.Tx
	}
	return nil
}

// querier は sqlx.DB と sqlx.Tx の共通部分
type querier interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

// pick はトランザクションがあればそれを、なければ DB を返す
func pick(db *sqlx.DB, tx transaction.Tx) querier {
	if sqlTx := UnwrapTx(tx); sqlTx != nil {
		return sqlTx
	}
	return db
}

var _ transaction.Manager = (*TxManager)(nil)
