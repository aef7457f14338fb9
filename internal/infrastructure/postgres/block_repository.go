package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/block"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/transaction"
)

type blockRow struct {
	Date      calendar.Date `db:"date"`
	Reason    string        `db:"reason"`
	CreatedAt time.Time     `db:"created_at"`
}

func (row *blockRow) toEntity() *block.DateBlock {
	return &block.DateBlock{Date: row.Date, Reason: row.Reason, CreatedAt: row.CreatedAt}
}

// BlockRepository はブロック日リポジトリのPostgreSQL実装
type BlockRepository struct{ db *sqlx.DB }

// NewBlockRepository はBlockRepositoryを作成する
func NewBlockRepository(db *sqlx.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

func (r *BlockRepository) Create(ctx context.Context, b *block.DateBlock) error {
	query := `INSERT INTO blocked_dates (date, reason, created_at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, b.Date, b.Reason, b.CreatedAt); err != nil {
		if hasCode(err, codeUniqueViolation) {
			return block.ErrBlockAlreadyExists
		}
		return transaction.Wrap("ブロック作成に失敗", err)
	}
	return nil
}

func (r *BlockRepository) GetByDate(ctx context.Context, date calendar.Date) (*block.DateBlock, error) {
	var row blockRow
	if err := r.db.GetContext(ctx, &row, `SELECT date, reason, created_at FROM blocked_dates WHERE date = $1`, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, block.ErrBlockNotFound
		}
		return nil, transaction.Wrap("ブロック取得に失敗", err)
	}
	return row.toEntity(), nil
}

func (r *BlockRepository) Delete(ctx context.Context, date calendar.Date) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blocked_dates WHERE date = $1`, date)
	if err != nil {
		return transaction.Wrap("ブロック削除に失敗", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return transaction.Wrap("削除結果の確認に失敗", err)
	}
	if rows == 0 {
		return block.ErrBlockNotFound
	}
	return nil
}

func (r *BlockRepository) ListInRange(ctx context.Context, tx transaction.Tx, rg calendar.Range) ([]*block.DateBlock, error) {
	if rg.IsEmpty() {
		return nil, nil
	}
	var rows []blockRow
	query := `SELECT date, reason, created_at FROM blocked_dates WHERE date >= $1 AND date <= $2 ORDER BY date`
	if err := pick(r.db, tx).SelectContext(ctx, &rows, query, rg.Start, rg.End); err != nil {
		return nil, transaction.Wrap("ブロック一覧取得に失敗", err)
	}
	blocks := make([]*block.DateBlock, len(rows))
	for i := range rows {
		blocks[i] = rows[i].toEntity()
	}
	return blocks, nil
}

var _ block.Repository = (*BlockRepository)(nil)
