package memory

import (
	"context"
	"sort"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/block"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/transaction"
)

// BlockRepository はブロック日リポジトリのメモリ実装
type BlockRepository struct{ store *Store }

// NewBlockRepository はBlockRepositoryを作成する
func NewBlockRepository(store *Store) *BlockRepository {
	return &BlockRepository{store: store}
}

func (r *BlockRepository) Create(_ context.Context, b *block.DateBlock) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.blocks[b.Date]; ok {
		return block.ErrBlockAlreadyExists
	}
	r.store.blocks[b.Date] = *b
	return nil
}

func (r *BlockRepository) GetByDate(_ context.Context, date calendar.Date) (*block.DateBlock, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	b, ok := r.store.blocks[date]
	if !ok {
		return nil, block.ErrBlockNotFound
	}
	return &b, nil
}

func (r *BlockRepository) Delete(_ context.Context, date calendar.Date) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.blocks[date]; !ok {
		return block.ErrBlockNotFound
	}
	delete(r.store.blocks, date)
	return nil
}

func (r *BlockRepository) ListInRange(_ context.Context, tx transaction.Tx, rg calendar.Range) ([]*block.DateBlock, error) {
	if _, err := r.store.txOf(tx); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []*block.DateBlock
	for date, b := range r.store.blocks {
		if rg.Contains(date) {
			b := b
			result = append(result, &b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

var _ block.Repository = (*BlockRepository)(nil)
