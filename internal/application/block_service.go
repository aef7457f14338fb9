package application

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/block"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/pkg/logger"
)

// BlockService はオーナーによる日付のブロックを管理する
type BlockService struct {
	blockRepo block.Repository
	cache     AvailabilityCache
}

func NewBlockService(br block.Repository, cache AvailabilityCache) *BlockService {
	return &BlockService{blockRepo: br, cache: cache}
}

// ToggleBlock はブロック状態を反転し、反転後にブロックされているかを返す
func (s *BlockService) ToggleBlock(ctx context.Context, date calendar.Date, reason string) (bool, error) {
	if date.IsZero() {
		return false, block.ErrDateRequired
	}
	err := s.blockRepo.Delete(ctx, date)
	switch {
	case err == nil:
		s.changed(ctx, date, false)
		return false, nil
	case !errors.Is(err, block.ErrBlockNotFound):
		return false, err
	}

	// 同時に反転された場合は先に作成された方を結果とする
	if err := s.create(ctx, date, reason); err != nil && !errors.Is(err, block.ErrBlockAlreadyExists) {
		return false, err
	}
	s.changed(ctx, date, true)
	return true, nil
}

// SetBlocked はブロック状態を指定した値にし、変更があったかを返す
// 同じ値で何度呼んでも結果は変わらない
func (s *BlockService) SetBlocked(ctx context.Context, date calendar.Date, blocked bool, reason string) (bool, error) {
	if date.IsZero() {
		return false, block.ErrDateRequired
	}
	if !blocked {
		err := s.blockRepo.Delete(ctx, date)
		if errors.Is(err, block.ErrBlockNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		s.changed(ctx, date, false)
		return true, nil
	}

	err := s.create(ctx, date, reason)
	if errors.Is(err, block.ErrBlockAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.changed(ctx, date, true)
	return true, nil
}

// ListBlocks は指定月のブロックを日付順に返す
// 不正な月・年の場合は空の結果を返す
func (s *BlockService) ListBlocks(ctx context.Context, month, year int) ([]*block.DateBlock, error) {
	window, ok := calendar.MonthWindow(month, year)
	if !ok {
		return []*block.DateBlock{}, nil
	}
	blocks, err := s.blockRepo.ListInRange(ctx, nil, window)
	if err != nil {
		return nil, err
	}
	if blocks == nil {
		blocks = []*block.DateBlock{}
	}
	return blocks, nil
}

// GetBlock は指定日のブロックを返す（なければ block.ErrBlockNotFound）
func (s *BlockService) GetBlock(ctx context.Context, date calendar.Date) (*block.DateBlock, error) {
	if date.IsZero() {
		return nil, block.ErrDateRequired
	}
	return s.blockRepo.GetByDate(ctx, date)
}

func (s *BlockService) create(ctx context.Context, date calendar.Date, reason string) error {
	b := block.NewDateBlock(date, reason)
	if err := b.Validate(); err != nil {
		return err
	}
	return s.blockRepo.Create(ctx, b)
}

func (s *BlockService) changed(ctx context.Context, date calendar.Date, blocked bool) {
	invalidateMonths(ctx, s.cache, []string{date.MonthKey()})
	logger.Info("ブロック状態を変更しました", zap.String("date", date.String()), zap.Bool("blocked", blocked))
}
