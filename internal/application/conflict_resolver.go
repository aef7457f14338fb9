package application

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-stay-reservation/internal/config"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/block"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/transaction"
)

// ConflictResolver は候補期間を受け付けられるかを判定する
type ConflictResolver struct {
	reservationRepo reservation.Repository
	blockRepo       block.Repository
	policy          config.AdmissionPolicy
}

func NewConflictResolver(rr reservation.Repository, br block.Repository, policy config.AdmissionPolicy) *ConflictResolver {
	return &ConflictResolver{reservationRepo: rr, blockRepo: br, policy: policy}
}

// CheckAdmission は [start, end] で新規予約を受け付けられるかを返す（nil なら受付可）
func (r *ConflictResolver) CheckAdmission(ctx context.Context, start, end calendar.Date) error {
	return r.checkAdmission(ctx, nil, start, end)
}

// checkAdmission は tx 内で判定する（予約作成時は暦ロック取得後に呼ぶ）
func (r *ConflictResolver) checkAdmission(ctx context.Context, tx transaction.Tx, start, end calendar.Date) error {
	if err := reservation.ValidateRange(start, end); err != nil {
		return err
	}
	rg := calendar.Range{Start: start, End: end}

	conflicts, err := r.reservationRepo.FindOverlapping(ctx, tx, rg, r.blockingStatuses()...)
	if err != nil {
		return fmt.Errorf("重複予約の確認に失敗: %w", err)
	}
	if len(conflicts) > 0 {
		return reservation.ErrDatesUnavailable
	}

	blocks, err := r.blockRepo.ListInRange(ctx, tx, rg)
	if err != nil {
		return fmt.Errorf("ブロック日の確認に失敗: %w", err)
	}
	if len(blocks) > 0 {
		return reservation.ErrDatesBlocked
	}
	return nil
}

// blockingStatuses は空き状況を塞ぐ予約ステータスを返す
func (r *ConflictResolver) blockingStatuses() []reservation.Status {
	if r.policy == config.AdmissionHoldPending {
		return []reservation.Status{reservation.StatusConfirmed, reservation.StatusPending}
	}
	return []reservation.Status{reservation.StatusConfirmed}
}
