package block

import (
	"strings"
	"time"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
)

// DefaultReason は理由未指定時のブロック理由
const DefaultReason = "Blocked by owner"

// DateBlock はオーナーが予約不可にした日付を表す（1日につき1件まで）
type DateBlock struct {
	Date      calendar.Date
	Reason    string
	CreatedAt time.Time
}

// NewDateBlock は新しいブロックを作成する
func NewDateBlock(date calendar.Date, reason string) *DateBlock {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultReason
	}
	return &DateBlock{
		Date:      date,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
}

// Validate はブロックの検証を行う
func (b *DateBlock) Validate() error {
	if b.Date.IsZero() {
		return ErrDateRequired
	}
	return nil
}
