package reservation

import (
	"errors"
	"fmt"
)

// Reservation ドメインのエラー定義
var (
	ErrReservationNotFound   = errors.New("予約が見つかりません")
	ErrInvalidDateRange      = errors.New("終了日は開始日より後である必要があります")
	ErrDatesUnavailable      = errors.New("選択された日付は予約できません")
	ErrFullNameRequired      = errors.New("氏名は必須です")
	ErrAddressRequired       = errors.New("住所は必須です")
	ErrInvalidMobileNumber   = errors.New("携帯番号の形式が不正です")
	ErrInvalidNumberOfGuests = errors.New("宿泊人数は1以上である必要があります")
	ErrInvalidPaymentMethod  = errors.New("支払い方法が不正です")
	ErrInvalidStatus         = errors.New("予約ステータスが不正です")
	ErrInvalidPaymentStatus  = errors.New("支払いステータスが不正です")
)

// ErrStayTooLong は区間が MaxStayDays 日を超える場合のエラー
var ErrStayTooLong = fmt.Errorf("宿泊期間は%d日以内で指定してください", MaxStayDays)

// ErrDatesBlocked はブロック日を含む場合のエラー（ErrDatesUnavailable として扱える）
var ErrDatesBlocked = fmt.Errorf("%w: オーナーによりブロックされた日付が含まれています", ErrDatesUnavailable)
