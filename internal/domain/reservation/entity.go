package reservation

import (
	"regexp"
	"strings"
	"time"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
)

// Status は予約の状態を表す
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Valid は列挙値の範囲内かを返す
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// PaymentMethod は支払い方法を表す
type PaymentMethod string

const (
	PaymentMethodEWallet PaymentMethod = "e-wallet"
	PaymentMethodCash    PaymentMethod = "cash"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodEWallet || m == PaymentMethodCash
}

// PaymentStatus は支払い状況を表す
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusCashOnArrival PaymentStatus = "cash_on_arrival"
	PaymentStatusCancelled     PaymentStatus = "cancelled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusCashOnArrival, PaymentStatusCancelled:
		return true
	}
	return false
}

// mobileNumberPattern は受け付ける携帯番号の形式（+63 または 0 から始まる10桁）
var mobileNumberPattern = regexp.MustCompile(`^(\+63|0)[0-9]{10}$`)

// ValidMobileNumber は携帯番号の形式が正しいかを返す
func ValidMobileNumber(s string) bool {
	return mobileNumberPattern.MatchString(s)
}

// Guest は予約者の情報
type Guest struct {
	FullName       string
	Address        string
	MobileNumber   string
	NumberOfGuests int
	// GuestNames の件数は NumberOfGuests と照合しない
	GuestNames []string
}

// Reservation は宿泊予約エンティティを表す
type Reservation struct {
	ID            string
	StartDate     calendar.Date
	EndDate       calendar.Date
	Guest         Guest
	PaymentMethod PaymentMethod
	Status        Status
	PaymentStatus PaymentStatus
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewReservation は保留中の新しい予約を作成する
func NewReservation(start, end calendar.Date, guest Guest, method PaymentMethod) *Reservation {
	now := time.Now()
	guest.FullName = strings.TrimSpace(guest.FullName)
	names := make([]string, 0, len(guest.GuestNames))
	for _, n := range guest.GuestNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	guest.GuestNames = names
	return &Reservation{
		StartDate:     start,
		EndDate:       end,
		Guest:         guest,
		PaymentMethod: method,
		Status:        StatusPending,
		PaymentStatus: PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Range は宿泊期間を両端を含む区間として返す
func (r *Reservation) Range() calendar.Range {
	return calendar.Range{Start: r.StartDate, End: r.EndDate}
}

// IsConfirmed は予約が確定済みかを返す
func (r *Reservation) IsConfirmed() bool {
	return r.Status == StatusConfirmed
}

// MaxStayDays は一件の予約・受付判定で指定できる区間の最大日数（両端を含む）
const MaxStayDays = 366

// ValidateRange は開始日が終了日より厳密に前で、区間が MaxStayDays 日以内であることを検証する
func ValidateRange(start, end calendar.Date) error {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return ErrInvalidDateRange
	}
	if end.After(start.AddDays(MaxStayDays - 1)) {
		return ErrStayTooLong
	}
	return nil
}

// Validate は予約の検証を行う
func (r *Reservation) Validate() error {
	if err := ValidateRange(r.StartDate, r.EndDate); err != nil {
		return err
	}
	if r.Guest.FullName == "" {
		return ErrFullNameRequired
	}
	if strings.TrimSpace(r.Guest.Address) == "" {
		return ErrAddressRequired
	}
	if !ValidMobileNumber(r.Guest.MobileNumber) {
		return ErrInvalidMobileNumber
	}
	if r.Guest.NumberOfGuests < 1 {
		return ErrInvalidNumberOfGuests
	}
	if !r.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	return nil
}

// Update はオーナーによる部分更新を表す（nil のフィールドは変更しない）
type Update struct {
	Status        *Status
	PaymentStatus *PaymentStatus
	Notes         *string
}

// Validate は指定された値が列挙の範囲内かだけを検証する
// 状態遷移の妥当性は検証しない（オーナーはどの状態からでも変更できる）
func (u Update) Validate() error {
	if u.Status != nil && !u.Status.Valid() {
		return ErrInvalidStatus
	}
	if u.PaymentStatus != nil && !u.PaymentStatus.Valid() {
		return ErrInvalidPaymentStatus
	}
	return nil
}

// Apply は指定されたフィールドだけを予約に反映する
func (r *Reservation) Apply(u Update) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.Status != nil {
		r.Status = *u.Status
	}
	if u.PaymentStatus != nil {
		r.PaymentStatus = *u.PaymentStatus
	}
	if u.Notes != nil {
		r.Notes = *u.Notes
	}
	r.UpdatedAt = time.Now()
	return nil
}
