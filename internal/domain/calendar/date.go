package calendar

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout は暦日の文字列表現（ISO 8601 の日付部分）
const DateLayout = "2006-01-02"

// Date は時刻とタイムゾーンを持たない暦日を表す
// 比較はすべて日単位で行う
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate は年月日から Date を作成する（範囲外の値は time.Date と同様に正規化される）
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf はタイムスタンプを、そのタイムスタンプ自身のロケーションにおける暦日に切り詰める
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate は "2006-01-02" または RFC3339 形式の文字列を暦日に変換する
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// Time は UTC 0時の time.Time を返す
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays は n 日後の暦日を返す
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Compare は d < o なら -1、等しければ 0、d > o なら 1 を返す
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// IsZero は未設定の Date かを返す
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MonthKey は "2006-01" 形式の月キーを返す
func (d Date) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalParam は echo のクエリ・パスパラメータのバインドに使われる
func (d *Date) UnmarshalParam(param string) error {
	return d.UnmarshalText([]byte(param))
}

// Value は PostgreSQL の date 型として書き込む
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan は date / timestamp カラムを暦日として読み込む
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("%w: 型 %T は読み込めません", ErrInvalidDate, src)
	}
}
