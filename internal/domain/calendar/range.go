package calendar

import "time"

// emptyRange は日を一つも含まない区間
var emptyRange = Range{Start: Date{Year: 1, Month: time.January, Day: 2}, End: Date{Year: 1, Month: time.January, Day: 1}}

// Range は両端を含む暦日の区間 [Start, End] を表す
type Range struct {
	Start Date
	End   Date
}

// IsEmpty は End が Start より前の（日を含まない）区間かを返す
func (r Range) IsEmpty() bool {
	return r.End.Before(r.Start)
}

// Overlaps は両端を含めて区間が重なるかを返す（境界日の共有も重なりとみなす）
func (r Range) Overlaps(o Range) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return !r.Start.After(o.End) && !r.End.Before(o.Start)
}

// Contains は d が区間に含まれるかを返す
func (r Range) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Intersect は二つの区間の共通部分を返す
func (r Range) Intersect(o Range) (Range, bool) {
	if !r.Overlaps(o) {
		return Range{}, false
	}
	start, end := r.Start, r.End
	if o.Start.After(start) {
		start = o.Start
	}
	if o.End.Before(end) {
		end = o.End
	}
	return Range{Start: start, End: end}, true
}

// Days は区間に含まれる全ての暦日を昇順で返す
func (r Range) Days() []Date {
	if r.IsEmpty() {
		return nil
	}
	var days []Date
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// MonthKeys は区間が触れる月のキー（"2006-01"）を昇順で返す
// 範囲ロックはこの順で取得してデッドロックを防ぐ
func (r Range) MonthKeys() []string {
	if r.IsEmpty() {
		return nil
	}
	var keys []string
	cur := NewDate(r.Start.Year, r.Start.Month, 1)
	for !cur.After(r.End) {
		keys = append(keys, cur.MonthKey())
		cur = NewDate(cur.Year, cur.Month+1, 1)
	}
	return keys
}

// MonthWindow は指定月の [月初, 月末] を返す
// 不正な月・年の場合は空の区間と false を返す（エラーにはしない）
func MonthWindow(month, year int) (Range, bool) {
	if month < 1 || month > 12 || year < 1 || year > 9999 {
		return emptyRange, false
	}
	first := NewDate(year, time.Month(month), 1)
	last := NewDate(year, time.Month(month)+1, 0)
	return Range{Start: first, End: last}, true
}
