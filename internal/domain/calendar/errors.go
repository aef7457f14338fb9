package calendar

import "errors"

var (
	ErrInvalidDate = errors.New("日付の形式が不正です")
)
