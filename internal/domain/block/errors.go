package block

import "errors"

// DateBlock ドメインのエラー定義
var (
	ErrBlockNotFound      = errors.New("ブロックされた日付が見つかりません")
	ErrBlockAlreadyExists = errors.New("この日付は既にブロックされています")
	ErrDateRequired       = errors.New("日付は必須です")
)
