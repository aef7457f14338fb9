package transaction

import "errors"

// ErrStoreFailure はストアの一時的な障害を表す（呼び出し側で再試行可能）
var ErrStoreFailure = errors.New("ストアの処理に失敗しました")

// StoreError はストア操作の失敗を ErrStoreFailure として扱えるようにラップする
type StoreError struct {
	Op  string
	Err error
}

// Wrap は err を StoreError でラップする（nil はそのまま返す）
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreFailure, e.Err}
}
