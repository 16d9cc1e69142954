package usecase

import (
	"errors"
	"fmt"
)

// handler層でHTTPステータスに写すためのエラー。
// モデル層のメッセージ（在庫不足・not found）はそのまま運ぶ
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// ID生成をusecaseから切り離す（テストで差し替える）
type IDGenerator interface {
	NewID() string
}
