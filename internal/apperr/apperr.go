package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误分类，决定对外的 HTTP 状态码
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindAuth
	KindForbidden
	KindConflict
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Error 业务错误，Message 可以直接返回给调用方
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 同类错误视为相等，便于 errors.Is(err, apperr.ErrNotFound) 这类判断
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// 哨兵值，只比较 Kind
var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrAuth        = &Error{Kind: KindAuth}
	ErrForbidden   = &Error{Kind: KindForbidden}
	ErrConflict    = &Error{Kind: KindConflict}
	ErrRateLimited = &Error{Kind: KindRateLimited}
)

func Validation(msg string) error  { return &Error{Kind: KindValidation, Message: msg} }
func NotFound(msg string) error    { return &Error{Kind: KindNotFound, Message: msg} }
func Auth(msg string) error        { return &Error{Kind: KindAuth, Message: msg} }
func Forbidden(msg string) error   { return &Error{Kind: KindForbidden, Message: msg} }
func Conflict(msg string) error    { return &Error{Kind: KindConflict, Message: msg} }
func RateLimited(msg string) error { return &Error{Kind: KindRateLimited, Message: msg} }

func Validationf(format string, args ...any) error {
	return Validation(fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return NotFound(fmt.Sprintf(format, args...))
}

// Wrap 保留底层错误，对外只暴露 msg
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf 返回错误链上第一个业务错误的分类，未分类返回 KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf 返回对外可见的错误信息
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
