package service

import "errors"

// 领域错误。handler 层用 errors.Is 映射到 HTTP 状态码，
// service 内部通过 fmt.Errorf("%w: ...") 补充给用户看的信息。
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInsufficientTickets = errors.New("insufficient tickets")
	ErrAlreadyCheckedIn    = errors.New("already checked in")
	ErrConflict            = errors.New("conflict")

	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
