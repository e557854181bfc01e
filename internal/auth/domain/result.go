package domain

import "errors"

// Failure kinds carried by a failed Response.
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrNotFound       = errors.New("not found")
	ErrConsistency    = errors.New("consistency violation")
)

// Caller-facing failure messages.
const (
	MsgPayloadRequired      = "request payload is required"
	MsgInvalidCredentials   = "invalid credentials"
	MsgClientNotFound       = "client id or secret not found"
	MsgRefreshTokenNotFound = "refresh token not found"
	MsgUserNotFound         = "user not found"
	MsgEmailTaken           = "email already registered"
	MsgMultipleRecords      = "refresh token store returned more than one record"
	MsgInternal             = "internal server error"
)

// NoData is the payload of a successful operation that returns nothing.
type NoData struct{}

type ErrorDetail struct {
	Message       string `json:"message"`
	IsUserVisible bool   `json:"is_user_visible"`
}

// Response is the uniform result of every auth operation.
type Response[T any] struct {
	Data         *T           `json:"data"`
	StatusCode   int          `json:"status_code"`
	IsSuccessful bool         `json:"is_successful"`
	Error        *ErrorDetail `json:"error"`

	kind error
}

func Success[T any](data T, status int) Response[T] {
	return Response[T]{Data: &data, StatusCode: status, IsSuccessful: true}
}

func SuccessNoData(status int) Response[NoData] {
	return Response[NoData]{StatusCode: status, IsSuccessful: true}
}

func Fail[T any](kind error, message string, status int, userVisible bool) Response[T] {
	return Response[T]{
		StatusCode: status,
		Error:      &ErrorDetail{Message: message, IsUserVisible: userVisible},
		kind:       kind,
	}
}

// Err returns the failure kind, or nil for a successful response, so callers
// can use errors.Is.
func (r Response[T]) Err() error {
	if r.IsSuccessful {
		return nil
	}
	return r.kind
}
