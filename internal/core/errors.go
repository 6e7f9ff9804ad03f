package core

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrNotMember         = errors.New("not a lobby member")
	ErrLobbyClosed       = errors.New("lobby closed")
	ErrAlreadyTerminated = errors.New("connection already terminated")
	ErrRateLimited       = errors.New("rate limited")
	ErrBackpressure      = errors.New("backpressure")
	ErrConnectionClosed  = errors.New("connection closed")
	ErrInvalidName       = errors.New("invalid name")
	ErrBadPayload        = errors.New("bad payload")
)

// Wire error codes for request/response operations.
const (
	CodeNotFound    = "not_found"
	CodeRateLimited = "rate_limited"
	CodeTerminated  = "terminated"
	CodeBadPayload  = "bad_payload"
	CodeUnknownType = "unknown_type"
	CodeInvalidName = "invalid_name"
	CodeInternal    = "internal"
)

// ErrorCode maps an error to the code reported as {ok:false, error:<code>}.
// A lobby that closed between lookup and join is reported as not found.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrLobbyClosed), errors.Is(err, ErrNotMember):
		return CodeNotFound
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, ErrAlreadyTerminated):
		return CodeTerminated
	case errors.Is(err, ErrInvalidName):
		return CodeInvalidName
	case errors.Is(err, ErrBadPayload):
		return CodeBadPayload
	}
	return CodeInternal
}
