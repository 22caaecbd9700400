package auth

import "errors"

var (
	// ErrNoToken means no bearer token accompanied the request.
	ErrNoToken = errors.New("auth: missing token")
	// ErrSessionExpired means the token was well formed and correctly signed
	// but its validity window has elapsed.
	ErrSessionExpired = errors.New("auth: session expired")
	// ErrInvalidSession covers every other verification failure.
	ErrInvalidSession = errors.New("auth: invalid session")

	ErrBadCredentials = errors.New("auth: invalid credentials")
	ErrWrongPortal    = errors.New("auth: account type does not match login portal")
	ErrInvalidInput   = errors.New("auth: invalid input")
)
