package access

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidSessionPayload = "INVALID_SESSION_PAYLOAD"
	textCodeNoActiveSession       = "NO_ACTIVE_SESSION"
	textCodeInvalidInviteState    = "INVALID_INVITE_STATE"
	textCodeGatewayRejected       = "GATEWAY_REJECTED"
	textCodeGatewayUnreachable    = "GATEWAY_UNREACHABLE"
)

// ErrInvalidSessionPayload is returned by Establish when the payload is
// missing required fields or carries a role outside the fixed enum. It marks
// a caller bug, not a server rejection.
var ErrInvalidSessionPayload = goerrors.New("invalid session payload", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidSessionPayload).
	WithCode(goerrors.CodeBadRequest)

// ErrNoActiveSession is returned by UpdateIdentity while anonymous.
var ErrNoActiveSession = goerrors.New("no active session", goerrors.CategoryConflict).
	WithTextCode(textCodeNoActiveSession).
	WithCode(goerrors.CodeConflict)

// ErrInvalidInviteState is returned when registration is attempted from a
// state other than Valid.
var ErrInvalidInviteState = goerrors.New("invite is not in a registrable state", goerrors.CategoryConflict).
	WithTextCode(textCodeInvalidInviteState).
	WithCode(goerrors.CodeConflict)

// NewGatewayRejection wraps a server-side rejection with the human-readable
// message the UI should display.
func NewGatewayRejection(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithTextCode(textCodeGatewayRejected).
		WithCode(goerrors.CodeUnauthorized)
}

// NewGatewayTransportError wraps a transport-level failure (network
// unreachable, malformed response) behind a generic display message.
func NewGatewayTransportError(err error) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, "authorization service unreachable").
		WithTextCode(textCodeGatewayUnreachable)
}

// IsGatewayError reports whether err came back from the Gateway, either as a
// server rejection or a transport failure. Everything else surfaced by this
// package indicates a caller error.
func IsGatewayError(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == textCodeGatewayRejected ||
		richErr.TextCode == textCodeGatewayUnreachable
}

// DisplayMessage extracts the user-facing message for a Gateway failure.
func DisplayMessage(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
