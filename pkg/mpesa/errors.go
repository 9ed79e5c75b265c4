package mpesa

import "errors"

// Kind classifies a failure so handlers can map each one to the right
// HTTP status and caller-facing message.
type Kind int

const (
	// KindValidation is malformed caller input, rejected before any network call.
	KindValidation Kind = iota + 1
	// KindAuth is a token fetch failure: endpoint unreachable or credentials rejected.
	KindAuth
	// KindRejected means the provider took the call but refused the payment request.
	KindRejected
	// KindTransport is a network failure or unexpected HTTP status from the provider.
	KindTransport
	// KindParse is an undecodable provider response.
	KindParse
)

// Error carries a failure kind plus a message safe to return to the caller.
// The wrapped error is for logs only and may contain provider internals.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return 0
}
