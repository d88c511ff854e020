package gate

import (
	"errors"
	"fmt"
)

// InsufficientBalanceError means the user cannot afford a gated call. The UI
// layer renders an upgrade prompt for this one instead of a generic failure.
type InsufficientBalanceError struct {
	Balance int
}

func (e *InsufficientBalanceError) Error() string {
	return "insufficient token balance"
}

// IsInsufficientBalance reports whether err is an affordability failure.
func IsInsufficientBalance(err error) bool {
	var ib *InsufficientBalanceError
	return errors.As(err, &ib)
}

// UpstreamError wraps a failure from the generative collaborator itself.
// The upstream message is passed through verbatim.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err originated from the generative call.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// ParseError means the collaborator answered but the payload did not decode
// into the expected shape.
type ParseError struct {
	Err error
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed model payload: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
