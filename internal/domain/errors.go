package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEndpointNotConfigured = errors.New("draft endpoint not configured")
	ErrUnsupportedAction     = errors.New("unsupported action")
	ErrStaleResponse         = errors.New("response superseded by newer state")
)

// TransportError covers unreachable service, non-2xx status and bodies that
// do not decode. It is retried by the next poll.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RejectionError is an explicit ok:false answer from the service. Message is
// shown to the user verbatim.
type RejectionError struct {
	Route   string
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	switch ActionKind(e.Route) {
	case ActionPick:
		return "Pick rejected."
	case ActionUndo, ActionReset, ActionSetStatus:
		return "Admin action failed."
	default:
		return "Error loading state"
	}
}

func IsRejection(err error) bool {
	var rejection *RejectionError
	return errors.As(err, &rejection)
}

func IsTransport(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport)
}
