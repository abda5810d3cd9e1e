package redmine

import (
	"context"
	"errors"
	"net"
)

// Errors returned synchronously by Send when a request is rejected before
// any network action.
var (
	ErrNoResource  = errors.New("no resource specified")
	ErrNoHandler   = errors.New("no response handler specified for read mode")
	ErrInvalidURL  = errors.New("invalid endpoint url")
	ErrUnknownMode = errors.New("unknown request mode")
	ErrClosed      = errors.New("client is closed")
	ErrMissingID   = errors.New("missing id")
)

// ErrorKind classifies the outcome delivered to asynchronous callbacks.
type ErrorKind int

const (
	// NoError means the operation succeeded.
	NoError ErrorKind = iota
	// ErrNetwork covers transport failures and non-2xx responses.
	ErrNetwork
	// ErrIncompleteData means a client-side precondition failed.
	ErrIncompleteData
	// ErrTimeEntryTooShort means a time entry is shorter than one minute.
	ErrTimeEntryTooShort
	// ErrNotSaved means the server accepted a create without returning an id.
	ErrNotSaved
	// ErrTimeout means the exchange hit its deadline.
	ErrTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case NoError:
		return "no error"
	case ErrNetwork:
		return "network error"
	case ErrIncompleteData:
		return "incomplete data"
	case ErrTimeEntryTooShort:
		return "time entry too short"
	case ErrNotSaved:
		return "not saved"
	case ErrTimeout:
		return "timeout"
	default:
		return "unknown error"
	}
}

// kindOf maps a failed reply to its error kind.
func kindOf(reply *Reply) ErrorKind {
	if reply.Err == nil {
		return ErrNetwork
	}
	if errors.Is(reply.Err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(reply.Err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrNetwork
}

// errorMessages collects the transport error text followed by the messages
// found in the document's "errors" array.
func errorMessages(reply *Reply, doc Document) []string {
	messages := []string{reply.ErrorString()}
	return append(messages, doc.Errors()...)
}
