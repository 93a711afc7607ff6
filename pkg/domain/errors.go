package domain

import (
	"errors"
	"fmt"
)

// FallbackMessage is shown when no better message can be extracted from a failure
const FallbackMessage = "failed to load data"

// ErrorKind tags the origin of a fetch failure
type ErrorKind int

const (
	// KindTransport means no response reached us: network down, timeout, cancelled
	KindTransport ErrorKind = iota
	// KindServer means the backend responded with non-2xx or an unreadable body
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FetchError is the single error shape produced by the gateway.
// Message is always ready for display.
type FetchError struct {
	Kind    ErrorKind
	Status  int // http status, zero for transport errors
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DisplayMessage reduces any error to a display string
func DisplayMessage(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return FallbackMessage
}
